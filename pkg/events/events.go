// Package events defines the flow lifecycle notifications published on the event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every flow event.
const Topic = "docflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Flow definition events.
	FlowCreatedEvent EventType = "flow.created"
	FlowUpdatedEvent EventType = "flow.updated"
	FlowDeletedEvent EventType = "flow.deleted"

	// Flow execution lifecycle events.
	FlowExecutionStartedEvent   EventType = "flow.execution.started"
	FlowExecutionCompletedEvent EventType = "flow.execution.completed"
	FlowExecutionFailedEvent    EventType = "flow.execution.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	FlowID    string    `json:"flow_id"`
}

// NewBaseEvent stamps a new event for a flow.
func NewBaseEvent(eventType EventType, flowID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		FlowID:    flowID,
	}
}

type FlowCreated struct {
	BaseEvent

	Name      string `json:"name"`
	NodeCount int    `json:"node_count"`
}

func (e FlowCreated) GetType() EventType {
	return FlowCreatedEvent
}

type FlowUpdated struct {
	BaseEvent

	Name      string `json:"name"`
	NodeCount int    `json:"node_count"`
}

func (e FlowUpdated) GetType() EventType {
	return FlowUpdatedEvent
}

type FlowDeleted struct {
	BaseEvent
}

func (e FlowDeleted) GetType() EventType {
	return FlowDeletedEvent
}

type FlowExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	NodeCount   int    `json:"node_count"`
}

func (e FlowExecutionStarted) GetType() EventType {
	return FlowExecutionStartedEvent
}

type FlowExecutionCompleted struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Duration    time.Duration `json:"duration"`
	NodeCount   int           `json:"node_count"`
}

func (e FlowExecutionCompleted) GetType() EventType {
	return FlowExecutionCompletedEvent
}

type FlowExecutionFailed struct {
	BaseEvent

	ExecutionID  string        `json:"execution_id"`
	Duration     time.Duration `json:"duration"`
	FailedNodeID string        `json:"failed_node_id,omitempty"`
	Error        string        `json:"error"`
}

func (e FlowExecutionFailed) GetType() EventType {
	return FlowExecutionFailedEvent
}

// New returns an empty event value for eventType, ready to be unmarshalled into.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case FlowCreatedEvent:
		return &FlowCreated{}, true
	case FlowUpdatedEvent:
		return &FlowUpdated{}, true
	case FlowDeletedEvent:
		return &FlowDeleted{}, true
	case FlowExecutionStartedEvent:
		return &FlowExecutionStarted{}, true
	case FlowExecutionCompletedEvent:
		return &FlowExecutionCompleted{}, true
	case FlowExecutionFailedEvent:
		return &FlowExecutionFailed{}, true
	default:
		return nil, false
	}
}
