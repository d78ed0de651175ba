// Package metrics turns flow events into Prometheus metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	flowEvents        *prometheus.CounterVec
	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	inProgress        prometheus.Gauge
}

// New creates the flow metrics on a fresh registry that also carries the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		flowEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docflow_flow_events_total",
				Help: "Total number of flow events received",
			},
			[]string{"type"},
		),
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docflow_flow_executions_total",
				Help: "Total number of finished flow executions",
			},
			[]string{"outcome"},
		),
		executionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docflow_flow_execution_duration_seconds",
				Help:    "Flow execution duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		inProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "docflow_flow_executions_in_progress",
			Help: "Number of flow executions currently running",
		}),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Subscribe registers the metric handlers for every flow event type.
func (m *Metrics) Subscribe(sub eventbus.EventSubscriber) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.FlowCreatedEvent:            m.count,
		events.FlowUpdatedEvent:            m.count,
		events.FlowDeletedEvent:            m.count,
		events.FlowExecutionStartedEvent:   m.handleStarted,
		events.FlowExecutionCompletedEvent: m.handleCompleted,
		events.FlowExecutionFailedEvent:    m.handleFailed,
	}

	for eventType, handler := range handlers {
		if err := sub.Handle(eventType, handler); err != nil {
			return fmt.Errorf("failed to handle %s: %w", eventType, err)
		}
	}

	return nil
}

func (m *Metrics) count(_ context.Context, event any) error {
	typed, ok := event.(eventbus.Event)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	m.flowEvents.WithLabelValues(string(typed.GetType())).Inc()

	return nil
}

func (m *Metrics) handleStarted(ctx context.Context, event any) error {
	if _, ok := event.(*events.FlowExecutionStarted); !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	m.inProgress.Inc()

	return m.count(ctx, event)
}

func (m *Metrics) handleCompleted(ctx context.Context, event any) error {
	e, ok := event.(*events.FlowExecutionCompleted)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	m.finish(OutcomeSucceeded, e.Duration.Seconds())

	return m.count(ctx, event)
}

func (m *Metrics) handleFailed(ctx context.Context, event any) error {
	e, ok := event.(*events.FlowExecutionFailed)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}

	m.finish(OutcomeFailed, e.Duration.Seconds())

	return m.count(ctx, event)
}

func (m *Metrics) finish(outcome string, seconds float64) {
	m.inProgress.Dec()
	m.executions.WithLabelValues(outcome).Inc()
	m.executionDuration.WithLabelValues(outcome).Observe(seconds)
}
