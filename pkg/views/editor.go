package views

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukex/docflow/pkg/ids"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/store"
)

// EditorStatus is what the edit view can show for the requested flow.
type EditorStatus int

const (
	EditorLoading EditorStatus = iota
	EditorNotFound
	EditorReady
)

func (s EditorStatus) String() string {
	switch s {
	case EditorNotFound:
		return "not found"
	case EditorReady:
		return "ready"
	default:
		return "loading"
	}
}

// Editor edits a local draft of a stored flow. Nothing reaches the API until Save.
type Editor struct {
	api    FlowAPI
	flows  *store.Store
	ports  Ports
	gen    ids.Generator
	logger *slog.Logger

	mu     sync.Mutex
	id     string
	status EditorStatus
	draft  models.Flow
}

// NewEditor creates an editor with nothing opened.
func NewEditor(api FlowAPI, flows *store.Store, gen ids.Generator, ports Ports, logger *slog.Logger) *Editor {
	return &Editor{
		api:    api,
		flows:  flows,
		ports:  ports,
		gen:    gen,
		logger: logger.With("view", "editor"),
	}
}

// Open loads the draft for id from the store. Calling it again after the store
// finishes loading resolves a Loading status.
func (e *Editor) Open(id string) EditorStatus {
	flow, loaded, found := e.flows.Get(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.id = id
	e.draft = models.Flow{}

	switch {
	case !loaded:
		e.status = EditorLoading
	case !found:
		e.status = EditorNotFound
	default:
		e.status = EditorReady
		e.draft = flow
	}

	return e.status
}

// Status returns the current status.
func (e *Editor) Status() EditorStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

// Draft returns a copy of the flow being edited.
func (e *Editor) Draft() models.Flow {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.draft.Clone()
}

// SetName renames the draft.
func (e *Editor) SetName(name string) error {
	return e.edit(func(draft *models.Flow) error {
		draft.Name = name

		return nil
	})
}

// AddNode appends a read node with a fresh id and empty config, returning its id.
func (e *Editor) AddNode() (string, error) {
	id := e.gen.NewID()

	err := e.edit(func(draft *models.Flow) error {
		draft.Nodes = append(draft.Nodes, models.Node{ID: id, Type: models.NodeTypeReadFromGoogleDocs})

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// SetNodeType changes the type of a draft node.
func (e *Editor) SetNodeType(nodeID string, nodeType models.NodeType) error {
	if !nodeType.Valid() {
		return ErrNodeTypeRequired
	}

	return e.editNode(nodeID, func(node *models.Node) {
		node.Type = nodeType
	})
}

// SetNodeConfig changes the config of a draft node.
func (e *Editor) SetNodeConfig(nodeID, config string) error {
	return e.editNode(nodeID, func(node *models.Node) {
		node.Config = config
	})
}

// RemoveNode drops a draft node.
func (e *Editor) RemoveNode(nodeID string) error {
	return e.edit(func(draft *models.Flow) error {
		i := draft.NodeIndex(nodeID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		draft.Nodes = slices.Delete(draft.Nodes, i, i+1)

		return nil
	})
}

// Save replaces the flow on the server with the draft, then in the store, and returns
// to the list. The draft is not re-validated. On failure the user is alerted and the
// editor stays open with the draft intact.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.status != EditorReady {
		e.mu.Unlock()

		return ErrEditorNotReady
	}

	id, draft := e.id, e.draft.Clone()
	e.mu.Unlock()

	err := e.api.Update(ctx, id, draft)
	if err != nil {
		e.logger.ErrorContext(ctx, "Error updating flow", "flow_id", id, "error", err)
		e.ports.Notifier.Alert(fmt.Sprintf("Failed to update flow: %v", err))

		return err
	}

	e.flows.Replace(id, draft)
	e.close()
	e.ports.Navigator.ToList()

	return nil
}

// Cancel discards the draft and returns to the list without calling the API.
func (e *Editor) Cancel() {
	e.close()
	e.ports.Navigator.ToList()
}

func (e *Editor) close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.id = ""
	e.status = EditorLoading
	e.draft = models.Flow{}
}

func (e *Editor) edit(change func(draft *models.Flow) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != EditorReady {
		return ErrEditorNotReady
	}

	return change(&e.draft)
}

func (e *Editor) editNode(nodeID string, change func(node *models.Node)) error {
	return e.edit(func(draft *models.Flow) error {
		i := draft.NodeIndex(nodeID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
		}

		change(&draft.Nodes[i])

		return nil
	})
}
