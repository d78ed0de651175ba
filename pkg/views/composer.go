package views

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dukex/docflow/pkg/ids"
	"github.com/dukex/docflow/pkg/interchange"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/store"
)

// Mode is the active panel of the composer.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCreate
	ModeImport
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeImport:
		return "import"
	default:
		return "idle"
	}
}

// Composer creates flows from a form draft or from an interchange file.
// Exactly one of idle, create and import is active at a time.
type Composer struct {
	api    FlowAPI
	flows  *store.Store
	ports  Ports
	gen    ids.Generator
	logger *slog.Logger

	mu      sync.Mutex
	mode    Mode
	name    string
	pending []models.Node
}

// NewComposer creates an idle composer.
func NewComposer(api FlowAPI, flows *store.Store, gen ids.Generator, ports Ports, logger *slog.Logger) *Composer {
	return &Composer{
		api:    api,
		flows:  flows,
		ports:  ports,
		gen:    gen,
		logger: logger.With("view", "composer"),
	}
}

// Mode returns the active panel.
func (c *Composer) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mode
}

// SetMode switches panels. Leaving the create panel keeps the draft.
func (c *Composer) SetMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
}

// SetName sets the draft flow name.
func (c *Composer) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.name = name
}

// Name returns the draft flow name.
func (c *Composer) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.name
}

// AddNode appends a pending node. An unselected type is rejected with an alert.
func (c *Composer) AddNode(nodeType models.NodeType, config string) error {
	if !nodeType.Valid() {
		c.ports.Notifier.Alert(MsgSelectNodeType)

		return ErrNodeTypeRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, models.Node{Type: nodeType, Config: config})

	return nil
}

// RemoveNode drops the pending node at index i.
func (c *Composer) RemoveNode(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.pending) {
		return fmt.Errorf("%w: index %d", ErrNodeNotFound, i)
	}

	c.pending = slices.Delete(c.pending, i, i+1)

	return nil
}

// PendingNodes returns a copy of the draft's nodes. They carry no ids until submitted.
func (c *Composer) PendingNodes() []models.Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.pending)
}

// Submit validates the draft, assigns ids and creates the flow. Validation failures
// are reported before any call to the API. On success the server's copy is stored,
// the draft is cleared and the composer returns to idle.
func (c *Composer) Submit(ctx context.Context) (*models.Flow, error) {
	c.mu.Lock()
	draft := models.Flow{Name: c.name, Nodes: slices.Clone(c.pending)}
	c.mu.Unlock()

	err := draft.Validate()
	if err != nil {
		c.ports.Notifier.Alert(validationMessage(err))

		return nil, err
	}

	draft.ID = c.gen.NewID()
	draft.Nodes = ids.AssignNodeIDs(c.gen, draft.Nodes)

	created, err := c.api.Create(ctx, draft)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error creating flow", "error", err)
		c.ports.Notifier.Alert(fmt.Sprintf("Failed to create flow: %v", err))

		return nil, err
	}

	c.flows.Append(*created)

	c.mu.Lock()
	c.name = ""
	c.pending = nil
	c.mode = ModeIdle
	c.mu.Unlock()

	return created, nil
}

// Import creates a flow from interchange bytes. Any failure, including a single
// unknown node type, aborts before the create call. The composer always ends idle.
func (c *Composer) Import(ctx context.Context, data []byte) (*models.Flow, error) {
	defer c.SetMode(ModeIdle)

	created, err := c.importFlow(ctx, data)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error importing flow", "error", err)
		c.ports.Notifier.Alert(fmt.Sprintf("%s\n%v", MsgImportFailed, err))

		return nil, err
	}

	c.flows.Append(*created)
	c.ports.Notifier.Alert(fmt.Sprintf(msgImported, created.Name))

	return created, nil
}

func (c *Composer) importFlow(ctx context.Context, data []byte) (*models.Flow, error) {
	flow, err := interchange.Import(data, c.gen)
	if err != nil {
		return nil, err
	}

	// imported documents skip the create form checks
	return c.api.Create(ctx, *flow)
}
