package file

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
)

// flowRecord is the on-disk representation of a flow.
type flowRecord struct {
	Flow      models.Flow `json:"flow"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// FlowRepository handles flow-related file operations. Each flow is one JSON file
// under <root>/flows.
type FlowRepository struct {
	root string
	now  func() time.Time

	mu sync.Mutex
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(root string) *FlowRepository {
	return &FlowRepository{root: root, now: time.Now}
}

func (r *FlowRepository) dir() string {
	return filepath.Join(r.root, "flows")
}

func (r *FlowRepository) path(id string) string {
	return filepath.Join(r.dir(), url.PathEscape(id)+".json")
}

// GetAll returns every flow ordered by creation time.
func (r *FlowRepository) GetAll(_ context.Context) ([]models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jsonFiles, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list flow files: %w", err)
	}

	records := make([]flowRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := r.read(filepath.Join(r.dir(), file))
		if err != nil {
			return nil, err
		}

		records = append(records, *record)
	}

	slices.SortFunc(records, func(a, b flowRecord) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), strings.Compare(a.Flow.ID, b.Flow.ID))
	})

	flows := make([]models.Flow, len(records))
	for i, record := range records {
		flows[i] = record.Flow
	}

	return flows, nil
}

// GetByID retrieves a flow by its ID from the file system.
func (r *FlowRepository) GetByID(_ context.Context, id string) (*models.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.read(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, persistence.NewFlowError("FlowByID", id, persistence.ErrFlowNotFound)
		}

		return nil, err
	}

	return &record.Flow, nil
}

// Create writes a new flow file.
func (r *FlowRepository) Create(_ context.Context, flow models.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := os.Stat(r.path(flow.ID))
	if err == nil {
		return persistence.NewFlowError("CreateFlow", flow.ID, persistence.ErrFlowAlreadyExists)
	}

	now := r.now().UTC()

	return r.write(flowRecord{Flow: flow, CreatedAt: now, UpdatedAt: now})
}

// Save overwrites an existing flow file, keeping its creation time.
func (r *FlowRepository) Save(_ context.Context, flow models.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.read(r.path(flow.ID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewFlowError("SaveFlow", flow.ID, persistence.ErrFlowNotFound)
		}

		return err
	}

	return r.write(flowRecord{Flow: flow, CreatedAt: existing.CreatedAt, UpdatedAt: r.now().UTC()})
}

// Delete removes a flow file.
func (r *FlowRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return persistence.NewFlowError("DeleteFlow", id, persistence.ErrFlowNotFound)
		}

		return fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	return nil
}

func (r *FlowRepository) read(filePath string) (*flowRecord, error) {
	body, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file %s: %w", filePath, err)
	}

	var record flowRecord

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow file %s: %w", filePath, err)
	}

	return &record, nil
}

func (r *FlowRepository) write(record flowRecord) error {
	err := os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create flows directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flow %s: %w", record.Flow.ID, err)
	}

	err = os.WriteFile(r.path(record.Flow.ID), data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write flow %s: %w", record.Flow.ID, err)
	}

	return nil
}
