// Package registry maps node types to the factories that build runnable nodes.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"slices"
	"sync"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

// PluginSymbol is the exported symbol a node plugin must provide.
const PluginSymbol = "Node"

var (
	ErrNodeTypeNotRegistered = errors.New("node type not registered")
	ErrInvalidPlugin         = errors.New("invalid node plugin")
)

type Registry struct {
	logger        *slog.Logger
	nodeFactories map[models.NodeType]protocol.NodeFactory

	mu sync.RWMutex
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:        log.With("module", "registry"),
		nodeFactories: make(map[models.NodeType]protocol.NodeFactory),
	}
}

// RegisterNode adds factory, replacing any factory registered for the same type.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.nodeFactories[factory.Type()]; ok {
		r.logger.Info("Replacing node factory", "type", factory.Type().String())
	}

	r.nodeFactories[factory.Type()] = factory
}

// CreateNode builds the runnable node for a stored node definition.
func (r *Registry) CreateNode(ctx context.Context, node models.Node) (protocol.Node, error) {
	r.mu.RLock()
	factory, ok := r.nodeFactories[node.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeTypeNotRegistered, node.Type)
	}

	return factory.Create(ctx, node)
}

// GetAvailableNodes returns the registered factories ordered by node type.
func (r *Registry) GetAvailableNodes() []protocol.NodeFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make([]protocol.NodeFactory, 0, len(r.nodeFactories))
	for _, factory := range r.nodeFactories {
		factories = append(factories, factory)
	}

	slices.SortFunc(factories, func(a, b protocol.NodeFactory) int {
		return int(a.Type()) - int(b.Type())
	})

	return factories
}

// IsRegistered reports whether a factory exists for nodeType.
func (r *Registry) IsRegistered(nodeType models.NodeType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.nodeFactories[nodeType]

	return ok
}

// LoadNodePlugins registers the node factories exported by every .so file under
// pluginsPath/nodes. Plugin factories replace the built-in ones for their type.
func (r *Registry) LoadNodePlugins(pluginsPath string) ([]protocol.NodeFactory, error) {
	rootPath := filepath.Join(pluginsPath, "nodes")

	l := r.logger.With(slog.String("path", rootPath))
	l.Info("Loading plugins")

	var paths []string

	err := fs.WalkDir(os.DirFS(rootPath), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && filepath.Ext(path) == ".so" {
			paths = append(paths, path)
		}

		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list node plugins: %w", err)
	}

	factories := make([]protocol.NodeFactory, 0, len(paths))

	for _, p := range paths {
		factory, err := openPlugin(filepath.Join(rootPath, p))
		if err != nil {
			return nil, err
		}

		if !factory.Type().Valid() {
			return nil, fmt.Errorf("%w: %s declares unknown node type %d", ErrInvalidPlugin, p, factory.Type())
		}

		r.RegisterNode(factory)
		factories = append(factories, factory)

		l.Info("Loaded node plugin", slog.String("plugin", p), slog.String("type", factory.Type().String()))
	}

	return factories, nil
}

func openPlugin(path string) (protocol.NodeFactory, error) {
	plg, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlugin, err)
	}

	sym, err := plg.Lookup(PluginSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlugin, err)
	}

	switch v := sym.(type) {
	case protocol.NodeFactory:
		return v, nil
	case *protocol.NodeFactory:
		if *v != nil {
			return *v, nil
		}
	}

	return nil, fmt.Errorf("%w: %s does not export a NodeFactory", ErrInvalidPlugin, path)
}
