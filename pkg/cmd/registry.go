package cmd

import (
	"log/slog"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/documents/file"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/registry"
)

// NewRegistry registers the built-in nodes, then the plugins found under pluginsPath, which
// replace built-in nodes of the same type.
func NewRegistry(log *slog.Logger, pluginsPath string, docs documents.Store, model llm.Model) (*registry.Registry, error) {
	reg := registry.NewRegistry(log)
	reg.RegisterDefaultNodes(docs, model)

	if pluginsPath == "" {
		return reg, nil
	}

	if _, err := reg.LoadNodePlugins(pluginsPath); err != nil {
		return nil, err
	}

	return reg, nil
}

// NewDocuments opens the document store rooted at root.
func NewDocuments(root string) (*file.Store, error) {
	return file.NewStore(root)
}

// NewModel returns the OpenAI compatible model, or llm.Unconfigured when no API key is set.
func NewModel(cfg llm.Config, logger *slog.Logger) llm.Model {
	if cfg.APIKey == "" {
		logger.Warn("No LLM API key configured, prompt nodes will fail")

		return llm.Unconfigured{}
	}

	model, err := llm.NewOpenAI(cfg, logger)
	if err != nil {
		logger.Warn("Failed to configure LLM, prompt nodes will fail", "error", err)

		return llm.Unconfigured{}
	}

	return model
}
