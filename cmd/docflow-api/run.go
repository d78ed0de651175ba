package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/channels/kafka"
	"github.com/dukex/docflow/pkg/cmd"
	"github.com/dukex/docflow/pkg/config"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/log"
	"github.com/dukex/docflow/pkg/metrics"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/services"
	"github.com/dukex/docflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

const serviceName = "docflow-api"

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing docflow API")

	cfg, err := config.LoadOrDefault(command.String("config"))
	if err != nil {
		return err
	}

	tracer, shutdownTracer, err := otelhelper.NewTracer(ctx, serviceName, command.Bool("tracing"))
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}

	defer func() {
		if err := shutdownTracer(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		}
	}()

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		if err := persistence.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(
		command.String("event-bus"),
		kafka.ParseBrokers(command.String("kafka-brokers")),
		serviceName,
		logger,
	)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	m := metrics.New()
	if err := m.Subscribe(eventBus); err != nil {
		return fmt.Errorf("failed to subscribe metrics: %w", err)
	}

	if err := eventBus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to flow events: %w", err)
	}

	docs, err := cmd.NewDocuments(command.String("documents-root"))
	if err != nil {
		return fmt.Errorf("failed to open documents: %w", err)
	}

	model := cmd.NewModel(llmConfig(command, cfg.LLM), logger)

	registry, err := cmd.NewRegistry(logger, command.String("plugins-path"), docs, model)
	if err != nil {
		return fmt.Errorf("failed to load node plugins: %w", err)
	}

	executor := workflow.NewExecutor(registry, tracer, logger)
	service := services.NewFlow(persistence, executor, eventBus, logger)

	scheduler, err := newScheduler(command, cfg, service, logger)
	if err != nil {
		return err
	}

	scheduler.Start()

	defer func() {
		if err := scheduler.Stop(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "Failed to stop scheduler", "error", err)
		}
	}()

	api := NewAPI(logger, service, registry, m)

	return api.Start(ctx, command.Int("port"))
}

// llmConfig merges the LLM flags over the configuration file.
func llmConfig(command *cli.Command, file config.LLMConfig) llm.Config {
	cfg := llm.Config{
		BaseURL: file.BaseURL,
		APIKey:  file.APIKey,
		Model:   file.Model,
	}

	if file.Temperature != nil {
		cfg.Temperature = *file.Temperature
	}

	if v := command.String("llm-base-url"); v != "" {
		cfg.BaseURL = v
	}

	if v := command.String("llm-api-key"); v != "" {
		cfg.APIKey = v
	}

	if v := command.String("llm-model"); v != "" {
		cfg.Model = v
	}

	return cfg
}

func newScheduler(command *cli.Command, cfg config.File, service *services.Flow, logger *slog.Logger) (*workflow.Manager, error) {
	scheduler := workflow.NewManager(service.RunFlow, logger)

	schedules := cfg.WorkflowSchedules()

	for _, raw := range command.StringSlice("schedule") {
		s, err := workflow.ParseSchedule(raw)
		if err != nil {
			return nil, err
		}

		schedules = append(schedules, s)
	}

	for _, s := range schedules {
		if err := scheduler.Add(s); err != nil {
			return nil, fmt.Errorf("failed to schedule flow %s: %w", s.FlowID, err)
		}
	}

	return scheduler, nil
}
