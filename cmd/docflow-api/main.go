package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/docflow/pkg/log"
	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	// a missing .env file is fine
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:                  "docflow-api",
		Usage:                 "Serve and run document flows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persistence URL (file://, postgres://, redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers, used by the kafka event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "documents-root",
				Usage:   "Directory where documents are read and written",
				Value:   "file://./documents",
				Sources: cli.EnvVars("DOCUMENTS_ROOT"),
			},
			&cli.StringFlag{
				Name:    "llm-base-url",
				Usage:   "Base URL of the OpenAI compatible API",
				Sources: cli.EnvVars("LLM_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "llm-api-key",
				Usage:   "API key of the OpenAI compatible API",
				Sources: cli.EnvVars("LLM_API_KEY", "OPENAI_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "llm-model",
				Usage:   "Model used by prompt nodes",
				Sources: cli.EnvVars("LLM_MODEL"),
			},
			&cli.StringSliceFlag{
				Name:  "schedule",
				Usage: "Run a flow on a cron schedule, as flow-id=\"*/5 * * * *\"",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file with schedules and LLM settings",
				Value:   "docflow.yaml",
				Sources: cli.EnvVars("DOCFLOW_CONFIG"),
			},
			&cli.StringFlag{
				Name:     "plugins-path",
				Usage:    "Path to the directory containing node plugins",
				Value:    "./plugins",
				Required: false,
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cmd.Run(ctx, os.Args)

	stop()

	if err != nil {
		log.WithModule("api").Error("API server failed", "error", err)
		os.Exit(1)
	}
}
