// Package main provides the docflow API server.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukex/docflow/pkg/metrics"
	"github.com/dukex/docflow/pkg/registry"
	"github.com/dukex/docflow/pkg/services"
	"github.com/dukex/docflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	logger   *slog.Logger
	service  *services.Flow
	registry *registry.Registry
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewAPI creates the API server. m may be nil, in which case /metrics is not served.
func NewAPI(
	logger *slog.Logger,
	service *services.Flow,
	registry *registry.Registry,
	m *metrics.Metrics,
) *API {
	return &API{
		logger:   logger,
		service:  service,
		registry: registry,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.service, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Docflow API")
	})

	if a.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))
	}

	handlers.Routes(app)

	return app
}

// Start serves the API until ctx is done.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			a.logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	return app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
}
