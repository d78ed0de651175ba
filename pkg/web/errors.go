package web

import (
	"github.com/dukex/docflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

const (
	flowNotFoundDetail    = "Flow not found."
	flowExistsDetail      = "Flow already exists."
	executionFailedDetail = "Failed to execute flow."
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("flow_not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError maps service errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		return badRequest(c, err.Error())

	case services.IsNotFound(err):
		return notFound(c, flowNotFoundDetail)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(flowExistsDetail)

		return c.Status(fiber.StatusConflict).JSON(problem)

	case services.IsExecutionError(err):
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("execution_failed").
			WithDetail(executionFailedDetail)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)

	default:
		// unexpected errors are not exposed
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error")

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
