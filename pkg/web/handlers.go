// Package web provides the HTTP handlers of the flows API.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/docflow/pkg/registry"
	"github.com/dukex/docflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	flowService *services.Flow
	validator   *validator.Validate
	registry    *registry.Registry
}

func NewAPIHandlers(
	flowService *services.Flow,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		flowService: flowService,
		validator:   validator,
		registry:    registry,
	}
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.flowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flows)
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	flow, err := h.flowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var req CreateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	flow, err := h.flowService.Create(c.Context(), req.toFlow())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flow)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	var req UpdateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	id := c.Params("id")

	flow, err := h.flowService.Update(c.Context(), id, req.toFlow(id))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	if err := h.flowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteFlow runs the flow and answers once every node has finished.
func (h *APIHandlers) ExecuteFlow(c fiber.Ctx) error {
	response, err := h.flowService.Execute(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(response)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	factories := h.registry.GetAvailableNodes()

	types := make([]NodeTypeResponse, 0, len(factories))
	for _, f := range factories {
		types = append(types, NodeTypeResponse{
			Type:        f.Type(),
			Name:        f.Name(),
			Description: f.Description(),
			Schema:      f.Schema(),
		})
	}

	return c.JSON(types)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.flowService.HealthCheck(c.Context())
	nodeTypes := len(h.registry.GetAvailableNodes())

	status := "unhealthy"
	message := "Docflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Docflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
			"node_types": nodeTypes,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Routes registers the flow endpoints on router.
func (h *APIHandlers) Routes(router fiber.Router) {
	f := router.Group("/flows")
	f.Get("/", h.GetFlows)
	f.Post("/", h.CreateFlow)
	f.Get("/:id", h.GetFlow)
	f.Put("/:id", h.UpdateFlow)
	f.Delete("/:id", h.DeleteFlow)
	f.Post("/:id/execute", h.ExecuteFlow)

	router.Get("/node-types", h.GetNodeTypes)
	router.Get("/health", h.HealthCheck)
}
