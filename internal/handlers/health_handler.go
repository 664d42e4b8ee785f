package handlers

import (
	"kontak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness of the process and its store.
type HealthHandler struct {
	service *services.SubmissionService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *services.SubmissionService) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterRoutes registers the health route with the Fiber router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth always answers 200; database_status carries the store state.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Health(c.UserContext()))
}
