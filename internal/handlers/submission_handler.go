package handlers

import (
	"log"

	"kontak/internal/middleware"
	"kontak/internal/services"
	"kontak/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// SubmissionHandler handles HTTP requests for form submissions.
type SubmissionHandler struct {
	service *services.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(service *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
	}
}

// RegisterRoutes registers the submission routes with the Fiber router.
func (h *SubmissionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/submit", h.HandleSubmit)
	router.Get("/submissions", h.HandleGetSubmissions)
}

// HandleSubmit validates and stores a new submission.
func (h *SubmissionHandler) HandleSubmit(c *fiber.Ctx) error {
	input, err := parseSubmissionInput(c)
	if err != nil {
		log.Printf("Error parsing submit request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	submission, fieldErrs, err := h.service.Submit(c.UserContext(), input, middleware.ClientIPFrom(c))
	if err != nil {
		log.Printf("Error storing submission: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save submission. Please try again later.",
		})
	}
	if len(fieldErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Thank you! Your submission has been received.",
		"id":      submission.ID,
	})
}

// HandleGetSubmissions lists the most recent submissions, newest first.
func (h *SubmissionHandler) HandleGetSubmissions(c *fiber.Ctx) error {
	submissions, err := h.service.Recent(c.UserContext())
	if err != nil {
		log.Printf("Error listing submissions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to retrieve submissions",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    submissions,
	})
}

// parseSubmissionInput reads a JSON or form-encoded body. JSON values keep
// their decoded types so the validator can reject non-text fields.
func parseSubmissionInput(c *fiber.Ctx) (validation.Input, error) {
	if c.Is("json") {
		body := map[string]interface{}{}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return validation.Input{}, err
			}
		}
		return validation.Input{
			Name:    body["name"],
			Email:   body["email"],
			Message: body["message"],
		}, nil
	}

	return validation.Input{
		Name:    formValue(c, "name"),
		Email:   formValue(c, "email"),
		Message: formValue(c, "message"),
	}, nil
}

// formValue copies the value out of the request buffer, which fasthttp reuses.
func formValue(c *fiber.Ctx, key string) interface{} {
	if v := c.FormValue(key); v != "" {
		return utils.CopyString(v)
	}
	return nil
}
