package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-info-service/internal/api/dto"
	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/service"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

// ClientHandler exposes client and enrollment endpoints.
type ClientHandler struct {
	clients *service.ClientService
}

// NewClientHandler constructs handler.
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clientService}
}

// Create handles POST /clients.
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	client, err := h.clients.Create(c.Context(), clientInput(req))
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"client": dto.NewClientResponse(client)},
	})
}

// Update handles PATCH /clients/:id.
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	client, err := h.clients.Update(c.Context(), c.Params("id"), clientInput(req))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"client": dto.NewClientResponse(client)},
	})
}

// List handles GET /clients.
func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := h.clients.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"clients": dto.NewClientListResponse(clients)},
	})
}

// GetByID handles GET /clients/:id. This endpoint is public.
func (h *ClientHandler) GetByID(c *fiber.Ctx) error {
	client, err := h.clients.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"client": dto.NewClientWithEnrollmentsResponse(client)},
	})
}

// Enroll handles POST /enroll-client.
func (h *ClientHandler) Enroll(c *fiber.Ctx) error {
	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	result, err := h.clients.Enroll(c.Context(), auth.UserFromContext(c), service.EnrollInput{
		ClientID:   req.ClientID,
		ProgramIDs: req.ProgramIDs,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.EnrollResultResponse{
			Created:     result.Created,
			Skipped:     result.Skipped,
			Enrollments: dto.NewEnrollmentListResponse(result.Enrollments),
		},
	})
}

// UpdateEnrollmentStatus handles PATCH /enrollments/:id.
func (h *ClientHandler) UpdateEnrollmentStatus(c *fiber.Ctx) error {
	var req dto.EnrollmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	enrollment, err := h.clients.UpdateEnrollmentStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"enrollment": dto.NewEnrollmentResponse(enrollment)},
	})
}

func clientInput(req dto.ClientRequest) service.ClientInput {
	return service.ClientInput{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Address:     req.Address,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	}
}
