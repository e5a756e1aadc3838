package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-info-service/internal/api/dto"
	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/service"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

// ProgramHandler exposes health program endpoints.
type ProgramHandler struct {
	programs *service.ProgramService
}

// NewProgramHandler constructs handler.
func NewProgramHandler(programService *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programs: programService}
}

// Create handles POST /programs.
func (h *ProgramHandler) Create(c *fiber.Ctx) error {
	var req dto.ProgramCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	program, err := h.programs.Create(c.Context(), auth.UserFromContext(c), req.Name)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"program": dto.NewProgramResponse(program)},
	})
}

// List handles GET /programs.
func (h *ProgramHandler) List(c *fiber.Ctx) error {
	programs, err := h.programs.List(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{"programs": dto.NewProgramListResponse(programs)},
	})
}
