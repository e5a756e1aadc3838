package dto

import (
	"time"

	"github.com/spec-kit/health-info-service/internal/domain"
)

// ProgramCreateRequest payload for program creation.
type ProgramCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProgramResponse is the public projection of a health program.
type ProgramResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProgramResponse projects a program.
func NewProgramResponse(program *domain.HealthProgram) ProgramResponse {
	return ProgramResponse{
		ID:        program.ID,
		Name:      program.Name,
		CreatedBy: program.CreatedBy,
		CreatedAt: program.CreatedAt,
	}
}

// NewProgramListResponse projects a slice of programs.
func NewProgramListResponse(programs []domain.HealthProgram) []ProgramResponse {
	result := make([]ProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, NewProgramResponse(&programs[i]))
	}
	return result
}
