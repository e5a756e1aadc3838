package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/health-info-service/internal/domain"
	"github.com/spec-kit/health-info-service/internal/events"
	"github.com/spec-kit/health-info-service/internal/repository"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

// ProgramService coordinates health program workflows.
type ProgramService struct {
	programs   repository.ProgramRepository
	dispatcher events.Dispatcher
}

// NewProgramService builds the service.
func NewProgramService(programs repository.ProgramRepository, dispatcher events.Dispatcher) *ProgramService {
	return &ProgramService{programs: programs, dispatcher: dispatcher}
}

// Create registers a new health program owned by the calling doctor.
func (s *ProgramService) Create(ctx context.Context, caller *domain.User, name string) (*domain.HealthProgram, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("program name is required", nil)
	}

	if _, err := s.programs.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("program already exists", map[string]any{"name": name})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.NewInternalError(err)
	}

	program := &domain.HealthProgram{
		Name:      name,
		CreatedBy: caller.ID,
	}
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventProgramCreated,
			Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
			Timestamp: time.Now(),
			Payload: events.ProgramCreatedPayload{
				ProgramID: program.ID,
				Name:      program.Name,
			},
		})
	}
	return program, nil
}

// List returns all programs. An empty table is reported as not found,
// matching the upstream behavior.
func (s *ProgramService) List(ctx context.Context) ([]domain.HealthProgram, error) {
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(programs) == 0 {
		return nil, apperrors.NewNotFound("programs", nil)
	}
	return programs, nil
}
