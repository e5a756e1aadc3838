package events

import (
	"time"

	"github.com/spec-kit/health-info-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDoctorRegistered EventType = "doctor_registered"
	EventProgramCreated   EventType = "program_created"
	EventClientEnrolled   EventType = "client_enrolled"
)

// Actor encapsulates the acting user for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DoctorRegisteredPayload payload.
type DoctorRegisteredPayload struct {
	DoctorID string `json:"doctor_id"`
	Email    string `json:"email"`
}

// ProgramCreatedPayload payload.
type ProgramCreatedPayload struct {
	ProgramID string `json:"program_id"`
	Name      string `json:"name"`
}

// ClientEnrolledPayload payload.
type ClientEnrolledPayload struct {
	ClientID   string   `json:"client_id"`
	ProgramIDs []string `json:"program_ids"`
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
}
