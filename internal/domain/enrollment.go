package domain

import "time"

// EnrollmentStatus enumerates lifecycle states for an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid reports whether the status is one of the known values.
func (s EnrollmentStatus) Valid() bool {
	return s == EnrollmentStatusActive || s == EnrollmentStatusCompleted || s == EnrollmentStatusDropped
}

// Enrollment links a client to a health program. At most one exists per
// (client, program) pair.
type Enrollment struct {
	ID         string
	ClientID   string
	ProgramID  string
	Status     EnrollmentStatus
	EnrolledAt time.Time
	UpdatedAt  time.Time
}
