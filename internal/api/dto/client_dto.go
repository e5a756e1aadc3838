package dto

import (
	"time"

	"github.com/spec-kit/health-info-service/internal/domain"
)

// ClientRequest payload for client creation and full-field updates.
type ClientRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
}

// EnrollRequest payload for enrolling a client into programs.
type EnrollRequest struct {
	ClientID   string   `json:"client_id" validate:"required"`
	ProgramIDs []string `json:"program_ids" validate:"required,min=1"`
}

// EnrollmentStatusRequest payload for updating an enrollment status.
type EnrollmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// EnrollmentResponse is the public projection of an enrollment.
type EnrollmentResponse struct {
	ID         string                  `json:"id"`
	ClientID   string                  `json:"client_id"`
	ProgramID  string                  `json:"program_id"`
	Status     domain.EnrollmentStatus `json:"status"`
	EnrolledAt time.Time               `json:"enrolled_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// ClientResponse is the public projection of a client, with derived age.
type ClientResponse struct {
	ID          string               `json:"id"`
	FullName    string               `json:"full_name"`
	Phone       *string              `json:"phone,omitempty"`
	Address     *string              `json:"address,omitempty"`
	DateOfBirth string               `json:"date_of_birth"`
	Age         int                  `json:"age"`
	Gender      domain.Gender        `json:"gender"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Enrollments []EnrollmentResponse `json:"enrollments,omitempty"`
}

// EnrollResultResponse acknowledges an enrollment call.
type EnrollResultResponse struct {
	Created     int                  `json:"created"`
	Skipped     int                  `json:"skipped"`
	Enrollments []EnrollmentResponse `json:"enrollments"`
}

// NewEnrollmentResponse projects an enrollment.
func NewEnrollmentResponse(enrollment *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         enrollment.ID,
		ClientID:   enrollment.ClientID,
		ProgramID:  enrollment.ProgramID,
		Status:     enrollment.Status,
		EnrolledAt: enrollment.EnrolledAt,
		UpdatedAt:  enrollment.UpdatedAt,
	}
}

// NewEnrollmentListResponse projects a slice of enrollments.
func NewEnrollmentListResponse(enrollments []domain.Enrollment) []EnrollmentResponse {
	result := make([]EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, NewEnrollmentResponse(&enrollments[i]))
	}
	return result
}

// NewClientResponse projects a client without enrollments.
func NewClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:          client.ID,
		FullName:    client.FullName,
		Phone:       client.Phone,
		Address:     client.Address,
		DateOfBirth: client.DateOfBirth.Format("2006-01-02"),
		Age:         client.Age(time.Now()),
		Gender:      client.Gender,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}

// NewClientWithEnrollmentsResponse projects a client and its enrollments.
func NewClientWithEnrollmentsResponse(client *domain.ClientWithEnrollments) ClientResponse {
	response := NewClientResponse(&client.Client)
	response.Enrollments = NewEnrollmentListResponse(client.Enrollments)
	return response
}

// NewClientListResponse projects a slice of clients with enrollments.
func NewClientListResponse(clients []domain.ClientWithEnrollments) []ClientResponse {
	result := make([]ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, NewClientWithEnrollmentsResponse(&clients[i]))
	}
	return result
}
