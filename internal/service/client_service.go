package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/health-info-service/internal/domain"
	"github.com/spec-kit/health-info-service/internal/events"
	"github.com/spec-kit/health-info-service/internal/repository"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

const (
	fullNameMinLength = 3
	fullNameMaxLength = 120
	addressMaxLength  = 255
	dateLayout        = "2006-01-02"
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-\s]{10,15}$`)

// ClientCache caches the public client projection. A nil result with a
// nil error is a miss.
type ClientCache interface {
	Get(ctx context.Context, id string) (*domain.ClientWithEnrollments, error)
	Set(ctx context.Context, client *domain.ClientWithEnrollments) error
	Invalidate(ctx context.Context, id string) error
}

// ClientService coordinates client records and program enrollments.
type ClientService struct {
	clients     repository.ClientRepository
	programs    repository.ProgramRepository
	enrollments repository.EnrollmentRepository
	cache       ClientCache
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// ClientDependencies bundles requirements for the client service.
type ClientDependencies struct {
	ClientRepo     repository.ClientRepository
	ProgramRepo    repository.ProgramRepository
	EnrollmentRepo repository.EnrollmentRepository
	Cache          ClientCache
	Dispatcher     events.Dispatcher
}

// NewClientService builds the service.
func NewClientService(deps ClientDependencies) *ClientService {
	return &ClientService{
		clients:     deps.ClientRepo,
		programs:    deps.ProgramRepo,
		enrollments: deps.EnrollmentRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		now:         time.Now,
	}
}

// ClientInput carries client fields as submitted.
type ClientInput struct {
	FullName    string
	Phone       string
	Address     string
	DateOfBirth string
	Gender      string
}

// Create validates and persists a new client record.
func (s *ClientService) Create(ctx context.Context, input ClientInput) (*domain.Client, error) {
	client := &domain.Client{}
	if err := s.applyInput(client, input); err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return client, nil
}

// Update rewrites all client fields after full validation.
func (s *ClientService) Update(ctx context.Context, id string, input ClientInput) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("client", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.applyInput(client, input); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}
	return client, nil
}

// List returns all clients with their enrollments. An empty table is
// reported as not found, matching the upstream behavior.
func (s *ClientService) List(ctx context.Context) ([]domain.ClientWithEnrollments, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(clients) == 0 {
		return nil, apperrors.NewNotFound("clients", nil)
	}

	result := make([]domain.ClientWithEnrollments, 0, len(clients))
	for _, client := range clients {
		enrollments, err := s.enrollments.ListByClient(ctx, client.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		result = append(result, domain.ClientWithEnrollments{Client: client, Enrollments: enrollments})
	}
	return result, nil
}

// GetByID returns a single client with enrollments. This projection is
// public and served through the cache when available.
func (s *ClientService) GetByID(ctx context.Context, id string) (*domain.ClientWithEnrollments, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("client", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	enrollments, err := s.enrollments.ListByClient(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	projection := &domain.ClientWithEnrollments{Client: *client, Enrollments: enrollments}
	if s.cache != nil {
		_ = s.cache.Set(ctx, projection)
	}
	return projection, nil
}

// EnrollInput carries an enrollment request.
type EnrollInput struct {
	ClientID   string
	ProgramIDs []string
}

// EnrollResult summarizes the outcome of an enrollment call.
type EnrollResult struct {
	Created     int
	Skipped     int
	Enrollments []domain.Enrollment
}

// Enroll adds the client to each program. Every program id is resolved
// before any write, so a missing program aborts the whole call. Pairs
// already enrolled are skipped silently; the rest commit in one
// transaction.
func (s *ClientService) Enroll(ctx context.Context, caller *domain.User, input EnrollInput) (*EnrollResult, error) {
	if input.ClientID == "" || len(input.ProgramIDs) == 0 {
		return nil, apperrors.NewValidationError("client_id and program_ids are required", nil)
	}

	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("client", map[string]any{"id": input.ClientID})
		}
		return nil, apperrors.NewInternalError(err)
	}

	programIDs := dedupe(input.ProgramIDs)
	for _, programID := range programIDs {
		if _, err := s.programs.GetByID(ctx, programID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("program", map[string]any{"id": programID})
			}
			return nil, apperrors.NewInternalError(err)
		}
	}

	existing, err := s.enrollments.ListByClient(ctx, input.ClientID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	enrolled := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		enrolled[e.ProgramID] = struct{}{}
	}

	toCreate := make([]string, 0, len(programIDs))
	for _, programID := range programIDs {
		if _, ok := enrolled[programID]; ok {
			continue
		}
		toCreate = append(toCreate, programID)
	}

	var created []domain.Enrollment
	if len(toCreate) > 0 {
		created, err = s.enrollments.EnrollMany(ctx, input.ClientID, toCreate)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, input.ClientID)
	}

	result := &EnrollResult{
		Created:     len(created),
		Skipped:     len(programIDs) - len(created),
		Enrollments: append(existing, created...),
	}

	if s.dispatcher != nil && caller != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventClientEnrolled,
			Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
			Timestamp: s.now(),
			Payload: events.ClientEnrolledPayload{
				ClientID:   input.ClientID,
				ProgramIDs: programIDs,
				Created:    result.Created,
				Skipped:    result.Skipped,
			},
		})
	}
	return result, nil
}

// UpdateEnrollmentStatus swaps the enrollment status. Any allowed value
// may replace any other; no transition graph is enforced.
func (s *ClientService) UpdateEnrollmentStatus(ctx context.Context, id string, status string) (*domain.Enrollment, error) {
	next := domain.EnrollmentStatus(status)
	if !next.Valid() {
		return nil, apperrors.NewValidationError("status must be one of active, completed, dropped", nil)
	}

	enrollment, err := s.enrollments.UpdateStatus(ctx, id, next)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("enrollment", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, enrollment.ClientID)
	}
	return enrollment, nil
}

func (s *ClientService) applyInput(client *domain.Client, input ClientInput) error {
	fullName := strings.TrimSpace(input.FullName)
	if n := utf8.RuneCountInString(fullName); n < fullNameMinLength || n > fullNameMaxLength {
		return apperrors.NewValidationError("full_name must be 3-120 characters", nil)
	}

	gender := domain.Gender(input.Gender)
	if !gender.Valid() {
		return apperrors.NewValidationError("gender must be one of Male, Female, Other", nil)
	}

	dob, err := time.ParseInLocation(dateLayout, input.DateOfBirth, time.UTC)
	if err != nil {
		return apperrors.NewValidationError("date_of_birth must be a valid YYYY-MM-DD date", nil)
	}
	today := s.today()
	if !dob.Before(today) {
		return apperrors.NewValidationError("date_of_birth must be in the past", nil)
	}

	var phone *string
	if p := strings.TrimSpace(input.Phone); p != "" {
		if !phonePattern.MatchString(p) {
			return apperrors.NewValidationError("phone must be 10-15 characters of digits, +, -, ( )", nil)
		}
		phone = &p
	}

	var address *string
	if a := strings.TrimSpace(input.Address); a != "" {
		if utf8.RuneCountInString(a) > addressMaxLength {
			return apperrors.NewValidationError("address must be at most 255 characters", nil)
		}
		address = &a
	}

	client.FullName = fullName
	client.Phone = phone
	client.Address = address
	client.DateOfBirth = dob
	client.Gender = gender
	return nil
}

func (s *ClientService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
