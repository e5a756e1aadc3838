package service

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/config"
	"github.com/spec-kit/health-info-service/internal/domain"
	"github.com/spec-kit/health-info-service/internal/events"
	"github.com/spec-kit/health-info-service/internal/repository"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// AuthService coordinates account registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		dispatcher: deps.Dispatcher,
	}
}

// RegisterInput carries account registration fields.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterAdmin creates the first account with the ADMIN role. It fails
// once any account exists, so only the first self-registration wins.
func (s *AuthService) RegisterAdmin(ctx context.Context, input RegisterInput) (*domain.User, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if count > 0 {
		// the source returns 403 for this conflict; kept as-is
		return nil, apperrors.NewDomainError("CONFLICT", "admin already exists", http.StatusForbidden, nil)
	}

	return s.createUser(ctx, input, domain.RoleAdmin)
}

// RegisterDoctor creates a DOCTOR account on behalf of an admin caller.
func (s *AuthService) RegisterDoctor(ctx context.Context, caller *domain.User, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, strings.TrimSpace(input.Email)); err == nil {
		return nil, apperrors.NewConflict("email already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.NewInternalError(err)
	}
	if _, err := s.users.GetByUsername(ctx, strings.TrimSpace(input.Username)); err == nil {
		return nil, apperrors.NewConflict("username already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.NewInternalError(err)
	}

	doctor, err := s.createUser(ctx, input, domain.RoleDoctor)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil && caller != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventDoctorRegistered,
			Actor:     events.Actor{UserID: caller.ID, Role: caller.Role},
			Timestamp: time.Now(),
			Payload: events.DoctorRegisteredPayload{
				DoctorID: doctor.ID,
				Email:    doctor.Email,
			},
		})
	}
	return doctor, nil
}

// Login authenticates by email and password and issues an access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) createUser(ctx context.Context, input RegisterInput, role domain.Role) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("missing required fields", nil)
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewValidationError("malformed email", map[string]any{"email": email})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}
