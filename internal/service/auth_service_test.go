package service

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/health-info-service/internal/config"
	"github.com/spec-kit/health-info-service/internal/domain"
	apperrors "github.com/spec-kit/health-info-service/pkg/util"
)

type stubUserRepo struct {
	users  []*domain.User
	nextID int
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
}

func newAuthService(repo *stubUserRepo) *AuthService {
	return NewAuthService(testConfig(), AuthDependencies{UserRepo: repo})
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestRegisterAdmin_FirstWins(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newAuthService(repo)

	admin, err := svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "a", Email: "a@x.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", admin.Role)
	}
	if admin.PasswordHash == "password1" {
		t.Fatalf("expected password to be hashed")
	}

	_, err = svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "b", Email: "b@x.com", Password: "password2",
	})
	if status := statusOf(t, err); status != http.StatusForbidden {
		t.Fatalf("expected 403 for second admin, got %d", status)
	}
}

func TestRegisterAdmin_Validation(t *testing.T) {
	cases := []RegisterInput{
		{Username: "", Email: "a@x.com", Password: "password1"},
		{Username: "a", Email: "", Password: "password1"},
		{Username: "a", Email: "a@x.com", Password: ""},
		{Username: "a", Email: "not-an-email", Password: "password1"},
		{Username: "a", Email: "a@x.com", Password: "short"},
	}
	for i, input := range cases {
		svc := newAuthService(&stubUserRepo{})
		_, err := svc.RegisterAdmin(context.Background(), input)
		if status := statusOf(t, err); status != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, status)
		}
	}
}

func TestRegisterDoctor(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newAuthService(repo)

	admin, err := svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "a", Email: "a@x.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}

	doctor, err := svc.RegisterDoctor(context.Background(), admin, RegisterInput{
		Username: "d", Email: "d@x.com", Password: "password2",
	})
	if err != nil {
		t.Fatalf("RegisterDoctor returned error: %v", err)
	}
	if doctor.Role != domain.RoleDoctor {
		t.Fatalf("expected DOCTOR role, got %s", doctor.Role)
	}

	_, err = svc.RegisterDoctor(context.Background(), admin, RegisterInput{
		Username: "d2", Email: "d@x.com", Password: "password3",
	})
	if status := statusOf(t, err); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", status)
	}
}

func TestLogin(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newAuthService(repo)

	admin, err := svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "a", Email: "a@x.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}

	user, token, _, err := svc.Login(context.Background(), "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("expected user %s, got %s", admin.ID, user.ID)
	}

	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != admin.ID {
		t.Fatalf("token carries user %s, want %s", claims.UserID, admin.ID)
	}
}

func TestLogin_FailureIsUniform(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newAuthService(repo)

	if _, err := svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "a", Email: "a@x.com", Password: "password1",
	}); err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}

	_, _, _, errWrongPassword := svc.Login(context.Background(), "a@x.com", "wrong-password")
	_, _, _, errUnknownEmail := svc.Login(context.Background(), "nobody@x.com", "password1")

	wrong := apperrors.ToDomainError(errWrongPassword)
	unknown := apperrors.ToDomainError(errUnknownEmail)
	if wrong == nil || unknown == nil {
		t.Fatalf("expected both logins to fail")
	}
	if wrong.HTTPStatus != http.StatusUnauthorized || unknown.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrong.HTTPStatus, unknown.HTTPStatus)
	}
	if wrong.Message != unknown.Message {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", wrong.Message, unknown.Message)
	}
}

func TestLogin_TrimsEmail(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newAuthService(repo)

	admin, err := svc.RegisterAdmin(context.Background(), RegisterInput{
		Username: "a", Email: "a@x.com", Password: "password1",
	})
	if err != nil {
		t.Fatalf("RegisterAdmin returned error: %v", err)
	}

	user, _, _, err := svc.Login(context.Background(), "  a@x.com  ", "password1")
	if err != nil {
		t.Fatalf("Login with surrounding whitespace returned error: %v", err)
	}
	if user.ID != admin.ID {
		t.Fatalf("expected user %s, got %s", admin.ID, user.ID)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newAuthService(&stubUserRepo{})
	if _, _, _, err := svc.Login(context.Background(), "", "password1"); statusOf(t, err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email")
	}
	if _, _, _, err := svc.Login(context.Background(), "a@x.com", ""); statusOf(t, err) != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password")
	}
}
