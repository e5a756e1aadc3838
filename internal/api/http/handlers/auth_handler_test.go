package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/health-info-service/internal/api/http"
	"github.com/spec-kit/health-info-service/internal/api/http/handlers"
	"github.com/spec-kit/health-info-service/internal/auth"
	"github.com/spec-kit/health-info-service/internal/config"
	"github.com/spec-kit/health-info-service/internal/domain"
	"github.com/spec-kit/health-info-service/internal/events"
	"github.com/spec-kit/health-info-service/internal/observability"
	"github.com/spec-kit/health-info-service/internal/repository"
	"github.com/spec-kit/health-info-service/internal/service"
)

type memUserRepo struct {
	users  []*domain.User
	nextID int
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type memProgramRepo struct {
	programs []*domain.HealthProgram
	nextID   int
}

func (r *memProgramRepo) Create(_ context.Context, program *domain.HealthProgram) error {
	r.nextID++
	program.ID = "prog-" + strconv.Itoa(r.nextID)
	program.CreatedAt = time.Now()
	clone := *program
	r.programs = append(r.programs, &clone)
	return nil
}

func (r *memProgramRepo) GetByID(_ context.Context, id string) (*domain.HealthProgram, error) {
	for _, program := range r.programs {
		if program.ID == id {
			clone := *program
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memProgramRepo) GetByName(_ context.Context, name string) (*domain.HealthProgram, error) {
	for _, program := range r.programs {
		if program.Name == name {
			clone := *program
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memProgramRepo) List(_ context.Context) ([]domain.HealthProgram, error) {
	result := make([]domain.HealthProgram, 0, len(r.programs))
	for _, program := range r.programs {
		result = append(result, *program)
	}
	return result, nil
}

type memClientRepo struct {
	clients []*domain.Client
	nextID  int
}

func (r *memClientRepo) Create(_ context.Context, client *domain.Client) error {
	r.nextID++
	client.ID = "cli-" + strconv.Itoa(r.nextID)
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	clone := *client
	r.clients = append(r.clients, &clone)
	return nil
}

func (r *memClientRepo) Update(_ context.Context, client *domain.Client) error {
	for i, existing := range r.clients {
		if existing.ID == client.ID {
			clone := *client
			r.clients[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memClientRepo) GetByID(_ context.Context, id string) (*domain.Client, error) {
	for _, client := range r.clients {
		if client.ID == id {
			clone := *client
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memClientRepo) List(_ context.Context) ([]domain.Client, error) {
	result := make([]domain.Client, 0, len(r.clients))
	for _, client := range r.clients {
		result = append(result, *client)
	}
	return result, nil
}

type memEnrollmentRepo struct {
	enrollments []*domain.Enrollment
	nextID      int
}

func (r *memEnrollmentRepo) GetByID(_ context.Context, id string) (*domain.Enrollment, error) {
	for _, enrollment := range r.enrollments {
		if enrollment.ID == id {
			clone := *enrollment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memEnrollmentRepo) ListByClient(_ context.Context, clientID string) ([]domain.Enrollment, error) {
	var result []domain.Enrollment
	for _, enrollment := range r.enrollments {
		if enrollment.ClientID == clientID {
			result = append(result, *enrollment)
		}
	}
	return result, nil
}

func (r *memEnrollmentRepo) EnrollMany(_ context.Context, clientID string, programIDs []string) ([]domain.Enrollment, error) {
	var created []domain.Enrollment
	for _, programID := range programIDs {
		exists := false
		for _, enrollment := range r.enrollments {
			if enrollment.ClientID == clientID && enrollment.ProgramID == programID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.nextID++
		enrollment := &domain.Enrollment{
			ID:         "enr-" + strconv.Itoa(r.nextID),
			ClientID:   clientID,
			ProgramID:  programID,
			Status:     domain.EnrollmentStatusActive,
			EnrolledAt: time.Now(),
			UpdatedAt:  time.Now(),
		}
		r.enrollments = append(r.enrollments, enrollment)
		created = append(created, *enrollment)
	}
	return created, nil
}

func (r *memEnrollmentRepo) UpdateStatus(_ context.Context, id string, status domain.EnrollmentStatus) (*domain.Enrollment, error) {
	for _, enrollment := range r.enrollments {
		if enrollment.ID == id {
			enrollment.Status = status
			clone := *enrollment
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

var _ repository.UserRepository = (*memUserRepo)(nil)
var _ repository.ProgramRepository = (*memProgramRepo)(nil)
var _ repository.ClientRepository = (*memClientRepo)(nil)
var _ repository.EnrollmentRepository = (*memEnrollmentRepo)(nil)

func newTestApp() *fiber.App {
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}

	userRepo := &memUserRepo{}
	programRepo := &memProgramRepo{}
	clientRepo := &memClientRepo{}
	enrollmentRepo := &memEnrollmentRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	programService := service.NewProgramService(programRepo, dispatcher)
	clientService := service.NewClientService(service.ClientDependencies{
		ClientRepo:     clientRepo,
		ProgramRepo:    programRepo,
		EnrollmentRepo: enrollmentRepo,
		Dispatcher:     dispatcher,
	})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Programs:       handlers.NewProgramHandler(programService),
		Clients:        handlers.NewClientHandler(clientService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), userRepo),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return data
}

func TestFullScenario(t *testing.T) {
	app := newTestApp()

	// first admin self-registration wins
	status, _ := doJSON(t, app, http.MethodPost, "/register-admin", "", fiber.Map{
		"username": "a", "email": "a@x.com", "password": "password1",
	})
	if status != http.StatusCreated {
		t.Fatalf("register-admin: expected 201, got %d", status)
	}

	// second attempt always fails, regardless of payload
	status, _ = doJSON(t, app, http.MethodPost, "/register-admin", "", fiber.Map{
		"username": "b", "email": "b@x.com", "password": "password2",
	})
	if status != http.StatusForbidden {
		t.Fatalf("second register-admin: expected 403, got %d", status)
	}

	status, body := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email": "a@x.com", "password": "password1",
	})
	if status != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d", status)
	}
	adminToken := dataOf(t, body)["auth"].(map[string]any)["token"].(string)

	status, _ = doJSON(t, app, http.MethodPost, "/register-doctor", adminToken, fiber.Map{
		"username": "d", "email": "d@x.com", "password": "password2",
	})
	if status != http.StatusCreated {
		t.Fatalf("register-doctor: expected 201, got %d", status)
	}

	status, body = doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email": "d@x.com", "password": "password2",
	})
	if status != http.StatusOK {
		t.Fatalf("doctor login: expected 200, got %d", status)
	}
	doctorToken := dataOf(t, body)["auth"].(map[string]any)["token"].(string)

	// program and client CRUD require the DOCTOR role
	status, _ = doJSON(t, app, http.MethodPost, "/programs", adminToken, fiber.Map{"name": "TB Care"})
	if status != http.StatusForbidden {
		t.Fatalf("program create as admin: expected 403, got %d", status)
	}

	status, body = doJSON(t, app, http.MethodPost, "/programs", doctorToken, fiber.Map{"name": "TB Care"})
	if status != http.StatusCreated {
		t.Fatalf("program create: expected 201, got %d", status)
	}
	programID := dataOf(t, body)["program"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/clients", doctorToken, fiber.Map{
		"full_name":     "Jane Doe",
		"gender":        "Female",
		"phone":         "0712345678",
		"address":       "12 Clinic Road",
		"date_of_birth": "1990-05-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("client create: expected 201, got %d", status)
	}
	clientID := dataOf(t, body)["client"].(map[string]any)["id"].(string)

	status, body = doJSON(t, app, http.MethodPost, "/enroll-client", doctorToken, fiber.Map{
		"client_id":   clientID,
		"program_ids": []string{programID},
	})
	if status != http.StatusCreated {
		t.Fatalf("enroll: expected 201, got %d", status)
	}
	if created := dataOf(t, body)["created"].(float64); created != 1 {
		t.Fatalf("enroll: expected 1 created, got %v", created)
	}

	// repeat enrollment: still 201, but no duplicate row
	status, body = doJSON(t, app, http.MethodPost, "/enroll-client", doctorToken, fiber.Map{
		"client_id":   clientID,
		"program_ids": []string{programID},
	})
	if status != http.StatusCreated {
		t.Fatalf("repeat enroll: expected 201, got %d", status)
	}
	data := dataOf(t, body)
	if created := data["created"].(float64); created != 0 {
		t.Fatalf("repeat enroll: expected 0 created, got %v", created)
	}
	if enrollments := data["enrollments"].([]any); len(enrollments) != 1 {
		t.Fatalf("repeat enroll: expected 1 row, got %d", len(enrollments))
	}

	// public client lookup needs no token
	status, body = doJSON(t, app, http.MethodGet, "/clients/"+clientID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("public client lookup: expected 200, got %d", status)
	}
	client := dataOf(t, body)["client"].(map[string]any)
	if client["full_name"] != "Jane Doe" {
		t.Fatalf("unexpected client payload: %v", client)
	}
	if _, leaked := client["password_hash"]; leaked {
		t.Fatalf("projection must not carry a password digest")
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app := newTestApp()

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/register-doctor"},
		{http.MethodPost, "/programs"},
		{http.MethodGet, "/programs"},
		{http.MethodPost, "/clients"},
		{http.MethodGet, "/clients"},
		{http.MethodPost, "/enroll-client"},
	} {
		status, _ := doJSON(t, app, route.method, route.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, status)
		}
	}
}

func TestHomeBanner(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(raw) != "<h1>Welcome to Health Information System(HIS) API</h1>" {
		t.Fatalf("unexpected banner: %q", raw)
	}
}

func TestListEndpointsReturnNotFoundWhenEmpty(t *testing.T) {
	app := newTestApp()

	doJSON(t, app, http.MethodPost, "/register-admin", "", fiber.Map{
		"username": "a", "email": "a@x.com", "password": "password1",
	})
	_, body := doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email": "a@x.com", "password": "password1",
	})
	adminToken := dataOf(t, body)["auth"].(map[string]any)["token"].(string)
	doJSON(t, app, http.MethodPost, "/register-doctor", adminToken, fiber.Map{
		"username": "d", "email": "d@x.com", "password": "password2",
	})
	_, body = doJSON(t, app, http.MethodPost, "/login", "", fiber.Map{
		"email": "d@x.com", "password": "password2",
	})
	doctorToken := dataOf(t, body)["auth"].(map[string]any)["token"].(string)

	status, _ := doJSON(t, app, http.MethodGet, "/programs", doctorToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("empty programs: expected 404, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/clients", doctorToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("empty clients: expected 404, got %d", status)
	}
}
