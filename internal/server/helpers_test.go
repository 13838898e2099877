package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fittrack/internal/config"
	"fittrack/internal/models"
	"fittrack/internal/repository"
	"fittrack/internal/session"
	"fittrack/internal/tracker"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Goal{},
		&models.GoalEntry{},
		&models.BodyPart{},
		&models.Exercise{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a Server against in-memory SQLite and miniredis,
// without the Prometheus middleware.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db := setupHandlerTestDB(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		JWTSecret:     "handler-test-secret",
		JWTTTLMinutes: 60,
		Env:           "test",
	}

	goalRepo := repository.NewGoalRepository(db)
	return &Server{
		config:          cfg,
		db:              db,
		redis:           rdb,
		sessions:        session.NewRegistry(rdb),
		userRepo:        repository.NewUserRepository(db),
		goalRepo:        goalRepo,
		catalogRepo:     repository.NewCatalogRepository(db),
		calorieTracker:  tracker.NewService(goalRepo, tracker.Calories),
		progressTracker: tracker.NewService(goalRepo, tracker.Progress),
	}
}

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	s := newTestServer(t)
	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func createUser(t *testing.T, s *Server, username, password string, role models.Role) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Age:      30,
		Role:     role,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

// loginAs issues a token and registers it as an active session, the same
// two steps the login handler performs.
func loginAs(t *testing.T, s *Server, username string, role models.Role) string {
	t.Helper()
	token, err := s.generateToken(username, role)
	require.NoError(t, err)
	require.NoError(t, s.sessions.AddToken(context.Background(), username, token))
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func parseBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func parseBodyList(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
