package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JocelynSullivan/VibeCycle/internal/model"
	"github.com/JocelynSullivan/VibeCycle/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct {
	findFunc    func(ctx context.Context, username string) (*model.User, error)
	createFunc  func(ctx context.Context, username, hashedPassword string) error
	createCalls int
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.findFunc(ctx, username)
}

func (m *mockUserStore) Create(ctx context.Context, username, hashedPassword string) error {
	m.createCalls++
	return m.createFunc(ctx, username, hashedPassword)
}

func newTestHandler(t *testing.T, users *mockUserStore) *Handler {
	t.Helper()
	tokens, err := NewService("test-secret", "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(users, tokens, logger)
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToken_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	users := &mockUserStore{
		findFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{Username: "alice", HashedPassword: string(hash)}, nil
		},
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/token", h.Token)

	w := postForm(r, "/token", url.Values{"username": {"alice"}, "password": {"pw123"}})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("expected token_type bearer, got %q", resp.TokenType)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected non-empty access_token")
	}
}

func TestToken_WrongPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.MinCost)
	users := &mockUserStore{
		findFunc: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{Username: "alice", HashedPassword: string(hash)}, nil
		},
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/token", h.Token)

	w := postForm(r, "/token", url.Values{"username": {"alice"}, "password": {"wrong"}})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Incorrect username or password")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestToken_UnknownUserSameMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserStore{
		findFunc: func(ctx context.Context, username string) (*model.User, error) { return nil, nil },
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/token", h.Token)

	w := postForm(r, "/token", url.Values{"username": {"ghost"}, "password": {"pw"}})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("Incorrect username or password")) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestToken_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserStore{
		findFunc: func(ctx context.Context, username string) (*model.User, error) { return nil, nil },
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/token", h.Token)

	w := postForm(r, "/token", url.Values{"username": {"alice"}})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRegister_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserStore{
		createFunc: func(ctx context.Context, username, hashedPassword string) error {
			if username != "alice" {
				t.Fatalf("expected username alice, got %q", username)
			}
			if hashedPassword == "pw123" {
				t.Fatalf("password must be hashed before it reaches the store")
			}
			return nil
		},
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/users", h.Register)

	payload := []byte(`{"username": "alice", "password": "pw123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if users.createCalls != 1 {
		t.Fatalf("expected create to be called once")
	}
}

func TestRegister_EmptyUsernameRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserStore{
		createFunc: func(ctx context.Context, username, hashedPassword string) error { return nil },
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/users", h.Register)

	payload := []byte(`{"username": "", "password": "pw123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if users.createCalls != 0 {
		t.Fatalf("expected no store call for invalid input")
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := &mockUserStore{
		createFunc: func(ctx context.Context, username, hashedPassword string) error {
			return store.ErrConflict
		},
	}
	h := newTestHandler(t, users)

	r := gin.New()
	r.POST("/users", h.Register)

	payload := []byte(`{"username": "alice", "password": "pw123"}`)
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
