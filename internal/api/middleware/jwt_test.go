package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JocelynSullivan/VibeCycle/internal/model"

	"github.com/gin-gonic/gin"
)

type mockValidator struct {
	subject string
	err     error
}

func (m *mockValidator) Validate(token string) (string, error) {
	return m.subject, m.err
}

type mockFinder struct {
	user *model.User
	err  error
}

func (m *mockFinder) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.user, m.err
}

func newProtectedRouter(tokens TokenValidator, users UserFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, users), func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	r := newProtectedRouter(&mockValidator{}, &mockFinder{})

	w := doGet(r, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer header")
	}
}

func TestAuthMiddleware_NotBearer(t *testing.T) {
	r := newProtectedRouter(&mockValidator{subject: "alice"}, &mockFinder{user: &model.User{Username: "alice"}})

	w := doGet(r, "Basic dXNlcjpwdw==")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := newProtectedRouter(
		&mockValidator{err: errors.New("invalid token")},
		&mockFinder{user: &model.User{Username: "alice"}},
	)

	w := doGet(r, "Bearer bad-token")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer header")
	}
}

func TestAuthMiddleware_UserGone(t *testing.T) {
	// 令牌有效但用户已被删，照样 401
	r := newProtectedRouter(&mockValidator{subject: "alice"}, &mockFinder{user: nil})

	w := doGet(r, "Bearer good-token")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	r := newProtectedRouter(
		&mockValidator{subject: "alice"},
		&mockFinder{user: &model.User{Username: "alice"}},
	)

	w := doGet(r, "Bearer good-token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	r := newProtectedRouter(
		&mockValidator{subject: "alice"},
		&mockFinder{user: &model.User{Username: "alice"}},
	)

	w := doGet(r, "bearer good-token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for lowercase scheme, got %d", w.Code)
	}
}
