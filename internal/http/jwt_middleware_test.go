package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

func setupProtectedRouter(api testAPI) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(nil, service.NewAuthGuard(api.codec, api.store.Users())), func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID, "email": principal.Email})
	})
	return r
}

func TestAuthMiddleware_AllowsValidToken(t *testing.T) {
	api := setupTestAPI(t, 0)
	if err := api.store.Users().Create(context.Background(), domain.User{ID: "u1", Email: "user@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := api.codec.Issue("user@example.com", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := performAuthRequest(setupProtectedRouter(api), http.MethodGet, "/protected", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	api := setupTestAPI(t, 0)

	rec := performRequest(setupProtectedRouter(api), http.MethodGet, "/protected", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	api := setupTestAPI(t, 0)
	if err := api.store.Users().Create(context.Background(), domain.User{ID: "u1", Email: "user@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	expired, err := api.codec.Issue("user@example.com", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}
	unknown, err := api.codec.Issue("ghost@example.com", time.Now())
	if err != nil {
		t.Fatalf("issue unknown: %v", err)
	}

	cases := map[string]string{
		"garbage":      "not.a.token",
		"expired":      expired,
		"unknown user": unknown,
	}
	for name, token := range cases {
		rec := performAuthRequest(setupProtectedRouter(api), http.MethodGet, "/protected", nil, token)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if body := decodeError(t, rec); body.Code != "ACCESS_TOKEN_INVALID" {
			t.Fatalf("%s: unexpected code %q", name, body.Code)
		}
	}
}
