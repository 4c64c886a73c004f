package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/repository"
	"blog-api/internal/service"
)

type testAPI struct {
	router *gin.Engine
	codec  *service.TokenCodec
	store  *repository.MemoryStore
}

func setupTestAPI(t *testing.T, maxPostBody int64) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := service.NewTokenCodec("secret", "HS256", time.Hour, 0)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	store := repository.NewMemoryStore()
	userSvc := service.NewUserService(zap.NewNop(), store, codec, nil)
	postSvc := service.NewPostService(zap.NewNop(), store, service.NewLRUPostListCache(16, time.Minute), nil, maxPostBody)

	r := NewRouter(zap.NewNop(), NewUserHandler(zap.NewNop(), userSvc), NewPostHandler(zap.NewNop(), postSvc), RouterDeps{
		Auth:        service.NewAuthGuard(codec, store.Users()),
		MaxPostBody: maxPostBody,
	})
	return testAPI{router: r, codec: codec, store: store}
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	return performAuthRequest(r, method, path, body, "")
}

func performAuthRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var body apiError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func signup(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/user/signup", map[string]string{
		"email":    email,
		"password": "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return resp.Token
}

func TestUserHandlerSignup_Success(t *testing.T) {
	api := setupTestAPI(t, 0)

	rec := performRequest(api.router, http.MethodPost, "/user/signup", map[string]string{
		"email":    "user@example.com",
		"password": "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.TokenType != "bearer" {
		t.Fatalf("unexpected response %+v", resp)
	}
	identity, err := api.codec.Decode(resp.Token)
	if err != nil || identity.Email != "user@example.com" {
		t.Fatalf("token does not decode to the new user: %+v %v", identity, err)
	}
}

func TestUserHandlerSignup_DuplicateEmail(t *testing.T) {
	api := setupTestAPI(t, 0)
	signup(t, api.router, "user@example.com")

	rec := performRequest(api.router, http.MethodPost, "/user/signup", map[string]string{
		"email":    "user@example.com",
		"password": "other",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "EMAIL_ALREADY_EXISTS" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestUserHandlerSignup_InvalidBody(t *testing.T) {
	api := setupTestAPI(t, 0)

	rec := performRequest(api.router, http.MethodPost, "/user/signup", map[string]string{
		"email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "INVALID_REQUEST" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestUserHandlerLogin_ReusesValidToken(t *testing.T) {
	api := setupTestAPI(t, 0)
	token := signup(t, api.router, "user@example.com")

	rec := performRequest(api.router, http.MethodPost, "/user/login", map[string]string{
		"email":    "user@example.com",
		"password": "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != token {
		t.Fatalf("expected stored token to be reused")
	}
}

func TestUserHandlerLogin_WrongCredentials(t *testing.T) {
	api := setupTestAPI(t, 0)
	signup(t, api.router, "user@example.com")

	for _, creds := range []map[string]string{
		{"email": "user@example.com", "password": "wrong"},
		{"email": "missing@example.com", "password": "s3cret"},
	} {
		rec := performRequest(api.router, http.MethodPost, "/user/login", creds)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", creds["email"], rec.Code)
		}
		if body := decodeError(t, rec); body.Code != "EMAIL_OR_PASSWORD_INCORRECT" {
			t.Fatalf("unexpected code %q", body.Code)
		}
	}
}
