package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	appctx "shoppos/internal/core/context"
	"shoppos/internal/infrastructure/storage/postgres"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AppError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("product", "abc"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, apperror.CodeNotFound, body.Code)
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

type staticValidator struct {
	user *appctx.UserContext
}

func (v staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.user, nil
}

func TestAuthAndPermission(t *testing.T) {
	cashier := &appctx.UserContext{UserID: "u1", Role: "cashier", Permissions: []string{"bill:create"}}

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/bills", Auth(staticValidator{user: cashier}), RequirePermission("bill:create"), func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
	})
	r.GET("/users", Auth(staticValidator{user: cashier}), RequirePermission("user:manage"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/bills", "", http.StatusUnauthorized},
		{"wrong scheme", "/bills", "Basic good", http.StatusUnauthorized},
		{"bad token", "/bills", "Bearer nope", http.StatusUnauthorized},
		{"allowed", "/bills", "Bearer good", http.StatusOK},
		{"forbidden", "/users", "Bearer good", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestOptionalAuth_PassesAnonymous(t *testing.T) {
	r := gin.New()
	r.POST("/auth/register", OptionalAuth(staticValidator{}), func(c *gin.Context) {
		if appctx.GetUser(c.Request.Context()) == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "user")
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/auth/register", nil))
	assert.Equal(t, "anonymous", w.Body.String())
}

type memIdempotency struct {
	replays  map[string]*postgres.IdempotencyReplay
	released []string
	failed   []string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{replays: map[string]*postgres.IdempotencyReplay{}}
}

func (m *memIdempotency) AcquireKey(_ context.Context, key, _, _, _ string) (*postgres.IdempotencyReplay, error) {
	return m.replays[key], nil
}

func (m *memIdempotency) CompleteKey(_ context.Context, key string, status int, ct string, response any) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	m.replays[key] = &postgres.IdempotencyReplay{StatusCode: status, ContentType: ct, Body: data}
	return nil
}

func (m *memIdempotency) FailKey(_ context.Context, key string, _ int, _ string, _ any) error {
	m.failed = append(m.failed, key)
	return nil
}

func (m *memIdempotency) ReleaseKey(_ context.Context, key string) error {
	m.released = append(m.released, key)
	return nil
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := newMemIdempotency()
	calls := 0

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/bills", Idempotency(store), func(c *gin.Context) {
		calls++
		body := gin.H{"success": true, "data": gin.H{"bill_number": "INV-000001"}}
		CompleteIdempotency(c, http.StatusCreated, "application/json", body)
		c.JSON(http.StatusCreated, body)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(`{"items":[]}`))
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		return serve(r, req)
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_SettlesFailures(t *testing.T) {
	store := newMemIdempotency()

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/client", Idempotency(store), func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("bad"))
	})
	r.POST("/server", Idempotency(store), func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	for _, path := range []string{"/client", "/server"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, path)
		serve(r, req)
	}

	assert.Equal(t, []string{"/client"}, store.failed)
	assert.Equal(t, []string{"/server"}, store.released)
}

func TestIdempotency_IgnoresRequestsWithoutKey(t *testing.T) {
	store := newMemIdempotency()
	calls := 0

	r := gin.New()
	r.POST("/bills", Idempotency(store), func(c *gin.Context) {
		calls++
		CompleteIdempotency(c, http.StatusCreated, "application/json", gin.H{})
		c.Status(http.StatusCreated)
	})

	serve(r, httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(`{}`)))
	serve(r, httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(`{}`)))

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.replays)
}

func TestValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerOn(v))

	type sample struct {
		Barcode string `validate:"barcode"`
		Phone   string `validate:"omitempty,phone"`
		Type    string `validate:"movement_type"`
		Method  string `validate:"omitempty,payment_method"`
	}

	assert.NoError(t, v.Struct(sample{Barcode: "8901234567890", Phone: "+91 98765 43210", Type: "in", Method: "upi"}))
	assert.Error(t, v.Struct(sample{Barcode: "ab", Type: "in"}))
	assert.Error(t, v.Struct(sample{Barcode: "8901234567890", Phone: "call me", Type: "in"}))
	assert.Error(t, v.Struct(sample{Barcode: "8901234567890", Type: "sideways"}))
	assert.Error(t, v.Struct(sample{Barcode: "8901234567890", Type: "out", Method: "barter"}))
}

func TestRequirePermission_AnyOf(t *testing.T) {
	manager := &appctx.UserContext{UserID: "u2", Role: "manager", Permissions: []string{"report:read"}}

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/summary", Auth(staticValidator{user: manager}), RequirePermission("bill:read", "report:read"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/bills", Auth(staticValidator{user: manager}), RequirePermission("bill:read"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer good")
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, get("/summary").Code)

	w := get("/bills")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "manager", decodeError(t, w).Details["role"])
}

func TestRecovery_RendersAndReleasesKey(t *testing.T) {
	store := newMemIdempotency()

	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.POST("/bills", Idempotency(store), func(c *gin.Context) {
		panic("nil map write")
	})

	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(`{}`))
	req.Header.Set(HeaderIdempotencyKey, "k-panic")
	req.Header.Set(HeaderRequestID, "till-7-42")
	w := serve(r, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperror.CodeInternal, body.Code)
	assert.Equal(t, "till-7-42", body.Details["request_id"])
	assert.NotContains(t, w.Body.String(), "nil map")
	assert.Equal(t, []string{"k-panic"}, store.released)
}

func TestTrace_Headers(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	r.GET("/x", func(c *gin.Context) {
		tc := appctx.GetTrace(c.Request.Context())
		c.String(http.StatusOK, tc.TraceID+"|"+tc.Origin)
	})

	t.Run("traceparent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderTraceParent, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
		w := serve(r, req)
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736|http", w.Body.String())
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})

	t.Run("oversized id replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("a", 200))
		w := serve(r, req)
		assert.Len(t, w.Header().Get(HeaderRequestID), 36)
	})

	t.Run("all-zero traceparent ignored", func(t *testing.T) {
		assert.Empty(t, traceIDFromParent("00-00000000000000000000000000000000-00f067aa0ba902b7-01"))
	})
}

type expiredValidator struct{}

func (expiredValidator) ValidateToken(string) (*appctx.UserContext, error) {
	return nil, fmt.Errorf("parse token: %w", jwt.ErrTokenExpired)
}

func TestAuth_ExpiredTokenChallenge(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/bills", Auth(expiredValidator{}), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	req.Header.Set("Authorization", "bearer stale")
	w := serve(r, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token expired", decodeError(t, w).Details["reason"])
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
}
