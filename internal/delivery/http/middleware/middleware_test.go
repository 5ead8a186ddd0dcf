package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"farmchain/config"
	"farmchain/internal/delivery/http/response"
	domainerrors "farmchain/internal/domain/errors"
	mockUC "farmchain/internal/mocks/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedAuth struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	auths    []recordedAuth
	requests []string
	statuses []int
}

func (r *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	r.requests = append(r.requests, method+" "+route)
	r.statuses = append(r.statuses, status)
}

func (r *fakeRecorder) RecordAuth(operation, outcome string) {
	r.auths = append(r.auths, recordedAuth{operation: operation, outcome: outcome})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewErrorMiddleware(discardLogger()).HandleHTTPError

	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi", ok: true},
		{header: "bearer abc", token: "abc", ok: true},
		{header: "Bearer   padded  ", token: "padded", ok: true},
		{header: "Bearer ", ok: false},
		{header: "Basic dXNlcjpwYXNz", ok: false},
		{header: "abc.def.ghi", ok: false},
		{header: "", ok: false},
	}

	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	gate := mockUC.NewMockAccessGate(t)
	recorder := &fakeRecorder{}
	mw := NewAuthMiddleware(gate, recorder)
	userID := uuid.New()

	gate.EXPECT().Authorize(mock.Anything, "good.token").Return(userID, nil)

	e := newTestEcho()
	e.POST("/api/products", func(c echo.Context) error {
		got, ok := UserID(c)
		require.True(t, ok)
		assert.Equal(t, userID, got)

		return c.NoContent(http.StatusCreated)
	}, mw.Authenticate)

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good.token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []recordedAuth{{operation: "gate", outcome: "success"}}, recorder.auths)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	gate := mockUC.NewMockAccessGate(t)
	recorder := &fakeRecorder{}
	mw := NewAuthMiddleware(gate, recorder)

	called := false
	e := newTestEcho()
	e.POST("/api/products", func(c echo.Context) error {
		called = true

		return c.NoContent(http.StatusCreated)
	}, mw.Authenticate)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.Equal(t, "Missing or invalid access token", body.Message)
	assert.Equal(t, "rejected", recorder.auths[0].outcome)
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	gate := mockUC.NewMockAccessGate(t)
	mw := NewAuthMiddleware(gate, &fakeRecorder{})

	gate.EXPECT().Authorize(mock.Anything, "expired.token").
		Return(uuid.Nil, domainerrors.ErrUnauthorized.WrapMessage("expired access token"))

	called := false
	e := newTestEcho()
	e.POST("/api/products", func(c echo.Context) error {
		called = true

		return nil
	}, mw.Authenticate)

	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer expired.token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing or invalid access token", decodeError(t, rec).Message)
}

func TestErrorMiddleware_AppError(t *testing.T) {
	e := newTestEcho()
	e.POST("/register", func(echo.Context) error {
		return errors.Wrap(domainerrors.ErrUsernameTaken, "failed to register user")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Username already exists", body.Message)
	assert.Equal(t, "USERNAME_TAKEN", body.Code)
	assert.Empty(t, body.Details)
}

func TestErrorMiddleware_ValidationDetails(t *testing.T) {
	e := newTestEcho()
	e.POST("/products", func(echo.Context) error {
		return domainerrors.ErrValidationFailed.WithDetails("price is required")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Invalid request", body.Message)
	assert.Equal(t, "price is required", body.Details)
}

func TestErrorMiddleware_NotFound(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeError(t, rec).Message)
}

func TestErrorMiddleware_MethodNotAllowed(t *testing.T) {
	e := newTestEcho()
	e.GET("/api/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, rec).Code)
}

func TestErrorMiddleware_HidesInternalErrors(t *testing.T) {
	e := newTestEcho()
	e.GET("/boom", func(echo.Context) error {
		return errors.New("pq: relation \"users\" does not exist")
	})
	e.GET("/db", func(echo.Context) error {
		return domainerrors.NewDatabaseExecuteError(errors.New("connection refused"), "list products")
	})

	for _, path := range []string{"/boom", "/db"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		body := decodeError(t, rec)
		assert.Equal(t, "Internal Server Error", body.Message, path)
		assert.Empty(t, body.Details, path)
		assert.NotContains(t, rec.Body.String(), "relation")
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}
}

func TestErrorMiddleware_BindErrorIsValidationFailure(t *testing.T) {
	e := newTestEcho()
	e.POST("/bind", func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "Syntax error: offset=1, error=invalid character")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bind", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.NotContains(t, body.Details, "offset")
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	e := newTestEcho()
	e.GET("/partial", func(c echo.Context) error {
		_ = c.String(http.StatusOK, "partial")

		return errors.New("late failure")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/partial", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func newTestRateLimiter(enabled bool, perMinute, burst int, now func() time.Time) *RateLimiter {
	return newRateLimiter(&config.RateLimitConfig{
		Enabled:           enabled,
		RequestsPerMinute: perMinute,
		Burst:             burst,
		CleanupInterval:   time.Minute,
	}, discardLogger(), now)
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newTestRateLimiter(true, 60, 2, func() time.Time { return now })

	e := newTestEcho()
	e.POST("/api/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, rl.Limit)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = ip + ":4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	blocked := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "1", blocked.Header().Get("Retry-After"))
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, blocked).Code)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "other clients keep their own bucket")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code, "bucket refills over time")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := newTestRateLimiter(false, 1, 1, time.Now)

	e := newTestEcho()
	e.POST("/api/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, rl.Limit)

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Zero(t, rl.ClientCount())
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newTestRateLimiter(true, 60, 5, func() time.Time { return now })

	rl.limiterFor("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.limiterFor("10.0.0.2")
	require.Equal(t, 2, rl.ClientCount())

	now = now.Add(45 * time.Second)
	rl.sweep()
	assert.Equal(t, 1, rl.ClientCount())

	rl.Stop()
	rl.Stop()
}

func TestMetricsMiddleware_RecordsFinalStatus(t *testing.T) {
	recorder := &fakeRecorder{}
	mw := NewMetricsMiddleware(recorder)

	e := newTestEcho()
	e.Use(mw.Handle)
	e.GET("/api/products", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/api/products", func(echo.Context) error { return domainerrors.ErrUnauthorized })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/products", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path", nil))

	assert.Equal(t, []string{"GET /api/products", "POST /api/products", "GET unmatched"}, recorder.requests)
	assert.Equal(t, []int{http.StatusOK, http.StatusUnauthorized, http.StatusNotFound}, recorder.statuses)
}

