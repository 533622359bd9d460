package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	t.Parallel()

	e := echo.New()
	NewPingHandler(slog.New(slog.NewTextHandler(os.Stderr, nil))).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "zapdesk", body["service"])
	assert.NotEmpty(t, body["uptime"])
}

func TestHealthHead(t *testing.T) {
	t.Parallel()

	e := echo.New()
	NewPingHandler(slog.New(slog.NewTextHandler(os.Stderr, nil))).Register(e)

	req := httptest.NewRequest(http.MethodHead, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestValidator(t *testing.T) {
	t.Parallel()

	v := NewRequestValidator()

	type payload struct {
		Email string `validate:"required,email"`
	}

	assert.NoError(t, v.Validate(&payload{Email: "agent@example.com"}))

	err := v.Validate(&payload{Email: "not-an-email"})
	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
