package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/teamup-users/internal/handlers"
)

func TestRoot(t *testing.T) {
	h := handlers.NewHealthHandler(&handlers.MockHealthChecker{}, discardLogger())

	w := httptest.NewRecorder()
	h.Root(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"online"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockHealthChecker{}, discardLogger()).Health(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handlers.NewHealthHandler(&handlers.MockHealthChecker{Err: errors.New("no reachable servers")}, discardLogger()).Health(w, httptest.NewRequest("GET", "/health", nil))
	handlers.AssertErrorResponse(t, w, http.StatusServiceUnavailable, "service_unavailable")
}
