package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimsEcho writes the username found in the request context.
var claimsEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims := GetClaimsFromContext(r)
	if claims == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(claims.Username))
})

func issue(t *testing.T, tm *TokenManager, ttl time.Duration) string {
	t.Helper()
	token, err := tm.Issue(&models.TokenClaims{Username: "jdoe", Email: "jdoe@example.com"}, ttl)
	require.NoError(t, err)
	return token
}

func TestBearerAuth(t *testing.T) {
	tm := NewTokenManager(testSecret)
	valid := issue(t, tm, time.Hour)

	expiredTM := NewTokenManager(testSecret)
	expiredTM.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired := issue(t, expiredTM, time.Hour)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantBody    string
		wantMessage string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "jdoe"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantBody: "jdoe"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: "Not authenticated"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid authorization header format"},
		{name: "no token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid authorization header format"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized, wantMessage: "Could not validate credentials"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMessage: "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			BearerAuth(tm)(claimsEcho).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantMessage != "" {
				var resp pkghttp.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMessage, resp.Message)
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestSessionCookieAuth(t *testing.T) {
	tm := NewTokenManager(testSecret)
	handler := SessionCookieAuth(tm, SessionCookieName)(claimsEcho)

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/google-sso-token", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issue(t, tm, time.Hour)})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "jdoe", w.Body.String())
	})

	t.Run("missing cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/google-sso-token", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header is not enough", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/google-sso-token", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tm, time.Hour))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/google-sso-token", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetClaimsFromContext_Missing(t *testing.T) {
	assert.Nil(t, GetClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestAPIKeyGuard(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("disabled when key empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		APIKeyGuard("")(ok).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("matching key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.Header.Set(APIKeyHeader, "s3cret")
		w := httptest.NewRecorder()

		APIKeyGuard("s3cret")(ok).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		req.Header.Set(APIKeyHeader, "guess")
		w := httptest.NewRecorder()

		APIKeyGuard("s3cret")(ok).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
	})

	t.Run("missing key", func(t *testing.T) {
		w := httptest.NewRecorder()
		APIKeyGuard("s3cret")(ok).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSessionCookieHelpers(t *testing.T) {
	config := CookieConfig{Domain: "example.com", Secure: true, SameSite: "lax"}

	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok", time.Hour, config)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	ClearSessionCookie(w, config)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
