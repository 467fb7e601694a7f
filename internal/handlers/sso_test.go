package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/handlers"
	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newSSOHandler(provider handlers.SSOProvider, svc handlers.SSOServiceInterface, tokens handlers.TokenIssuer) *handlers.SSOHandler {
	return handlers.NewSSOHandler(provider, svc, tokens, time.Hour, "/google-sso-token", auth.CookieConfig{SameSite: "lax"}, discardLogger())
}

func TestSSOCallback_SetsCookieAndRedirects(t *testing.T) {
	identity := &models.ExternalIdentity{Provider: "google", Subject: "1178", Email: "jane@example.com"}
	var gotClaims *models.TokenClaims
	tokens := &handlers.MockTokenIssuer{
		IssueFunc: func(claims *models.TokenClaims, ttl time.Duration) (string, error) {
			gotClaims = claims
			assert.Equal(t, time.Hour, ttl)
			return "session.token", nil
		},
	}
	h := newSSOHandler(&handlers.MockSSOProvider{Identity: identity}, &handlers.MockSSOService{}, tokens)

	w := httptest.NewRecorder()
	h.Callback().ServeHTTP(w, httptest.NewRequest("GET", "/auth/callback?code=abc&state=xyz", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/google-sso-token", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "session.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	require.NotNil(t, gotClaims)
	assert.Equal(t, identity, gotClaims.Profile)
	assert.Equal(t, "jane@example.com", gotClaims.Subject)
}

func TestSSOCallback_ProviderRejects(t *testing.T) {
	h := newSSOHandler(&handlers.MockSSOProvider{}, &handlers.MockSSOService{}, &handlers.MockTokenIssuer{})

	w := httptest.NewRecorder()
	h.Callback().ServeHTTP(w, httptest.NewRequest("GET", "/auth/callback", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestSSOLogin_Redirects(t *testing.T) {
	h := newSSOHandler(&handlers.MockSSOProvider{}, &handlers.MockSSOService{}, &handlers.MockTokenIssuer{})

	w := httptest.NewRecorder()
	h.Login().ServeHTTP(w, httptest.NewRequest("GET", "/auth/login", nil))

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSSOToken_ReturnsBearerAndUser(t *testing.T) {
	svc := &handlers.MockSSOService{
		ReconcileFunc: func(ctx context.Context, identity *models.ExternalIdentity) (*services.SSOResult, error) {
			assert.Equal(t, "jane@example.com", identity.Email)
			return &services.SSOResult{
				Token: &models.AccessToken{AccessToken: "bearer.token", TokenType: models.TokenTypeBearer},
				User:  sampleUser(),
			}, nil
		},
	}
	h := newSSOHandler(&handlers.MockSSOProvider{}, svc, &handlers.MockTokenIssuer{})

	req := handlers.WithClaimsContext(httptest.NewRequest("GET", "/google-sso-token", nil), &models.TokenClaims{
		Profile: &models.ExternalIdentity{Provider: "google", Email: "jane@example.com"},
	})
	w := httptest.NewRecorder()
	h.Token(w, req)

	var resp handlers.SSOTokenResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "bearer.token", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "jdoe", resp.User.Username)
}

func TestSSOToken_RequiresProfileClaims(t *testing.T) {
	h := newSSOHandler(&handlers.MockSSOProvider{}, &handlers.MockSSOService{}, &handlers.MockTokenIssuer{})

	// A password login token has no profile payload
	req := handlers.WithClaimsContext(httptest.NewRequest("GET", "/protected", nil), &models.TokenClaims{Username: "jdoe"})
	w := httptest.NewRecorder()
	h.Token(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestSSOToken_ProvisioningExhausted(t *testing.T) {
	svc := &handlers.MockSSOService{
		ReconcileFunc: func(ctx context.Context, identity *models.ExternalIdentity) (*services.SSOResult, error) {
			return nil, models.ErrProvisioningExhausted
		},
	}
	h := newSSOHandler(&handlers.MockSSOProvider{}, svc, &handlers.MockTokenIssuer{})

	req := handlers.WithClaimsContext(httptest.NewRequest("GET", "/google-sso-token", nil), &models.TokenClaims{
		Profile: &models.ExternalIdentity{Email: "jane@example.com"},
	})
	w := httptest.NewRecorder()
	h.Token(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}
