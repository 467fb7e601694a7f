package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/services"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// SSOProvider runs the browser side of the identity provider flow.
type SSOProvider interface {
	LoginHandler() http.Handler
	CallbackHandler(onIdentity auth.IdentityCallback) http.Handler
}

// SSOServiceInterface reconciles a verified identity with a local account.
type SSOServiceInterface interface {
	Reconcile(ctx context.Context, identity *models.ExternalIdentity) (*services.SSOResult, error)
}

// TokenIssuer signs the SSO session token stored in the cookie.
type TokenIssuer interface {
	Issue(claims *models.TokenClaims, ttl time.Duration) (string, error)
}

// SSOHandler handles the Google single sign-on endpoints
type SSOHandler struct {
	provider      SSOProvider
	service       SSOServiceInterface
	tokens        TokenIssuer
	sessionTTL    time.Duration
	postLoginPath string
	cookies       auth.CookieConfig
	logger        *slog.Logger
}

// NewSSOHandler creates a new SSOHandler
func NewSSOHandler(
	provider SSOProvider,
	service SSOServiceInterface,
	tokens TokenIssuer,
	sessionTTL time.Duration,
	postLoginPath string,
	cookies auth.CookieConfig,
	logger *slog.Logger,
) *SSOHandler {
	return &SSOHandler{
		provider:      provider,
		service:       service,
		tokens:        tokens,
		sessionTTL:    sessionTTL,
		postLoginPath: postLoginPath,
		cookies:       cookies,
		logger:        logger,
	}
}

// Login redirects the browser to the provider.
func (h *SSOHandler) Login() http.Handler {
	return h.provider.LoginHandler()
}

// Callback completes the code exchange, stores the identity in a session
// token cookie and redirects to the post-login path.
func (h *SSOHandler) Callback() http.Handler {
	return h.provider.CallbackHandler(h.onIdentity)
}

func (h *SSOHandler) onIdentity(w http.ResponseWriter, r *http.Request, identity *models.ExternalIdentity) {
	claims := &models.TokenClaims{
		Email:   identity.Email,
		Profile: identity,
	}
	claims.Subject = identity.Email

	token, err := h.tokens.Issue(claims, h.sessionTTL)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue sso session token", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	auth.SetSessionCookie(w, token, h.sessionTTL, h.cookies)
	http.Redirect(w, r, h.postLoginPath, http.StatusFound)
}

// Token reconciles the identity carried by the session cookie with a local
// account and returns a bearer token for it. Served at /google-sso-token and
// /protected behind SessionCookieAuth.
//
// @Summary Exchange SSO session for a bearer token
// @Produce json
// @Success 200 {object} SSOTokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /google-sso-token [get]
func (h *SSOHandler) Token(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil || claims.Profile == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	result, err := h.service.Reconcile(r.Context(), claims.Profile)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SSOTokenResponse{
		AccessToken: result.Token.AccessToken,
		TokenType:   result.Token.TokenType,
		User:        userModelToResponse(result.User),
	})
}
