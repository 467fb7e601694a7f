package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// ProviderGoogle is recorded as ExternalIdentity.Provider.
const ProviderGoogle = "google"

// ErrEmailNotVerified is returned for ID tokens whose email the provider has
// not verified. Such identities cannot be matched to an account by email.
var ErrEmailNotVerified = fmt.Errorf("sso email not verified: %w", models.ErrUnauthorized)

// IdentityCallback receives the verified identity after a successful callback.
type IdentityCallback func(w http.ResponseWriter, r *http.Request, identity *models.ExternalIdentity)

// GoogleProviderConfig configures the OIDC relying party.
type GoogleProviderConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	HashKey      []byte // signs the state and PKCE cookies
	EncryptKey   []byte // encrypts them; 16, 24 or 32 bytes
	Secure       bool
}

// GoogleProvider runs the authorization code flow with PKCE against Google.
// ID token signature, issuer, audience, expiry and state are verified by the
// relying party before the callback sees any claims.
type GoogleProvider struct {
	rp     rp.RelyingParty
	logger *slog.Logger
}

// NewGoogleProvider discovers the issuer and builds the relying party.
func NewGoogleProvider(ctx context.Context, cfg GoogleProviderConfig, logger *slog.Logger) (*GoogleProvider, error) {
	var cookieOpts []httphelper.CookieHandlerOpt
	if !cfg.Secure {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(cfg.HashKey, cfg.EncryptKey, cookieOpts...)

	p := &GoogleProvider{logger: logger}

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithPKCE(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtOffset(5 * time.Second)),
		rp.WithErrorHandler(p.handleProviderError),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL,
		cfg.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}
	p.rp = relyingParty

	return p, nil
}

// LoginHandler redirects the browser to Google's consent screen.
func (p *GoogleProvider) LoginHandler() http.Handler {
	return rp.AuthURLHandler(newState, p.rp)
}

// CallbackHandler exchanges the authorization code, maps the verified ID token
// claims and hands the identity to onIdentity.
func (p *GoogleProvider) CallbackHandler(onIdentity IdentityCallback) http.Handler {
	callback := func(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], state string, _ rp.RelyingParty) {
		identity, err := IdentityFromClaims(tokens.IDTokenClaims)
		if err != nil {
			p.logger.WarnContext(r.Context(), "sso identity rejected", slog.Any("error", err))
			pkghttp.WriteUnauthorized(w, "Could not validate credentials")
			return
		}
		onIdentity(w, r, identity)
	}
	return rp.CodeExchangeHandler(callback, p.rp)
}

func (p *GoogleProvider) handleProviderError(w http.ResponseWriter, r *http.Request, errorType, errorDesc, _ string) {
	p.logger.WarnContext(r.Context(), "sso provider error",
		slog.String("error_type", errorType),
		slog.String("error_description", errorDesc))
	pkghttp.WriteUnauthorized(w, "Single sign-on failed")
}

// IdentityFromClaims maps verified ID token claims to an ExternalIdentity.
func IdentityFromClaims(claims *oidc.IDTokenClaims) (*models.ExternalIdentity, error) {
	if claims == nil {
		return nil, errors.New("missing id token claims")
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, fmt.Errorf("id token has no email: %w", models.ErrUnauthorized)
	}
	if !bool(claims.EmailVerified) {
		return nil, ErrEmailNotVerified
	}

	return &models.ExternalIdentity{
		Provider:    ProviderGoogle,
		Subject:     claims.Subject,
		Email:       email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		DisplayName: claims.Name,
	}, nil
}

func newState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
