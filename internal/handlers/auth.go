package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/services"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

// AuthServiceInterface defines password login
type AuthServiceInterface interface {
	Login(ctx context.Context, req services.LoginRequest) (*models.AccessToken, error)
}

// AuthHandler handles password login and logout requests
type AuthHandler struct {
	service     AuthServiceInterface
	ipConfig    *pkghttp.IPConfig
	cookies     auth.CookieConfig
	auditLogger *pkglogger.AuditLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookies auth.CookieConfig, auditLogger *pkglogger.AuditLogger) *AuthHandler {
	return &AuthHandler{
		service:     service,
		ipConfig:    ipConfig,
		cookies:     cookies,
		auditLogger: auditLogger,
	}
}

// Token handles password login
// @Summary Password login
// @Accept x-www-form-urlencoded
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Produce json
// @Success 200 {object} models.AccessToken
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, pkghttp.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid form body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		pkghttp.WriteBadRequest(w, "username and password are required")
		return
	}

	token, err := h.service.Login(r.Context(), services.LoginRequest{
		Username:  username,
		Password:  password,
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: pkghttp.UserAgent(r),
	})
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			// Same response whichever credential was wrong
			w.Header().Set("WWW-Authenticate", "Bearer")
			pkghttp.WriteUnauthorized(w, "Incorrect username or password")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, token)
}

// Logout clears the session cookie and redirects to the logout page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auditLogger != nil {
		h.auditLogger.LogAuthAttempt(r.Context(), pkglogger.AuditEvent{
			EventType: pkglogger.EventLogout,
			IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
			UserAgent: pkghttp.UserAgent(r),
			Success:   true,
		})
	}
	auth.ClearSessionCookie(w, h.cookies)
	http.Redirect(w, r, "/logout-page", http.StatusFound)
}

// LogoutPage confirms the logout. It clears the cookie as well so it can be
// linked to directly.
func (h *AuthHandler) LogoutPage(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Status: "Logout success"})
}
