package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/handlers"
	"github.com/BradenHooton/teamup-users/internal/middleware"
)

// Dependencies carries the handlers and guards the routes are built from.
// SSOHandler is nil when single sign-on is not configured.
type Dependencies struct {
	HealthHandler *handlers.HealthHandler
	UserHandler   *handlers.UserHandler
	AuthHandler   *handlers.AuthHandler
	SSOHandler    *handlers.SSOHandler
	Tokens        auth.TokenVerifier
	APIKey        string
	LoginLimit    middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, deps Dependencies) {
	router.Get("/", deps.HealthHandler.Root)
	router.Get("/health", deps.HealthHandler.Health)

	// Password login
	router.With(middleware.RateLimitByIP(deps.LoginLimit)).Post("/token", deps.AuthHandler.Token)
	router.Get("/auth/logout", deps.AuthHandler.Logout)
	router.Get("/logout-page", deps.AuthHandler.LogoutPage)

	if deps.SSOHandler != nil {
		router.Method("GET", "/auth/login", deps.SSOHandler.Login())
		router.Method("GET", "/auth/callback", deps.SSOHandler.Callback())

		router.Group(func(r chi.Router) {
			r.Use(auth.SessionCookieAuth(deps.Tokens, auth.SessionCookieName))
			r.Get("/google-sso-token", deps.SSOHandler.Token)
			r.Get("/protected", deps.SSOHandler.Token)
		})
	}

	users := deps.UserHandler
	router.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.With(auth.BearerAuth(deps.Tokens)).Get("/me", users.Me)
		r.Get("/id/{id}", users.GetUserByID)
		r.Get("/name/{username}", users.GetUserByUsername)
		r.Get("/email/{email}", users.GetUserByEmail)
		r.Get("/{id}/events", users.GetUserEvents)
		r.Get("/{id}/groups", users.GetUserGroups)
		r.Get("/{id}/friends", users.GetUserFriends)

		// Mutations require the API key when one is configured
		r.Group(func(r chi.Router) {
			r.Use(auth.APIKeyGuard(deps.APIKey))
			r.Post("/", users.CreateUser)
			r.Put("/{id}/profile", users.UpdateProfile)
			r.Put("/{id}/update", users.UpdateProfile)
			r.Put("/{id}/username", users.UpdateUsername)
			r.Delete("/{id}", users.DeleteUser)
		})
	})
}
