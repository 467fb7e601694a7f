package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/models"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// List paging bounds.
const (
	DefaultPageLimit = 5
	MaxPageLimit     = 100
)

// UserService defines the interface for user business logic
type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	ChangeUsername(ctx context.Context, id, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUserEvents(ctx context.Context, id string) (map[string]any, error)
	GetUserGroups(ctx context.Context, id string) (map[string]any, error)
	GetUserFriends(ctx context.Context, id string) (map[string]any, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// CreateUser creates a new user
//
// @Summary Create a new user
// @Accept json
// @Param request body CreateUserRequest true "Create user request"
// @Produce json
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.toModel(), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(created))
}

// ListUsers returns a filtered page of users
//
// @Summary List users
// @Param interest query string false "Interest the user must have"
// @Param location query string false "Exact location"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 5, max 100)"
// @Produce json
// @Success 200 {object} ListUsersResponse
// @Failure 400 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pkghttp.QueryInt(r, "page", 1)
	if err != nil || page < 1 {
		pkghttp.WriteBadRequest(w, "page must be a positive integer")
		return
	}
	limit, err := pkghttp.QueryInt(r, "limit", DefaultPageLimit)
	if err != nil || limit < 1 || limit > MaxPageLimit {
		pkghttp.WriteBadRequest(w, "limit must be between 1 and 100")
		return
	}

	q := r.URL.Query()
	filter := models.UserFilter{
		Interest: strings.TrimSpace(q.Get("interest")),
		Location: strings.TrimSpace(q.Get("location")),
	}

	users, err := h.service.ListUsers(r.Context(), filter, models.Page{Number: page, Limit: limit})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := &ListUsersResponse{Users: make([]*UserResponse, len(users))}
	for i, user := range users {
		response.Users[i] = userModelToResponse(user)
	}
	pkghttp.WriteJSON(w, http.StatusOK, response)
}

// GetUserByID handles GET /users/id/{id}
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.service.GetUserByID, chi.URLParam(r, "id"))
}

// GetUserByUsername handles GET /users/name/{username}
func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.service.GetUserByUsername, chi.URLParam(r, "username"))
}

// GetUserByEmail handles GET /users/email/{email}
func (h *UserHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, h.service.GetUserByEmail, chi.URLParam(r, "email"))
}

func (h *UserHandler) lookup(w http.ResponseWriter, r *http.Request, get func(context.Context, string) (*models.User, error), key string) {
	if key == "" {
		pkghttp.WriteBadRequest(w, "Lookup key is required")
		return
	}

	user, err := get(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// Me returns the user named by the bearer token.
//
// @Summary Current user
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaimsFromContext(r)
	if claims == nil || claims.Username == "" {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.service.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// UpdateProfile applies a partial update
//
// @Summary Update a user's profile
// @Param id path string true "User ID"
// @Accept json
// @Param request body UpdateProfileRequest true "Fields to change"
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{id}/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(updated))
}

// UpdateUsername changes a user's username
//
// @Summary Change username
// @Param id path string true "User ID"
// @Accept json
// @Param request body UpdateUsernameRequest true "New username"
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{id}/username [put]
func (h *UserHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req UpdateUsernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.ChangeUsername(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(req.Username))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(updated))
}

// DeleteUser deletes a user
//
// @Summary Delete a user
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// GetUserEvents handles GET /users/{id}/events
func (h *UserHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	h.projection(w, r, h.service.GetUserEvents, models.EventFields)
}

// GetUserGroups handles GET /users/{id}/groups
func (h *UserHandler) GetUserGroups(w http.ResponseWriter, r *http.Request) {
	h.projection(w, r, h.service.GetUserGroups, models.GroupFields)
}

// GetUserFriends handles GET /users/{id}/friends
func (h *UserHandler) GetUserFriends(w http.ResponseWriter, r *http.Request) {
	h.projection(w, r, h.service.GetUserFriends, models.FriendFields)
}

// projection writes the view, filling fields the record never had with [].
func (h *UserHandler) projection(w http.ResponseWriter, r *http.Request, get func(context.Context, string) (map[string]any, error), fields []string) {
	view, err := get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	for _, f := range fields {
		if v, ok := view[f]; !ok || v == nil {
			view[f] = []string{}
		}
	}
	pkghttp.WriteJSON(w, http.StatusOK, view)
}
