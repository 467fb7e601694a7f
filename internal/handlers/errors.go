package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/teamup-users/internal/models"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// writeServiceError maps service errors onto HTTP responses. Anything not
// recognized is reported as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUsernameTaken):
		pkghttp.WriteConflict(w, "Username already taken")
	case errors.Is(err, models.ErrEmailTaken):
		pkghttp.WriteConflict(w, "Email already registered")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "User already exists")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "User not found")
	case errors.Is(err, models.ErrValidation):
		pkghttp.WriteUnprocessable(w, err.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Could not validate credentials")
	case errors.Is(err, models.ErrProvisioningExhausted):
		pkghttp.WriteInternalError(w, "Could not provision account")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := pkghttp.DecodeJSON(w, r, dst); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if fields := ValidateRequest(dst); fields != nil {
		pkghttp.WriteValidationError(w, "Validation failed", fields)
		return false
	}
	return true
}
