package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/notify"
)

// UserRepository defines the interface for user data access. Both the
// Postgres and MongoDB repositories satisfy it.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error)
	UpdatePartial(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) (*models.User, error)
	ProjectedGet(ctx context.Context, id string, fields ...string) (map[string]any, error)
}

// Emitter accepts user lifecycle notifications. Implementations must not
// block on delivery.
type Emitter interface {
	Emit(ctx context.Context, event notify.Event)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(claims *models.TokenClaims, ttl time.Duration) (string, error)
}

// mapRepoError keeps errors the caller can act on and hides the rest behind
// ErrInternalServer after logging them.
func mapRepoError(logger *slog.Logger, ctx context.Context, op string, err error, attrs ...any) error {
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrBadRequest),
		errors.Is(err, models.ErrValidation):
		return err
	}
	logger.ErrorContext(ctx, "failed to "+op, append(attrs, slog.Any("error", err))...)
	return models.ErrInternalServer
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
