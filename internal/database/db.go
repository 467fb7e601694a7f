package database

import (
	"context"
	"errors"
	"strings"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// Unique index names shared by the migrations and the Mongo schema.
const (
	UsernameIndex = "users_username_key"
	EmailIndex    = "users_email_key"
)

// MapPostgresError translates driver errors into model sentinels. Unknown
// errors are returned unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return conflictFor(pgErr.ConstraintName)
		case "22P02": // invalid_text_representation, e.g. malformed uuid
			return models.ErrNotFound
		case "23502", "23514": // not_null_violation, check_violation
			return models.ErrBadRequest
		}
	}

	return err
}

// MapMongoError is the document store counterpart of MapPostgresError.
func MapMongoError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return conflictFor(e.Message)
			}
		}
	}
	if mongo.IsDuplicateKeyError(err) {
		return conflictFor(err.Error())
	}

	return err
}

// conflictFor picks the field-specific conflict from an index name or a
// server message mentioning it.
func conflictFor(detail string) error {
	switch {
	case strings.Contains(detail, UsernameIndex):
		return models.ErrUsernameTaken
	case strings.Contains(detail, EmailIndex):
		return models.ErrEmailTaken
	default:
		return models.ErrConflict
	}
}

// WithTransaction runs fn in a transaction, committing when it returns nil.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}
