package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/teamup-users/internal/database"
	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository stores each user as a JSONB document in the users
// table. Uniqueness of username and email is enforced by expression indexes.
type PostgresUserRepository struct {
	db      *database.DB
	pool    *pgxpool.Pool
	timeout time.Duration
	logger  *slog.Logger
}

func NewPostgresUserRepository(db *database.DB, timeout time.Duration, logger *slog.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, pool: db.Pool, timeout: timeout, logger: logger}
}

const userColumns = `id::text, doc, created_at, updated_at`

// rowScanner interface for scanning user rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var (
		id                   string
		doc                  userDocument
		createdAt, updatedAt time.Time
	)
	if err := scanner.Scan(&id, &doc, &createdAt, &updatedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return doc.toUser(id, createdAt, updatedAt), nil
}

func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return users, nil
}

// EnsureSchema applies pending migrations.
func (r *PostgresUserRepository) EnsureSchema(ctx context.Context) error {
	return database.Migrate(ctx, r.pool, r.logger)
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := newUserDocument(user)

	now := time.Now().UTC()
	query := `
		INSERT INTO users (id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING ` + userColumns

	var created *models.User
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		// Pre-checks give a field-specific conflict; the unique indexes close the race.
		if err := checkFree(ctx, tx, `doc->>'username' = $1`, doc.Username, models.ErrUsernameTaken); err != nil {
			return err
		}
		if err := checkFree(ctx, tx, `lower(doc->>'email') = $1`, normalizeEmail(doc.Email), models.ErrEmailTaken); err != nil {
			return err
		}

		var err error
		created, err = scanUserRow(tx.QueryRow(ctx, query, uuid.New().String(), doc, now))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func checkFree(ctx context.Context, q querier, predicate, value string, taken error) error {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE ` + predicate + `)`
	if err := q.QueryRow(ctx, query, value).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check uniqueness: %w", database.MapPostgresError(err))
	}
	if exists {
		return taken
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `doc->>'username' = $1`, username)
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `lower(doc->>'email') = $1`, normalizeEmail(email))
}

func (r *PostgresUserRepository) getOne(ctx context.Context, predicate string, arg any) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + predicate
	return scanUserRow(r.pool.QueryRow(ctx, query, arg))
}

func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1::text = '' OR doc->'interests' @> jsonb_build_array($1::text))
		  AND ($2::text = '' OR doc->>'location' = $2::text)
		ORDER BY seq
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, filter.Interest, filter.Location, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return scanUserRows(rows)
}

// UpdatePartial merges the set fields of patch into the stored document.
func (r *PostgresUserRepository) UpdatePartial(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	fields, err := json.Marshal(patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users
		SET doc = doc || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, id, fields))
}

// Delete removes the user and returns the record as it was.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

// ProjectedGet returns only the named fields. The projection runs in the
// database so credentials never leave it.
func (r *PostgresUserRepository) ProjectedGet(ctx context.Context, id string, fields ...string) (map[string]any, error) {
	if err := validateProjection(fields); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COALESCE(
			(SELECT jsonb_object_agg(key, value) FROM jsonb_each(doc) WHERE key = ANY($2)),
			'{}'::jsonb)
		FROM users WHERE id = $1
	`

	var raw []byte
	if err := r.pool.QueryRow(ctx, query, id, fields).Scan(&raw); err != nil {
		return nil, database.MapPostgresError(err)
	}

	var doc userDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode projection: %w", err)
	}
	return projectUser(doc.toUser(id, time.Time{}, time.Time{}), fields), nil
}
