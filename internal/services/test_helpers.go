package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/notify"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	ListFunc          func(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error)
	UpdatePartialFunc func(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteFunc        func(ctx context.Context, id string) (*models.User, error)
	ProjectedGetFunc  func(ctx context.Context, id string, fields ...string) (map[string]any, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, page)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) UpdatePartial(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if m.UpdatePartialFunc != nil {
		return m.UpdatePartialFunc(ctx, id, patch)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ProjectedGet(ctx context.Context, id string, fields ...string) (map[string]any, error) {
	if m.ProjectedGetFunc != nil {
		return m.ProjectedGetFunc(ctx, id, fields...)
	}
	return nil, models.ErrNotFound
}

// MockEmitter records emitted events
type MockEmitter struct {
	mu     sync.Mutex
	Events []notify.Event
}

func (m *MockEmitter) Emit(ctx context.Context, event notify.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// MockTokenIssuer returns a fixed token and records the claims it was given
type MockTokenIssuer struct {
	IssueFunc func(claims *models.TokenClaims, ttl time.Duration) (string, error)
	Claims    []*models.TokenClaims
	TTLs      []time.Duration
}

func (m *MockTokenIssuer) Issue(claims *models.TokenClaims, ttl time.Duration) (string, error) {
	m.Claims = append(m.Claims, claims)
	m.TTLs = append(m.TTLs, ttl)
	if m.IssueFunc != nil {
		return m.IssueFunc(claims, ttl)
	}
	return "signed.token.value", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}
