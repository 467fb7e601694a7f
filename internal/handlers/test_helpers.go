package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/services"
	pkghttp "github.com/BradenHooton/teamup-users/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParams attaches chi route parameters to the request
func WithURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithClaimsContext adds token claims to the request context for testing
// authenticated endpoints
func WithClaimsContext(req *http.Request, claims *models.TokenClaims) *http.Request {
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockUserService implements UserService for testing
type MockUserService struct {
	CreateUserFunc        func(ctx context.Context, user *models.User, password string) (*models.User, error)
	GetUserByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetUserByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	ListUsersFunc         func(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error)
	UpdateProfileFunc     func(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	ChangeUsernameFunc    func(ctx context.Context, id, username string) (*models.User, error)
	DeleteUserFunc        func(ctx context.Context, id string) error
	ProjectionFunc        func(ctx context.Context, id string) (map[string]any, error)
}

func (m *MockUserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if m.CreateUserFunc == nil {
		return nil, models.ErrConflict
	}
	return m.CreateUserFunc(ctx, user, password)
}

func (m *MockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserByIDFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByIDFunc(ctx, id)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByUsernameFunc(ctx, username)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetUserByEmailFunc(ctx, email)
}

func (m *MockUserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error) {
	if m.ListUsersFunc == nil {
		return []*models.User{}, nil
	}
	return m.ListUsersFunc(ctx, filter, page)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileFunc(ctx, id, patch)
}

func (m *MockUserService) ChangeUsername(ctx context.Context, id, username string) (*models.User, error) {
	if m.ChangeUsernameFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ChangeUsernameFunc(ctx, id, username)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteUserFunc(ctx, id)
}

func (m *MockUserService) GetUserEvents(ctx context.Context, id string) (map[string]any, error) {
	return m.projection(ctx, id)
}

func (m *MockUserService) GetUserGroups(ctx context.Context, id string) (map[string]any, error) {
	return m.projection(ctx, id)
}

func (m *MockUserService) GetUserFriends(ctx context.Context, id string) (map[string]any, error) {
	return m.projection(ctx, id)
}

func (m *MockUserService) projection(ctx context.Context, id string) (map[string]any, error) {
	if m.ProjectionFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ProjectionFunc(ctx, id)
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc func(ctx context.Context, req services.LoginRequest) (*models.AccessToken, error)
}

func (m *MockAuthService) Login(ctx context.Context, req services.LoginRequest) (*models.AccessToken, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, req)
}

// MockSSOService implements SSOServiceInterface for testing
type MockSSOService struct {
	ReconcileFunc func(ctx context.Context, identity *models.ExternalIdentity) (*services.SSOResult, error)
}

func (m *MockSSOService) Reconcile(ctx context.Context, identity *models.ExternalIdentity) (*services.SSOResult, error) {
	if m.ReconcileFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ReconcileFunc(ctx, identity)
}

// MockSSOProvider hands a fixed identity to the callback without talking to
// an identity provider
type MockSSOProvider struct {
	Identity *models.ExternalIdentity
}

func (m *MockSSOProvider) LoginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://accounts.example.com/authorize", http.StatusFound)
	})
}

func (m *MockSSOProvider) CallbackHandler(onIdentity auth.IdentityCallback) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Identity == nil {
			pkghttp.WriteUnauthorized(w, "Single sign-on failed")
			return
		}
		onIdentity(w, r, m.Identity)
	})
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	IssueFunc func(claims *models.TokenClaims, ttl time.Duration) (string, error)
}

func (m *MockTokenIssuer) Issue(claims *models.TokenClaims, ttl time.Duration) (string, error) {
	if m.IssueFunc == nil {
		return "session.token", nil
	}
	return m.IssueFunc(claims, ttl)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
