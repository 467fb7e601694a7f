package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BradenHooton/teamup-users/internal/models"
	pkgauth "github.com/BradenHooton/teamup-users/pkg/auth"
)

func userWithPassword(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := pkgauth.HashPassword(password)
	require.NoError(t, err)
	u := existingUser()
	u.PasswordHash = hash
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	user := userWithPassword(t, "correct-horse")
	repo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "jdoe", username)
			return user, nil
		},
	}
	tokens := &MockTokenIssuer{}
	svc := NewAuthService(repo, tokens, 60*time.Minute, nil, testLogger(), testAuditLogger())

	token, err := svc.Login(context.Background(), LoginRequest{Username: " jdoe ", Password: "correct-horse"})

	require.NoError(t, err)
	assert.Equal(t, "signed.token.value", token.AccessToken)
	assert.Equal(t, models.TokenTypeBearer, token.TokenType)
	require.Len(t, tokens.Claims, 1)
	assert.Equal(t, "jdoe", tokens.Claims[0].Username)
	assert.Equal(t, "jdoe@example.com", tokens.Claims[0].Email)
	assert.Equal(t, 60*time.Minute, tokens.TTLs[0])
}

func TestAuthService_Login_Failures(t *testing.T) {
	user := userWithPassword(t, "correct-horse")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "jdoe", password: "wrong-horse"},
		{name: "unknown user", username: "ghost", password: "correct-horse"},
		{name: "empty password", username: "jdoe", password: ""},
		{name: "empty username", username: "  ", password: "correct-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockUserRepository{
				GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
					if username == "jdoe" {
						return user, nil
					}
					return nil, models.ErrNotFound
				},
			}
			tokens := &MockTokenIssuer{}
			svc := NewAuthService(repo, tokens, time.Hour, nil, testLogger(), testAuditLogger())

			token, err := svc.Login(context.Background(), LoginRequest{Username: tt.username, Password: tt.password})

			assert.Nil(t, token)
			assert.Equal(t, models.ErrUnauthorized, err)
			assert.Empty(t, tokens.Claims)
		})
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewAuthService(repo, &MockTokenIssuer{}, time.Hour, nil, testLogger(), testAuditLogger())

	_, err := svc.Login(context.Background(), LoginRequest{Username: "jdoe", Password: "whatever1"})

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestAuthService_Login_IssueError(t *testing.T) {
	user := userWithPassword(t, "correct-horse")
	repo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}
	tokens := &MockTokenIssuer{
		IssueFunc: func(claims *models.TokenClaims, ttl time.Duration) (string, error) {
			return "", errors.New("signing failed")
		},
	}
	svc := NewAuthService(repo, tokens, time.Hour, nil, testLogger(), testAuditLogger())

	_, err := svc.Login(context.Background(), LoginRequest{Username: "jdoe", Password: "correct-horse"})

	assert.Equal(t, models.ErrInternalServer, err)
}

func TestNewAuthService_PrecomputesDummyHash(t *testing.T) {
	svc := NewAuthService(&MockUserRepository{}, &MockTokenIssuer{}, time.Hour, nil, testLogger(), testAuditLogger())

	require.NotEmpty(t, svc.dummyHash, "dummy hash must exist before the first login")
	cost, err := bcrypt.Cost([]byte(svc.dummyHash))
	require.NoError(t, err)
	assert.Equal(t, pkgauth.BcryptCost, cost, "dummy comparison must cost the same as a real one")

	other := NewAuthService(&MockUserRepository{}, &MockTokenIssuer{}, time.Hour, nil, testLogger(), testAuditLogger())
	assert.NotEqual(t, svc.dummyHash, other.dummyHash)
}

func TestAuthService_Login_UnknownUserKeepsDummyHash(t *testing.T) {
	svc := NewAuthService(&MockUserRepository{}, &MockTokenIssuer{}, time.Hour, nil, testLogger(), testAuditLogger())
	before := svc.dummyHash

	_, err := svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "whatever-pass"})

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Equal(t, before, svc.dummyHash)
}
