package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/teamup-users/internal/auth"
	"github.com/BradenHooton/teamup-users/internal/models"
	pkgauth "github.com/BradenHooton/teamup-users/pkg/auth"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

// AuthService handles password login
type AuthService struct {
	repo        UserRepository
	tokens      TokenIssuer
	ttl         time.Duration
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	// dummyHash is compared against for unknown usernames so every failed
	// login does exactly one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates a new AuthService. timing may be nil to disable
// response padding.
func NewAuthService(
	repo UserRepository,
	tokens TokenIssuer,
	ttl time.Duration,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:        repo,
		tokens:      tokens,
		ttl:         ttl,
		timing:      timing,
		logger:      logger,
		auditLogger: auditLogger,
		dummyHash:   newDummyHash(logger),
	}
}

// fallbackDummySecret is hashed when no random placeholder can be generated.
const fallbackDummySecret = "teamup-users-unknown-account"

func newDummyHash(logger *slog.Logger) string {
	secret, err := pkgauth.GeneratePlaceholderPassword()
	if err != nil {
		logger.Warn("failed to generate dummy password, using fallback", slog.Any("error", err))
		secret = fallbackDummySecret
	}
	hash, err := pkgauth.HashPassword(secret)
	if err != nil {
		logger.Error("failed to hash dummy password", slog.Any("error", err))
		return ""
	}
	return hash
}

// LoginRequest carries the credentials and request metadata for auditing.
type LoginRequest struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// Login checks the username and password and issues a bearer token. Unknown
// users and wrong passwords fail identically with ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.AccessToken, error) {
	start := time.Now()
	username := strings.TrimSpace(req.Username)

	fail := func(userID, reason string) (*models.AccessToken, error) {
		s.logger.InfoContext(ctx, "login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventPasswordLogin,
			UserID:        userID,
			IPAddress:     req.IPAddress,
			UserAgent:     req.UserAgent,
			Success:       false,
			FailureReason: reason,
		})
		s.timing.WaitFrom(start, false)
		return nil, models.ErrUnauthorized
	}

	if username == "" || req.Password == "" {
		return fail("", "missing_credentials")
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !isNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to get user by username", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		// Spend the same bcrypt work as a real comparison
		pkgauth.VerifyPassword(s.dummyHash, req.Password)
		return fail("", "invalid_credentials")
	}

	if !pkgauth.VerifyPassword(user.PasswordHash, req.Password) {
		return fail(user.ID, "invalid_credentials")
	}

	token, err := s.tokens.Issue(&models.TokenClaims{Username: user.Username, Email: user.Email}, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventPasswordLogin,
		UserID:    user.ID,
		Username:  user.Username,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Success:   true,
	})
	s.timing.WaitFrom(start, true)

	return &models.AccessToken{AccessToken: token, TokenType: models.TokenTypeBearer}, nil
}
