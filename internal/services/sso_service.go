package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/notify"
	pkgauth "github.com/BradenHooton/teamup-users/pkg/auth"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

// SSOResult is the outcome of reconciling an external identity.
type SSOResult struct {
	Token       *models.AccessToken
	User        *models.User
	Provisioned bool
}

// SSOService maps a verified external identity onto a local account,
// provisioning one on first login.
type SSOService struct {
	repo        UserRepository
	tokens      TokenIssuer
	emitter     Emitter
	ttl         time.Duration
	maxTries    int
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	generate func() (string, error)
}

func NewSSOService(
	repo UserRepository,
	tokens TokenIssuer,
	emitter Emitter,
	ttl time.Duration,
	maxTries int,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *SSOService {
	if maxTries < 1 {
		maxTries = 1
	}
	return &SSOService{
		repo:        repo,
		tokens:      tokens,
		emitter:     emitter,
		ttl:         ttl,
		maxTries:    maxTries,
		logger:      logger,
		auditLogger: auditLogger,
		generate:    randomUsername,
	}
}

// Reconcile finds the account for identity by email, creating it when none
// exists, and issues a session token for it.
func (s *SSOService) Reconcile(ctx context.Context, identity *models.ExternalIdentity) (*SSOResult, error) {
	if identity == nil || strings.TrimSpace(identity.Email) == "" {
		return nil, models.ErrUnauthorized
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	provisioned := false
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !isNotFound(err) {
			return nil, mapRepoError(s.logger, ctx, "get user by email", err)
		}
		user, provisioned, err = s.provision(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Issue(&models.TokenClaims{Username: user.Username, Email: user.Email}, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue sso token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventSSOLogin,
		UserID:    user.ID,
		Username:  user.Username,
		Success:   true,
		Metadata:  map[string]string{"provider": identity.Provider},
	})

	return &SSOResult{
		Token:       &models.AccessToken{AccessToken: token, TokenType: models.TokenTypeBearer},
		User:        user,
		Provisioned: provisioned,
	}, nil
}

// provision creates an account for a first-time SSO login. It reports false
// when a concurrent login created the account first and that record is
// returned instead.
func (s *SSOService) provision(ctx context.Context, identity *models.ExternalIdentity, email string) (*models.User, bool, error) {
	placeholder, err := pkgauth.GeneratePlaceholderPassword()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate placeholder password", slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}
	hash, err := pkgauth.HashPassword(placeholder)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash placeholder password", slog.Any("error", err))
		return nil, false, models.ErrInternalServer
	}

	for attempt := 1; attempt <= s.maxTries; attempt++ {
		username, err := s.generate()
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to generate username", slog.Any("error", err))
			return nil, false, models.ErrInternalServer
		}

		if _, err := s.repo.GetByUsername(ctx, username); err == nil {
			continue
		} else if !isNotFound(err) {
			return nil, false, mapRepoError(s.logger, ctx, "check username", err)
		}

		user := &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			FirstName:    truncate(identity.FirstName, maxUsernameLen),
			LastName:     truncate(identity.LastName, maxUsernameLen),
		}
		user.NormalizeLists()

		created, err := s.repo.Create(ctx, user)
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "sso account provisioned",
				slog.String("user_id", created.ID),
				slog.Int("attempts", attempt))
			s.auditLogger.LogAccountAction(ctx, pkglogger.EventSSOProvision, created.ID, map[string]string{
				"provider": identity.Provider,
			})
			s.emitter.Emit(ctx, notify.UserCreated(created))
			return created, true, nil

		case errors.Is(err, models.ErrUsernameTaken):
			continue

		case errors.Is(err, models.ErrEmailTaken):
			existing, getErr := s.repo.GetByEmail(ctx, email)
			if getErr != nil {
				return nil, false, mapRepoError(s.logger, ctx, "re-read user by email", getErr)
			}
			return existing, false, nil

		default:
			return nil, false, mapRepoError(s.logger, ctx, "provision sso user", err)
		}
	}

	s.logger.ErrorContext(ctx, "sso provisioning exhausted username attempts", slog.Int("attempts", s.maxTries))
	return nil, false, models.ErrProvisioningExhausted
}
