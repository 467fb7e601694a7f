package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BradenHooton/teamup-users/internal/models"
	"github.com/BradenHooton/teamup-users/internal/notify"
	"github.com/BradenHooton/teamup-users/pkg/auth"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

// UserService handles user business logic
type UserService struct {
	repo        UserRepository
	emitter     Emitter
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, emitter Emitter, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		emitter:     emitter,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// CreateUser hashes password, stores the profile and emits a create event.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hash
	user.NormalizeLists()

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "create user", err)
	}

	s.logger.InfoContext(ctx, "user created", slog.String("user_id", created.ID))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserCreated, created.ID, nil)
	s.emitter.Emit(ctx, notify.UserCreated(created))
	return created, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "get user", err, slog.String("user_id", id))
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "get user by username", err)
	}
	return user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "get user by email", err,
			slog.String("email", pkglogger.SanitizedEmail(email)))
	}
	return user, nil
}

// ListUsers retrieves a filtered page of users
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter, page models.Page) ([]*models.User, error) {
	users, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "list users", err,
			slog.Int("page", page.Number), slog.Int("limit", page.Limit))
	}
	return users, nil
}

// UpdateProfile applies a partial profile update. Username changes go through
// ChangeUsername; a username in the patch is ignored. An empty patch returns
// the current record without writing.
func (s *UserService) UpdateProfile(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	patch.Username = nil

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "get user", err, slog.String("user_id", id))
	}
	if patch.IsEmpty() {
		return before, nil
	}

	updated, err := s.repo.UpdatePartial(ctx, id, patch)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "update user", err, slog.String("user_id", id))
	}

	s.logger.InfoContext(ctx, "user updated", slog.String("user_id", id))
	s.emitter.Emit(ctx, notify.UserUpdated(before, patch))
	return updated, nil
}

// ChangeUsername sets a new username after checking nobody else holds it.
func (s *UserService) ChangeUsername(ctx context.Context, id, username string) (*models.User, error) {
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "get user", err, slog.String("user_id", id))
	}
	if before.Username == username {
		return before, nil
	}

	holder, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil && holder.ID != id:
		return nil, models.ErrUsernameTaken
	case err != nil && !isNotFound(err):
		return nil, mapRepoError(s.logger, ctx, "check username", err, slog.String("user_id", id))
	}

	patch := models.UserPatch{Username: &username}
	updated, err := s.repo.UpdatePartial(ctx, id, patch)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "change username", err, slog.String("user_id", id))
	}

	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUsernameSet, id, map[string]string{
		"old_username": before.Username,
		"new_username": username,
	})
	s.emitter.Emit(ctx, notify.UserUpdated(before, patch))
	return updated, nil
}

// DeleteUser removes the user and emits a delete event carrying the removed
// record.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(s.logger, ctx, "delete user", err, slog.String("user_id", id))
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id))
	s.auditLogger.LogAccountAction(ctx, pkglogger.EventUserDeleted, id, nil)
	s.emitter.Emit(ctx, notify.UserDeleted(deleted))
	return nil
}

func (s *UserService) GetUserEvents(ctx context.Context, id string) (map[string]any, error) {
	return s.project(ctx, id, models.EventFields)
}

func (s *UserService) GetUserGroups(ctx context.Context, id string) (map[string]any, error) {
	return s.project(ctx, id, models.GroupFields)
}

func (s *UserService) GetUserFriends(ctx context.Context, id string) (map[string]any, error) {
	return s.project(ctx, id, models.FriendFields)
}

func (s *UserService) project(ctx context.Context, id string, fields []string) (map[string]any, error) {
	view, err := s.repo.ProjectedGet(ctx, id, fields...)
	if err != nil {
		return nil, mapRepoError(s.logger, ctx, "read user projection", err, slog.String("user_id", id))
	}
	return view, nil
}
