package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/data/cryptoutil"
	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users   ports.UserRepository
	Refresh *RefreshService
	Hasher  cryptoutil.Hasher
}

// UserService handles profile reads and updates. Every mutation that can
// change a session snapshot (role, nickname) goes through the refresh
// coordinator so live sessions converge.
type UserService struct {
	users   ports.UserRepository
	refresh *RefreshService
	hasher  cryptoutil.Hasher
	logger  *slog.Logger
}

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:   opts.Users,
		refresh: opts.Refresh,
		hasher:  opts.Hasher,
		logger:  logger,
	}
}

// GetByID loads one user.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Wrap(err, "load user")
	}
	return user, nil
}

// UpdateProfileInput carries self-service profile changes. Password changes
// require the current password; OAuth accounts without one use the reset
// flow instead.
type UpdateProfileInput struct {
	Name               *string `json:"name,omitempty"`
	IRCNickname        *string `json:"irc_nickname,omitempty"`
	IsTwoFactorEnabled *bool   `json:"is_two_factor_enabled,omitempty"`
	NewPassword        string  `json:"new_password,omitempty"`
	CurrentPassword    string  `json:"current_password,omitempty"`
}

// UpdateOwnProfile applies a user's changes to their own account and
// refreshes their session snapshot synchronously.
func (s *UserService) UpdateOwnProfile(ctx context.Context, sess *domainauth.Session, in UpdateProfileInput) (*model.User, error) {
	req := model.UpdateUserRequest{
		Name:               in.Name,
		IRCNickname:        in.IRCNickname,
		IsTwoFactorEnabled: in.IsTwoFactorEnabled,
	}

	if in.NewPassword != "" {
		hash, err := s.changePasswordHash(ctx, sess.User.ID, in)
		if err != nil {
			return nil, err
		}
		req.PasswordHash = &hash
	}

	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.users.Update(ctx, sess.User.ID, req)
	if err != nil {
		return nil, mapUserWriteErr(err)
	}

	if err := s.refresh.RefreshUserSession(ctx, user.ID, sess.User.ID, sess); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserProfile applies an admin's changes to another account. The
// target's live sessions are invalidated through the refresh coordinator;
// the admin's own session is refreshed synchronously when self-targeted.
func (s *UserService) UpdateUserProfile(ctx context.Context, sess *domainauth.Session, targetID string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.users.Update(ctx, targetID, req)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, mapUserWriteErr(err)
	}

	if err := s.refresh.RefreshUserSession(ctx, targetID, sess.User.ID, sess); err != nil {
		return nil, err
	}
	s.logger.Info("user profile updated by admin",
		"target_id", targetID, "actor_id", sess.User.ID)
	return user, nil
}

func (s *UserService) changePasswordHash(ctx context.Context, userID string, in UpdateProfileInput) (string, error) {
	if err := model.ValidatePassword(in.NewPassword); err != nil {
		return "", apperrors.ValidationField("new_password", err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", apperrors.Wrap(err, "load user")
	}
	if !user.HasPassword() {
		return "", apperrors.BadRequest("account has no password, use the password reset flow")
	}

	ok, err := s.hasher.Verify(*user.PasswordHash, in.CurrentPassword)
	if err != nil {
		return "", apperrors.Wrap(err, "verify password")
	}
	if !ok {
		return "", apperrors.Unauthorized("current password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return "", apperrors.Wrap(err, "hash password")
	}
	return hash, nil
}
