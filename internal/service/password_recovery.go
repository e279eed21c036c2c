package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/data/cryptoutil"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// PasswordRecoveryServiceOptions groups dependencies for PasswordRecoveryService.
type PasswordRecoveryServiceOptions struct {
	Users  ports.UserRepository
	Tokens *TokenService
	Hasher cryptoutil.Hasher
}

// PasswordRecoveryService owns the reset-token request and new-password
// flows. It is also the path by which OAuth-created accounts gain a
// password.
type PasswordRecoveryService struct {
	users  ports.UserRepository
	tokens *TokenService
	hasher cryptoutil.Hasher
	logger *slog.Logger
}

// NewPasswordRecoveryService constructs a new PasswordRecoveryService.
func NewPasswordRecoveryService(opts PasswordRecoveryServiceOptions, logger *slog.Logger) *PasswordRecoveryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PasswordRecoveryService{
		users:  opts.Users,
		tokens: opts.Tokens,
		hasher: opts.Hasher,
		logger: logger,
	}
}

// Request issues a fresh reset token for the account and mails it,
// superseding any prior outstanding token.
func (s *PasswordRecoveryService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return apperrors.NotFound("no account for this email")
		}
		return apperrors.Wrap(err, "look up account")
	}

	_, err = s.tokens.IssueAndSend(ctx, user.Email, model.TokenTypePasswordReset)
	return err
}

// Reset validates a reset token and sets the new password. The password
// write lands before the token is deleted; an expired token stays in place
// until superseded by a fresh Request.
func (s *PasswordRecoveryService) Reset(ctx context.Context, tokenValue, newPassword string) error {
	if err := model.ValidatePassword(newPassword); err != nil {
		return apperrors.ValidationField("password", err.Error())
	}

	token, user, err := s.tokens.Validate(ctx, tokenValue, model.TokenTypePasswordReset)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(err, "hash password")
	}
	if _, err := s.users.Update(ctx, user.ID, model.UpdateUserRequest{PasswordHash: &hash}); err != nil {
		return apperrors.Wrap(err, "set new password")
	}

	if err := s.tokens.Consume(ctx, token); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}
