package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wavechat/wavechat-api/internal/data"
	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// VerificationServiceOptions groups dependencies for VerificationService.
type VerificationServiceOptions struct {
	Users  ports.UserRepository
	Tokens *TokenService
	Auth   *AuthService
}

// VerificationService owns the email-confirmation flow.
type VerificationService struct {
	users  ports.UserRepository
	tokens *TokenService
	auth   *AuthService
	logger *slog.Logger
}

// NewVerificationService constructs a new VerificationService.
func NewVerificationService(opts VerificationServiceOptions, logger *slog.Logger) *VerificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerificationService{
		users:  opts.Users,
		tokens: opts.Tokens,
		auth:   opts.Auth,
		logger: logger,
	}
}

// Request re-sends a verification link for an unverified account.
func (s *VerificationService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return apperrors.NotFound("no account for this email")
		}
		return apperrors.Wrap(err, "look up account")
	}
	if user.IsVerified {
		return apperrors.BadRequest("account is already verified")
	}
	_, err = s.tokens.IssueAndSend(ctx, user.Email, model.TokenTypeVerification)
	return err
}

// Confirm validates a verification token, marks the account verified, and
// establishes a session so verification doubles as the first sign-in. The
// mark-verified effect is applied before the token is deleted; the two
// writes are deliberately separate store calls.
func (s *VerificationService) Confirm(ctx context.Context, tokenValue string) (*domainauth.Session, error) {
	token, user, err := s.tokens.Validate(ctx, tokenValue, model.TokenTypeVerification)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified {
		verified := true
		user, err = s.users.Update(ctx, user.ID, model.UpdateUserRequest{IsVerified: &verified})
		if err != nil {
			return nil, apperrors.Wrap(err, "mark account verified")
		}
	}

	if err := s.tokens.Consume(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Info("email verified", "user_id", user.ID)
	return s.auth.EstablishSession(ctx, user)
}
