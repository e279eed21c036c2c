package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

const (
	verificationTokenTTL = time.Hour
	twoFactorCodeTTL     = 5 * time.Minute
)

// TokenServiceOptions groups dependencies for TokenService.
type TokenServiceOptions struct {
	Tokens ports.TokenRepository
	Users  ports.UserRepository
	Mail   ports.Mailer
}

// TokenService owns single-use token issuance and validation. Issuing a
// token supersedes any prior token for the same (email, type) pair, so at
// most one live token exists per pair.
type TokenService struct {
	tokens ports.TokenRepository
	users  ports.UserRepository
	mail   ports.Mailer
	logger *slog.Logger
}

// NewTokenService constructs a new TokenService.
func NewTokenService(opts TokenServiceOptions, logger *slog.Logger) *TokenService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenService{
		tokens: opts.Tokens,
		users:  opts.Users,
		mail:   opts.Mail,
		logger: logger,
	}
}

// Issue generates and persists a fresh token for (email, type), replacing
// any prior one. Verification and reset tokens are uuids with an hour of
// validity; two-factor codes are short-lived six-digit numbers.
func (s *TokenService) Issue(ctx context.Context, email string, typ model.TokenType) (*model.Token, error) {
	if !typ.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("invalid token type %q", typ))
	}

	value := uuid.NewString()
	ttl := verificationTokenTTL
	if typ == model.TokenTypeTwoFactor {
		code, err := sixDigitCode()
		if err != nil {
			return nil, apperrors.Wrap(err, "generate two-factor code")
		}
		value = code
		ttl = twoFactorCodeTTL
	}

	token, err := s.tokens.Replace(ctx, model.Token{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     value,
		Type:      typ,
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "issue token")
	}
	return token, nil
}

// IssueAndSend issues a token and dispatches the matching mail. Mail
// delivery is fire-and-forget; failures are logged, never propagated.
func (s *TokenService) IssueAndSend(ctx context.Context, email string, typ model.TokenType) (*model.Token, error) {
	token, err := s.Issue(ctx, email, typ)
	if err != nil {
		return nil, err
	}
	if err := s.mail.Send(ctx, mailKindFor(typ), email, token.Token); err != nil {
		s.logger.Error("token mail dispatch failed", "type", string(typ), "error", err)
	}
	return token, nil
}

// Validate resolves a presented token value and its owning user. Absent
// tokens are NotFound; expired ones BadRequest. An expired two-factor code
// is proactively replaced and re-mailed before the failure is returned.
// Expired tokens are not deleted here; they stay until superseded.
func (s *TokenService) Validate(ctx context.Context, value string, typ model.TokenType) (*model.Token, *model.User, error) {
	token, err := s.tokens.GetByValue(ctx, value, typ)
	if err != nil {
		if errors.Is(err, data.ErrTokenNotFound) {
			return nil, nil, apperrors.NotFound("token not found")
		}
		return nil, nil, apperrors.Wrap(err, "look up token")
	}

	if token.Expired(time.Now()) {
		if typ == model.TokenTypeTwoFactor {
			if _, issueErr := s.IssueAndSend(ctx, token.Email, typ); issueErr != nil {
				s.logger.Error("two-factor code replacement failed",
					"error", issueErr)
			}
			return nil, nil, apperrors.BadRequest("code expired, a new code has been sent")
		}
		return nil, nil, apperrors.BadRequest("token has expired")
	}

	user, err := s.users.GetByEmail(ctx, token.Email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, nil, apperrors.NotFound("user no longer exists")
		}
		return nil, nil, apperrors.Wrap(err, "look up token owner")
	}

	return token, user, nil
}

// Consume deletes a validated token. Called after the token's effect has
// been applied; the two calls are deliberately not one transaction.
func (s *TokenService) Consume(ctx context.Context, token *model.Token) error {
	if _, err := s.tokens.Delete(ctx, token.ID); err != nil {
		return apperrors.Wrap(err, "consume token")
	}
	return nil
}

func mailKindFor(typ model.TokenType) ports.MailKind {
	switch typ {
	case model.TokenTypePasswordReset:
		return ports.MailKindPasswordReset
	case model.TokenTypeTwoFactor:
		return ports.MailKindTwoFactor
	default:
		return ports.MailKindConfirmation
	}
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
