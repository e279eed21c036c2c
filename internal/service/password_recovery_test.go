package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/mocks/memory"
	"github.com/wavechat/wavechat-api/internal/ports"
)

type recoveryFixture struct {
	svc      *PasswordRecoveryService
	users    *memory.UserRepo
	tokens   *memory.TokenRepo
	tokenSvc *TokenService
	mailer   *memory.Mailer
}

func newRecoveryFixture(t *testing.T) *recoveryFixture {
	t.Helper()
	users := memory.NewUserRepo()
	tokens := memory.NewTokenRepo()
	mailer := &memory.Mailer{}
	tokenSvc := NewTokenService(TokenServiceOptions{Tokens: tokens, Users: users, Mail: mailer}, nil)
	svc := NewPasswordRecoveryService(PasswordRecoveryServiceOptions{
		Users: users, Tokens: tokenSvc, Hasher: plainHasher{},
	}, nil)
	return &recoveryFixture{svc: svc, users: users, tokens: tokens, tokenSvc: tokenSvc, mailer: mailer}
}

func TestRequestMailsResetToken(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	f.users.Seed(model.User{Email: "a@b.com", Name: "a", IsVerified: true})

	require.NoError(t, f.svc.Request(context.Background(), "a@b.com"))

	sent, ok := f.mailer.LastSend()
	require.True(t, ok)
	assert.Equal(t, ports.MailKindPasswordReset, sent.Kind)
	assert.Equal(t, 1, f.tokens.Count("a@b.com", model.TokenTypePasswordReset))
}

func TestRequestUnknownAccountIsNotFoundErr(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	err := f.svc.Request(context.Background(), "ghost@b.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResetSetsNewPasswordAndConsumesToken(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	user := f.users.Seed(model.User{Email: "a@b.com", Name: "a", IsVerified: true})
	token, err := f.tokenSvc.Issue(context.Background(), user.Email, model.TokenTypePasswordReset)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(context.Background(), token.Token, "new-password-1"))

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, updated.HasPassword())
	assert.Equal(t, "hashed:new-password-1", *updated.PasswordHash)
	assert.Zero(t, f.tokens.Count(user.Email, model.TokenTypePasswordReset))
}

func TestResetGivesPasswordlessAccountAPassword(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	user := f.users.Seed(model.User{Email: "oauth@b.com", Name: "oauth", IsVerified: true})
	token, err := f.tokenSvc.Issue(context.Background(), user.Email, model.TokenTypePasswordReset)
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(context.Background(), token.Token, "first-password"))

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasPassword())
}

func TestResetExpiredTokenIsBadRequestAndTokenStays(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	user := f.users.Seed(model.User{Email: "a@b.com", Name: "a"})
	_, err := f.tokens.Replace(context.Background(), model.Token{
		Email: user.Email, Token: "stale", Type: model.TokenTypePasswordReset,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	err = f.svc.Reset(context.Background(), "stale", "new-password-1")
	assert.True(t, apperrors.IsBadRequest(err))

	// The expired token stays until a fresh Request supersedes it.
	assert.Equal(t, 1, f.tokens.Count(user.Email, model.TokenTypePasswordReset))

	require.NoError(t, f.svc.Request(context.Background(), user.Email))
	assert.Equal(t, 1, f.tokens.Count(user.Email, model.TokenTypePasswordReset))
	_, err = f.tokens.GetByValue(context.Background(), "stale", model.TokenTypePasswordReset)
	assert.Error(t, err)
}

func TestResetWeakPasswordIsValidation(t *testing.T) {
	t.Parallel()

	f := newRecoveryFixture(t)
	err := f.svc.Reset(context.Background(), "whatever", "short")
	assert.True(t, apperrors.IsValidation(err))
}
