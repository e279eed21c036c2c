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
)

type verificationFixture struct {
	svc      *VerificationService
	users    *memory.UserRepo
	tokens   *memory.TokenRepo
	tokenSvc *TokenService
	sessions *memory.SessionStore
	mailer   *memory.Mailer
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	users := memory.NewUserRepo()
	tokens := memory.NewTokenRepo()
	sessions := memory.NewSessionStore()
	mailer := &memory.Mailer{}

	tokenSvc := NewTokenService(TokenServiceOptions{Tokens: tokens, Users: users, Mail: mailer}, nil)
	authSvc := NewAuthService(AuthServiceOptions{
		Users: users, Sessions: sessions, Tokens: tokenSvc,
		Hasher: plainHasher{}, SessionLifetime: time.Hour,
	}, nil)
	svc := NewVerificationService(VerificationServiceOptions{
		Users: users, Tokens: tokenSvc, Auth: authSvc,
	}, nil)

	return &verificationFixture{svc: svc, users: users, tokens: tokens, tokenSvc: tokenSvc, sessions: sessions, mailer: mailer}
}

func TestConfirmMarksVerifiedAndSignsIn(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	user := f.users.Seed(model.User{Email: "a@b.com", Name: "a"})
	token, err := f.tokenSvc.Issue(context.Background(), user.Email, model.TokenTypeVerification)
	require.NoError(t, err)

	sess, err := f.svc.Confirm(context.Background(), token.Token)
	require.NoError(t, err)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	// Verification doubles as the first sign-in.
	_, ok := f.sessions.Stored(sess.ID)
	assert.True(t, ok)

	// The token was consumed.
	assert.Zero(t, f.tokens.Count(user.Email, model.TokenTypeVerification))
}

func TestConfirmUnknownTokenIsNotFound(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	_, err := f.svc.Confirm(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestConfirmExpiredTokenIsBadRequest(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	user := f.users.Seed(model.User{Email: "a@b.com", Name: "a"})
	_, err := f.tokens.Replace(context.Background(), model.Token{
		Email: user.Email, Token: "stale", Type: model.TokenTypeVerification,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), "stale")
	assert.True(t, apperrors.IsBadRequest(err))

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsVerified)
}

func TestRequestResendForUnverifiedAccount(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	f.users.Seed(model.User{Email: "a@b.com", Name: "a"})

	require.NoError(t, f.svc.Request(context.Background(), "a@b.com"))
	assert.Equal(t, 1, f.tokens.Count("a@b.com", model.TokenTypeVerification))
}

func TestRequestAlreadyVerifiedIsBadRequest(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	f.users.Seed(model.User{Email: "a@b.com", Name: "a", IsVerified: true})

	err := f.svc.Request(context.Background(), "a@b.com")
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestRequestUnknownAccountIsNotFound(t *testing.T) {
	t.Parallel()

	f := newVerificationFixture(t)
	err := f.svc.Request(context.Background(), "ghost@b.com")
	assert.True(t, apperrors.IsNotFound(err))
}
