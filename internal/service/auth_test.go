package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/mocks/memory"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// plainHasher is a fast stand-in for argon2 in unit tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(encoded, password string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

type authFixture struct {
	svc      *AuthService
	users    *memory.UserRepo
	sessions *memory.SessionStore
	tokens   *memory.TokenRepo
	mailer   *memory.Mailer
	provider *memory.AuthProvider
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := memory.NewUserRepo()
	sessions := memory.NewSessionStore()
	tokens := memory.NewTokenRepo()
	mailer := &memory.Mailer{}
	provider := &memory.AuthProvider{}

	tokenSvc := NewTokenService(TokenServiceOptions{Tokens: tokens, Users: users, Mail: mailer}, nil)
	svc := NewAuthService(AuthServiceOptions{
		Users:           users,
		Sessions:        sessions,
		Tokens:          tokenSvc,
		Hasher:          plainHasher{},
		Provider:        provider,
		SessionLifetime: time.Hour,
	}, nil)

	return &authFixture{svc: svc, users: users, sessions: sessions, tokens: tokens, mailer: mailer, provider: provider}
}

func (f *authFixture) seedVerified(t *testing.T, email, password string) model.User {
	t.Helper()
	hash := "hashed:" + password
	return f.users.Seed(model.User{
		Email:        email,
		Name:         strings.Split(email, "@")[0],
		PasswordHash: &hash,
		IsVerified:   true,
	})
}

func TestRegisterHappyPath(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	msg, err := f.svc.Register(context.Background(), RegisterInput{
		Email: "a@b.com", Name: "alice", Password: "12345678",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	user, err := f.users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)

	sent, ok := f.mailer.LastSend()
	require.True(t, ok)
	assert.Equal(t, ports.MailKindConfirmation, sent.Kind)
}

func TestRegisterVerifiedDuplicateIsConflict(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Name: "alice", Password: "12345678"})
	require.NoError(t, err)
	verified := true
	user, err := f.users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	_, err = f.users.Update(context.Background(), user.ID, model.UpdateUserRequest{IsVerified: &verified})
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Name: "alice2", Password: "12345678"})
	assert.True(t, apperrors.IsConflict(err))
}

func TestRegisterUnverifiedDuplicateResendsVerification(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Name: "alice", Password: "12345678"})
	require.NoError(t, err)
	mailCount := len(f.mailer.Sends)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Name: "alice", Password: "12345678"})
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Len(t, f.mailer.Sends, mailCount+1)
	assert.Equal(t, 1, f.tokens.Count("a@b.com", model.TokenTypeVerification))
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: " Alice@B.Com ", Name: "alice", Password: "12345678"})
	require.NoError(t, err)

	_, err = f.users.GetByEmail(context.Background(), "alice@b.com")
	assert.NoError(t, err)
}

func TestRegisterShortPasswordIsValidation(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Name: "alice", Password: "short"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestLoginUnknownEmailIsNotFound(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	_, err := f.svc.Login(context.Background(), LoginInput{Email: "ghost@b.com", Password: "12345678"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLoginPasswordlessAccountIsUnauthorized(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.Seed(model.User{Email: "oauth@b.com", Name: "oauth", IsVerified: true})

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "oauth@b.com", Password: "12345678"})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.seedVerified(t, "a@b.com", "12345678")

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "wrong-password"})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLoginUnverifiedResendsVerification(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	hash := "hashed:12345678"
	f.users.Seed(model.User{Email: "a@b.com", Name: "a", PasswordHash: &hash})

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "12345678"})
	assert.True(t, apperrors.IsUnauthorized(err))

	sent, ok := f.mailer.LastSend()
	require.True(t, ok)
	assert.Equal(t, ports.MailKindConfirmation, sent.Kind)
}

func TestLoginSuccessEstablishesAcknowledgedSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.seedVerified(t, "a@b.com", "12345678")

	result, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "12345678"})
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.False(t, result.PendingTwoFactor)

	stored, ok := f.sessions.Stored(result.Session.ID)
	require.True(t, ok)
	assert.Equal(t, user.ID, stored.User.ID)
	assert.Equal(t, user.Role, stored.User.Role)
}

func TestLoginSessionSaveFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.seedVerified(t, "a@b.com", "12345678")
	f.sessions.SaveErr = errors.New("redis down")

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "12345678"})
	require.Error(t, err)
}

func TestLoginTwoFactorFlow(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	hash := "hashed:12345678"
	f.users.Seed(model.User{
		Email: "a@b.com", Name: "a", PasswordHash: &hash,
		IsVerified: true, IsTwoFactorEnabled: true,
	})

	// First submission: no code yet, a code is mailed, no session created.
	result, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "12345678"})
	require.NoError(t, err)
	assert.True(t, result.PendingTwoFactor)
	assert.Nil(t, result.Session)

	sent, ok := f.mailer.LastSend()
	require.True(t, ok)
	assert.Equal(t, ports.MailKindTwoFactor, sent.Kind)

	// Second submission with the mailed code: session established, code consumed.
	result, err = f.svc.Login(context.Background(), LoginInput{
		Email: "a@b.com", Password: "12345678", TwoFactorCode: sent.Token,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Zero(t, f.tokens.Count("a@b.com", model.TokenTypeTwoFactor))

	// A consumed code cannot be replayed.
	_, err = f.svc.Login(context.Background(), LoginInput{
		Email: "a@b.com", Password: "12345678", TwoFactorCode: sent.Token,
	})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLogoutDestroyFailureSurfaces(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.sessions.DeleteErr = errors.New("redis down")

	err := f.svc.Logout(context.Background(), "some-session")
	require.Error(t, err)
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	assert.NoError(t, f.svc.Logout(context.Background(), ""))
}

func TestResolveSessionEvictsExpired(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.seedVerified(t, "a@b.com", "12345678")
	sess := sessionFor(user)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.sessions.Save(context.Background(), *sess))

	_, err := f.svc.ResolveSession(context.Background(), sess.ID)
	assert.True(t, apperrors.IsUnauthorized(err))
	_, ok := f.sessions.Stored(sess.ID)
	assert.False(t, ok)
}

func TestCompleteOAuthLoginCreatesPasswordlessUser(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.provider.Identity = ports.Identity{Email: "new.user@example.com", Name: "New User"}

	sess, err := f.svc.CompleteOAuthLogin(context.Background(), ports.ExchangeInput{
		Code: "code", State: "state", Nonce: "nonce",
	})
	require.NoError(t, err)

	user, err := f.users.GetByEmail(context.Background(), "new.user@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.False(t, user.HasPassword())
	assert.Equal(t, user.ID, sess.User.ID)
}

func TestCompleteOAuthLoginReusesExistingUser(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	existing := f.seedVerified(t, "a@b.com", "12345678")
	f.provider.Identity = ports.Identity{Email: "a@b.com", Name: "Alice"}

	sess, err := f.svc.CompleteOAuthLogin(context.Background(), ports.ExchangeInput{
		Code: "code", State: "state", Nonce: "nonce",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, sess.User.ID)
}

func TestCompleteOAuthLoginExchangeFailureIsUnauthorized(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.provider.ExchangeFunc = func(context.Context, ports.ExchangeInput) (ports.Identity, error) {
		return ports.Identity{}, errors.New("bad code")
	}

	_, err := f.svc.CompleteOAuthLogin(context.Background(), ports.ExchangeInput{Code: "bad"})
	assert.True(t, apperrors.IsUnauthorized(err))
}
