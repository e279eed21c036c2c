package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/ports"
	"github.com/wavechat/wavechat-api/internal/service"
)

func TestRegisterSendsVerificationMail(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", service.RegisterInput{
		Email: "new@example.com", Name: "newbie", Password: "long-enough-1",
	}, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	send, ok := f.mailer.LastSend()
	require.True(t, ok)
	assert.Equal(t, ports.MailKindConfirmation, send.Kind)
	assert.Equal(t, "new@example.com", send.Email)
}

func TestRegisterDuplicateVerifiedConflicts(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.seedVerifiedUser(t, "taken@example.com", "taken", "long-enough-1")

	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", service.RegisterInput{
		Email: "taken@example.com", Name: "other", Password: "long-enough-1",
	}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.seedVerifiedUser(t, "a@example.com", "a", "correct-password")

	rec := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "a@example.com", Password: "wrong-password",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookieFrom(rec))
}

func TestLoginSetsSessionCookie(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.seedVerifiedUser(t, "a@example.com", "a", "correct-password")

	rec := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "a@example.com", Password: "correct-password",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookieFrom(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// The cookie authenticates follow-up requests.
	status := f.doJSON(t, http.MethodGet, "/api/auth/status", nil, cookie)
	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeBody(t, status, &body)
	assert.True(t, body.Authenticated)
}

func TestLoginTwoFactorFlow(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	hash := "hashed:correct-password"
	f.users.Seed(model.User{
		Email: "tf@example.com", Name: "tf", PasswordHash: &hash,
		IsVerified: true, IsTwoFactorEnabled: true,
	})

	first := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "tf@example.com", Password: "correct-password",
	}, nil)
	require.Equal(t, http.StatusAccepted, first.Code)
	assert.Nil(t, sessionCookieFrom(first))

	send, ok := f.mailer.LastSend()
	require.True(t, ok)
	require.Equal(t, ports.MailKindTwoFactor, send.Kind)

	second := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "tf@example.com", Password: "correct-password", TwoFactorCode: send.Token,
	}, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.NotNil(t, sessionCookieFrom(second))
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	user := f.seedVerifiedUser(t, "a@example.com", "a", "correct-password")
	cookie := f.signIn(t, user)

	rec := f.doJSON(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// The server-side session is gone, so the cookie no longer authenticates.
	me := f.doJSON(t, http.MethodGet, "/api/users/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestVerificationConfirmSignsIn(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodPost, "/api/auth/register", service.RegisterInput{
		Email: "new@example.com", Name: "newbie", Password: "long-enough-1",
	}, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	send, ok := f.mailer.LastSend()
	require.True(t, ok)

	confirm := f.doJSON(t, http.MethodPost, "/api/auth/verify",
		map[string]string{"token": send.Token}, nil)
	require.Equal(t, http.StatusOK, confirm.Code)
	assert.NotNil(t, sessionCookieFrom(confirm))

	// And the account can now log in directly.
	login := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "new@example.com", Password: "long-enough-1",
	}, nil)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.seedVerifiedUser(t, "a@example.com", "a", "old-password-1")

	rec := f.doJSON(t, http.MethodPost, "/api/auth/password-reset",
		map[string]string{"email": "a@example.com"}, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	send, ok := f.mailer.LastSend()
	require.True(t, ok)
	require.Equal(t, ports.MailKindPasswordReset, send.Kind)

	reset := f.doJSON(t, http.MethodPost, "/api/auth/password-reset/"+send.Token,
		map[string]string{"password": "new-password-1"}, nil)
	require.Equal(t, http.StatusOK, reset.Code)

	// Old password fails, new one works.
	old := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "a@example.com", Password: "old-password-1",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, old.Code)

	fresh := f.doJSON(t, http.MethodPost, "/api/auth/login", service.LoginInput{
		Email: "a@example.com", Password: "new-password-1",
	}, nil)
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestPasswordResetTokenIsSingleUse(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.seedVerifiedUser(t, "a@example.com", "a", "old-password-1")

	f.doJSON(t, http.MethodPost, "/api/auth/password-reset",
		map[string]string{"email": "a@example.com"}, nil)
	send, ok := f.mailer.LastSend()
	require.True(t, ok)

	first := f.doJSON(t, http.MethodPost, "/api/auth/password-reset/"+send.Token,
		map[string]string{"password": "new-password-1"}, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.doJSON(t, http.MethodPost, "/api/auth/password-reset/"+send.Token,
		map[string]string{"password": "other-password-1"}, nil)
	assert.Equal(t, http.StatusNotFound, second.Code)
}

func TestStatusUnauthenticated(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodGet, "/api/auth/status", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Authenticated bool `json:"authenticated"`
	}
	decodeBody(t, rec, &body)
	assert.False(t, body.Authenticated)
}
