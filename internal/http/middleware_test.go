package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodGet, "/api/users/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsUnknownSession(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodGet, "/api/users/me", nil,
		&http.Cookie{Name: SessionCookieName, Value: "no-such-session"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthAppliesPendingRefresh(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	user := f.seedVerifiedUser(t, "a@example.com", "a", "pw-long-enough")
	cookie := f.signIn(t, user)
	ctx := context.Background()

	// Another node promotes the user and leaves a refresh flag behind.
	role := model.UserRoleAdmin
	_, err := f.users.Update(ctx, user.ID, model.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	require.NoError(t, f.refresh.MarkForRefresh(ctx, user.ID, nil))
	require.True(t, f.refresh.ShouldRefresh(ctx, user.ID))

	// The next authenticated request applies the refresh before the handler
	// runs, so an admin-only route succeeds immediately.
	rec := f.doJSON(t, http.MethodPatch, "/api/users/"+user.ID,
		model.UpdateUserRequest{}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	// And the flag has been consumed.
	assert.False(t, f.refresh.ShouldRefresh(ctx, user.ID))
}

func TestRequireAdminForbidsRegularUser(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	user := f.seedVerifiedUser(t, "a@example.com", "a", "pw-long-enough")
	other := f.seedVerifiedUser(t, "b@example.com", "b", "pw-long-enough")

	rec := f.doJSON(t, http.MethodPatch, "/api/users/"+other.ID,
		model.UpdateUserRequest{}, f.signIn(t, user))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	target := f.seedVerifiedUser(t, "t@example.com", "t", "pw-long-enough")
	_, adminCookie := f.adminSession(t)

	name := "renamed"
	rec := f.doJSON(t, http.MethodPatch, "/api/users/"+target.ID,
		model.UpdateUserRequest{Name: &name}, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.User
	decodeBody(t, rec, &updated)
	assert.Equal(t, "renamed", updated.Name)
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	rec := f.doJSON(t, http.MethodPost, "/api/auth/login",
		"not-an-object", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorsAreMasked(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	user := f.seedVerifiedUser(t, "a@example.com", "a", "pw-long-enough")
	cookie := f.signIn(t, user)

	created := f.doJSON(t, http.MethodPost, "/api/chats",
		map[string]string{"title": "general"}, cookie)
	var chat model.Chat
	decodeBody(t, created, &chat)

	f.messages.CreateErr = assert.AnError
	rec := f.doJSON(t, http.MethodPost, "/api/chats/"+chat.ID+"/messages",
		map[string]string{"text": "hello"}, cookie)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "internal server error", body.Message)
}
