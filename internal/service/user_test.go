package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/mocks/memory"
)

type userFixture struct {
	svc      *UserService
	refresh  *RefreshService
	users    *memory.UserRepo
	sessions *memory.SessionStore
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	users := memory.NewUserRepo()
	sessions := memory.NewSessionStore()
	flags := memory.NewFlagStore()
	refresh := NewRefreshService(RefreshServiceOptions{
		Flags: flags, Users: users, Sessions: sessions,
	}, nil, nil)
	svc := NewUserService(UserServiceOptions{
		Users: users, Refresh: refresh, Hasher: plainHasher{},
	}, nil)
	return &userFixture{svc: svc, refresh: refresh, users: users, sessions: sessions}
}

func (f *userFixture) seedWithSession(t *testing.T, user model.User) (model.User, *domainauth.Session) {
	t.Helper()
	seeded := f.users.Seed(user)
	sess := sessionFor(seeded)
	require.NoError(t, f.sessions.Save(context.Background(), *sess))
	return seeded, sess
}

func TestUpdateOwnProfileRefreshesOwnSession(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	user, sess := f.seedWithSession(t, model.User{Email: "a@b.com", Name: "a"})

	nick := "a_irc"
	updated, err := f.svc.UpdateOwnProfile(context.Background(), sess, UpdateProfileInput{IRCNickname: &nick})
	require.NoError(t, err)
	require.NotNil(t, updated.IRCNickname)
	assert.Equal(t, "a_irc", *updated.IRCNickname)

	// Synchronous refresh: no flag left behind for the user's own change.
	assert.False(t, f.refresh.ShouldRefresh(context.Background(), user.ID))
}

func TestUpdateOwnProfilePasswordChange(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	hash := "hashed:old-password-1"
	user, sess := f.seedWithSession(t, model.User{Email: "a@b.com", Name: "a", PasswordHash: &hash})

	_, err := f.svc.UpdateOwnProfile(context.Background(), sess, UpdateProfileInput{
		NewPassword: "new-password-1", CurrentPassword: "old-password-1",
	})
	require.NoError(t, err)

	updated, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-password-1", *updated.PasswordHash)
}

func TestUpdateOwnProfileWrongCurrentPassword(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	hash := "hashed:old-password-1"
	_, sess := f.seedWithSession(t, model.User{Email: "a@b.com", Name: "a", PasswordHash: &hash})

	_, err := f.svc.UpdateOwnProfile(context.Background(), sess, UpdateProfileInput{
		NewPassword: "new-password-1", CurrentPassword: "wrong",
	})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestUpdateOwnProfilePasswordlessAccountDirected(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	_, sess := f.seedWithSession(t, model.User{Email: "oauth@b.com", Name: "oauth"})

	_, err := f.svc.UpdateOwnProfile(context.Background(), sess, UpdateProfileInput{
		NewPassword: "new-password-1",
	})
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestUpdateOwnProfileInvalidNickname(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	_, sess := f.seedWithSession(t, model.User{Email: "a@b.com", Name: "a"})

	bad := "has spaces"
	_, err := f.svc.UpdateOwnProfile(context.Background(), sess, UpdateProfileInput{IRCNickname: &bad})
	assert.True(t, apperrors.IsValidation(err))
}

func TestAdminUpdateFlagsTargetSession(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	target := f.users.Seed(model.User{Email: "t@b.com", Name: "t"})
	_, adminSess := f.seedWithSession(t, model.User{Email: "admin@b.com", Name: "admin", Role: model.UserRoleAdmin})

	role := model.UserRoleAdmin
	updated, err := f.svc.UpdateUserProfile(context.Background(), adminSess, target.ID, model.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleAdmin, updated.Role)

	// The target's live sessions elsewhere see the change lazily via the flag.
	assert.True(t, f.refresh.ShouldRefresh(context.Background(), target.ID))
	// The admin's own session was not flagged.
	assert.False(t, f.refresh.ShouldRefresh(context.Background(), adminSess.User.ID))
}

func TestAdminSelfUpdateRefreshesSynchronously(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	admin, adminSess := f.seedWithSession(t, model.User{Email: "admin@b.com", Name: "admin", Role: model.UserRoleAdmin})

	role := model.UserRoleRegular
	_, err := f.svc.UpdateUserProfile(context.Background(), adminSess, admin.ID, model.UpdateUserRequest{Role: &role})
	require.NoError(t, err)

	assert.Equal(t, model.UserRoleRegular, adminSess.User.Role)
	assert.False(t, f.refresh.ShouldRefresh(context.Background(), admin.ID))
}

func TestAdminUpdateUnknownUserIsNotFound(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	_, adminSess := f.seedWithSession(t, model.User{Email: "admin@b.com", Name: "admin", Role: model.UserRoleAdmin})

	name := "x"
	_, err := f.svc.UpdateUserProfile(context.Background(), adminSess, "ghost", model.UpdateUserRequest{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetByIDUnknownUser(t *testing.T) {
	t.Parallel()

	f := newUserFixture(t)
	_, err := f.svc.GetByID(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}
