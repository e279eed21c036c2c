package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/adapters/ws"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/mocks/memory"
	"github.com/wavechat/wavechat-api/internal/service"
)

// fakeHasher keeps handler tests fast; real argon2 hashing is covered in
// the cryptoutil package.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(encoded, password string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

// routerFixture wires the full API surface over in-memory stores.
type routerFixture struct {
	handler http.Handler

	users    *memory.UserRepo
	sessions *memory.SessionStore
	flags    *memory.FlagStore
	tokenRepo *memory.TokenRepo
	chatRepo *memory.ChatRepo
	messages *memory.MessageRepo
	mailer   *memory.Mailer
	bridge   *memory.Bridge

	auth    *service.AuthService
	refresh *service.RefreshService
	userSvc *service.UserService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	users := memory.NewUserRepo()
	sessions := memory.NewSessionStore()
	flags := memory.NewFlagStore()
	tokenRepo := memory.NewTokenRepo()
	chatRepo := memory.NewChatRepo()
	messages := memory.NewMessageRepo(users)
	mailer := &memory.Mailer{}
	bridge := &memory.Bridge{}
	hub := ws.NewHub(nil)

	tokens := service.NewTokenService(service.TokenServiceOptions{
		Tokens: tokenRepo, Users: users, Mail: mailer,
	}, nil)
	auth := service.NewAuthService(service.AuthServiceOptions{
		Users: users, Sessions: sessions, Tokens: tokens,
		Hasher: fakeHasher{}, Provider: &memory.AuthProvider{},
		SessionLifetime: time.Hour,
	}, nil)
	refresh := service.NewRefreshService(service.RefreshServiceOptions{
		Flags: flags, Users: users, Sessions: sessions,
	}, nil, nil)
	verification := service.NewVerificationService(service.VerificationServiceOptions{
		Users: users, Tokens: tokens, Auth: auth,
	}, nil)
	recovery := service.NewPasswordRecoveryService(service.PasswordRecoveryServiceOptions{
		Users: users, Tokens: tokens, Hasher: fakeHasher{},
	}, nil)
	chats := service.NewChatService(service.ChatServiceOptions{
		Chats: chatRepo, Messages: messages, Users: users,
		Bridge: bridge, Push: hub,
	}, nil)
	userSvc := service.NewUserService(service.UserServiceOptions{
		Users: users, Refresh: refresh, Hasher: fakeHasher{},
	}, nil)

	handler := NewRouter(RouterServices{
		Auth:         auth,
		Verification: verification,
		Recovery:     recovery,
		Chats:        chats,
		Users:        userSvc,
		Refresh:      refresh,
		Hub:          hub,
		CallbackURL:  "http://localhost:8080/api/auth/oauth/callback",
	})

	return &routerFixture{
		handler:  handler,
		users:    users,
		sessions: sessions,
		flags:    flags,
		tokenRepo: tokenRepo,
		chatRepo: chatRepo,
		messages: messages,
		mailer:   mailer,
		bridge:   bridge,
		auth:     auth,
		refresh:  refresh,
		userSvc:  userSvc,
	}
}

// seedVerifiedUser creates a verified account with a password and an IRC nickname.
func (f *routerFixture) seedVerifiedUser(t *testing.T, email, name, password string) model.User {
	t.Helper()
	hash := "hashed:" + password
	nick := name + "_irc"
	return f.users.Seed(model.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		IRCNickname:  &nick,
		IsVerified:   true,
	})
}

// signIn establishes a session for the user and returns its cookie.
func (f *routerFixture) signIn(t *testing.T, user model.User) *http.Cookie {
	t.Helper()
	sess, err := f.auth.EstablishSession(context.Background(), &user)
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: sess.ID}
}

// doJSON performs a request with an optional JSON body and session cookie.
func (f *routerFixture) doJSON(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// sessionCookieFrom extracts the session cookie set on the response.
func sessionCookieFrom(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

// adminSession seeds an admin account and signs it in.
func (f *routerFixture) adminSession(t *testing.T) (model.User, *http.Cookie) {
	t.Helper()
	admin := f.users.Seed(model.User{
		Email: "admin@example.com", Name: "admin",
		Role: model.UserRoleAdmin, IsVerified: true,
	})
	return admin, f.signIn(t, admin)
}
