package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/data/cryptoutil"
	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Tokens   *TokenService
	Hasher   cryptoutil.Hasher
	Provider ports.AuthProvider // optional, enables OAuth login

	SessionLifetime time.Duration
}

// AuthService owns the login/logout lifecycle: registration, password login
// with optional two-factor, OAuth login, and session persistence. A request
// moves Unauthenticated -> PendingTwoFactor -> Authenticated; the pending
// state is tracked only by the outstanding two-factor token record.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	tokens   *TokenService
	hasher   cryptoutil.Hasher
	provider ports.AuthProvider

	lifetime time.Duration
	logger   *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	lifetime := opts.SessionLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &AuthService{
		users:    opts.Users,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		hasher:   opts.Hasher,
		provider: opts.Provider,
		lifetime: lifetime,
		logger:   logger,
	}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates an unverified account and mails a verification token.
// A verified duplicate is a Conflict; an unverified duplicate gets the
// verification re-sent and still fails, so re-registration can neither
// enumerate accounts nor mint a duplicate.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := model.ValidatePassword(in.Password); err != nil {
		return "", apperrors.ValidationField("password", err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return "", apperrors.Conflict("an account with this email already exists")
	case err == nil:
		if _, issueErr := s.tokens.IssueAndSend(ctx, email, model.TokenTypeVerification); issueErr != nil {
			return "", issueErr
		}
		return "", apperrors.Unauthorized("email not verified, a new verification link has been sent")
	case !errors.Is(err, data.ErrUserNotFound):
		return "", apperrors.Wrap(err, "look up account")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperrors.Wrap(err, "hash password")
	}

	req := &model.CreateUserRequest{Email: email, Name: in.Name, PasswordHash: hash}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", apperrors.Validation(err.Error())
	}

	user, err := s.users.Create(ctx, req)
	if err != nil {
		return "", mapUserWriteErr(err)
	}

	if _, err := s.tokens.IssueAndSend(ctx, user.Email, model.TokenTypeVerification); err != nil {
		return "", err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return "registration accepted, check your email to verify the account", nil
}

// LoginInput carries the login form fields. TwoFactorCode is empty on the
// first submission of a two-factor account.
type LoginInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

// LoginResult is either an established session or a pending two-factor
// prompt, never both.
type LoginResult struct {
	Session          *domainauth.Session
	PendingTwoFactor bool
	Message          string
}

// Login authenticates by email and password. Accounts with two-factor
// enabled require a second submission carrying the mailed code.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, apperrors.NotFound("no account for this email")
		}
		return nil, apperrors.Wrap(err, "look up account")
	}

	if !user.HasPassword() {
		return nil, apperrors.Unauthorized("this account has no password, sign in with your identity provider")
	}

	ok, err := s.hasher.Verify(*user.PasswordHash, in.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "verify password")
	}
	if !ok {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if !user.IsVerified {
		if _, issueErr := s.tokens.IssueAndSend(ctx, user.Email, model.TokenTypeVerification); issueErr != nil {
			return nil, issueErr
		}
		return nil, apperrors.Unauthorized("email not verified, a new verification link has been sent")
	}

	if user.IsTwoFactorEnabled {
		if in.TwoFactorCode == "" {
			if _, issueErr := s.tokens.IssueAndSend(ctx, user.Email, model.TokenTypeTwoFactor); issueErr != nil {
				return nil, issueErr
			}
			return &LoginResult{
				PendingTwoFactor: true,
				Message:          "a sign-in code has been sent to your email, resubmit with the code",
			}, nil
		}
		token, _, validateErr := s.tokens.Validate(ctx, in.TwoFactorCode, model.TokenTypeTwoFactor)
		if validateErr != nil {
			return nil, validateErr
		}
		if consumeErr := s.tokens.Consume(ctx, token); consumeErr != nil {
			return nil, consumeErr
		}
	}

	sess, err := s.EstablishSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Session: sess}, nil
}

// EstablishSession writes a fresh session for the user and resolves only
// after the store acknowledges the write. A session that appears saved
// before acknowledgment is lost on crash.
func (s *AuthService) EstablishSession(ctx context.Context, user *model.User) (*domainauth.Session, error) {
	sess := domainauth.Session{
		ID:        uuid.NewString(),
		User:      domainauth.SessionUser{ID: user.ID, Role: user.Role},
		ExpiresAt: time.Now().Add(s.lifetime),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("session established", "user_id", user.ID)
	return &sess, nil
}

// Logout destroys the session store entry. A destroy failure surfaces as a
// server error; treating it as success would leak the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.Wrap(err, "destroy session")
	}
	return nil
}

// ResolveSession loads a session by ID, evicting it when expired.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, apperrors.Unauthorized("not authenticated")
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Unauthorized("session not found")
	}
	if time.Now().After(sess.ExpiresAt) {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.logger.Error("expired session cleanup failed", "error", delErr)
		}
		return nil, apperrors.Unauthorized("session expired")
	}
	return &sess, nil
}

// BeginOAuthLogin starts the OAuth flow against the configured provider.
func (s *AuthService) BeginOAuthLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error) {
	if s.provider == nil {
		return "", "", "", apperrors.BadRequest("oauth login is not configured")
	}
	authURL, state, nonce, err = s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "begin oauth flow")
	}
	return authURL, state, nonce, nil
}

// CompleteOAuthLogin exchanges the callback code, finds or creates a
// verified password-less account for the identity's email, and establishes
// a session. Such accounts can later set a password via the reset flow.
func (s *AuthService) CompleteOAuthLogin(ctx context.Context, in ports.ExchangeInput) (*domainauth.Session, error) {
	if s.provider == nil {
		return nil, apperrors.BadRequest("oauth login is not configured")
	}

	identity, err := s.provider.Exchange(ctx, in)
	if err != nil {
		return nil, apperrors.Unauthorized("identity provider rejected the login")
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	if errors.Is(err, data.ErrUserNotFound) {
		user, err = s.createOAuthUser(ctx, identity)
	}
	if err != nil {
		return nil, err
	}
	return s.EstablishSession(ctx, user)
}

func (s *AuthService) createOAuthUser(ctx context.Context, identity ports.Identity) (*model.User, error) {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}

	req := &model.CreateUserRequest{Email: identity.Email, Name: name, IsVerified: true}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	user, err := s.users.Create(ctx, req)
	if errors.Is(err, data.ErrUserNameExists) {
		// Display names are unique; disambiguate with a short suffix.
		req.Name = name + "-" + uuid.NewString()[:4]
		user, err = s.users.Create(ctx, req)
	}
	if err != nil {
		return nil, mapUserWriteErr(err)
	}
	s.logger.Info("oauth user created", "user_id", user.ID)
	return user, nil
}

func mapUserWriteErr(err error) error {
	switch {
	case errors.Is(err, data.ErrUserEmailExists):
		return apperrors.Conflict("an account with this email already exists")
	case errors.Is(err, data.ErrUserNameExists):
		return apperrors.Conflict("this name is already taken")
	case errors.Is(err, data.ErrIRCNicknameExists):
		return apperrors.Conflict("this irc nickname is already taken")
	default:
		return apperrors.Wrap(err, "write account")
	}
}
