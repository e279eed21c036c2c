package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/ports"
	"github.com/wavechat/wavechat-api/internal/service"
)

// AuthServiceInterface defines the auth operations the handlers depend on.
type AuthServiceInterface interface {
	Register(ctx context.Context, in service.RegisterInput) (string, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	ResolveSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	BeginOAuthLogin(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error)
	CompleteOAuthLogin(ctx context.Context, in ports.ExchangeInput) (*domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	CallbackURL  string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Register handles account creation.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	message, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"message": message})
}

// Login handles password login, including the two-factor second step.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if !DecodeJSON(w, r, &in) {
		return
	}

	result, err := h.Svc.Login(r.Context(), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if result.PendingTwoFactor {
		WriteJSON(w, http.StatusAccepted, map[string]any{
			"two_factor_required": true,
			"message":             result.Message,
		})
		return
	}

	setSessionCookie(w, r, h.CookieDomain, result.Session)
	WriteJSON(w, http.StatusOK, sessionPayload(result.Session))
}

// Logout destroys the server-side session and clears the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
			WriteAppError(w, logoutErr)
			return
		}
	}
	clearCookie(w, r, h.CookieDomain, SessionCookieName)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// Status returns the current authentication status.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.ResolveSession(r.Context(), cookie.Value)
	if err != nil {
		clearCookie(w, r, h.CookieDomain, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          session.User,
		"expires_at":    session.ExpiresAt,
	})
}

// OAuthLogin starts the OAuth/OIDC flow.
// GET /api/auth/oauth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Svc.BeginOAuthLogin(r.Context(), h.CallbackURL)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setOAuthCookies(w, r, h.CookieDomain, oauthCookieParams{
		State: state, Nonce: nonce, RedirectURI: redirectURI,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes the OAuth flow after the provider redirects back.
// GET /api/auth/oauth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_parameters",
			Err:     errors.New("code and state parameters are required"),
		})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(oauthNonceCookie)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce cookie"),
		})
		return
	}

	session, err := h.Svc.CompleteOAuthLogin(r.Context(), ports.ExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	setSessionCookie(w, r, h.CookieDomain, session)
	clearCookie(w, r, h.CookieDomain, oauthStateCookie)
	clearCookie(w, r, h.CookieDomain, oauthNonceCookie)

	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

// postLoginRedirect returns the post-login redirect target and clears the cookie.
func (h *AuthHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if cookie, err := r.Cookie(oauthRedirectCookie); err == nil {
		candidate := cookie.Value
		u, parseErr := url.Parse(candidate)
		if parseErr == nil && !u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirectURI = candidate
		}
		clearCookie(w, r, h.CookieDomain, oauthRedirectCookie)
	}
	return redirectURI
}

// sessionPayload shapes the session body returned after login.
func sessionPayload(s *domainauth.Session) map[string]any {
	return map[string]any{
		"session_id": s.ID,
		"user":       s.User,
		"expires_at": s.ExpiresAt,
	}
}
