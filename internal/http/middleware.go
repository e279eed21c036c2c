package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
)

// SessionCookieName is the cookie carrying the opaque session identifier.
const SessionCookieName = "session_id"

// SessionResolver loads and validates a server-side session by its ID.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// RefreshCoordinator checks and applies pending cross-process session refreshes.
type RefreshCoordinator interface {
	ShouldRefresh(ctx context.Context, userID string) bool
	RefreshUserSession(ctx context.Context, targetUserID, currentUserID string, sess *domainauth.Session) error
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddlewareOptions groups the collaborators of the auth middleware chain.
type AuthMiddlewareOptions struct {
	Sessions SessionResolver
	Refresh  RefreshCoordinator
	Logger   *slog.Logger
}

// RequireAuth returns a middleware that requires an authenticated session.
// Before the request proceeds, any pending refresh flag for the session's
// user is applied so a privilege change made on another node takes effect on
// this request rather than a later one.
func RequireAuth(opts AuthMiddlewareOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := resolveRequestSession(r, opts.Sessions)
			if session == nil {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}

			if opts.Refresh != nil && opts.Refresh.ShouldRefresh(r.Context(), session.User.ID) {
				if err := opts.Refresh.RefreshUserSession(r.Context(), session.User.ID, session.User.ID, session); err != nil {
					logger.Error("session refresh failed", "user_id", session.User.ID, "error", err)
					WriteAppError(w, err)
					return
				}
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns a middleware that requires the admin role on top of
// RequireAuth semantics. It must run inside RequireAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetUserSessionFromContext(r.Context())
			if !ok {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			if !session.IsAdmin() {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveRequestSession retrieves and validates a session from the request cookie.
func resolveRequestSession(r *http.Request, sessions SessionResolver) *domainauth.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	session, err := sessions.ResolveSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}
