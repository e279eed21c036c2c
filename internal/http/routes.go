package httpx

import (
	"log/slog"
	"net/http"

	"github.com/wavechat/wavechat-api/internal/adapters/ws"
)

// RouterServices holds all the collaborators needed by the HTTP router.
type RouterServices struct {
	Auth         AuthServiceInterface
	Verification VerificationServiceInterface
	Recovery     PasswordRecoveryServiceInterface
	Chats        ChatServiceInterface
	Users        UserServiceInterface
	Refresh      RefreshCoordinator
	Hub          *ws.Hub

	CookieDomain string
	CallbackURL  string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		CallbackURL:  services.CallbackURL,
		Logger:       logger,
	}
	accountHandlers := &AccountHandlers{
		Verification: services.Verification,
		Recovery:     services.Recovery,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}
	chatHandlers := &ChatHandlers{Svc: services.Chats}
	userHandlers := &UserHandlers{Svc: services.Users}

	requireAuth := RequireAuth(AuthMiddlewareOptions{
		Sessions: services.Auth,
		Refresh:  services.Refresh,
		Logger:   logger,
	})
	requireAdmin := RequireAdmin()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	registerAuthRoutes(mux, authHandlers, accountHandlers)
	registerChatRoutes(mux, chatHandlers, requireAuth)
	registerUserRoutes(mux, userHandlers, requireAuth, requireAdmin)

	if services.Hub != nil {
		wsHandlers := NewWSHandlers(services.Hub, services.Chats, logger)
		mux.Handle("GET /ws", requireAuth(http.HandlerFunc(wsHandlers.Serve)))
	}

	return Recover(logger)(Logging(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, auth *AuthHandlers, account *AccountHandlers) {
	mux.Handle("POST /api/auth/register", http.HandlerFunc(auth.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(auth.Login))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(auth.Logout))
	mux.Handle("GET /api/auth/status", http.HandlerFunc(auth.Status))
	mux.Handle("GET /api/auth/oauth/login", http.HandlerFunc(auth.OAuthLogin))
	mux.Handle("GET /api/auth/oauth/callback", http.HandlerFunc(auth.OAuthCallback))

	mux.Handle("POST /api/auth/verify", http.HandlerFunc(account.ConfirmVerification))
	mux.Handle("POST /api/auth/verify/request", http.HandlerFunc(account.RequestVerification))
	mux.Handle("POST /api/auth/password-reset", http.HandlerFunc(account.RequestPasswordReset))
	mux.Handle("POST /api/auth/password-reset/{token}", http.HandlerFunc(account.CompletePasswordReset))
}

func registerChatRoutes(mux *http.ServeMux, h *ChatHandlers, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("POST /api/chats", requireAuth(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/chats", requireAuth(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/chats/{id}/members", requireAuth(http.HandlerFunc(h.AddMembers)))
	mux.Handle("POST /api/chats/{id}/messages", requireAuth(http.HandlerFunc(h.SendMessage)))
	mux.Handle("GET /api/chats/{id}/messages", requireAuth(http.HandlerFunc(h.ListMessages)))
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/users/me", requireAuth(http.HandlerFunc(h.Me)))
	mux.Handle("PATCH /api/users/me", requireAuth(http.HandlerFunc(h.UpdateMe)))
	mux.Handle("PATCH /api/users/{id}", requireAuth(requireAdmin(http.HandlerFunc(h.Update))))
}
