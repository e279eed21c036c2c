package httpx

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/wavechat/wavechat-api/internal/adapters/ws"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// WSHandlers upgrades authenticated requests to websocket connections and
// seeds each connection with the user's rooms.
type WSHandlers struct {
	Hub    *ws.Hub
	Chats  ChatServiceInterface
	Logger *slog.Logger

	upgrader websocket.Upgrader
}

// NewWSHandlers constructs the websocket handler set.
func NewWSHandlers(hub *ws.Hub, chats ChatServiceInterface, logger *slog.Logger) *WSHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandlers{
		Hub:    hub,
		Chats:  chats,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Serve upgrades the connection and pumps events until the client drops.
// The client starts subscribed to its own user room and every chat it is a
// member of; later membership changes arrive as chatAdded events followed by
// a client-side joinRoom command.
// GET /ws (inside RequireAuth).
func (h *WSHandlers) Serve(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(h.Hub, conn, session.User.ID)

	rooms := []string{ports.UserRoom(session.User.ID)}
	if chats, listErr := h.Chats.ListUserChats(r.Context(), session.User.ID); listErr == nil {
		for _, chat := range chats {
			rooms = append(rooms, chat.ID)
		}
	} else {
		h.Logger.Warn("initial room subscription incomplete",
			"user_id", session.User.ID, "error", listErr)
	}

	h.Hub.Subscribe(client, rooms...)
	client.Run()
}
