package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// ChatServiceInterface defines the chat operations the handlers depend on.
type ChatServiceInterface interface {
	CreateChat(ctx context.Context, ownerID, title string) (*model.Chat, error)
	AddMembers(ctx context.Context, chatID string, userIDs []string) (*model.AddMembersResult, error)
	SendChatMessage(ctx context.Context, chatID, userID, text string) (*model.Message, error)
	GetChatMessages(ctx context.Context, chatID, userID string) ([]*model.Message, error)
	ListUserChats(ctx context.Context, userID string) ([]*model.ChatWithMemberCount, error)
}

// ChatHandlers provides HTTP handlers for chat operations. All routes run
// inside RequireAuth, so a session is always present in the context.
type ChatHandlers struct {
	Svc ChatServiceInterface
}

// Create creates a chat owned by the caller and bridges its IRC channel.
// POST /api/chats.
func (h *ChatHandlers) Create(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	var in struct {
		Title string `json:"title"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	chat, err := h.Svc.CreateChat(r.Context(), session.User.ID, in.Title)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, chat)
}

// List returns the caller's chats with member counts.
// GET /api/chats.
func (h *ChatHandlers) List(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())

	chats, err := h.Svc.ListUserChats(r.Context(), session.User.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

// AddMembers adds users to a chat; unknown IDs are skipped with a warning.
// POST /api/chats/{id}/members.
func (h *ChatHandlers) AddMembers(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("id")

	var in struct {
		UserIDs []string `json:"user_ids"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}
	if len(in.UserIDs) == 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_user_ids",
			Err:     errors.New("user_ids is required and cannot be empty"),
		})
		return
	}

	result, err := h.Svc.AddMembers(r.Context(), chatID, in.UserIDs)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// SendMessage relays a message to IRC and persists it.
// POST /api/chats/{id}/messages.
func (h *ChatHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	chatID := r.PathValue("id")

	var in struct {
		Text string `json:"text"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	message, err := h.Svc.SendChatMessage(r.Context(), chatID, session.User.ID, in.Text)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, message)
}

// ListMessages returns a chat's history in chronological order.
// GET /api/chats/{id}/messages.
func (h *ChatHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	chatID := r.PathValue("id")

	messages, err := h.Svc.GetChatMessages(r.Context(), chatID, session.User.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
