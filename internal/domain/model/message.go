//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// maxMessageLen bounds message text; IRC lines are shorter but the persisted
// copy keeps the full text and the bridge sends it as-is.
const maxMessageLen = 2000

// MessageSender is the minimal sender identity embedded in a message.
type MessageSender struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	IRCNickname *string `json:"irc_nickname,omitempty"`
}

// Message is an immutable chat message, ordered by CreatedAt ascending within
// a chat. Order reflects durable commit, not submission.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	Sender MessageSender `json:"sender"`
}

// CreateMessageRequest represents parameters to persist a Message.
type CreateMessageRequest struct {
	ChatID string
	UserID string
	Text   string
}

// Validate checks the create request fields.
func (r *CreateMessageRequest) Validate() error {
	if r.ChatID == "" {
		return errors.New("chat id is required")
	}
	if r.UserID == "" {
		return errors.New("user id is required")
	}
	text := strings.TrimSpace(r.Text)
	if text == "" {
		return errors.New("text is required and cannot be empty")
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return errors.New("text cannot exceed 2000 characters")
	}
	return nil
}
