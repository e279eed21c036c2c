package ports

// Package ports defines interfaces (hexagonal ports) for the collaborators
// the service layer depends on. Implementations live in internal/data and
// internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
)

// SessionStore persists and retrieves user sessions. Save and Delete must
// resolve only after the backing store acknowledges the write.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// FlagStore is the distributed key-value substrate for cross-process
// signaling. Single-key atomic operations only.
type FlagStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
}

// UserRepository is the user-management collaborator contract. The core only
// reads users and mutates role/nickname-style fields through it.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByIRCNickname(ctx context.Context, nick string) (*model.User, error)
	FilterExistingIDs(ctx context.Context, ids []string) ([]string, error)
	Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
}

// TokenRepository stores single-use verification/reset/two-factor tokens.
type TokenRepository interface {
	Replace(ctx context.Context, params model.Token) (*model.Token, error)
	GetByValue(ctx context.Context, value string, typ model.TokenType) (*model.Token, error)
	GetByEmail(ctx context.Context, email string, typ model.TokenType) (*model.Token, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ChatRepository persists chats and memberships.
type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) (*model.Chat, error)
	GetByID(ctx context.Context, id string) (*model.Chat, error)
	GetByChannelName(ctx context.Context, channel string) (*model.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]*model.ChatWithMemberCount, error)
	ListChannelNames(ctx context.Context) ([]string, error)
	AddMembers(ctx context.Context, chatID string, userIDs []string) (int64, error)
	GetMember(ctx context.Context, chatID, userID string) (*model.ChatMember, error)
}

// MessageRepository persists immutable chat messages.
type MessageRepository interface {
	Create(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error)
	ListByChat(ctx context.Context, chatID string) ([]*model.Message, error)
}

// MailKind identifies a mail template.
type MailKind string

const (
	MailKindConfirmation  MailKind = "confirmation"
	MailKindPasswordReset MailKind = "password_reset"
	MailKindTwoFactor     MailKind = "two_factor"
)

// Mailer dispatches transactional mail. Fire-and-forget: the core does not
// retry on failure beyond logging.
type Mailer interface {
	Send(ctx context.Context, kind MailKind, email, token string) error
}

// Broadcaster pushes events to connected real-time clients. Best-effort,
// at-most-once per call, no acknowledgment.
type Broadcaster interface {
	BroadcastToRoom(roomID, event string, payload any)
}

// UserRoom returns the per-user room name for direct notifications. The
// convention lives here so producers and the hub cannot drift apart.
func UserRoom(userID string) string {
	return "user:" + userID
}

// ChannelMessenger is the outbound surface of the IRC bridge. Dispatches are
// synchronous writes to the wire without protocol-level acknowledgment.
type ChannelMessenger interface {
	SendMessage(target, text string)
	JoinChannel(name string)
	LeaveChannel(name string)
	SetTopic(name, topic string)
}

// BeginInput carries inputs for initiating an OAuth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// Identity is the authenticated principal returned by an identity provider.
type Identity struct {
	Email     string
	Name      string
	ExpiresAt time.Time
}

// AuthProvider initiates and completes an OAuth/OIDC flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (Identity, error)
}
