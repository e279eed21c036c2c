package memory

// Package memory contains simple hand-written in-memory doubles for the
// collaborator ports. They honor the same sentinel errors as the real data
// layer so services under test exercise their full error mapping.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wavechat/wavechat-api/internal/data"
	domainauth "github.com/wavechat/wavechat-api/internal/domain/auth"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// Compile-time conformance to ports.
var (
	_ ports.SessionStore     = (*SessionStore)(nil)
	_ ports.FlagStore        = (*FlagStore)(nil)
	_ ports.UserRepository   = (*UserRepo)(nil)
	_ ports.TokenRepository  = (*TokenRepo)(nil)
	_ ports.ChatRepository   = (*ChatRepo)(nil)
	_ ports.MessageRepository = (*MessageRepo)(nil)
	_ ports.Mailer           = (*Mailer)(nil)
	_ ports.Broadcaster      = (*Broadcaster)(nil)
	_ ports.ChannelMessenger = (*Bridge)(nil)
	_ ports.AuthProvider     = (*AuthProvider)(nil)
)

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	SaveErr   error
	DeleteErr error
	SaveCalls int
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *SessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *SessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, errors.New("session not found")
	}
	return sess, nil
}

func (m *SessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.sessions, id)
	return nil
}

// Stored returns the session by ID, for assertions.
func (m *SessionStore) Stored(id string) (domainauth.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// FlagStore is an in-memory TTL key-value store.
type FlagStore struct {
	mu      sync.Mutex
	entries map[string]flagEntry

	SetErr    error
	ExistsErr error
	DeleteErr error
}

type flagEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewFlagStore creates an empty flag store.
func NewFlagStore() *FlagStore {
	return &FlagStore{entries: make(map[string]flagEntry)}
}

func (m *FlagStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = flagEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *FlagStore) Exists(_ context.Context, key string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

func (m *FlagStore) Delete(_ context.Context, key string) (bool, error) {
	if m.DeleteErr != nil {
		return false, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

// UserRepo is an in-memory user repository.
type UserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

// NewUserRepo creates an empty user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]model.User)}
}

// Seed inserts a user directly, for test setup.
func (m *UserRepo) Seed(user model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = model.UserRoleRegular
	}
	m.users[user.ID] = user
	return user
}

func (m *UserRepo) Create(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == req.Email {
			return nil, data.ErrUserEmailExists
		}
		if u.Name == req.Name {
			return nil, data.ErrUserNameExists
		}
	}
	user := model.User{
		ID:         uuid.NewString(),
		Email:      req.Email,
		Name:       req.Name,
		Role:       req.Role,
		IsVerified: req.IsVerified,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if req.PasswordHash != "" {
		hash := req.PasswordHash
		user.PasswordHash = &hash
	}
	m.users[user.ID] = user
	return &user, nil
}

func (m *UserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	return &user, nil
}

func (m *UserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *UserRepo) GetByIRCNickname(_ context.Context, nick string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IRCNickname != nil && *u.IRCNickname == nick {
			user := u
			return &user, nil
		}
	}
	return nil, data.ErrUserNotFound
}

func (m *UserRepo) FilterExistingIDs(_ context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.users[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *UserRepo) Update(_ context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, data.ErrUserNotFound
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IRCNickname != nil {
		if *req.IRCNickname == "" {
			user.IRCNickname = nil
		} else {
			nick := *req.IRCNickname
			user.IRCNickname = &nick
		}
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if req.IsTwoFactorEnabled != nil {
		user.IsTwoFactorEnabled = *req.IsTwoFactorEnabled
	}
	if req.PasswordHash != nil {
		hash := *req.PasswordHash
		user.PasswordHash = &hash
	}
	user.UpdatedAt = time.Now()
	m.users[id] = user
	return &user, nil
}

// TokenRepo is an in-memory token repository upholding the
// at-most-one-live-token-per-(email,type) invariant.
type TokenRepo struct {
	mu     sync.Mutex
	tokens map[string]model.Token
}

// NewTokenRepo creates an empty token repository.
func NewTokenRepo() *TokenRepo {
	return &TokenRepo{tokens: make(map[string]model.Token)}
}

func (m *TokenRepo) Replace(_ context.Context, params model.Token) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.Email == params.Email && t.Type == params.Type {
			delete(m.tokens, id)
		}
	}
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.CreatedAt = time.Now()
	m.tokens[params.ID] = params
	return &params, nil
}

func (m *TokenRepo) GetByValue(_ context.Context, value string, typ model.TokenType) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Token == value && t.Type == typ {
			token := t
			return &token, nil
		}
	}
	return nil, data.ErrTokenNotFound
}

func (m *TokenRepo) GetByEmail(_ context.Context, email string, typ model.TokenType) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.Email == email && t.Type == typ {
			token := t
			return &token, nil
		}
	}
	return nil, data.ErrTokenNotFound
}

func (m *TokenRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[id]
	delete(m.tokens, id)
	return ok, nil
}

// Count reports how many tokens exist for (email, type), for assertions.
func (m *TokenRepo) Count(email string, typ model.TokenType) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.Email == email && t.Type == typ {
			n++
		}
	}
	return n
}

// ChatRepo is an in-memory chat repository.
type ChatRepo struct {
	mu      sync.Mutex
	chats   map[string]model.Chat
	members map[string]map[string]model.ChatMember // chatID -> userID -> member
}

// NewChatRepo creates an empty chat repository.
func NewChatRepo() *ChatRepo {
	return &ChatRepo{
		chats:   make(map[string]model.Chat),
		members: make(map[string]map[string]model.ChatMember),
	}
}

func (m *ChatRepo) Create(_ context.Context, chat *model.Chat) (*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chats {
		if c.IRCChannelName == chat.IRCChannelName {
			return nil, data.ErrChatChannelExists
		}
	}
	stored := *chat
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.chats[stored.ID] = stored
	m.members[stored.ID] = map[string]model.ChatMember{
		stored.OwnerID: {ChatID: stored.ID, UserID: stored.OwnerID, Role: model.ChatRoleOwner, JoinedAt: time.Now()},
	}
	return &stored, nil
}

func (m *ChatRepo) GetByID(_ context.Context, id string) (*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat, ok := m.chats[id]
	if !ok {
		return nil, data.ErrChatNotFound
	}
	return &chat, nil
}

func (m *ChatRepo) GetByChannelName(_ context.Context, channel string) (*model.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chats {
		if c.IRCChannelName == channel {
			chat := c
			return &chat, nil
		}
	}
	return nil, data.ErrChatNotFound
}

func (m *ChatRepo) ListForUser(_ context.Context, userID string) ([]*model.ChatWithMemberCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ChatWithMemberCount
	for id, chat := range m.chats {
		if _, ok := m.members[id][userID]; ok {
			out = append(out, &model.ChatWithMemberCount{Chat: chat, MemberCount: len(m.members[id])})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *ChatRepo) ListChannelNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.chats))
	for _, c := range m.chats {
		names = append(names, c.IRCChannelName)
	}
	sort.Strings(names)
	return names, nil
}

func (m *ChatRepo) AddMembers(_ context.Context, chatID string, userIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chatID]; !ok {
		return 0, data.ErrChatNotFound
	}
	var added int64
	for _, userID := range userIDs {
		if _, ok := m.members[chatID][userID]; ok {
			continue
		}
		m.members[chatID][userID] = model.ChatMember{
			ChatID: chatID, UserID: userID, Role: model.ChatRoleMember, JoinedAt: time.Now(),
		}
		added++
	}
	return added, nil
}

func (m *ChatRepo) GetMember(_ context.Context, chatID, userID string) (*model.ChatMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.members[chatID][userID]
	if !ok {
		return nil, data.ErrChatMemberNotFound
	}
	return &member, nil
}

// MessageRepo is an in-memory message repository preserving insert order.
type MessageRepo struct {
	mu       sync.Mutex
	messages []model.Message
	users    *UserRepo

	CreateErr error
}

// NewMessageRepo creates an empty message repository. The user repo is used
// to embed sender identity like the SQL join does.
func NewMessageRepo(users *UserRepo) *MessageRepo {
	return &MessageRepo{users: users}
}

func (m *MessageRepo) Create(ctx context.Context, req *model.CreateMessageRequest) (*model.Message, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	msg := model.Message{
		ID:        uuid.NewString(),
		ChatID:    req.ChatID,
		UserID:    req.UserID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	if m.users != nil {
		if sender, err := m.users.GetByID(ctx, req.UserID); err == nil {
			msg.Sender = model.MessageSender{ID: sender.ID, Name: sender.Name, IRCNickname: sender.IRCNickname}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *MessageRepo) ListByChat(_ context.Context, chatID string) ([]*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Message
	for i := range m.messages {
		if m.messages[i].ChatID == chatID {
			msg := m.messages[i]
			out = append(out, &msg)
		}
	}
	return out, nil
}

// Mailer records dispatched mail.
type Mailer struct {
	mu    sync.Mutex
	Sends []MailSend

	SendErr error
}

// MailSend is one recorded dispatch.
type MailSend struct {
	Kind  ports.MailKind
	Email string
	Token string
}

func (m *Mailer) Send(_ context.Context, kind ports.MailKind, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sends = append(m.Sends, MailSend{Kind: kind, Email: email, Token: token})
	return m.SendErr
}

// LastSend returns the most recent dispatch, for assertions.
func (m *Mailer) LastSend() (MailSend, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sends) == 0 {
		return MailSend{}, false
	}
	return m.Sends[len(m.Sends)-1], true
}

// Broadcaster records room broadcasts.
type Broadcaster struct {
	mu     sync.Mutex
	Events []BroadcastEvent
}

// BroadcastEvent is one recorded broadcast.
type BroadcastEvent struct {
	Room    string
	Event   string
	Payload any
}

func (b *Broadcaster) BroadcastToRoom(roomID, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, BroadcastEvent{Room: roomID, Event: event, Payload: payload})
}

// EventsForRoom returns the recorded events for one room.
func (b *Broadcaster) EventsForRoom(roomID string) []BroadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []BroadcastEvent
	for _, e := range b.Events {
		if e.Room == roomID {
			out = append(out, e)
		}
	}
	return out
}

// Bridge records outbound IRC commands.
type Bridge struct {
	mu     sync.Mutex
	Sent   []string
	Joined []string
	Left   []string
	Topics []string
}

func (b *Bridge) SendMessage(target, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, target+"|"+text)
}

func (b *Bridge) JoinChannel(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Joined = append(b.Joined, name)
}

func (b *Bridge) LeaveChannel(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Left = append(b.Left, name)
}

func (b *Bridge) SetTopic(name, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Topics = append(b.Topics, name+"|"+topic)
}

// AuthProvider simulates an identity provider with deterministic state and
// nonce values.
type AuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (ports.Identity, error)

	Identity  ports.Identity
	callCount int
}

func (m *AuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	return "https://mock-idp/auth",
		fmt.Sprintf("state-%d", m.callCount),
		fmt.Sprintf("nonce-%d", m.callCount),
		nil
}

func (m *AuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	ident := m.Identity
	if ident.Email == "" {
		ident = ports.Identity{Email: "mock.user@example.com", Name: "Mock User"}
	}
	ident.ExpiresAt = time.Now().Add(time.Hour)
	return ident, nil
}
