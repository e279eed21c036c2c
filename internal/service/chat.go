package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/wavechat/wavechat-api/internal/data"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	apperrors "github.com/wavechat/wavechat-api/internal/errors"
	"github.com/wavechat/wavechat-api/internal/ports"
)

// Push event names seen by real-time clients.
const (
	EventNewMessage = "newMessage"
	EventChatAdded  = "chatAdded"
)

// ChatServiceOptions groups dependencies for ChatService.
type ChatServiceOptions struct {
	Chats    ports.ChatRepository
	Messages ports.MessageRepository
	Users    ports.UserRepository
	Bridge   ports.ChannelMessenger
	Push     ports.Broadcaster
}

// ChatService mediates between the persisted chat domain, the IRC bridge,
// and the real-time push layer. It is also the bridge's inbound sink and
// channel source.
type ChatService struct {
	chats    ports.ChatRepository
	messages ports.MessageRepository
	users    ports.UserRepository
	bridge   ports.ChannelMessenger
	push     ports.Broadcaster
	logger   *slog.Logger
}

// NewChatService constructs a new ChatService. Without a bridge the service
// runs web-only; BindBridge attaches one before the process starts serving.
func NewChatService(opts ChatServiceOptions, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bridge == nil {
		opts.Bridge = noopMessenger{}
	}
	return &ChatService{
		chats:    opts.Chats,
		messages: opts.Messages,
		users:    opts.Users,
		bridge:   opts.Bridge,
		push:     opts.Push,
		logger:   logger,
	}
}

// BindBridge attaches the channel messenger. The bridge is constructed with
// this service as its inbound sink, so the two meet here after both exist.
// Must be called before the process starts serving requests.
func (s *ChatService) BindBridge(b ports.ChannelMessenger) {
	if b != nil {
		s.bridge = b
	}
}

// noopMessenger stands in for the bridge when the process runs web-only.
type noopMessenger struct{}

func (noopMessenger) SendMessage(_, _ string) {}
func (noopMessenger) JoinChannel(_ string)    {}
func (noopMessenger) LeaveChannel(_ string)   {}
func (noopMessenger) SetTopic(_, _ string)    {}

// CreateChat persists a chat with its creator as OWNER, then commands the
// bridge to join the derived channel and set its topic. Persist first,
// bridge second: a join failure after a durable chat is logged, not rolled
// back.
func (s *ChatService) CreateChat(ctx context.Context, ownerID, title string) (*model.Chat, error) {
	req := model.CreateChatRequest{Title: title, OwnerID: ownerID}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	chatID := uuid.NewString()
	chat := &model.Chat{
		ID:             chatID,
		Title:          title,
		IRCChannelName: model.DeriveChannelName(title, chatID),
		OwnerID:        ownerID,
	}

	created, err := s.chats.Create(ctx, chat)
	if err != nil {
		// Storage details must not leak to the client.
		s.logger.Error("chat persistence failed", "error", err)
		return nil, apperrors.Internal("could not create chat")
	}

	s.bridge.JoinChannel(created.IRCChannelName)
	s.bridge.SetTopic(created.IRCChannelName, created.Title)

	s.push.BroadcastToRoom(ports.UserRoom(ownerID), EventChatAdded, created)
	return created, nil
}

// AddMembers inserts memberships for the existing subset of userIDs,
// skipping duplicates. Unknown IDs produce a warning, not a failure, as
// long as at least one ID is valid.
func (s *ChatService) AddMembers(ctx context.Context, chatID string, userIDs []string) (*model.AddMembersResult, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	valid, err := s.users.FilterExistingIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "filter member ids")
	}
	if len(valid) == 0 {
		return nil, apperrors.NotFound("none of the given users exist")
	}

	added, err := s.chats.AddMembers(ctx, chat.ID, valid)
	if err != nil {
		return nil, apperrors.Wrap(err, "add members")
	}

	result := &model.AddMembersResult{ChatID: chat.ID, AddedCount: int(added)}
	if len(valid) < len(userIDs) {
		result.Warning = fmt.Sprintf("%d of %d user ids did not exist and were skipped",
			len(userIDs)-len(valid), len(userIDs))
	}

	for _, userID := range valid {
		s.push.BroadcastToRoom(ports.UserRoom(userID), EventChatAdded, chat)
	}
	return result, nil
}

// SendChatMessage relays a member's message out to IRC, persists it, and
// pushes it to the chat's room, in that order. The persisted copy is
// authoritative; the IRC relay is fire-and-forget and a silent wire
// failure still leaves the message recorded.
func (s *ChatService) SendChatMessage(ctx context.Context, chatID, userID, text string) (*model.Message, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chats.GetMember(ctx, chat.ID, userID); err != nil {
		if errors.Is(err, data.ErrChatMemberNotFound) {
			return nil, apperrors.NotFound("not a member of this chat")
		}
		return nil, apperrors.Wrap(err, "check membership")
	}

	sender, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "load sender")
	}
	if sender.IRCNickname == nil || *sender.IRCNickname == "" {
		// An identity must be irc-attributable before it can bridge out.
		return nil, apperrors.NotFound("no irc nickname configured for this account")
	}

	req := &model.CreateMessageRequest{ChatID: chat.ID, UserID: userID, Text: text}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	s.bridge.SendMessage(chat.IRCChannelName, *sender.IRCNickname+": "+text)

	msg, err := s.messages.Create(ctx, req)
	if err != nil {
		return nil, apperrors.Wrap(err, "persist message")
	}

	s.push.BroadcastToRoom(chat.ID, EventNewMessage, msg)
	return msg, nil
}

// GetChatMessages returns a member's view of the chat history, ascending by
// creation time with minimal sender identity embedded.
func (s *ChatService) GetChatMessages(ctx context.Context, chatID, userID string) ([]*model.Message, error) {
	chat, err := s.getChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chats.GetMember(ctx, chat.ID, userID); err != nil {
		if errors.Is(err, data.ErrChatMemberNotFound) {
			return nil, apperrors.NotFound("not a member of this chat")
		}
		return nil, apperrors.Wrap(err, "check membership")
	}

	msgs, err := s.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list messages")
	}
	return msgs, nil
}

// ListUserChats returns the chats the user is a member of, with member counts.
func (s *ChatService) ListUserChats(ctx context.Context, userID string) ([]*model.ChatWithMemberCount, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "list chats")
	}
	return chats, nil
}

// ListChannelNames exposes every known chat channel to the bridge for
// rejoin after (re)registration.
func (s *ChatService) ListChannelNames(ctx context.Context) ([]string, error) {
	return s.chats.ListChannelNames(ctx)
}

// HandleInboundMessage is the bridge's sink for filtered IRC traffic: it
// resolves the channel to a chat and the nick to a user, persists the
// message, and pushes it. An untracked channel is dropped silently; an
// unattributable nick is dropped with an error so the bridge logs it.
// Orphaned messages are never persisted.
func (s *ChatService) HandleInboundMessage(ctx context.Context, channel, nick, text string) error {
	chat, err := s.chats.GetByChannelName(ctx, channel)
	if err != nil {
		if errors.Is(err, data.ErrChatNotFound) {
			return nil
		}
		return fmt.Errorf("resolve channel %s: %w", channel, err)
	}

	user, err := s.users.GetByIRCNickname(ctx, nick)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return fmt.Errorf("no user for irc nick %q", nick)
		}
		return fmt.Errorf("resolve nick %s: %w", nick, err)
	}

	req := &model.CreateMessageRequest{ChatID: chat.ID, UserID: user.ID, Text: text}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("inbound message invalid: %w", err)
	}

	msg, err := s.messages.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("persist inbound message: %w", err)
	}

	s.push.BroadcastToRoom(chat.ID, EventNewMessage, msg)
	return nil
}

func (s *ChatService) getChat(ctx context.Context, chatID string) (*model.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, data.ErrChatNotFound) {
			return nil, apperrors.NotFound("chat not found")
		}
		return nil, apperrors.Wrap(err, "load chat")
	}
	return chat, nil
}
