//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxChatTitleLen = 128
	// maxChannelSlugLen bounds the slug portion of a derived channel name so
	// the full name stays within common ircd channel length limits.
	maxChannelSlugLen = 30
)

// ChannelMarker is the IRC channel-name prefix distinguishing channels from
// private nickname targets.
const ChannelMarker = "#"

// ChatRole represents a user's role within a chat.
type ChatRole string

const (
	ChatRoleOwner  ChatRole = "OWNER"
	ChatRoleMember ChatRole = "MEMBER"
)

// Valid reports whether the chat role is supported.
func (r ChatRole) Valid() bool {
	switch r {
	case ChatRoleOwner, ChatRoleMember:
		return true
	default:
		return false
	}
}

// Chat is a persisted conversation mirrored onto a single IRC channel.
// IRCChannelName is derived once at creation and must never change: it is the
// only correlation key the IRC bridge has back to the Chat record.
type Chat struct {
	ID             string    `json:"id"               db:"id"`
	Title          string    `json:"title"            db:"title"`
	IRCChannelName string    `json:"irc_channel_name" db:"irc_channel_name"`
	OwnerID        string    `json:"owner_id"         db:"owner_id"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"       db:"updated_at"`
}

// ChatWithMemberCount is a Chat joined with its member count, used for listings.
type ChatWithMemberCount struct {
	Chat
	MemberCount int `json:"member_count" db:"member_count"`
}

// ChatMember is a membership row, unique per (chatID, userID).
type ChatMember struct {
	ChatID   string   `json:"chat_id"  db:"chat_id"`
	UserID   string   `json:"user_id"  db:"user_id"`
	Role     ChatRole `json:"role"     db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// CreateChatRequest represents parameters to create a Chat.
type CreateChatRequest struct {
	Title   string `json:"title"`
	OwnerID string `json:"-"`
}

// Validate checks the create request fields.
func (r *CreateChatRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxChatTitleLen {
		return errors.New("title cannot exceed 128 characters")
	}
	if r.OwnerID == "" {
		return errors.New("owner id is required")
	}
	return nil
}

// AddMembersResult reports a partial-success membership insert.
type AddMembersResult struct {
	ChatID     string `json:"chat_id"`
	AddedCount int    `json:"added_count"`
	// Warning is set when some requested user IDs did not exist and were skipped.
	Warning string `json:"warning,omitempty"`
}

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// DeriveChannelName derives the stable IRC channel name for a chat from its
// title and id: "#" + slug(title) truncated to 30 runes + "-" + the first
// segment of the chat's uuid. Collisions between equal slugs are
// disambiguated only by the id-derived suffix.
func DeriveChannelName(title, chatID string) string {
	slug := slugify(title)
	if utf8.RuneCountInString(slug) > maxChannelSlugLen {
		slug = string([]rune(slug)[:maxChannelSlugLen])
		slug = strings.TrimRight(slug, "-")
	}
	suffix := chatID
	if i := strings.IndexByte(chatID, '-'); i > 0 {
		suffix = chatID[:i]
	}
	if slug == "" {
		return ChannelMarker + suffix
	}
	return ChannelMarker + slug + "-" + suffix
}

// IsChannelName reports whether the IRC target carries the channel marker.
func IsChannelName(target string) bool {
	return strings.HasPrefix(target, ChannelMarker)
}

func slugify(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = slugInvalidRe.ReplaceAllString(out, "-")
	out = slugCollapseRe.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
