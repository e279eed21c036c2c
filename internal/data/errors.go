package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User repository sentinels.
	ErrUserNotFound       = errors.New("user not found")
	ErrUserEmailExists    = errors.New("user email already exists")
	ErrUserNameExists     = errors.New("user name already exists")
	ErrIRCNicknameExists  = errors.New("irc nickname already exists")

	// Token repository sentinels.
	ErrTokenNotFound = errors.New("token not found")

	// Chat repository sentinels.
	ErrChatNotFound       = errors.New("chat not found")
	ErrChatChannelExists  = errors.New("irc channel name already exists")
	ErrChatMemberNotFound = errors.New("chat member not found")
)
