//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxUserNameLen  = 64
	minPasswordLen  = 8
	maxPasswordLen  = 128
	maxIRCNicknameLen = 30
)

// UserRole represents the application authorization role of a user.
type UserRole string

const (
	UserRoleRegular UserRole = "REGULAR"
	UserRoleAdmin   UserRole = "ADMIN"
)

// Valid reports whether the user role is supported.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleRegular, UserRoleAdmin:
		return true
	default:
		return false
	}
}

// ParseUserRole normalizes a role string and reports whether it is supported.
func ParseUserRole(value string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(value)))
	if role.Valid() {
		return role, true
	}
	return "", false
}

// User is an application account. Identity (ID) is immutable; role and
// ircNickname mutate over time and are the source of session staleness.
type User struct {
	ID                 string    `json:"id"                     db:"id"`
	Email              string    `json:"email"                  db:"email"`
	Name               string    `json:"name"                   db:"name"`
	PasswordHash       *string   `json:"-"                      db:"password_hash"`
	Role               UserRole  `json:"role"                   db:"role"`
	IRCNickname        *string   `json:"irc_nickname,omitempty" db:"irc_nickname"`
	IsVerified         bool      `json:"is_verified"            db:"is_verified"`
	IsTwoFactorEnabled bool      `json:"is_two_factor_enabled"  db:"is_two_factor_enabled"`
	CreatedAt          time.Time `json:"created_at"             db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"             db:"updated_at"`
}

// HasPassword reports whether the account can authenticate by password.
// Accounts created through OAuth have no password hash until one is set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// CreateUserRequest represents parameters to create a User.
// PasswordHash is empty for OAuth-created accounts.
type CreateUserRequest struct {
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	IsVerified   bool
}

// Validate checks the create request fields.
func (r *CreateUserRequest) Validate() error {
	if err := validateUserEmail(r.Email); err != nil {
		return err
	}
	if err := validateUserName(r.Name); err != nil {
		return err
	}
	if r.Role != "" && !r.Role.Valid() {
		return errors.New("role must be REGULAR or ADMIN")
	}
	return nil
}

// Normalize trims and lowercases fields that are matched exactly in storage.
func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	if r.Role == "" {
		r.Role = UserRoleRegular
	}
}

// UpdateUserRequest represents a partial update of user fields.
// Nil pointers leave the corresponding column untouched.
type UpdateUserRequest struct {
	Name               *string   `json:"name,omitempty"`
	Email              *string   `json:"email,omitempty"`
	Role               *UserRole `json:"role,omitempty"`
	IRCNickname        *string   `json:"irc_nickname,omitempty"`
	IsVerified         *bool     `json:"is_verified,omitempty"`
	IsTwoFactorEnabled *bool     `json:"is_two_factor_enabled,omitempty"`
	PasswordHash       *string   `json:"-"`
}

// Validate checks the update request fields.
func (r *UpdateUserRequest) Validate() error {
	if r.Email != nil {
		if err := validateUserEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.Name != nil {
		if err := validateUserName(*r.Name); err != nil {
			return err
		}
	}
	if r.Role != nil && !r.Role.Valid() {
		return errors.New("role must be REGULAR or ADMIN")
	}
	if r.IRCNickname != nil {
		if err := ValidateIRCNickname(*r.IRCNickname); err != nil {
			return err
		}
	}
	return nil
}

func validateUserEmail(email string) error {
	e := strings.TrimSpace(email)
	if e == "" {
		return errors.New("email is required and cannot be empty")
	}
	if _, err := mail.ParseAddress(e); err != nil {
		return errors.New("email must be a valid address")
	}
	return nil
}

func validateUserName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(n) > maxUserNameLen {
		return errors.New("name cannot exceed 64 characters")
	}
	return nil
}

// ValidatePassword checks a plaintext password against length policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if utf8.RuneCountInString(password) > maxPasswordLen {
		return errors.New("password cannot exceed 128 characters")
	}
	return nil
}

// ValidateIRCNickname checks an IRC nickname for wire safety. An empty
// nickname is allowed and means the user is not irc-attributable.
func ValidateIRCNickname(nick string) error {
	n := strings.TrimSpace(nick)
	if n == "" {
		return nil
	}
	if utf8.RuneCountInString(n) > maxIRCNicknameLen {
		return errors.New("irc nickname cannot exceed 30 characters")
	}
	if strings.ContainsAny(n, " ,*?!@#:") {
		return errors.New("irc nickname contains characters not allowed on IRC")
	}
	return nil
}
