package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID    = errors.New("user ID cannot be empty")
	ErrEmptyOpenID    = errors.New("open ID cannot be empty")
	ErrNegativePoints = errors.New("points cannot be negative")
)

// OpenIDPrefix is prepended to a login code to form the user's stable identity.
const OpenIDPrefix = "openid_"

// User represents an account that spends points on photo generations.
type User struct {
	ID        uuid.UUID `json:"id"`
	OpenID    string    `json:"-"`
	Nickname  string    `json:"nickname"`
	AvatarURL string    `json:"avatar_url"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given identity and starting balance.
// Returns an error if validation fails.
func NewUser(openID, nickname, avatarURL string, points int) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		OpenID:    openID,
		Nickname:  nickname,
		AvatarURL: avatarURL,
		Points:    points,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// OpenIDFromCode derives the stable identity for a login code.
func OpenIDFromCode(code string) string {
	return OpenIDPrefix + strings.TrimSpace(code)
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.OpenID == "" || u.OpenID == OpenIDPrefix {
		return ErrEmptyOpenID
	}

	if u.Points < 0 {
		return ErrNegativePoints
	}

	return nil
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
