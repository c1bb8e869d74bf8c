// Package domain contains the room aggregate and its pure rules. Nothing here does I/O.
package domain

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen      = 64
	MaxDisplayNameLen = 50

	credentialSeparator = "-"
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

type UserID string

// Identity is derived once per connection and never changes afterwards.
type Identity struct {
	ID          UserID `json:"id"`
	DisplayName string `json:"displayName"`
}

// BotIdentity is the synthetic second player of a bot room.
var BotIdentity = Identity{ID: "bot", DisplayName: "Bot"}

func (i Identity) IsBot() bool { return i.ID == BotIdentity.ID }

// NewIdentity mints a fresh id for a display name. Used by the login endpoint.
func NewIdentity(displayName string) (Identity, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return Identity{}, ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return Identity{}, ErrDisplayNameTooLong
	}
	return Identity{ID: UserID(uuid.NewString()), DisplayName: name}, nil
}

// Credential renders the opaque "<displayName>-<id>" form carried by the handshake.
func (i Identity) Credential() string {
	return i.DisplayName + credentialSeparator + string(i.ID)
}

// ParseCredential splits on the first separator only, so ids that contain the
// separator (uuids) survive. Both halves must be non-empty.
func ParseCredential(credential string) (Identity, bool) {
	name, id, ok := strings.Cut(credential, credentialSeparator)
	if !ok || name == "" || id == "" {
		return Identity{}, false
	}
	if len(id) > MaxUserIDLen || utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return Identity{}, false
	}
	return Identity{ID: UserID(id), DisplayName: name}, true
}
