package core

import "github.com/dkeye/Arena/internal/domain"

type SessionID string

// Namespace groups connections that share a global broadcast scope.
type Namespace string

const (
	NamespaceGame   Namespace = "game"
	NamespaceOffice Namespace = "office"
	NamespaceChat   Namespace = "chat"
)

// Session binds one connection to the identity resolved at connect time.
// The identity never changes for the lifetime of the session.
type Session interface {
	ID() SessionID
	Namespace() Namespace
	Identity() (domain.Identity, bool)
	Signal() SignalConnection
}
