package core

import "github.com/dkeye/Arena/internal/domain"

type session struct {
	id       SessionID
	ns       Namespace
	identity *domain.Identity
	signal   SignalConnection
}

// NewSession pairs a transport with its resolved identity; nil means the
// credential did not resolve and every guarded event will be refused.
func NewSession(id SessionID, ns Namespace, identity *domain.Identity, signal SignalConnection) Session {
	return &session{id: id, ns: ns, identity: identity, signal: signal}
}

func (s *session) ID() SessionID            { return s.id }
func (s *session) Namespace() Namespace     { return s.ns }
func (s *session) Signal() SignalConnection { return s.signal }

func (s *session) Identity() (domain.Identity, bool) {
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}
