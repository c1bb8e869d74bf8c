package app

import (
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/protocol"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose send buffer is full.
type Policy interface {
	OnBackPressure(ev protocol.EventType, member core.Session) BackpressureAction
}

// SimplePolicy drops lossy frames and kicks the connection for anything
// authoritative, since a client that missed one cannot stay consistent.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(ev protocol.EventType, _ core.Session) BackpressureAction {
	if ev.Lossy() {
		return DropFrame
	}
	return KickMember
}
