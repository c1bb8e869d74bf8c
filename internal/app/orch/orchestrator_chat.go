package orch

import (
	"github.com/google/uuid"

	"github.com/dkeye/Arena/internal/protocol"
)

// postMessage relays a chat message to every connection of the chat
// namespace, the author included. Nothing is stored.
func (o *Orchestrator) postMessage(c *call, payload any) error {
	p := payload.(*protocol.Post)
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	o.broadcast(c.sess.Namespace(), protocol.EventMessage, protocol.Posted{
		ID:        id,
		Content:   p.Content,
		Timestamp: o.Rooms.Now().UnixMilli(),
		UserID:    c.identity.ID,
		UserName:  c.identity.DisplayName,
	})
	return nil
}
