package signal

import (
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, protocol.EventPong, nil)
}

func (ctl *SignalWSController) handleWhoAmI(sess core.Session, conn *WsSignalConn) {
	id, ok := sess.Identity()
	if !ok {
		ctl.sendError(conn, protocol.EventWhoAmI, domain.ErrUnauthenticated)
		return
	}
	ctl.sendJSON(conn, protocol.EventWhoAmI, protocol.WhoAmI{ID: id.ID, DisplayName: id.DisplayName})
}
