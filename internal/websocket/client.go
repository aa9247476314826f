package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// watchers only send control frames
	maxInboundSize = 512
	sendBuffer     = 64
)

// Watcher is one browser tab following a drafting session.
type Watcher struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

func newWatcher(hub *Hub, conn *websocket.Conn, sessionID string) *Watcher {
	return &Watcher{hub: hub, conn: conn, sessionID: sessionID, send: make(chan []byte, sendBuffer)}
}

// Serve registers conn as a watcher of sessionID and blocks until the peer goes away.
func Serve(hub *Hub, conn *websocket.Conn, sessionID string) {
	w := newWatcher(hub, conn, sessionID)
	if !hub.join(w) {
		_ = conn.Close()
		return
	}

	go w.forward()
	w.drain()
}

func (w *Watcher) drain() {
	defer func() {
		w.hub.leave(w)
		_ = w.conn.Close()
	}()

	w.conn.SetReadLimit(maxInboundSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				w.hub.logger.Warn("Watcher", "Unexpected close", map[string]interface{}{"session_id": w.sessionID, "error": err.Error()})
			}
			return
		}
	}
}

// forward writes hub events to the socket and keeps it alive with pings.
func (w *Watcher) forward() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)
		select {
		case msg, ok := <-w.send:
			if !ok {
				kind = websocket.CloseMessage
			} else {
				kind, payload = websocket.TextMessage, msg
			}
		case <-ticker.C:
			kind = websocket.PingMessage
		}

		_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := w.conn.WriteMessage(kind, payload); err != nil || kind == websocket.CloseMessage {
			return
		}
	}
}
