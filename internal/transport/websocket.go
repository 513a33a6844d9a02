package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/marketintel/decisiond/pkg/types"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// handleWebSocketStream is the secondary snapshot feed for clients that
// prefer WebSocket framing over SSE: GET /decisions/ws. Each connection gets
// its own store subscription; a stalled reader never blocks other clients
// since the send buffer is dropped rather than grown unbounded.
func (s *Server) handleWebSocketStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	updates, unsubscribe := s.store.SubscribeSnapshots()
	send := make(chan types.SnapshotProjection, 64)

	go wsReadPump(conn, s.logger)
	go wsWritePump(conn, send, s.logger)

	defer func() {
		unsubscribe()
		close(send)
	}()

	for {
		select {
		case snapshot, open := <-updates:
			if !open {
				return
			}
			select {
			case send <- snapshot:
			default:
				s.logger.Warn("websocket client too slow, dropping snapshot")
			}
		case <-r.Context().Done():
			return
		}
	}
}

// wsReadPump only drains and discards incoming frames to keep the
// connection's read deadline and pong handling alive; the feed is
// server-to-client only.
func wsReadPump(conn *websocket.Conn, logger *zap.Logger) {
	defer conn.Close()
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func wsWritePump(conn *websocket.Conn, send <-chan types.SnapshotProjection, logger *zap.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case snapshot, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(snapshot)
			if err != nil {
				logger.Warn("marshal snapshot for websocket failed", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
