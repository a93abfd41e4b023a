package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 3 * time.Second

// handleWebsocket pushes every newly published champion to the page. Clients
// only listen; anything they send is discarded.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		slog.Debug("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	updates, unsubscribe := s.deps.Selection.Subscribe()
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())

	if current := s.deps.Selection.Snapshot(); !current.Empty() {
		if err := s.push(ctx, conn, s.view(current)); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusTryAgainLater, "fell behind")
				return
			}
			if err := s.push(ctx, conn, s.view(p)); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) push(ctx context.Context, conn *websocket.Conn, data championData) error {
	data.Type = "ChampionData"
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, data)
}
