package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hollowfarm/internal/farm"
	"github.com/talgya/hollowfarm/internal/llm"
)

const maxStreamConns = 16

// streamMsg is every frame the server sends on the stream.
type streamMsg struct {
	Type       string         `json:"type"` // snapshot | outcome | error
	Snapshot   *farm.Snapshot `json:"snapshot,omitempty"`
	Outcome    *farm.Outcome  `json:"outcome,omitempty"`
	Prophecy   *llm.Prophecy  `json:"prophecy,omitempty"`
	Error      string         `json:"error,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`
}

// handleStream pushes a snapshot after every farm transition and accepts
// intents in the other direction.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.streamConns, 1)
	defer atomic.AddInt32(&s.streamConns, -1)
	if current > maxStreamConns {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID, snaps := s.Farm.Subscribe()
	defer s.Farm.Unsubscribe(subID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan streamMsg, 8)
	slog.Info("stream client connected", "sub_id", subID)

	// Writer goroutine; the only one touching conn for writes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		first := s.Farm.Snapshot()
		if err := writeFrame(conn, streamMsg{Type: "snapshot", Snapshot: &first}); err != nil {
			cancel()
			return
		}
		for {
			var msg streamMsg
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
				return
			case snap, ok := <-snaps:
				if !ok {
					cancel()
					return
				}
				msg = streamMsg{Type: "snapshot", Snapshot: &snap}
			case msg = <-replies:
			}
			if err := writeFrame(conn, msg); err != nil {
				cancel()
				return
			}
		}
	}()

	// Reader loop.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var in farm.Intent
		if err := json.Unmarshal(raw, &in); err != nil {
			s.reply(ctx, replies, streamMsg{Type: "error", Error: "invalid json"})
			continue
		}

		resp, _, errResp := s.apply(r, in)
		if errResp != nil {
			s.reply(ctx, replies, streamMsg{Type: "error", Error: errResp.Error, Suggestion: errResp.Suggestion})
			continue
		}
		s.reply(ctx, replies, streamMsg{Type: "outcome", Outcome: &resp.Outcome, Prophecy: resp.Prophecy})
	}

	cancel()
	<-done
	slog.Info("stream client disconnected", "sub_id", subID)
}

func (s *Server) reply(ctx context.Context, replies chan<- streamMsg, msg streamMsg) {
	select {
	case replies <- msg:
	case <-ctx.Done():
	}
}

func writeFrame(conn *websocket.Conn, msg streamMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	}
	return nil
}
