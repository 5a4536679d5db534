// File: internal/server/selfplay.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"quarto_go/internal/arena"
	"quarto_go/internal/board"
)

const wsIdlePingInterval = 30 * time.Second

// wsMessage type: turn / result / error / ping
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type resultPayload struct {
	Winner int                             `json:"winner"`
	Turns  int                             `json:"turns"`
	Board  [board.Rows][board.Columns]int8 `json:"board"`
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func frame(typ string, payload any) []byte {
	return mustMarshal(wsMessage{Type: typ, Payload: mustMarshal(payload)})
}

// selfPlay 升级为 WebSocket，逐步推送一局自对弈，最后推送结果
func (s *Server) selfPlay(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Get()
	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("budget_ms")); err == nil && v > 0 {
		cfg.Arena.BudgetMs = min(v, cfg.Server.MaxBudgetMs)
	}
	seed := time.Now().UnixNano()
	if v, err := strconv.ParseInt(q.Get("seed"), 10, 64); err == nil {
		seed = v
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// 读循环只用来发现对端断开
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := make(chan []byte, 16)
	writeDone := make(chan error, 1)
	go func() {
		err := writeWithHeartbeat(conn, send)
		if err != nil {
			cancel()
		}
		writeDone <- err
	}()
	push := func(msg []byte) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	log.Info().Int64("seed", seed).Int("budget_ms", cfg.Arena.BudgetMs).Msg("selfplay-start")
	res, err := arena.PlayGame(ctx, cfg, 0, seed, func(t arena.Turn) {
		push(frame("turn", t))
	})
	if err != nil {
		push(frame("error", map[string]string{"error": err.Error()}))
	} else {
		push(frame("result", resultPayload{Winner: res.Winner, Turns: res.Turns, Board: res.Board.Grid()}))
	}
	close(send)
	if err := <-writeDone; err == nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

// writeWithHeartbeat 独占写端；空闲时定期发 ping 帧
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
