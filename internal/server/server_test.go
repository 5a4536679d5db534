package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"quarto_go/internal/board"
	"quarto_go/internal/config"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.SafetyMarginMs = 0
	cfg.Engine.EndgameEmpty = 5
	cfg.Engine.TTPow = 14
	cfg.Server.MaxBudgetMs = 50
	s := New(config.NewStore(cfg))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func emptyGrid() [board.Rows][board.Columns]int8 {
	var g [board.Rows][board.Columns]int8
	for r := range g {
		for c := range g[r] {
			g[r][c] = board.Empty
		}
	}
	return g
}

// threatGrid 第 0 行 1,3,5,_,7：奇数棋子放进 (0,3) 即成线
func threatGrid() [board.Rows][board.Columns]int8 {
	g := emptyGrid()
	empty := map[[2]int]bool{{0, 3}: true, {1, 0}: true, {2, 2}: true, {3, 4}: true, {4, 1}: true}
	next := int8(10)
	for r := 0; r < board.Rows; r++ {
		for c := 0; c < board.Columns; c++ {
			switch {
			case empty[[2]int{r, c}]:
			case r == 0:
				g[r][c] = map[int]int8{0: 1, 1: 3, 2: 5, 4: 7}[c]
			default:
				g[r][c] = next
				next++
			}
		}
	}
	return g
}

func post(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/decide", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestPing(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/api/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDecide(t *testing.T) {
	_, ts := testServer(t)

	t.Run("opening choose is random", func(t *testing.T) {
		resp, out := post(t, ts.URL, map[string]any{"board": emptyGrid(), "phase": "choose", "budget_ms": 10})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "random", out["method"])
		require.Equal(t, "choose", out["phase"])
		require.NotContains(t, out, "row")
		p := int8(out["piece"].(float64))
		require.True(t, board.ValidPiece(p))
		require.Equal(t, board.PieceString(p), out["piece_code"])
	})

	t.Run("endgame move takes the win", func(t *testing.T) {
		resp, out := post(t, ts.URL, map[string]any{"board": threatGrid(), "phase": "move", "piece": 9, "budget_ms": 10})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, []any{"exact", "solved"}, out["method"])
		require.Equal(t, 0.0, out["row"])
		require.Equal(t, 3.0, out["col"])
		require.Equal(t, 1.0, out["value"])
	})

	t.Run("endgame choose reports searched nodes", func(t *testing.T) {
		resp, out := post(t, ts.URL, map[string]any{"board": threatGrid(), "phase": "choose", "budget_ms": 10})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "exact", out["method"])
		require.Positive(t, out["nodes"].(float64))
		require.Zero(t, int8(out["piece"].(float64))&1)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		dup := emptyGrid()
		dup[0][0], dup[4][4] = 3, 3
		won := emptyGrid()
		won[2] = [board.Columns]int8{1, 3, 5, 7, 9}
		for name, body := range map[string]any{
			"duplicate piece": map[string]any{"board": dup, "phase": "choose"},
			"winning board":   map[string]any{"board": won, "phase": "choose"},
			"unknown phase":   map[string]any{"board": emptyGrid(), "phase": "think"},
			"played piece":    map[string]any{"board": threatGrid(), "phase": "move", "piece": 1},
			"piece range":     map[string]any{"board": emptyGrid(), "phase": "move", "piece": 40},
		} {
			resp, out := post(t, ts.URL, body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
			require.NotEmpty(t, out["error"], name)
		}
	})
}

func TestConfigRoundTrip(t *testing.T) {
	s, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/config")
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	require.Equal(t, s.store.Get(), got)

	put := func(body string) int {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/config", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	require.Equal(t, http.StatusOK, put(`{"engine":{"endgame_empty":4}}`))
	require.Equal(t, 4, s.store.Get().Engine.EndgameEmpty)
	require.Equal(t, got.Engine.OpeningEmpty, s.store.Get().Engine.OpeningEmpty)

	require.Equal(t, http.StatusBadRequest, put(`{"engine":{"endgame_empty":30}}`))
	require.Equal(t, 4, s.store.Get().Engine.EndgameEmpty)
}

func TestSelfPlayStream(t *testing.T) {
	_, ts := testServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/selfplay?budget_ms=5&seed=3"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	turns := 0
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case "turn":
			turns++
		case "result":
			var res resultPayload
			require.NoError(t, json.Unmarshal(msg.Payload, &res))
			require.Equal(t, 2*res.Turns, turns)
			s, err := board.FromCells(res.Board)
			if res.Winner == -1 {
				require.NoError(t, err)
				require.Zero(t, s.EmptyCells())
			} else {
				require.ErrorIs(t, err, board.ErrWinningBoard)
			}
			return
		case "error":
			t.Fatalf("selfplay error: %s", msg.Payload)
		}
	}
}
