package arena

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
	"quarto_go/internal/config"
)

func fastConfig() config.Config {
	cfg := config.Default()
	cfg.Engine.SafetyMarginMs = 0
	cfg.Engine.EndgameEmpty = 4
	cfg.Engine.TTPow = 14
	cfg.Arena.BudgetMs = 5
	cfg.Arena.Games = 4
	cfg.Arena.Workers = 2
	cfg.Arena.Seed = 100
	return cfg
}

func TestPlayGame(t *testing.T) {
	var turns []Turn
	res, err := PlayGame(context.Background(), fastConfig(), 0, 1, func(tr Turn) { turns = append(turns, tr) })
	require.NoError(t, err)

	require.Equal(t, board.Cells-res.Board.EmptyCells(), res.Turns)
	require.Len(t, turns, 2*res.Turns)
	if res.Winner == Draw {
		require.Zero(t, res.Board.EmptyCells())
		require.False(t, res.Board.HasWinningLine())
	} else {
		require.True(t, res.Board.HasWinningLine())
	}

	// 座位 1 先挑子，然后 挑子/放子 交替，放子方接着挑子
	require.Equal(t, 1, turns[0].Seat)
	require.Equal(t, "choose", turns[0].Phase)
	require.Equal(t, agent.MethodRandom, turns[0].Method)
	for i := 0; i+1 < len(turns); i += 2 {
		require.Equal(t, "choose", turns[i].Phase)
		require.Equal(t, "move", turns[i+1].Phase)
		require.NotEqual(t, turns[i].Seat, turns[i+1].Seat)
		require.Equal(t, turns[i].Piece, turns[i+1].Piece)
		if i+2 < len(turns) {
			require.Equal(t, turns[i+1].Seat, turns[i+2].Seat)
		}
	}
}

func TestRunSummarizesAllGames(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]int{}
	sum, results, err := Run(context.Background(), fastConfig(), func(tr Turn) {
		mu.Lock()
		seen[tr.Game]++
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, 4, sum.Games)
	require.Equal(t, 4, sum.Wins[0]+sum.Wins[1]+sum.Draws)
	for i, r := range results {
		require.Equal(t, i, r.Game)
		require.Equal(t, 2*r.Turns, seen[i])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx, fastConfig(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{{Winner: 0}, {Winner: 1}, {Winner: 1}, {Winner: Draw}})
	require.Equal(t, Summary{Games: 4, Wins: [2]int{1, 2}, Draws: 1}, s)
}
