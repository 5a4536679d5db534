// File: internal/server/decide.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"quarto_go/internal/agent"
	"quarto_go/internal/board"
)

// decideRequest 棋盘里 -1 表示空格
type decideRequest struct {
	Board    [board.Rows][board.Columns]int8 `json:"board"`
	Phase    string                          `json:"phase"`
	Piece    int8                            `json:"piece"`
	BudgetMs int                             `json:"budget_ms"`
}

type candidateDTO struct {
	Piece  int8    `json:"piece"`
	Cell   string  `json:"cell,omitempty"`
	Visits int     `json:"visits"`
	Mean   float64 `json:"mean"`
	Solved bool    `json:"solved"`
}

type decideResponse struct {
	Phase       string         `json:"phase"`
	Piece       int8           `json:"piece"`
	PieceCode   string         `json:"piece_code"`
	Row         *int           `json:"row,omitempty"`
	Col         *int           `json:"col,omitempty"`
	Method      agent.Method   `json:"method"`
	Value       float64        `json:"value"`
	Simulations int            `json:"simulations"`
	Nodes       uint64         `json:"nodes,omitempty"`
	ElapsedMs   int64          `json:"elapsed_ms"`
	Candidates  []candidateDTO `json:"candidates,omitempty"`
}

// decide 每个请求一个全新的 agent，不跨请求保留树
func (s *Server) decide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	phase, err := agent.ParsePhase(req.Phase)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := board.FromCells(req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.store.Get()
	budget := req.BudgetMs
	if budget <= 0 {
		budget = cfg.Engine.TurnBudgetMs
	}
	budget = min(budget, cfg.Server.MaxBudgetMs)

	a := agent.New(cfg.Engine)
	d, err := a.Decide(r.Context(), agent.Turn{
		Board:  b,
		Phase:  phase,
		Piece:  req.Piece,
		Budget: time.Duration(budget) * time.Millisecond,
	})
	switch {
	case errors.Is(err, agent.ErrPiece), errors.Is(err, agent.ErrGameOver), errors.Is(err, board.ErrWinningBoard):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("decide")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(d))
}

func toResponse(d agent.Decision) decideResponse {
	resp := decideResponse{
		Phase:       d.Phase.String(),
		Piece:       d.Piece,
		PieceCode:   board.PieceString(d.Piece),
		Method:      d.Method,
		Value:       d.Value,
		Simulations: d.Simulations,
		Nodes:       d.Nodes,
		ElapsedMs:   d.Elapsed.Milliseconds(),
		Candidates: lo.Map(d.Candidates, func(c agent.Candidate, _ int) candidateDTO {
			dto := candidateDTO{Piece: c.Piece, Visits: c.Visits, Mean: c.Mean, Solved: c.Solved}
			if board.ValidCell(c.Cell) {
				dto.Cell = board.CellString(c.Cell)
			}
			return dto
		}),
	}
	if d.Phase == agent.Move {
		resp.Row = lo.ToPtr(d.Row())
		resp.Col = lo.ToPtr(d.Col())
	}
	return resp
}
