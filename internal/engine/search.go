package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// stopCheckInterval is how many nodes pass between deadline checks.
const stopCheckInterval = 2047

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// Searcher performs a negamax alpha-beta search. Every branch works on its
// own copy of the position, so the caller's position is never touched.
type Searcher struct {
	tt       *TranspositionTable
	orderer  *MoveOrderer
	pv       PVTable
	nodes    uint64
	stopFlag atomic.Bool

	ctx      context.Context
	deadline time.Time
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		ctx:     context.Background(),
	}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset prepares the searcher for a new search bounded by ctx and deadline.
func (s *Searcher) Reset(ctx context.Context, deadline time.Time) {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.ctx = ctx
	s.deadline = deadline
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs one fixed-depth search and returns the best move and its score.
func (s *Searcher) Search(pos *board.Position, color board.Color, depth int) (board.Move, int) {
	score := s.negamax(pos, color, depth, 0, -Infinity, Infinity)
	if s.pv.length[0] == 0 {
		return board.NoMove, score
	}
	return s.pv.moves[0][0], score
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	return append([]board.Move(nil), s.pv.moves[0][:s.pv.length[0]]...)
}

func (s *Searcher) checkStop() {
	if s.ctx.Err() != nil || (!s.deadline.IsZero() && time.Now().After(s.deadline)) {
		s.stopFlag.Store(true)
	}
}

func (s *Searcher) negamax(pos *board.Position, color board.Color, depth, ply, alpha, beta int) int {
	s.nodes++
	if s.nodes&stopCheckInterval == 0 {
		s.checkStop()
	}
	s.pv.length[ply] = 0
	if s.stopFlag.Load() {
		return 0
	}

	// Losing the king is the end of the game.
	if !pos.HasKing(color) {
		return -MateScore + ply
	}
	if depth <= 0 || ply >= MaxPly {
		return s.quiesce(pos, color, ply, alpha, beta)
	}

	hash := pos.Hash(color)
	ttMove := board.NoMove
	if entry, ok := s.tt.Probe(hash); ok {
		ttMove = entry.BestMove
		if ply > 0 && int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch {
			case entry.Flag == TTExact,
				entry.Flag == TTLowerBound && score >= beta,
				entry.Flag == TTUpperBound && score <= alpha:
				return score
			}
		}
	}

	moves := board.GenerateMoves(pos, color)
	if len(moves) == 0 {
		return Evaluate(pos, color)
	}
	SortMoves(moves, s.orderer.ScoreMoves(pos, moves, ply, ttMove))

	origAlpha := alpha
	best := -Infinity
	bestMove := board.NoMove
	for _, m := range moves {
		child := pos.Copy()
		captured := child.Apply(m)

		var score int
		if captured.Type() == board.King {
			score = MateScore - ply - 1
			s.pv.length[ply+1] = 0
		} else {
			score = -s.negamax(child, color.Other(), depth-1, ply+1, -beta, -alpha)
		}
		if s.stopFlag.Load() {
			return 0
		}

		if score > best {
			best = score
			bestMove = m
			if score > alpha {
				alpha = score
				s.updatePV(ply, m)
			}
		}
		if alpha >= beta {
			if captured == board.NoPiece {
				s.orderer.UpdateKillers(m, ply)
				s.orderer.UpdateHistory(m, depth)
			}
			break
		}
	}

	flag := TTExact
	switch {
	case best <= origAlpha:
		flag = TTUpperBound
	case best >= beta:
		flag = TTLowerBound
	}
	s.tt.Store(hash, depth, AdjustScoreToTT(best, ply), flag, bestMove)
	return best
}

// quiesce searches captures only, so the static evaluation is never taken
// in the middle of an exchange.
func (s *Searcher) quiesce(pos *board.Position, color board.Color, ply, alpha, beta int) int {
	s.nodes++
	if s.nodes&stopCheckInterval == 0 {
		s.checkStop()
	}
	if s.stopFlag.Load() {
		return 0
	}
	if !pos.HasKing(color) {
		return -MateScore + ply
	}

	standPat := Evaluate(pos, color)
	if standPat >= beta || ply >= MaxPly {
		return standPat
	}
	alpha = max(alpha, standPat)

	var captures []board.Move
	for _, m := range board.GenerateMoves(pos, color) {
		if m.IsCapture(pos) {
			captures = append(captures, m)
		}
	}
	SortMoves(captures, s.orderer.ScoreMoves(pos, captures, ply, board.NoMove))

	for _, m := range captures {
		child := pos.Copy()
		captured := child.Apply(m)

		var score int
		if captured.Type() == board.King {
			score = MateScore - ply - 1
		} else {
			score = -s.quiesce(child, color.Other(), ply+1, -beta, -alpha)
		}
		if s.stopFlag.Load() {
			return 0
		}
		if score >= beta {
			return score
		}
		alpha = max(alpha, score)
	}
	return alpha
}

func (s *Searcher) updatePV(ply int, m board.Move) {
	s.pv.moves[ply][0] = m
	n := s.pv.length[ply+1]
	copy(s.pv.moves[ply][1:], s.pv.moves[ply+1][:n])
	s.pv.length[ply] = n + 1
}
