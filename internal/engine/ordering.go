package engine

import (
	"github.com/hailam/pocketchess/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	GoodCaptureBase = 1000000  // Base score for captures
	PromotionBase   = 950000   // Quiet promotions
	KillerScore1    = 900000   // First killer move
	KillerScore2    = 800000   // Second killer move
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores.
// Taking the king ends the game, so it outranks everything.
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {999, 998, 998, 997, 996, 995},
}

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [from][to])
	history [64][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	mo := &MoveOrderer{}
	mo.Clear()
	return mo
}

// Clear resets killers and ages the history for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns scores to moves for ordering.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves []board.Move, ply int, ttMove board.Move) []int {
	scores := make([]int, len(moves))
	for i, m := range moves {
		scores[i] = mo.scoreMove(pos, m, ply, ttMove)
	}
	return scores
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	if victim := pos.PieceAt(m.To); victim != board.NoPiece {
		attacker := pos.PieceAt(m.From).Type()
		if attacker > board.King {
			return GoodCaptureBase
		}
		score := GoodCaptureBase + mvvLva[victim.Type()][attacker]*1000
		if m.IsPromotion() {
			score += int(m.Promotion) * 100
		}
		return score
	}

	if m.IsPromotion() {
		return PromotionBase + int(m.Promotion)*100
	}

	if ply < MaxPly {
		if m == mo.killers[ply][0] {
			return KillerScore1
		}
		if m == mo.killers[ply][1] {
			return KillerScore2
		}
	}
	return mo.history[m.From][m.To]
}

// SortMoves orders moves by descending score.
func SortMoves(moves []board.Move, scores []int) {
	// Simple selection sort (sufficient for ~40 moves)
	n := len(moves)
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves[i], moves[best] = moves[best], moves[i]
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a quiet move that caused a beta cutoff.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	mo.history[m.From][m.To] += depth * depth
	if mo.history[m.From][m.To] > 400000 {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
