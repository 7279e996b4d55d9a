package engine

import "github.com/hailam/pocketchess/internal/board"

// Positional bonuses in centipawns. They only break ties between
// materially equal moves.
const (
	centerBonusKnight = 6
	centerBonusBishop = 3
	centerBonusQueen  = 1
	pawnAdvanceCenter = 8
	pawnAdvanceWing   = 4
)

// centrality is 0 on the rim and 3 on the four center squares.
func centrality(sq board.Square) int {
	f, r := sq.File(), sq.Rank()
	return min(f, 7-f, r, 7-r)
}

// Evaluate returns the static score of pos from color's point of view.
func Evaluate(pos *board.Position, color board.Color) int {
	score := evaluateSide(pos, board.White) - evaluateSide(pos, board.Black)
	if color == board.Black {
		return -score
	}
	return score
}

func evaluateSide(pos *board.Position, c board.Color) int {
	score := 0
	pos.ForEach(c, func(pt board.PieceType, sq board.Square) {
		score += board.PieceValue[pt]
		switch pt {
		case board.Pawn:
			adv := sq.RelativeRank(c) - 1
			if f := sq.File(); f >= 2 && f <= 5 {
				score += adv * pawnAdvanceCenter
			} else {
				score += adv * pawnAdvanceWing
			}
		case board.Knight:
			score += centrality(sq) * centerBonusKnight
		case board.Bishop:
			score += centrality(sq) * centerBonusBishop
		case board.Queen:
			score += centrality(sq) * centerBonusQueen
		}
	})
	return score
}
