package board

import "fmt"

// Move is a from/to pair with an optional promotion kind.
// Promotion is NoPieceType for every move that is not a promotion.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType}
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move{From: from, To: to, Promotion: promo}
}

// IsPromotion returns true if this move names a promotion kind.
func (m Move) IsPromotion() bool {
	return IsPromotionType(m.Promotion)
}

// IsCapture returns true if this move lands on an enemy piece.
func (m Move) IsCapture(pos *Position) bool {
	mover := pos.PieceAt(m.From)
	return mover != NoPiece && pos.IsEnemy(m.To, mover.Color())
}

// String returns coordinate notation (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseMove parses coordinate notation such as "e2e4" or "e7e8q".
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	from, err := Decompose(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}
	to, err := Decompose(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}

	if len(s) == 5 {
		promo, err := ParsePieceType(s[4:])
		if err != nil || !IsPromotionType(promo) {
			return NoMove, fmt.Errorf("%w: invalid promotion piece: %c", ErrInvalidMove, s[4])
		}
		return NewPromotion(from, to, promo), nil
	}
	return NewMove(from, to), nil
}
