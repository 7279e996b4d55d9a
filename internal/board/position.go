package board

import (
	"fmt"
	"strings"
)

// Position represents the placement of every piece on the board.
//
// Pieces are kept in per-color, per-type buckets (insertion ordered, which
// only matters for draw order) and mirrored in a square table so that
// occupancy lookups are O(1). The two views are only changed together.
type Position struct {
	squares [64]Piece
	pieces  [2][6][]Square
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _, _ := ParseFEN(StartFEN)
	return pos
}

// NewEmptyPosition creates a position with no pieces.
func NewEmptyPosition() *Position {
	p := &Position{}
	for i := range p.squares {
		p.squares[i] = NoPiece
	}
	return p
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := &Position{squares: p.squares}
	for c := range p.pieces {
		for pt := range p.pieces[c] {
			if len(p.pieces[c][pt]) > 0 {
				newPos.pieces[c][pt] = append([]Square(nil), p.pieces[c][pt]...)
			}
		}
	}
	return newPos
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return p.squares[sq]
}

// IsEmpty returns true if no piece stands on the square.
// Returns false for NoSquare.
func (p *Position) IsEmpty(sq Square) bool {
	return sq.IsValid() && p.squares[sq] == NoPiece
}

// IsEmptyAt is IsEmpty for coordinate text. Malformed or off-board text is
// reported as not empty; a false result does not mean the text was valid.
func (p *Position) IsEmptyAt(coord string) bool {
	sq, err := Decompose(coord)
	if err != nil {
		return false
	}
	return p.IsEmpty(sq)
}

// IsEnemy returns true if the square holds a piece of the opponent of mover.
func (p *Position) IsEnemy(sq Square, mover Color) bool {
	piece := p.PieceAt(sq)
	return piece != NoPiece && piece.Color() == mover.Other()
}

// Squares returns a copy of the bucket for the given color and type.
func (p *Position) Squares(c Color, pt PieceType) []Square {
	if c >= NoColor || pt >= NoPieceType {
		return nil
	}
	return append([]Square(nil), p.pieces[c][pt]...)
}

// Count returns the number of pieces of the given color and type.
func (p *Position) Count(c Color, pt PieceType) int {
	if c >= NoColor || pt >= NoPieceType {
		return 0
	}
	return len(p.pieces[c][pt])
}

// HasKing reports whether the color still has a king on the board.
func (p *Position) HasKing(c Color) bool {
	return p.Count(c, King) > 0
}

// ForEach calls fn for every piece of color c, pawns first.
func (p *Position) ForEach(c Color, fn func(pt PieceType, sq Square)) {
	for pt := Pawn; pt <= King; pt++ {
		for _, sq := range p.pieces[c][pt] {
			fn(pt, sq)
		}
	}
}

// Place puts a piece on an empty square.
func (p *Position) Place(piece Piece, sq Square) error {
	if piece >= NoPiece {
		return fmt.Errorf("%w: cannot place %v", ErrUnknownPieceKind, piece)
	}
	if !sq.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, sq)
	}
	if p.squares[sq] != NoPiece {
		return fmt.Errorf("%w: %v holds %s", ErrSquareOccupied, sq, p.squares[sq].Name())
	}
	p.setPiece(piece, sq)
	return nil
}

// Remove takes whatever stands on sq off the board and returns it.
func (p *Position) Remove(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	p.pieces[c][pt] = removeSquare(p.pieces[c][pt], sq)
	p.squares[sq] = NoPiece
	return piece
}

// Apply performs a move without checking it against the rules: the mover
// leaves its source square, anything on the destination is captured, and a
// pawn arriving on its last rank becomes m.Promotion when that names a
// promotion type. It returns the captured piece, or NoPiece.
//
// A move from an empty square changes nothing.
func (p *Position) Apply(m Move) Piece {
	mover := p.PieceAt(m.From)
	if mover == NoPiece || !m.To.IsValid() || m.From == m.To {
		return NoPiece
	}

	captured := p.Remove(m.To)
	c, pt := mover.Color(), mover.Type()
	p.pieces[c][pt] = removeSquare(p.pieces[c][pt], m.From)
	p.squares[m.From] = NoPiece

	if pt == Pawn && m.To.RelativeRank(c) == 7 && IsPromotionType(m.Promotion) {
		pt = m.Promotion
	}
	p.setPiece(NewPiece(pt, c), m.To)
	return captured
}

// Promote replaces the pawn on sq with a piece of type pt.
func (p *Position) Promote(sq Square, pt PieceType) error {
	piece := p.PieceAt(sq)
	if piece.Type() != Pawn {
		return fmt.Errorf("no pawn on %v", sq)
	}
	if !IsPromotionType(pt) {
		return fmt.Errorf("%w: cannot promote to %v", ErrUnknownPieceKind, pt)
	}
	p.Remove(sq)
	p.setPiece(NewPiece(pt, piece.Color()), sq)
	return nil
}

// setPiece places a piece on a square known to be empty.
func (p *Position) setPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	p.pieces[c][pt] = append(p.pieces[c][pt], sq)
	p.squares[sq] = piece
}

func removeSquare(list []Square, sq Square) []Square {
	for i, s := range list {
		if s == sq {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt <= King; pt++ {
		score += len(p.pieces[White][pt]) * PieceValue[pt]
		score -= len(p.pieces[Black][pt]) * PieceValue[pt]
	}
	return score
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n")
	return sb.String()
}
