package board

import (
	"math/bits"
	"strings"
)

// SquareSet is a set of squares, one bit per square.
// Bit 0 = A1, Bit 7 = H1, Bit 56 = A8, Bit 63 = H8.
type SquareSet uint64

// NewSquareSet returns a set holding the given squares.
func NewSquareSet(squares ...Square) SquareSet {
	var s SquareSet
	for _, sq := range squares {
		s = s.Add(sq)
	}
	return s
}

// Add returns the set with sq included. NoSquare is ignored.
func (s SquareSet) Add(sq Square) SquareSet {
	if !sq.IsValid() {
		return s
	}
	return s | 1<<sq
}

// Remove returns the set without sq.
func (s SquareSet) Remove(sq Square) SquareSet {
	if !sq.IsValid() {
		return s
	}
	return s &^ (1 << sq)
}

// Has reports whether sq is in the set.
func (s SquareSet) Has(sq Square) bool {
	return sq.IsValid() && s&(1<<sq) != 0
}

// Len returns the number of squares in the set.
func (s SquareSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Empty returns true if the set has no squares.
func (s SquareSet) Empty() bool {
	return s == 0
}

// Union returns the squares in either set.
func (s SquareSet) Union(o SquareSet) SquareSet {
	return s | o
}

// Squares returns the members in ascending order (a1, b1, ..., h8).
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for s != 0 {
		out = append(out, Square(bits.TrailingZeros64(uint64(s))))
		s &= s - 1
	}
	return out
}

// String returns the members in coordinate notation, e.g. "[e3 e4]".
func (s SquareSet) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, sq := range s.Squares() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(sq.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
