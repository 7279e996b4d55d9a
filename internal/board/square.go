// Package board implements the chess rules engine: coordinates, the position
// model and per-piece move generation.
package board

import (
	"fmt"
	"unicode"
)

// Square represents a square on the chess board (0-63).
// Uses Little-Endian Rank-File Mapping: A1=0, H1=7, A8=56, H8=63.
type Square uint8

// Square constants for all 64 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare Square = 64
)

// File returns the file (column) of the square (0-7, where 0=a, 7=h).
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the rank (row) of the square (0-7, where 0=1, 7=8).
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// IsValid returns true if the square is a valid board square (0-63).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Coord returns the square as a signed file/rank pair for offset arithmetic.
func (sq Square) Coord() Coord {
	return Coord{File: sq.File(), Rank: sq.Rank()}
}

// NewSquare creates a square from file and rank (0-indexed).
// The caller is responsible for passing in-bounds values.
func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

// InBounds reports whether a 0-indexed file/rank pair lies on the board.
func InBounds(file, rank int) bool {
	return file >= 0 && file < 8 && rank >= 0 && rank < 8
}

// Decompose parses a two-character coordinate such as "e4".
//
// The text must be exactly a letter followed by a digit; anything else is
// ErrInvalidCoordinate. A well-formed coordinate that names no board square
// ("z9", "a0") is rejected the same way, since a Square is only ever stored
// in bounds.
func Decompose(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("%w: %q: need 2 characters, got %d", ErrInvalidCoordinate, s, len(s))
	}
	f, r := rune(s[0]), rune(s[1])
	if !unicode.IsLetter(f) {
		return NoSquare, fmt.Errorf("%w: %q: file %q is not a letter", ErrInvalidCoordinate, s, f)
	}
	if !unicode.IsDigit(r) {
		return NoSquare, fmt.Errorf("%w: %q: rank %q is not a digit", ErrInvalidCoordinate, s, r)
	}

	c := Coord{File: int(unicode.ToLower(f) - 'a'), Rank: int(r - '1')}
	if !c.InBounds() {
		return NoSquare, fmt.Errorf("%w: %q: off the board", ErrInvalidCoordinate, s)
	}
	return c.Square(), nil
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 8th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// Direction is one step of a ray or a fixed offset, in files and ranks.
type Direction struct {
	DF, DR int
}

// Coord is a file/rank pair that may lie off the board. It only exists while
// candidate squares are being generated; results are always Squares.
type Coord struct {
	File, Rank int
}

// Step returns the coordinate k steps away in direction d.
func (c Coord) Step(d Direction, k int) Coord {
	return Coord{File: c.File + d.DF*k, Rank: c.Rank + d.DR*k}
}

// InBounds reports whether the coordinate is on the board.
func (c Coord) InBounds() bool {
	return InBounds(c.File, c.Rank)
}

// Square converts an in-bounds coordinate to a Square, or NoSquare.
func (c Coord) Square() Square {
	if !c.InBounds() {
		return NoSquare
	}
	return NewSquare(c.File, c.Rank)
}
