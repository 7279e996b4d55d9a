package board

import "errors"

var (
	// ErrInvalidCoordinate is returned for malformed or off-board coordinate text.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrUnknownPieceKind is returned when move generation is asked about a
	// piece kind outside the closed set. It signals a programming error.
	ErrUnknownPieceKind = errors.New("unknown piece kind")

	// ErrSquareOccupied is returned when placing a piece on an occupied square.
	ErrSquareOccupied = errors.New("square occupied")

	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidMove indicates malformed move text.
	ErrInvalidMove = errors.New("invalid move")
)
