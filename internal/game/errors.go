package game

import "errors"

var (
	// ErrGameOver is returned for any move or selection after the game ended.
	ErrGameOver = errors.New("game is over")

	// ErrNotYourTurn is returned when selecting or moving the waiting side's piece.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrEmptySquare is returned when selecting or moving from an empty square.
	ErrEmptySquare = errors.New("no piece on square")

	// ErrIllegalMove is returned when the destination is not among the
	// piece's legal destinations.
	ErrIllegalMove = errors.New("illegal move")

	// ErrPromotionPending is returned while a promotion choice is outstanding.
	ErrPromotionPending = errors.New("promotion choice pending")

	// ErrInvalidPromotion is returned for a promotion to a pawn or king.
	ErrInvalidPromotion = errors.New("invalid promotion piece")

	// ErrNoPromotionPending is returned by Promote when no pawn is waiting.
	ErrNoPromotionPending = errors.New("no promotion pending")
)
