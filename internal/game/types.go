package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

// Phase is the stage of the session state machine.
type Phase int

const (
	PhasePlaying   Phase = iota // waiting for a move of the side to move
	PhasePromotion              // a pawn reached the last rank, waiting for its kind
	PhaseOver                   // the game has ended
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhasePromotion:
		return "promotion"
	case PhaseOver:
		return "over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Reason says why a game ended.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonKingCaptured
	ReasonTimeout
	ReasonResignation
)

func (r Reason) String() string {
	switch r {
	case ReasonKingCaptured:
		return "king captured"
	case ReasonTimeout:
		return "time"
	case ReasonResignation:
		return "resignation"
	}
	return "none"
}

// Result is the outcome of a finished game.
type Result struct {
	Winner board.Color
	Reason Reason
}

// String returns e.g. "White wins by king captured".
func (r Result) String() string {
	if r.Reason == ReasonNone {
		return ""
	}
	name := r.Winner.String()
	return fmt.Sprintf("%s%s wins by %s", strings.ToUpper(name[:1]), name[1:], r.Reason)
}

// MoveRecord is one entry of the move history.
type MoveRecord struct {
	Color    board.Color
	Move     board.Move
	Piece    board.Piece
	Captured board.Piece
	SAN      string
}

// IsCapture reports whether the move took a piece.
func (r MoveRecord) IsCapture() bool {
	return r.Captured != board.NoPiece
}

// ClickKind tells what a click did.
type ClickKind int

const (
	ClickIgnored   ClickKind = iota // nothing happened
	ClickSelected                   // a piece was selected
	ClickCleared                    // the selection was dropped
	ClickMoved                      // a move was played
	ClickPromotion                  // a move was played and waits for a promotion kind
)

// ClickResult describes the effect of Session.Click.
type ClickResult struct {
	Kind         ClickKind
	Selected     board.Square
	Destinations board.SquareSet
	Record       MoveRecord
}

// View is a consistent copy of the session state for readers.
type View struct {
	Position     *board.Position
	Turn         board.Color
	Phase        Phase
	Result       Result
	Selected     board.Square
	Destinations board.SquareSet
	Promotion    board.Square
	LastMove     board.Move
	History      []MoveRecord
	Remaining    [2]time.Duration
	Untimed      bool
}
