// Package game owns the state of one game: the position, whose turn it is,
// the clocks and the selection made through the two-click protocol.
package game

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/clock"
)

// Options configures a new Session.
type Options struct {
	// Position to start from. Nil means the initial layout.
	Position *board.Position
	// Turn is the side to move first.
	Turn board.Color
	// TimerLength is each player's time. Zero means untimed.
	TimerLength time.Duration
	// Clock, when set, replaces TimerLength (e.g. a resumed game).
	Clock *clock.Clock
	// Debug logs a diagram and the destination set on every move.
	Debug bool
}

// Opponent supplies moves for one side. Implementations receive a private
// copy of the position and must not retain it.
type Opponent interface {
	ProposeMove(ctx context.Context, pos *board.Position, color board.Color) (board.Move, error)
}

// Session is one game in progress. All methods are safe for concurrent use;
// every read-then-mutate sequence and every clock tick runs under one mutex.
type Session struct {
	mu sync.Mutex

	pos   *board.Position
	turn  board.Color
	clock *clock.Clock
	debug bool

	// While running, the side to move owes the time since charged.
	now     func() time.Time
	running bool
	charged time.Time

	phase     Phase
	result    Result
	selected  board.Square
	dests     board.SquareSet
	promotion board.Square
	lastMove  board.Move
	history   []MoveRecord
}

// New creates a session.
func New(opts Options) *Session {
	pos := opts.Position
	if pos == nil {
		pos = board.NewPosition()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New(opts.TimerLength)
	}
	turn := opts.Turn
	if turn >= board.NoColor {
		turn = board.White
	}
	s := &Session{
		pos:       pos,
		turn:      turn,
		clock:     clk,
		debug:     opts.Debug,
		now:       time.Now,
		selected:  board.NoSquare,
		promotion: board.NoSquare,
		lastMove:  board.NoMove,
	}
	s.checkGameEnd()
	return s
}

// Turn returns the side to move.
func (s *Session) Turn() board.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Result returns the outcome; its Reason is ReasonNone while playing.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Over reports whether the game has ended.
func (s *Session) Over() bool {
	return s.Phase() == PhaseOver
}

// Snapshot returns a deep copy of the position.
func (s *Session) Snapshot() *board.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.Copy()
}

// FEN returns the position and side to move as FEN.
func (s *Session) FEN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos.ToFEN(s.turn)
}

// Remaining returns the clock time left for color.
func (s *Session) Remaining(color board.Color) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Remaining(color)
}

// History returns a copy of the moves played so far.
func (s *Session) History() []MoveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MoveRecord(nil), s.history...)
}

// View returns a consistent copy of everything a renderer needs.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Position:     s.pos.Copy(),
		Turn:         s.turn,
		Phase:        s.phase,
		Result:       s.result,
		Selected:     s.selected,
		Destinations: s.dests,
		Promotion:    s.promotion,
		LastMove:     s.lastMove,
		History:      append([]MoveRecord(nil), s.history...),
		Remaining:    [2]time.Duration{s.clock.Remaining(board.White), s.clock.Remaining(board.Black)},
		Untimed:      s.clock.Untimed(),
	}
}

// Select remembers sq as the selected piece and returns its destinations.
func (s *Session) Select(sq board.Square) (board.SquareSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectSquare(sq)
}

// ClearSelection drops the current selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelection()
}

// Click runs the two-click protocol: a click on one of the mover's pieces
// selects it, a click on a destination of the selection plays the move, and
// any other click drops the selection.
func (s *Session) Click(sq board.Square) (ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlayable(); err != nil {
		return ClickResult{Kind: ClickIgnored}, err
	}

	if s.selected != board.NoSquare && s.dests.Has(sq) {
		rec, err := s.apply(board.NewMove(s.selected, sq))
		if err != nil {
			return ClickResult{Kind: ClickIgnored}, err
		}
		kind := ClickMoved
		if s.phase == PhasePromotion {
			kind = ClickPromotion
		}
		return ClickResult{Kind: kind, Selected: board.NoSquare, Record: rec}, nil
	}

	piece := s.pos.PieceAt(sq)
	if sq != s.selected && piece != board.NoPiece && piece.Color() == s.turn {
		dests, err := s.selectSquare(sq)
		if err != nil {
			return ClickResult{Kind: ClickIgnored}, err
		}
		return ClickResult{Kind: ClickSelected, Selected: sq, Destinations: dests}, nil
	}

	if s.selected == board.NoSquare {
		return ClickResult{Kind: ClickIgnored, Selected: board.NoSquare}, nil
	}
	s.clearSelection()
	return ClickResult{Kind: ClickCleared, Selected: board.NoSquare}, nil
}

// Apply validates m against the rules and plays it.
//
// A pawn move onto the last rank without a promotion kind leaves the session
// in PhasePromotion until Promote is called.
func (s *Session) Apply(m board.Move) (MoveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(m)
}

// Promote completes a pending promotion.
func (s *Session) Promote(kind board.PieceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePromotion {
		return ErrNoPromotionPending
	}
	if !board.IsPromotionType(kind) {
		return fmt.Errorf("%w: %v", ErrInvalidPromotion, kind)
	}
	if err := s.pos.Promote(s.promotion, kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPromotion, err)
	}

	last := &s.history[len(s.history)-1]
	last.Move.Promotion = kind
	last.SAN += "=" + board.NewPiece(kind, board.White).String()
	s.lastMove = last.Move
	log.Printf("[MOVE] %v promotes on %v to %v", s.turn, s.promotion, kind)

	s.promotion = board.NoSquare
	s.phase = PhasePlaying
	s.endTurn()
	return nil
}

// Resign ends the game in favor of color's opponent.
func (s *Session) Resign(color board.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseOver {
		return ErrGameOver
	}
	s.finish(color.Other(), ReasonResignation)
	return nil
}

// Tick charges d to the side to move. It reports whether the game is over.
// Use it to drive the clock by hand; RunClock measures time itself.
func (s *Session) Tick(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseOver {
		return true
	}
	return s.charge(d)
}

// RunClock charges the side to move with wall-clock time, checking every
// interval, until ctx is done or the game ends. A turn switch charges the
// mover up to the moment it moved. It blocks; run it in its own goroutine.
func (s *Session) RunClock(ctx context.Context, interval time.Duration) {
	s.startClock()
	defer s.stopClock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.chargeElapsed() {
				return
			}
		}
	}
}

func (s *Session) startClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.charged = s.now()
}

func (s *Session) stopClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// chargeElapsed charges the side to move up to now and reports whether the
// game is over.
func (s *Session) chargeElapsed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseOver {
		return true
	}
	return s.chargeRunning()
}

// chargeRunning settles the running clock for the side to move.
func (s *Session) chargeRunning() bool {
	if !s.running {
		return false
	}
	now := s.now()
	d := now.Sub(s.charged)
	s.charged = now
	return s.charge(d)
}

func (s *Session) charge(d time.Duration) bool {
	if s.clock.Tick(s.turn, d) {
		log.Printf("[CLOCK] %v ran out of time", s.turn)
		s.finish(s.turn.Other(), ReasonTimeout)
		return true
	}
	return false
}

// PlayOpponent asks opp for a move of the side to move and plays it. The
// opponent works on a snapshot, so the session stays usable while it thinks.
// A promotion without a chosen kind becomes a queen.
func (s *Session) PlayOpponent(ctx context.Context, opp Opponent) (MoveRecord, error) {
	s.mu.Lock()
	if err := s.checkPlayable(); err != nil {
		s.mu.Unlock()
		return MoveRecord{}, err
	}
	pos, turn := s.pos.Copy(), s.turn
	s.mu.Unlock()

	m, err := opp.ProposeMove(ctx, pos, turn)
	if err != nil {
		return MoveRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.turn != turn {
		return MoveRecord{}, fmt.Errorf("%w: %v moved while the opponent was thinking", ErrNotYourTurn, s.turn.Other())
	}
	if mover := s.pos.PieceAt(m.From); mover.Type() == board.Pawn &&
		m.To.RelativeRank(turn) == 7 && !m.IsPromotion() {
		m.Promotion = board.Queen
	}
	return s.apply(m)
}

func (s *Session) checkPlayable() error {
	switch s.phase {
	case PhaseOver:
		return ErrGameOver
	case PhasePromotion:
		return ErrPromotionPending
	}
	return nil
}

func (s *Session) selectSquare(sq board.Square) (board.SquareSet, error) {
	if err := s.checkPlayable(); err != nil {
		return 0, err
	}
	piece := s.pos.PieceAt(sq)
	if piece == board.NoPiece {
		return 0, fmt.Errorf("%w: %v", ErrEmptySquare, sq)
	}
	if piece.Color() != s.turn {
		return 0, fmt.Errorf("%w: %v is %s", ErrNotYourTurn, sq, piece.Name())
	}
	dests, err := board.Destinations(s.pos, sq)
	if err != nil {
		return 0, err
	}
	s.selected, s.dests = sq, dests
	if s.debug {
		log.Printf("[MOVE] selected %s on %v: %v", piece.Name(), sq, dests)
	}
	return dests, nil
}

func (s *Session) clearSelection() {
	s.selected = board.NoSquare
	s.dests = 0
}

func (s *Session) apply(m board.Move) (MoveRecord, error) {
	if err := s.checkPlayable(); err != nil {
		return MoveRecord{}, err
	}

	piece := s.pos.PieceAt(m.From)
	if piece == board.NoPiece {
		return MoveRecord{}, fmt.Errorf("%w: %v", ErrEmptySquare, m.From)
	}
	if piece.Color() != s.turn {
		return MoveRecord{}, fmt.Errorf("%w: %v is %s", ErrNotYourTurn, m.From, piece.Name())
	}
	dests, err := board.Destinations(s.pos, m.From)
	if err != nil {
		return MoveRecord{}, err
	}
	if !dests.Has(m.To) {
		return MoveRecord{}, fmt.Errorf("%w: %s %v", ErrIllegalMove, piece.Name(), m)
	}

	promoting := piece.Type() == board.Pawn && m.To.RelativeRank(s.turn) == 7
	if m.Promotion != board.NoPieceType {
		if !promoting {
			return MoveRecord{}, fmt.Errorf("%w: %v is not a promotion", ErrIllegalMove, m)
		}
		if !board.IsPromotionType(m.Promotion) {
			return MoveRecord{}, fmt.Errorf("%w: %v", ErrInvalidPromotion, m.Promotion)
		}
	}

	rec := MoveRecord{Color: s.turn, Move: m, Piece: piece, SAN: m.ToSAN(s.pos)}
	rec.Captured = s.pos.Apply(m)
	s.history = append(s.history, rec)
	s.lastMove = m
	s.clearSelection()

	log.Printf("[MOVE] %v %s %v", s.turn, rec.SAN, m)
	if s.debug {
		log.Printf("[MOVE] position after %v:%v", m, s.pos)
	}

	if rec.Captured.Type() == board.King {
		s.finish(s.turn, ReasonKingCaptured)
		return rec, nil
	}
	if promoting && m.Promotion == board.NoPieceType {
		s.phase = PhasePromotion
		s.promotion = m.To
		return rec, nil
	}
	s.endTurn()
	return rec, nil
}

// endTurn settles the mover's clock, passes the move to the other side and
// checks for a finished game.
func (s *Session) endTurn() {
	if s.chargeRunning() {
		return
	}
	s.turn = s.turn.Other()
	s.checkGameEnd()
}

func (s *Session) checkGameEnd() {
	if s.phase == PhaseOver {
		return
	}
	switch {
	case !s.pos.HasKing(s.turn):
		s.finish(s.turn.Other(), ReasonKingCaptured)
	case s.clock.Flagged(s.turn):
		s.finish(s.turn.Other(), ReasonTimeout)
	}
}

func (s *Session) finish(winner board.Color, reason Reason) {
	s.phase = PhaseOver
	s.result = Result{Winner: winner, Reason: reason}
	s.promotion = board.NoSquare
	s.clearSelection()
	log.Printf("[MOVE] game over: %v", s.result)
}
