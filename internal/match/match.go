// Package match runs one game for a front end: it drives the opponent,
// relays local moves to a LAN peer, warns about low clocks, records the
// result and suspends unfinished games.
package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/clock"
	"github.com/hailam/pocketchess/internal/engine"
	"github.com/hailam/pocketchess/internal/game"
	"github.com/hailam/pocketchess/internal/lan"
	"github.com/hailam/pocketchess/internal/storage"
)

// LowTimeThreshold is the remaining time at which a side is warned once.
const LowTimeThreshold = 10 * time.Second

// ClockInterval is how often a timed game charges the side to move.
const ClockInterval = 100 * time.Millisecond

const sendTimeout = 10 * time.Second

// Recorder stores finished games.
type Recorder interface {
	RecordGame(result storage.GameResult) error
}

// SaveSlot holds the suspended game. *storage.Storage satisfies it.
type SaveSlot interface {
	LoadGame() (*storage.SavedGame, error)
	ClearSavedGame() error
}

// ErrNoSavedGame is returned by Resume when the slot is empty.
var ErrNoSavedGame = errors.New("match: no saved game")

// Remote is an opponent on the other end of a connection. *lan.Peer
// satisfies it.
type Remote interface {
	game.Opponent
	SendMove(ctx context.Context, m board.Move) error
	Resign(ctx context.Context) error
	Resigned() <-chan struct{}
	Done() <-chan struct{}
	Err() error
	Close() error
}

// Config describes a match.
type Config struct {
	Mode storage.GameMode
	// Local is the color played at this screen; NoColor when both sides are.
	Local board.Color
	// TimerLength is each side's clock. Zero means untimed.
	TimerLength time.Duration
	// Opponent plays the side that is not Local. A Remote also receives
	// the local moves.
	Opponent game.Opponent
	// Resume continues a suspended game instead of starting a new one.
	Resume   *storage.SavedGame
	Recorder Recorder
	Debug    bool
}

// EventKind tells what happened outside of the caller's own input.
type EventKind int

const (
	OpponentMoved  EventKind = iota // the opponent played Record
	OpponentFailed                  // the opponent could not produce a move
	RemoteResigned                  // the peer resigned
	RemoteLeft                      // the connection ended mid-game
	SendFailed                      // a local move did not reach the peer
	LowTime                         // Color has little time left
	GameOver                        // the game ended with Result
)

func (k EventKind) String() string {
	switch k {
	case OpponentMoved:
		return "opponent moved"
	case OpponentFailed:
		return "opponent failed"
	case RemoteResigned:
		return "remote resigned"
	case RemoteLeft:
		return "remote left"
	case SendFailed:
		return "send failed"
	case LowTime:
		return "low time"
	case GameOver:
		return "game over"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is reported by Update.
type Event struct {
	Kind   EventKind
	Record game.MoveRecord
	Color  board.Color
	Result game.Result
	Err    error
}

// Match is one game in progress.
type Match struct {
	cfg     Config
	session *game.Session
	remote  Remote
	prior   []string
	started time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	events chan Event

	thinking atomic.Bool
	stalled  atomic.Bool

	mu       sync.Mutex
	warned   [2]bool
	finished bool
}

// Resume restores the game suspended in slot. configure builds the match
// settings for it; its Resume field is filled in. The slot is emptied only
// once the match is running, so a save that cannot be restored is kept.
func Resume(slot SaveSlot, configure func(*storage.SavedGame) Config) (*Match, error) {
	saved, err := slot.LoadGame()
	if err != nil {
		return nil, fmt.Errorf("load saved game: %w", err)
	}
	if saved == nil {
		return nil, ErrNoSavedGame
	}
	cfg := configure(saved)
	cfg.Resume = saved
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := slot.ClearSavedGame(); err != nil {
		log.Printf("[STORAGE] clear saved game: %v", err)
	}
	return m, nil
}

// New starts a match. Clock and peer goroutines run until the game ends or
// Close is called.
func New(cfg Config) (*Match, error) {
	opts := game.Options{TimerLength: cfg.TimerLength, Debug: cfg.Debug}
	var prior []string
	if saved := cfg.Resume; saved != nil {
		pos, turn, err := board.ParseFEN(saved.FEN)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		clk := clock.New(saved.TimerLength)
		if !clk.Untimed() {
			clk.Set(board.White, saved.WhiteLeft)
			clk.Set(board.Black, saved.BlackLeft)
		}
		opts = game.Options{Position: pos, Turn: turn, Clock: clk, Debug: cfg.Debug}
		cfg.Mode, cfg.Local, cfg.TimerLength = saved.Mode, saved.Local, saved.TimerLength
		prior = append(prior, saved.Moves...)
	}
	if cfg.Opponent != nil && cfg.Local >= board.NoColor {
		return nil, errors.New("match: an opponent needs a local color")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Match{
		cfg:     cfg,
		session: game.New(opts),
		prior:   prior,
		started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan Event, 16),
	}
	if r, ok := cfg.Opponent.(Remote); ok {
		m.remote = r
		m.wg.Add(1)
		go m.watchRemote()
	}
	if cfg.TimerLength > 0 {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.session.RunClock(ctx, ClockInterval)
		}()
	}
	log.Printf("[MOVE] new %v match, local %v, timer %v", cfg.Mode, cfg.Local, cfg.TimerLength)
	return m, nil
}

// Session returns the underlying game.
func (m *Match) Session() *game.Session { return m.session }

// View returns a snapshot for rendering.
func (m *Match) View() game.View { return m.session.View() }

// Mode returns the kind of match.
func (m *Match) Mode() storage.GameMode { return m.cfg.Mode }

// Local returns the color played at this screen, or NoColor in 1v1.
func (m *Match) Local() board.Color { return m.cfg.Local }

// Thinking reports whether the opponent is working on a move.
func (m *Match) Thinking() bool { return m.thinking.Load() }

// Moves returns the move list in notation, including moves played before
// a resume.
func (m *Match) Moves() []string {
	hist := m.session.History()
	out := make([]string, 0, len(m.prior)+len(hist))
	out = append(out, m.prior...)
	for _, rec := range hist {
		out = append(out, rec.SAN)
	}
	return out
}

// CanMove reports whether the side to move is played at this screen.
func (m *Match) CanMove() bool {
	return m.cfg.Local == board.NoColor || m.session.Turn() == m.cfg.Local
}

// Click forwards a board click for the local side.
func (m *Match) Click(sq board.Square) (game.ClickResult, error) {
	if m.session.Over() {
		return game.ClickResult{Kind: game.ClickIgnored}, game.ErrGameOver
	}
	if !m.CanMove() {
		return game.ClickResult{Kind: game.ClickIgnored}, fmt.Errorf("%w: %v to move", game.ErrNotYourTurn, m.session.Turn())
	}
	res, err := m.session.Click(sq)
	if err == nil && res.Kind == game.ClickMoved {
		m.send(res.Record.Move)
	}
	return res, err
}

// Promote completes the local side's pending promotion.
func (m *Match) Promote(kind board.PieceType) error {
	if err := m.session.Promote(kind); err != nil {
		return err
	}
	if hist := m.session.History(); len(hist) > 0 {
		m.send(hist[len(hist)-1].Move)
	}
	return nil
}

// Resign gives up for the local side, or for the side to move in 1v1.
func (m *Match) Resign() error {
	color := m.cfg.Local
	if color == board.NoColor {
		color = m.session.Turn()
	}
	if err := m.session.Resign(color); err != nil {
		return err
	}
	if m.remote != nil {
		ctx, cancel := context.WithTimeout(m.ctx, sendTimeout)
		defer cancel()
		if err := m.remote.Resign(ctx); err != nil {
			log.Printf("[LAN] resign not delivered: %v", err)
		}
	}
	return nil
}

// Update collects what happened since the last call and starts the
// opponent when it is its turn. Call it once per frame.
func (m *Match) Update() []Event {
	var out []Event
drain:
	for {
		select {
		case ev := <-m.events:
			out = append(out, ev)
		default:
			break drain
		}
	}

	v := m.session.View()
	m.mu.Lock()
	if !v.Untimed && v.Phase != game.PhaseOver {
		for _, c := range []board.Color{board.White, board.Black} {
			if left := v.Remaining[c]; !m.warned[c] && left > 0 && left <= LowTimeThreshold {
				m.warned[c] = true
				out = append(out, Event{Kind: LowTime, Color: c})
			}
		}
	}
	over := v.Phase == game.PhaseOver && !m.finished
	if over {
		m.finished = true
	}
	m.mu.Unlock()

	if over {
		m.record(v.Result)
		out = append(out, Event{Kind: GameOver, Result: v.Result})
		m.cancel()
		return out
	}

	if v.Phase == game.PhasePlaying && m.cfg.Opponent != nil && v.Turn != m.cfg.Local && !m.stalled.Load() {
		if m.thinking.CompareAndSwap(false, true) {
			m.wg.Add(1)
			go m.playOpponent(v.Turn)
		}
	}
	return out
}

// Suspend returns the game for storage, or nil when it cannot be resumed:
// it is over, or it is played over the network.
func (m *Match) Suspend() *storage.SavedGame {
	if m.remote != nil {
		return nil
	}
	if m.session.Phase() == game.PhasePromotion {
		if err := m.session.Promote(board.Queen); err != nil {
			log.Printf("[STORAGE] suspend: %v", err)
		}
	}
	if m.session.Over() {
		return nil
	}
	return &storage.SavedGame{
		FEN:         m.session.FEN(),
		Mode:        m.cfg.Mode,
		Local:       m.cfg.Local,
		TimerLength: m.cfg.TimerLength,
		WhiteLeft:   m.session.Remaining(board.White),
		BlackLeft:   m.session.Remaining(board.Black),
		Moves:       m.Moves(),
		SavedAt:     time.Now(),
	}
}

// Close stops the clock and the opponent and hangs up on a peer.
func (m *Match) Close() error {
	m.cancel()
	var err error
	if m.remote != nil {
		err = m.remote.Close()
	}
	m.wg.Wait()
	return err
}

func (m *Match) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		log.Printf("[MOVE] event queue full, dropped %v", ev.Kind)
	}
}

func (m *Match) playOpponent(color board.Color) {
	defer m.wg.Done()
	defer m.thinking.Store(false)

	rec, err := m.session.PlayOpponent(m.ctx, m.cfg.Opponent)
	switch {
	case err == nil:
		m.emit(Event{Kind: OpponentMoved, Record: rec})
	case errors.Is(err, engine.ErrNoMoves):
		log.Printf("[AI] %v has no moves and forfeits", color)
		m.session.Resign(color)
	case m.ctx.Err() != nil, errors.Is(err, game.ErrGameOver), errors.Is(err, lan.ErrResigned), errors.Is(err, lan.ErrClosed):
		// the game ended while the opponent was thinking
	default:
		log.Printf("[AI] opponent failed: %v", err)
		m.stalled.Store(true)
		m.emit(Event{Kind: OpponentFailed, Color: color, Err: err})
	}
}

func (m *Match) send(mv board.Move) {
	if m.remote == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		// the last move of a game must still go out after Update cancels m.ctx
		ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), sendTimeout)
		defer cancel()
		if err := m.remote.SendMove(ctx, mv); err != nil && m.ctx.Err() == nil {
			log.Printf("[LAN] send %v: %v", mv, err)
			m.emit(Event{Kind: SendFailed, Err: err})
		}
	}()
}

// watchRemote turns a resignation or a lost connection into a result.
func (m *Match) watchRemote() {
	defer m.wg.Done()
	color := m.cfg.Local.Other()
	select {
	case <-m.remote.Resigned():
		if m.session.Resign(color) == nil {
			m.emit(Event{Kind: RemoteResigned, Color: color})
		}
	case <-m.remote.Done():
		if m.session.Resign(color) == nil {
			log.Printf("[LAN] peer left: %v", m.remote.Err())
			m.emit(Event{Kind: RemoteLeft, Color: color, Err: m.remote.Err()})
		}
	case <-m.ctx.Done():
	}
}

func (m *Match) record(res game.Result) {
	if m.cfg.Recorder == nil {
		return
	}
	err := m.cfg.Recorder.RecordGame(storage.GameResult{
		Winner:   res.Winner,
		Reason:   res.Reason.String(),
		Mode:     m.cfg.Mode,
		Duration: time.Since(m.started),
		Local:    m.cfg.Local,
	})
	if err != nil {
		log.Printf("[STORAGE] record game: %v", err)
	}
}
