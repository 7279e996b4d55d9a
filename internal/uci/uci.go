// Package uci implements a line-oriented text driver for the engine, modelled
// on the Universal Chess Interface, plus debugging commands for the move
// generator.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/engine"
)

// UCI drives an engine from text commands.
type UCI struct {
	engine *engine.Engine
	in     io.Reader

	outMu sync.Mutex
	out   io.Writer

	position *board.Position
	turn     board.Color

	// Where the last "position" command started and what it played.
	start  *board.Position
	played []board.Move

	// Search state
	searchDone chan struct{}
	infinite   bool

	debug bool
}

// New creates a driver reading commands from in and writing replies to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *UCI {
	u := &UCI{
		engine: eng,
		in:     in,
		out:    out,
	}
	u.reset()
	eng.OnInfo = u.sendInfo
	return u
}

// SetDebug turns on position logging after every "position" command.
func (u *UCI) SetDebug(on bool) {
	u.debug = on
}

// Run processes commands until "quit", end of input, or ctx is done.
// A search still running at end of input is allowed to finish.
func (u *UCI) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			u.stopSearch()
			return err
		}
		if quit := u.Execute(scanner.Text()); quit {
			return nil
		}
	}
	if u.infinite {
		u.stopSearch()
	} else {
		u.waitSearch()
	}
	return scanner.Err()
}

// Execute handles one command line and reports whether it was "quit".
func (u *UCI) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "uci":
		u.handleUCI()
	case "isready":
		u.waitSearch()
		u.println("readyok")
	case "ucinewgame":
		u.stopSearch()
		u.engine.Clear()
		u.reset()
	case "position":
		u.stopSearch()
		if err := u.handlePosition(args); err != nil {
			u.printf("info string %v\n", err)
		}
	case "go":
		u.handleGo(args)
	case "stop":
		u.stopSearch()
	case "quit":
		u.stopSearch()
		return true
	case "debug":
		u.debug = len(args) > 0 && args[0] == "on"
	// Debug commands
	case "d":
		u.display()
	case "moves":
		u.handleMoves(args)
	case "perft":
		u.handlePerft(args)
	default:
		u.printf("info string unknown command: %s\n", cmd)
	}
	return false
}

func (u *UCI) reset() {
	u.position, u.turn = board.NewPosition(), board.White
	u.start, u.played = u.position.Copy(), nil
}

// display prints the board, its FEN, the moves that led to it and the
// static evaluation for the side to move.
func (u *UCI) display() {
	u.printf("%s\nFen: %s\nTurn: %v\n", u.position, u.position.ToFEN(u.turn), u.turn)
	if len(u.played) > 0 {
		u.printf("Moves: %s\n", strings.Join(board.MovesToSAN(u.start, u.played), " "))
	}
	u.printf("Eval: %s (%v)\n", engine.ScoreToString(u.engine.Evaluate(u.position, u.turn)), u.turn)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name pocketchess")
	u.println("id author pocketchess")
	u.println("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// Moves are coordinate text or algebraic notation ("e4", "Nf3", "a8=N").
// On error the previous position is kept.
func (u *UCI) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: missing startpos or fen")
	}

	moveStart := slices.Index(args, "moves")
	if moveStart < 0 {
		moveStart = len(args)
	}

	var (
		pos  *board.Position
		turn board.Color
		err  error
	)
	switch args[0] {
	case "startpos":
		pos, turn = board.NewPosition(), board.White
	case "fen":
		pos, turn, err = board.ParseFEN(strings.Join(args[1:moveStart], " "))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("position: unknown form %q", args[0])
	}

	start := pos.Copy()
	var played []board.Move
	if moveStart < len(args) {
		for _, text := range args[moveStart+1:] {
			m, err := u.parseMove(pos, turn, text)
			if err != nil {
				return err
			}
			pos.Apply(m)
			played = append(played, m)
			turn = turn.Other()
		}
	}

	u.position, u.turn = pos, turn
	u.start, u.played = start, played
	if u.debug {
		log.Printf("[MOVE] position set, %v to move:%s", turn, pos)
	}
	return nil
}

// parseMove converts coordinate or algebraic text to a move that the
// generator allows. A pawn reaching the last rank without a suffix promotes
// to a queen.
func (u *UCI) parseMove(pos *board.Position, turn board.Color, text string) (board.Move, error) {
	m, err := board.ParseMove(text)
	if err != nil {
		return board.ParseSAN(text, pos, turn)
	}
	piece := pos.PieceAt(m.From)
	if piece == board.NoPiece || piece.Color() != turn {
		return board.NoMove, fmt.Errorf("%w: %s: no %v piece on %v", board.ErrInvalidMove, text, turn, m.From)
	}
	if piece.Type() == board.Pawn && m.To.RelativeRank(turn) == 7 && !m.IsPromotion() {
		m.Promotion = board.Queen
	}
	if !slices.Contains(board.GenerateMoves(pos, turn), m) {
		return board.NoMove, fmt.Errorf("%w: %s is not playable", board.ErrInvalidMove, text)
	}
	return m, nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth    int
	MoveTime time.Duration
	Infinite bool
	WTime    time.Duration
	BTime    time.Duration
}

// ParseGoOptions parses "go" command arguments. Unknown words are skipped.
func ParseGoOptions(args []string) GoOptions {
	opts := GoOptions{}

	ms := func(i int) time.Duration {
		n, _ := strconv.Atoi(args[i])
		return time.Duration(n) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		hasValue := i+1 < len(args)
		switch args[i] {
		case "depth":
			if hasValue {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if hasValue {
				opts.MoveTime = ms(i + 1)
				i++
			}
		case "wtime":
			if hasValue {
				opts.WTime = ms(i + 1)
				i++
			}
		case "btime":
			if hasValue {
				opts.BTime = ms(i + 1)
				i++
			}
		case "infinite":
			opts.Infinite = true
		}
	}
	return opts
}

// limits converts GoOptions to engine.SearchLimits for the side to move.
func (o GoOptions) limits(turn board.Color) engine.SearchLimits {
	if o.Infinite {
		return engine.SearchLimits{Infinite: true}
	}
	limits := engine.SearchLimits{Depth: o.Depth, MoveTime: o.MoveTime}
	if turn == board.White {
		limits.TimeLeft = o.WTime
	} else {
		limits.TimeLeft = o.BTime
	}
	return limits
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.stopSearch()

	opts := ParseGoOptions(args)
	limits := opts.limits(u.turn)
	pos, turn := u.position.Copy(), u.turn

	u.infinite = opts.Infinite
	done := make(chan struct{})
	u.searchDone = done

	go func() {
		defer close(done)

		best, err := u.engine.SearchWithLimits(context.Background(), pos, turn, limits)
		if err != nil {
			u.printf("info string %v\n", err)
		}
		u.printf("bestmove %s\n", best)
	}()
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	parts := []string{fmt.Sprintf("depth %d", info.Depth)}

	switch {
	case info.Score > engine.MateScore-engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate %d", (engine.MateScore-info.Score+1)/2))
	case info.Score < -engine.MateScore+engine.MaxPly:
		parts = append(parts, fmt.Sprintf("score mate -%d", (engine.MateScore+info.Score+1)/2))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts,
		fmt.Sprintf("nodes %d", info.Nodes),
		fmt.Sprintf("time %d", info.Time.Milliseconds()))
	if info.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %d", uint64(float64(info.Nodes)/info.Time.Seconds())))
	}
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	if len(info.PV) > 0 {
		pv := make([]string, len(info.PV))
		for i, m := range info.PV {
			pv[i] = m.String()
		}
		parts = append(parts, "pv "+strings.Join(pv, " "))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// stopSearch stops the current search and waits for its bestmove line.
// Stop is repeated until the search goroutine exits, since a Stop that lands
// before the search has started is reset by it.
func (u *UCI) stopSearch() {
	if u.searchDone == nil {
		return
	}
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		u.engine.Stop()
		select {
		case <-u.searchDone:
			u.searchDone = nil
			return
		case <-ticker.C:
		}
	}
}

// waitSearch blocks until a running search finishes on its own.
func (u *UCI) waitSearch() {
	if u.searchDone == nil {
		return
	}
	<-u.searchDone
	u.searchDone = nil
}

// handleMoves prints the destinations of the piece on a square.
func (u *UCI) handleMoves(args []string) {
	if len(args) == 0 {
		u.println("info string usage: moves <square>")
		return
	}
	sq, err := board.Decompose(args[0])
	if err != nil {
		u.printf("info string %v\n", err)
		return
	}
	dests, err := board.Destinations(u.position, sq)
	if err != nil {
		u.printf("info string %v\n", err)
		return
	}
	u.printf("%v %s: %v\n", sq, u.position.PieceAt(sq).Name(), dests)
}

// handlePerft runs a perft test, listing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			u.printf("info string invalid perft depth %q\n", args[0])
			return
		}
		depth = d
	}

	start := time.Now()
	divide := board.Divide(u.position, u.turn, depth)
	elapsed := time.Since(start)

	moves := make([]board.Move, 0, len(divide))
	for m := range divide {
		moves = append(moves, m)
	}
	slices.SortFunc(moves, func(a, b board.Move) int {
		return strings.Compare(a.String(), b.String())
	})

	var nodes uint64
	var sb strings.Builder
	for _, m := range moves {
		fmt.Fprintf(&sb, "%s: %d\n", m, divide[m])
		nodes += divide[m]
	}
	fmt.Fprintf(&sb, "\nNodes: %d\nTime: %v\n", nodes, elapsed.Round(time.Millisecond))
	u.printf("%s", sb.String())
}

func (u *UCI) printf(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) println(s string) {
	u.printf("%s\n", s)
}
