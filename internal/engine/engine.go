// Package engine implements the computer opponent: an iterative-deepening
// alpha-beta search over the board package's move generator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

// ErrNoMoves is returned when the side to move has nothing to play.
var ErrNoMoves = errors.New("no moves available")

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	TimeLeft time.Duration // Remaining clock time of the side to move (0 = untimed)
	Infinite bool          // Search until stopped
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "Difficulty(" + strconv.Itoa(int(d)) + ")"
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Hard; d++ {
		if s == d.String() {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

// Clock reports the time a side has left. Session satisfies it.
type Clock interface {
	Remaining(color board.Color) time.Duration
}

// Engine is the computer opponent. Searches are serialized; Stop may be
// called from any goroutine.
type Engine struct {
	mu         sync.Mutex
	searcher   *Searcher
	tt         *TranspositionTable
	timeman    *TimeManager
	difficulty Difficulty
	clock      Clock

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher:   NewSearcher(tt),
		tt:         tt,
		timeman:    NewTimeManager(),
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.difficulty = d
}

// SetClock makes ProposeMove budget its time from c. Nil disables it.
func (e *Engine) SetClock(c Clock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = c
}

// ProposeMove searches pos for color under the current difficulty.
func (e *Engine) ProposeMove(ctx context.Context, pos *board.Position, color board.Color) (board.Move, error) {
	e.mu.Lock()
	limits := DifficultySettings[e.difficulty]
	if e.clock != nil {
		limits.TimeLeft = e.clock.Remaining(color)
	}
	e.mu.Unlock()
	return e.SearchWithLimits(ctx, pos, color, limits)
}

// SearchWithLimits finds the best move for color. The position is not
// modified. The search ends at the depth limit, when the time budget runs
// out, on Stop, or when ctx is done; in the last case ctx's error is returned.
func (e *Engine) SearchWithLimits(ctx context.Context, pos *board.Position, color board.Color, limits SearchLimits) (board.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	moves := board.GenerateMoves(pos, color)
	if len(moves) == 0 {
		return board.NoMove, fmt.Errorf("%w for %v", ErrNoMoves, color)
	}

	e.timeman.Init(limits)
	e.searcher.Reset(ctx, e.timeman.Deadline())
	e.tt.NewSearch()

	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = min(limits.Depth, MaxPly)
	}

	// Until the first iteration completes, play the most forcing move.
	SortMoves(moves, e.searcher.orderer.ScoreMoves(pos, moves, 0, board.NoMove))
	bestMove := moves[0]

	for depth := 1; depth <= maxDepth; depth++ {
		move, score := e.searcher.Search(pos, color, depth)
		if e.searcher.IsStopped() {
			break
		}
		if move != board.NoMove {
			bestMove = move
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    e.searcher.Nodes(),
				Time:     e.timeman.Elapsed(),
				PV:       e.searcher.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		// A forced king capture is found; deeper search cannot improve it.
		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}
		if !e.timeman.ShouldStartIteration() {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return board.NoMove, err
	}
	log.Printf("[AI] %v plays %v (%d nodes, %v)", color, bestMove, e.searcher.Nodes(), e.timeman.Elapsed().Round(time.Millisecond))
	return bestMove, nil
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
}

// Evaluate returns the static evaluation of a position for color.
func (e *Engine) Evaluate(pos *board.Position, color board.Color) int {
	return Evaluate(pos, color)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return "Takes king in " + strconv.Itoa((MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return "Loses king in " + strconv.Itoa((MateScore+score+1)/2)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
