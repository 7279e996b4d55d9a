package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

func mustFEN(t *testing.T, fen string) (*board.Position, board.Color) {
	t.Helper()
	pos, turn, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos, turn
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(4)
	eng.SetDifficulty(Easy)

	move, err := eng.ProposeMove(context.Background(), pos, board.White)
	if err != nil {
		t.Fatal(err)
	}
	dests, _ := board.Destinations(pos, move.From)
	if pos.PieceAt(move.From).Color() != board.White || !dests.Has(move.To) {
		t.Errorf("engine proposed an illegal move %v", move)
	}
	if pos.ToFEN(board.White) != board.StartFEN {
		t.Error("search modified the position")
	}
}

func TestSearchTactics(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want board.Move
	}{
		{"captures the king", "4k3/8/8/8/8/8/8/4RK2 w", board.NewMove(board.E1, board.E8)},
		{"takes a hanging queen", "4k3/8/8/3q4/8/8/8/3RK3 w", board.NewMove(board.D1, board.D5)},
		{"black takes a hanging rook", "4k3/8/8/8/8/1n6/8/R3K3 b", board.NewMove(board.B3, board.A1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, turn := mustFEN(t, tc.fen)
			eng := NewEngine(4)
			move, err := eng.SearchWithLimits(context.Background(), pos, turn, SearchLimits{Depth: 3})
			if err != nil {
				t.Fatal(err)
			}
			if move != tc.want {
				t.Errorf("got %v, want %v", move, tc.want)
			}
		})
	}
}

func TestSearchKeepsKingSafe(t *testing.T) {
	// The white rook covers the d-file; d8 and d7 lose the king.
	pos, turn := mustFEN(t, "4k3/8/8/8/8/8/8/3RK3 b")
	eng := NewEngine(4)
	move, err := eng.SearchWithLimits(context.Background(), pos, turn, SearchLimits{Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	if move.From != board.E8 || move.To.File() == 3 {
		t.Errorf("king walked into the rook: %v", move)
	}
}

func TestNoMoves(t *testing.T) {
	pos, _ := mustFEN(t, "8/8/8/8/8/8/8/K7 b")
	eng := NewEngine(1)
	if _, err := eng.ProposeMove(context.Background(), pos, board.Black); !errors.Is(err, ErrNoMoves) {
		t.Errorf("err = %v, want ErrNoMoves", err)
	}
}

func TestSearchHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := NewEngine(1)
	done := make(chan error, 1)
	go func() {
		_, err := eng.SearchWithLimits(ctx, board.NewPosition(), board.White, SearchLimits{Infinite: true})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		eng.Stop()
		t.Fatal("search ignored a cancelled context")
	}
}

func TestSearchHonorsMoveTime(t *testing.T) {
	eng := NewEngine(4)
	start := time.Now()
	move, err := eng.SearchWithLimits(context.Background(), board.NewPosition(), board.White,
		SearchLimits{MoveTime: 100 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if move == board.NoMove {
		t.Error("no move after a timed search")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("100ms search took %v", elapsed)
	}
}

func TestOnInfo(t *testing.T) {
	eng := NewEngine(4)
	var depths []int
	eng.OnInfo = func(info SearchInfo) {
		depths = append(depths, info.Depth)
		if len(info.PV) == 0 {
			t.Errorf("depth %d: empty PV", info.Depth)
		}
	}
	if _, err := eng.SearchWithLimits(context.Background(), board.NewPosition(), board.White, SearchLimits{Depth: 3}); err != nil {
		t.Fatal(err)
	}
	if len(depths) != 3 || depths[0] != 1 || depths[2] != 3 {
		t.Errorf("OnInfo depths = %v, want [1 2 3]", depths)
	}
}

type fixedClock time.Duration

func (c fixedClock) Remaining(board.Color) time.Duration { return time.Duration(c) }

func TestProposeMoveUsesClock(t *testing.T) {
	eng := NewEngine(4)
	eng.SetDifficulty(Hard)
	eng.SetClock(fixedClock(3 * time.Second))

	start := time.Now()
	if _, err := eng.ProposeMove(context.Background(), board.NewPosition(), board.White); err != nil {
		t.Fatal(err)
	}
	// 3s left over 30 expected moves is a 100ms budget, far under Hard's 5s.
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("clocked search took %v", elapsed)
	}
}

func TestTimeManager(t *testing.T) {
	tests := []struct {
		name   string
		limits SearchLimits
		want   time.Duration
	}{
		{"move time only", SearchLimits{MoveTime: 2 * time.Second}, 2 * time.Second},
		{"clock only", SearchLimits{TimeLeft: 90 * time.Second}, 3 * time.Second},
		{"clock shorter than move time", SearchLimits{MoveTime: 5 * time.Second, TimeLeft: 60 * time.Second}, 2 * time.Second},
		{"clock longer than move time", SearchLimits{MoveTime: time.Second, TimeLeft: 10 * time.Minute}, time.Second},
		{"nearly flagged", SearchLimits{MoveTime: time.Second, TimeLeft: 100 * time.Millisecond}, minMoveTime},
		{"infinite", SearchLimits{MoveTime: time.Second, Infinite: true}, 0},
		{"depth only", SearchLimits{Depth: 4}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := NewTimeManager()
			tm.Init(tc.limits)
			if got := tm.Budget(); got != tc.want {
				t.Errorf("Budget = %v, want %v", got, tc.want)
			}
			if tc.want == 0 && !tm.Deadline().IsZero() {
				t.Error("unbounded search has a deadline")
			}
		})
	}
}

func TestTranspositionTable(t *testing.T) {
	tt := NewTranspositionTable(1)
	if _, ok := tt.Probe(42); ok {
		t.Fatal("hit in an empty table")
	}
	m := board.NewMove(board.E2, board.E4)
	tt.Store(42, 3, 17, TTExact, m)
	e, ok := tt.Probe(42)
	if !ok || e.BestMove != m || e.Score != 17 || e.Depth != 3 {
		t.Errorf("Probe = %+v, %v", e, ok)
	}

	// A shallower result does not replace a deeper one from the same search.
	tt.Store(42, 1, -5, TTUpperBound, board.NoMove)
	if e, _ := tt.Probe(42); e.Depth != 3 {
		t.Errorf("shallow store replaced deep entry: %+v", e)
	}

	tt.NewSearch()
	tt.Store(42, 1, -5, TTUpperBound, board.NoMove)
	if e, _ := tt.Probe(42); e.Depth != 1 {
		t.Errorf("stale entry survived a new search: %+v", e)
	}

	tt.Clear()
	if _, ok := tt.Probe(42); ok {
		t.Error("hit after Clear")
	}
}

func TestMateScoreAdjustment(t *testing.T) {
	score := MateScore - 5
	if got := AdjustScoreFromTT(AdjustScoreToTT(score, 3), 3); got != score {
		t.Errorf("round trip = %d, want %d", got, score)
	}
	if got := AdjustScoreToTT(120, 7); got != 120 {
		t.Errorf("normal score adjusted to %d", got)
	}
}

func TestEvaluateSymmetry(t *testing.T) {
	pos := board.NewPosition()
	if got := Evaluate(pos, board.White); got != 0 {
		t.Errorf("Evaluate(start) = %d, want 0", got)
	}
	pos.Apply(board.NewMove(board.B1, board.C3))
	if w, b := Evaluate(pos, board.White), Evaluate(pos, board.Black); w != -b || w <= 0 {
		t.Errorf("developed knight: white %d black %d", w, b)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{150, "1.50"},
		{-35, "-0.35"},
		{MateScore - 1, "Takes king in 1"},
		{-MateScore + 2, "Loses king in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	for d := Easy; d <= Hard; d++ {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("accepted unknown difficulty")
	}
}
