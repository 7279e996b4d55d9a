package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/pocketchess/internal/engine"
)

// run feeds the script to a fresh driver and returns everything it printed.
func run(t *testing.T, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	u := New(engine.NewEngine(1), strings.NewReader(strings.Join(script, "\n")+"\n"), &out)
	if err := u.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestHandshake(t *testing.T) {
	out := run(t, "uci", "isready")
	for _, want := range []string{"id name pocketchess", "uciok", "readyok"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPositionMoves(t *testing.T) {
	out := run(t, "position startpos moves e2e4 e7e5", "d")
	want := "Fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w"
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}

func TestPositionAlgebraicMoves(t *testing.T) {
	out := run(t, "position startpos moves e4 e7e5 Nf3", "d")
	for _, want := range []string{
		"Fen: rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b",
		"Moves: e4 e5 Nf3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out = run(t, "position fen 8/P6k/8/8/8/8/8/K7 w - - 0 1 moves a8=N", "d")
	if !strings.Contains(out, "Fen: N7/7k/8/8/8/8/8/K7 b") {
		t.Errorf("a8=N did not promote to a knight:\n%s", out)
	}
}

func TestDisplayEval(t *testing.T) {
	out := run(t, "d")
	if !strings.Contains(out, "Eval: 0.00 (white)") {
		t.Errorf("start position not level:\n%s", out)
	}
	if strings.Contains(out, "Moves:") {
		t.Errorf("moves listed without any played:\n%s", out)
	}

	out = run(t, "position fen 8/8/8/8/8/8/8/KQ5k w", "d")
	if !strings.Contains(out, "Eval: 9.") {
		t.Errorf("extra queen not counted:\n%s", out)
	}
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
	}{
		{"too far", "position startpos moves e2e5"},
		{"wrong side", "position startpos moves e7e5"},
		{"garbage", "position startpos moves zz"},
		{"bad fen", "position fen not/a/fen w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, tt.cmd, "d")
			if !strings.Contains(out, "info string") {
				t.Errorf("expected an error line:\n%s", out)
			}
			if !strings.Contains(out, "Fen: rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
				t.Errorf("position changed after a rejected command:\n%s", out)
			}
		})
	}
}

func TestPositionDefaultPromotion(t *testing.T) {
	out := run(t, "position fen 8/P6k/8/8/8/8/8/K7 w - - 0 1 moves a7a8", "d")
	if !strings.Contains(out, "Fen: Q7/7k/8/8/8/8/8/K7 b") {
		t.Errorf("pawn did not become a queen:\n%s", out)
	}

	out = run(t, "position fen 8/P6k/8/8/8/8/8/K7 w - - 0 1 moves a7a8n", "d")
	if !strings.Contains(out, "Fen: N7/7k/8/8/8/8/8/K7 b") {
		t.Errorf("pawn did not become a knight:\n%s", out)
	}
}

func TestMovesCommand(t *testing.T) {
	out := run(t, "moves e2", "moves d4", "moves z9")
	if !strings.Contains(out, "e2 white pawn: [e3 e4]") {
		t.Errorf("missing pawn destinations:\n%s", out)
	}
	if !strings.Contains(out, "d4 empty: []") {
		t.Errorf("missing empty square line:\n%s", out)
	}
	if !strings.Contains(out, "invalid coordinate") {
		t.Errorf("missing coordinate error:\n%s", out)
	}
}

func TestPerftCommand(t *testing.T) {
	out := run(t, "perft 2")
	if !strings.Contains(out, "Nodes: 400") {
		t.Errorf("perft 2 from the start:\n%s", out)
	}
	if !strings.Contains(out, "g1f3: 20") {
		t.Errorf("missing divide line:\n%s", out)
	}
}

func TestGoFindsKingCapture(t *testing.T) {
	out := run(t, "position fen 4k3/8/8/8/8/8/8/4RK2 w - - 0 1", "go depth 2")
	if !strings.Contains(out, "bestmove e1e8") {
		t.Errorf("expected the rook to take the king:\n%s", out)
	}
	if !strings.Contains(out, "info depth 1") {
		t.Errorf("expected search info:\n%s", out)
	}
}

func TestGoInfiniteStop(t *testing.T) {
	start := time.Now()
	out := run(t, "go infinite", "stop", "isready")
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("stop produced no bestmove:\n%s", out)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("stop took %v", time.Since(start))
	}
}

func TestQuitStopsSearch(t *testing.T) {
	out := run(t, "go infinite", "quit", "uci")
	if !strings.Contains(out, "bestmove ") {
		t.Errorf("quit produced no bestmove:\n%s", out)
	}
	if strings.Contains(out, "uciok") {
		t.Error("commands after quit were processed")
	}
}

func TestGoNoMoves(t *testing.T) {
	out := run(t, "position fen 4k3/8/8/8/8/8/8/8 w - - 0 1", "go depth 1")
	if !strings.Contains(out, "bestmove 0000") {
		t.Errorf("expected a null move:\n%s", out)
	}
}

func TestParseGoOptions(t *testing.T) {
	tests := []struct {
		args []string
		want GoOptions
	}{
		{nil, GoOptions{}},
		{[]string{"depth", "5"}, GoOptions{Depth: 5}},
		{[]string{"movetime", "250"}, GoOptions{MoveTime: 250 * time.Millisecond}},
		{[]string{"wtime", "60000", "btime", "30000"}, GoOptions{WTime: time.Minute, BTime: 30 * time.Second}},
		{[]string{"infinite"}, GoOptions{Infinite: true}},
		{[]string{"depth"}, GoOptions{}},
		{[]string{"nodes", "10", "depth", "3"}, GoOptions{Depth: 3}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseGoOptions(tt.args)); diff != "" {
				t.Errorf("ParseGoOptions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	out := run(t, "castle")
	if !strings.Contains(out, "unknown command: castle") {
		t.Errorf("output:\n%s", out)
	}
}
