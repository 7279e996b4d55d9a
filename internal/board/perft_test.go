package board

import "testing"

// Perft from the starting position. Castling and en passant cannot occur in
// the first three plies, so these match the standard counts.
func TestPerftStartingPosition(t *testing.T) {
	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			pos := NewPosition()
			got := Perft(pos, White, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
			if fen := pos.ToFEN(White); fen != StartFEN {
				t.Errorf("perft mutated the position: %s", fen)
			}
		})
	}
}

func TestDivideSumsToPerft(t *testing.T) {
	pos := NewPosition()
	var total uint64
	for m, n := range Divide(pos, White, 2) {
		if n != 20 {
			t.Errorf("divide %v = %d, want 20", m, n)
		}
		total += n
	}
	if total != 400 {
		t.Errorf("divide total = %d, want 400", total)
	}
}

func TestPerftPromotionExpansion(t *testing.T) {
	// Lone white pawn on the seventh, kings out of the way.
	pos, _, err := ParseFEN("7k/P7/8/8/8/8/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	// a8 x4 promotions, king a1: a2, b1, b2.
	if got := Perft(pos, White, 1); got != 7 {
		t.Errorf("perft(1) = %d, want 7", got)
	}
}

func BenchmarkPerft3(b *testing.B) {
	pos := NewPosition()
	for i := 0; i < b.N; i++ {
		Perft(pos, White, 3)
	}
}
