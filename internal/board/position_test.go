package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewPosition(t *testing.T) {
	pos := NewPosition()
	if got := pos.ToFEN(White); got != StartFEN {
		t.Errorf("ToFEN = %q, want %q", got, StartFEN)
	}
	counts := map[PieceType]int{Pawn: 8, Knight: 2, Bishop: 2, Rook: 2, Queen: 1, King: 1}
	for pt, n := range counts {
		for _, c := range []Color{White, Black} {
			if got := pos.Count(c, pt); got != n {
				t.Errorf("Count(%v, %v) = %d, want %d", c, pt, got, n)
			}
		}
	}
	if pos.PieceAt(E1) != WhiteKing || pos.PieceAt(D8) != BlackQueen {
		t.Errorf("kings/queens misplaced:%v", pos)
	}
	if pos.Material() != 0 {
		t.Errorf("Material = %d, want 0", pos.Material())
	}
}

func TestOccupancyQueries(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		sq       Square
		empty    bool
		enemyOfW bool
		enemyOfB bool
	}{
		{E2, false, false, true},
		{E7, false, true, false},
		{E4, true, false, false},
		{NoSquare, false, false, false},
	}
	for _, tc := range tests {
		if got := pos.IsEmpty(tc.sq); got != tc.empty {
			t.Errorf("IsEmpty(%v) = %v", tc.sq, got)
		}
		if got := pos.IsEnemy(tc.sq, White); got != tc.enemyOfW {
			t.Errorf("IsEnemy(%v, white) = %v", tc.sq, got)
		}
		if got := pos.IsEnemy(tc.sq, Black); got != tc.enemyOfB {
			t.Errorf("IsEnemy(%v, black) = %v", tc.sq, got)
		}
	}

	if !pos.IsEmptyAt("e4") || pos.IsEmptyAt("e2") {
		t.Error("IsEmptyAt disagrees with IsEmpty")
	}
	for _, bad := range []string{"z9", "e", "", "44"} {
		if pos.IsEmptyAt(bad) {
			t.Errorf("IsEmptyAt(%q) = true for malformed text", bad)
		}
	}
}

func TestPlace(t *testing.T) {
	pos := NewEmptyPosition()
	if err := pos.Place(WhiteRook, A1); err != nil {
		t.Fatal(err)
	}
	if err := pos.Place(BlackRook, A1); !errors.Is(err, ErrSquareOccupied) {
		t.Errorf("second Place err = %v, want ErrSquareOccupied", err)
	}
	if err := pos.Place(NoPiece, A2); !errors.Is(err, ErrUnknownPieceKind) {
		t.Errorf("Place(NoPiece) err = %v", err)
	}
	if got := pos.Remove(A1); got != WhiteRook {
		t.Errorf("Remove = %v", got)
	}
	if pos.Count(White, Rook) != 0 || !pos.IsEmpty(A1) {
		t.Error("Remove left the rook behind")
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		move     Move
		captured Piece
		wantFEN  string
	}{
		{
			name:     "quiet",
			fen:      StartFEN,
			move:     NewMove(E2, E4),
			captured: NoPiece,
			wantFEN:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR",
		},
		{
			name:     "capture",
			fen:      "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1",
			move:     NewMove(E4, D5),
			captured: BlackPawn,
			wantFEN:  "4k3/8/8/3P4/8/8/8/4K3",
		},
		{
			name:     "promotion",
			fen:      "4k3/P7/8/8/8/8/8/4K3 w - - 0 1",
			move:     NewPromotion(A7, A8, Knight),
			captured: NoPiece,
			wantFEN:  "N3k3/8/8/8/8/8/8/4K3",
		},
		{
			name:     "pawn reaches last rank without choice",
			fen:      "4k3/8/8/8/8/8/p7/4K3 b - - 0 1",
			move:     NewMove(A2, A1),
			captured: NoPiece,
			wantFEN:  "4k3/8/8/8/8/8/8/p3K3",
		},
		{
			name:     "king capture",
			fen:      "4k3/8/8/8/8/8/8/4KR2 w - - 0 1",
			move:     NewMove(F1, F8),
			captured: NoPiece,
			wantFEN:  "4kR2/8/8/8/8/8/8/4K3",
		},
		{
			name:     "empty source is a no-op",
			fen:      StartFEN,
			move:     NewMove(E4, E5),
			captured: NoPiece,
			wantFEN:  "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, _, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := pos.Apply(tc.move); got != tc.captured {
				t.Errorf("captured = %v, want %v", got, tc.captured)
			}
			placement, _, _ := strings.Cut(pos.ToFEN(White), " ")
			if placement != tc.wantFEN {
				t.Errorf("placement = %q, want %q", placement, tc.wantFEN)
			}
			checkBuckets(t, pos)
		})
	}
}

func TestApplyKingCapture(t *testing.T) {
	pos, _, _ := ParseFEN("4k3/8/8/8/8/8/8/4KR2 w - - 0 1")
	pos.Apply(NewMove(F1, F8))
	pos.Apply(NewMove(F8, E8))
	if pos.HasKing(Black) {
		t.Error("black king survived capture")
	}
	if !pos.HasKing(White) {
		t.Error("white king vanished")
	}
}

func TestPromote(t *testing.T) {
	pos, _, _ := ParseFEN("4k3/8/8/8/8/8/8/p3K3 b - - 0 1")
	if err := pos.Promote(A1, King); !errors.Is(err, ErrUnknownPieceKind) {
		t.Errorf("Promote to king err = %v", err)
	}
	if err := pos.Promote(E1, Queen); err == nil {
		t.Error("Promote on a king succeeded")
	}
	if err := pos.Promote(A1, Rook); err != nil {
		t.Fatal(err)
	}
	if pos.PieceAt(A1) != BlackRook || pos.Count(Black, Pawn) != 0 || pos.Count(Black, Rook) != 1 {
		t.Errorf("promotion not applied:%v", pos)
	}
	checkBuckets(t, pos)
}

func TestCopyIsIndependent(t *testing.T) {
	pos := NewPosition()
	cp := pos.Copy()
	cp.Apply(NewMove(E2, E4))
	if pos.PieceAt(E2) != WhitePawn || !pos.IsEmpty(E4) {
		t.Error("Apply on the copy changed the original")
	}
	if diff := cmp.Diff(pos.Squares(White, Pawn), []Square{A2, B2, C2, D2, E2, F2, G2, H2}); diff != "" {
		t.Errorf("original pawn bucket changed:\n%s", diff)
	}
}

func TestHash(t *testing.T) {
	a := NewPosition()
	b := NewPosition()
	if a.Hash(White) != b.Hash(White) {
		t.Error("equal positions hash differently")
	}
	if a.Hash(White) == a.Hash(Black) {
		t.Error("side to move not hashed")
	}
	b.Apply(NewMove(G1, F3))
	if a.Hash(White) == b.Hash(White) {
		t.Error("different placements hash the same")
	}
	b.Apply(NewMove(F3, G1))
	if a.Hash(White) != b.Hash(White) {
		t.Error("hash depends on move order")
	}
}

func TestParseFEN(t *testing.T) {
	pos, turn, err := ParseFEN("8/8/8/8/8/8/8/K6k b")
	if err != nil {
		t.Fatal(err)
	}
	if turn != Black || pos.PieceAt(A1) != WhiteKing || pos.PieceAt(H1) != BlackKing {
		t.Errorf("got turn %v:%v", turn, pos)
	}

	bad := []string{
		"",
		"8/8/8",
		"9/8/8/8/8/8/8/8 w",
		"7/8/8/8/8/8/8/8 w",
		"x7/8/8/8/8/8/8/8 w",
		"8/8/8/8/8/8/8/8 x",
		"\u01507/8/8/8/8/8/8/K6k w", // low byte is 'P'
		"K6k/8/8/8/8/8/8/\u01727 w", // low byte is 'r'
	}
	for _, fen := range bad {
		if _, _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

// checkBuckets verifies that the buckets and the square table agree.
func checkBuckets(t *testing.T, pos *Position) {
	t.Helper()
	seen := make(map[Square]bool)
	for c := White; c <= Black; c++ {
		pos.ForEach(c, func(pt PieceType, sq Square) {
			if seen[sq] {
				t.Errorf("%v appears in two buckets", sq)
			}
			seen[sq] = true
			if pos.PieceAt(sq) != NewPiece(pt, c) {
				t.Errorf("bucket says %v %v on %v, table says %v", c, pt, sq, pos.PieceAt(sq))
			}
		})
	}
	for sq := A1; sq <= H8; sq++ {
		if !pos.IsEmpty(sq) && !seen[sq] {
			t.Errorf("%v occupied in the table but in no bucket", sq)
		}
	}
}
