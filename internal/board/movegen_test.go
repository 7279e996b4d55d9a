package board

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustPosition(t *testing.T, pieces map[Square]Piece) *Position {
	t.Helper()
	pos := NewEmptyPosition()
	for sq, p := range pieces {
		if err := pos.Place(p, sq); err != nil {
			t.Fatalf("Place(%v, %v): %v", p, sq, err)
		}
	}
	return pos
}

func destinations(t *testing.T, pos *Position, sq Square, pt PieceType, c Color) []Square {
	t.Helper()
	set, err := LegalDestinations(pos, sq, pt, c)
	if err != nil {
		t.Fatalf("LegalDestinations(%v, %v, %v): %v", sq, pt, c, err)
	}
	return set.Squares()
}

func TestLegalDestinations(t *testing.T) {
	tests := []struct {
		name   string
		pieces map[Square]Piece
		sq     Square
		pt     PieceType
		color  Color
		want   []Square
	}{
		{
			name: "knight d4 empty board",
			sq:   D4, pt: Knight, color: White,
			want: []Square{C2, E2, B3, F3, B5, F5, C6, E6},
		},
		{
			name: "king d4 empty board",
			sq:   D4, pt: King, color: White,
			want: []Square{C3, D3, E3, C4, E4, C5, D5, E5},
		},
		{
			name: "king a1 corner",
			sq:   A1, pt: King, color: White,
			want: []Square{B1, A2, B2},
		},
		{
			name: "white pawn e2 empty board",
			sq:   E2, pt: Pawn, color: White,
			want: []Square{E3, E4},
		},
		{
			name:   "white pawn e2 with captures",
			pieces: map[Square]Piece{D3: BlackKnight, F3: BlackPawn},
			sq:     E2, pt: Pawn, color: White,
			want: []Square{D3, E3, F3, E4},
		},
		{
			name:   "white pawn e2 blocked",
			pieces: map[Square]Piece{E3: WhiteKnight},
			sq:     E2, pt: Pawn, color: White,
			want: []Square{},
		},
		{
			name:   "white pawn e2 double step blocked",
			pieces: map[Square]Piece{E4: BlackPawn},
			sq:     E2, pt: Pawn, color: White,
			want: []Square{E3},
		},
		{
			name:   "pawn does not capture friendly or straight ahead",
			pieces: map[Square]Piece{D3: WhiteBishop, E3: BlackPawn},
			sq:     E2, pt: Pawn, color: White,
			want: []Square{},
		},
		{
			name: "white pawn off starting rank",
			sq:   E3, pt: Pawn, color: White,
			want: []Square{E4},
		},
		{
			name: "black pawn e7",
			sq:   E7, pt: Pawn, color: Black,
			want: []Square{E5, E6},
		},
		{
			name:   "black pawn captures downward",
			pieces: map[Square]Piece{D6: WhitePawn, F8: WhiteRook},
			sq:     E7, pt: Pawn, color: Black,
			want: []Square{E5, D6, E6},
		},
		{
			name: "pawn on last rank has nowhere to go",
			sq:   E8, pt: Pawn, color: White,
			want: []Square{},
		},
		{
			name:   "rook a1 enemy a8",
			pieces: map[Square]Piece{A8: BlackRook, B1: WhiteKnight},
			sq:     A1, pt: Rook, color: White,
			want: []Square{A2, A3, A4, A5, A6, A7, A8},
		},
		{
			name:   "bishop stops before friendly",
			pieces: map[Square]Piece{F6: WhitePawn, B2: BlackPawn},
			sq:     D4, pt: Bishop, color: White,
			want: []Square{B2, C3, E3, F2, G1, C5, E5, B6, A7},
		},
		{
			name:   "knight jumps over pieces and skips friendly",
			pieces: map[Square]Piece{B3: WhitePawn, F5: BlackQueen, D5: WhitePawn, E4: WhitePawn},
			sq:     D4, pt: Knight, color: White,
			want: []Square{C2, E2, F3, B5, F5, C6, E6},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustPosition(t, tc.pieces)
			got := destinations(t, pos, tc.sq, tc.pt, tc.color)
			want := NewSquareSet(tc.want...).Squares()
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("destinations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueenIsRookPlusBishop(t *testing.T) {
	pos, _, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5Q2/PPPP1PPP/RNB1K1NR w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	for sq := A1; sq <= H8; sq++ {
		if !pos.IsEmpty(sq) && !pos.IsEnemy(sq, White) {
			continue
		}
		for _, c := range []Color{White, Black} {
			q, _ := LegalDestinations(pos, sq, Queen, c)
			r, _ := LegalDestinations(pos, sq, Rook, c)
			b, _ := LegalDestinations(pos, sq, Bishop, c)
			if q != r.Union(b) {
				t.Fatalf("queen %v %v = %v, want %v", c, sq, q, r.Union(b))
			}
		}
	}
}

// Every sliding ray stops at the first occupied square: inclusive for an
// enemy, exclusive for a friend.
func TestRayTermination(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	kinds := []PieceType{Rook, Bishop, Queen}

	for trial := 0; trial < 200; trial++ {
		pos := NewEmptyPosition()
		for i := 0; i < 16; i++ {
			p := Piece(rng.IntN(int(NoPiece)))
			_ = pos.Place(p, Square(rng.IntN(64)))
		}

		for sq := A1; sq <= H8; sq++ {
			for _, pt := range kinds {
				for _, color := range []Color{White, Black} {
					set, err := LegalDestinations(pos, sq, pt, color)
					if err != nil {
						t.Fatal(err)
					}
					policy, _ := PolicyFor(pt)
					checkRays(t, pos, sq, color, policy.Directions, set)
				}
			}
		}
	}
}

func checkRays(t *testing.T, pos *Position, sq Square, color Color, dirs []Direction, set SquareSet) {
	t.Helper()
	var expected SquareSet
	for _, d := range dirs {
		blocked := false
		for k := 1; ; k++ {
			c := sq.Coord().Step(d, k)
			if !c.InBounds() {
				break
			}
			target := c.Square()
			if blocked {
				if set.Has(target) {
					t.Fatalf("%v from %v: %v lies beyond a blocker\n%v", color, sq, target, pos)
				}
				continue
			}
			piece := pos.PieceAt(target)
			switch {
			case piece == NoPiece:
				expected = expected.Add(target)
			case piece.Color() != color:
				expected = expected.Add(target)
				blocked = true
			default:
				if set.Has(target) {
					t.Fatalf("%v from %v: includes friendly %v", color, sq, target)
				}
				blocked = true
			}
		}
	}
	if expected != set {
		t.Fatalf("%v from %v: got %v, want %v", color, sq, set, expected)
	}
}

func TestLegalDestinationsIdempotent(t *testing.T) {
	pos := NewPosition()
	before := pos.ToFEN(White)
	for sq := A1; sq <= H8; sq++ {
		for pt := Pawn; pt <= King; pt++ {
			a, errA := LegalDestinations(pos, sq, pt, White)
			b, errB := LegalDestinations(pos, sq, pt, White)
			if a != b || errA != errB {
				t.Fatalf("%v %v: %v then %v", pt, sq, a, b)
			}
		}
	}
	if after := pos.ToFEN(White); after != before {
		t.Errorf("position changed: %s -> %s", before, after)
	}
}

func TestLegalDestinationsErrors(t *testing.T) {
	pos := NewPosition()
	if _, err := LegalDestinations(pos, E2, NoPieceType, White); !errors.Is(err, ErrUnknownPieceKind) {
		t.Errorf("NoPieceType: err = %v, want ErrUnknownPieceKind", err)
	}
	if _, err := LegalDestinations(pos, E2, PieceType(42), White); !errors.Is(err, ErrUnknownPieceKind) {
		t.Errorf("PieceType(42): err = %v, want ErrUnknownPieceKind", err)
	}
	if _, err := LegalDestinations(pos, NoSquare, Rook, White); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("NoSquare: err = %v, want ErrInvalidCoordinate", err)
	}
}

func TestDestinations(t *testing.T) {
	pos := NewPosition()
	set, err := Destinations(pos, G1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Square{F3, H3}, set.Squares()); diff != "" {
		t.Errorf("g1 knight (-want +got):\n%s", diff)
	}
	if set, _ := Destinations(pos, E4); !set.Empty() {
		t.Errorf("empty square yields %v", set)
	}
}

func TestGenerateMovesPromotion(t *testing.T) {
	pos, _, err := ParseFEN("1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, m := range GenerateMoves(pos, White) {
		if m.From == A7 {
			got = append(got, m.String())
		}
	}
	want := []string{"a7a8q", "a7a8r", "a7a8b", "a7a8n", "a7b8q", "a7b8r", "a7b8b", "a7b8n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("promotion moves (-want +got):\n%s", diff)
	}
}
