package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToSAN(t *testing.T) {
	tests := []struct {
		fen  string
		move Move
		want string
	}{
		{StartFEN, NewMove(G1, F3), "Nf3"},
		{StartFEN, NewMove(E2, E4), "e4"},
		{"4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", NewMove(E4, D5), "exd5"},
		{"4k3/P7/8/8/8/8/8/4K3 w - - 0 1", NewPromotion(A7, A8, Queen), "a8=Q"},
		{"4k3/8/8/8/8/8/8/R4RK1 w - - 0 1", NewMove(A1, D1), "Rad1"},
		{"R3k3/8/8/8/8/8/8/R3K3 w - - 0 1", NewMove(A1, A4), "R1a4"},
		{"3k4/4K3/8/8/8/8/8/8 w - - 0 1", NewMove(E7, D8), "Kxd8"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			pos, _, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := tc.move.ToSAN(pos); got != tc.want {
				t.Errorf("ToSAN = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseSAN(t *testing.T) {
	pos := NewPosition()
	m, err := ParseSAN("Nf3", pos, White)
	if err != nil || m != NewMove(G1, F3) {
		t.Errorf("ParseSAN(Nf3) = %v, %v", m, err)
	}
	m, err = ParseSAN("e5", pos, Black)
	if err != nil || m != NewMove(E7, E5) {
		t.Errorf("ParseSAN(e5) = %v, %v", m, err)
	}
	if _, err := ParseSAN("Qh5", pos, White); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("ParseSAN(Qh5) err = %v", err)
	}

	promo, _, _ := ParseFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1")
	m, err = ParseSAN("a8=R", promo, White)
	if err != nil || m != NewPromotion(A7, A8, Rook) {
		t.Errorf("ParseSAN(a8=R) = %v, %v", m, err)
	}
	m, err = ParseSAN("a8", promo, White)
	if err != nil || m != NewPromotion(A7, A8, Queen) {
		t.Errorf("ParseSAN(a8) = %v, %v", m, err)
	}
}

func TestMovesToSAN(t *testing.T) {
	moves := []Move{NewMove(E2, E4), NewMove(D7, D5), NewMove(E4, D5), NewMove(D8, D5)}
	got := MovesToSAN(NewPosition(), moves)
	want := []string{"e4", "d5", "exd5", "Qxd5"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MovesToSAN (-want +got):\n%s", diff)
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		want    Move
		wantErr bool
	}{
		{"e2e4", NewMove(E2, E4), false},
		{"e7e8q", NewPromotion(E7, E8, Queen), false},
		{"a2a1n", NewPromotion(A2, A1, Knight), false},
		{"e7e8k", NoMove, true},
		{"e2", NoMove, true},
		{"z9e4", NoMove, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMove(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidMove) {
					t.Errorf("err = %v, want ErrInvalidMove", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseMove(%q) = %v, %v", tc.in, got, err)
			}
			if got.String() != tc.in {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}
