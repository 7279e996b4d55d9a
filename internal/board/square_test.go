package board

import (
	"errors"
	"testing"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		in      string
		want    Square
		wantErr bool
	}{
		{"e4", E4, false},
		{"a1", A1, false},
		{"h8", H8, false},
		{"E4", E4, false},
		{"z9", NoSquare, true},
		{"a0", NoSquare, true},
		{"i1", NoSquare, true},
		{"e", NoSquare, true},
		{"", NoSquare, true},
		{"e44", NoSquare, true},
		{"4e", NoSquare, true},
		{"ee", NoSquare, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Decompose(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Fatalf("Decompose(%q) error = %v, want ErrInvalidCoordinate", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decompose(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Decompose(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSquareRoundTrip(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		got, err := Decompose(sq.String())
		if err != nil || got != sq {
			t.Errorf("Decompose(%q) = %v, %v", sq.String(), got, err)
		}
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		file, rank int
		want       bool
	}{
		{0, 0, true},
		{7, 7, true},
		{-1, 0, false},
		{0, 8, false},
		{8, 3, false},
		{3, -2, false},
	}
	for _, tc := range tests {
		if got := InBounds(tc.file, tc.rank); got != tc.want {
			t.Errorf("InBounds(%d, %d) = %v, want %v", tc.file, tc.rank, got, tc.want)
		}
	}
}

func TestCoordStep(t *testing.T) {
	c := D4.Coord().Step(Direction{DF: 1, DR: 1}, 3)
	if c.Square() != G7 {
		t.Errorf("d4 + 3*(1,1) = %v, want g7", c.Square())
	}
	off := H8.Coord().Step(Direction{DF: 1, DR: 0}, 1)
	if off.InBounds() || off.Square() != NoSquare {
		t.Errorf("h8 + (1,0) should be off the board, got %+v", off)
	}
}

func TestSquareSet(t *testing.T) {
	s := NewSquareSet(E4, E3, E4)
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
	if !s.Has(E3) || s.Has(E5) || s.Has(NoSquare) {
		t.Errorf("membership wrong: %v", s)
	}
	if got := s.String(); got != "[e3 e4]" {
		t.Errorf("String = %q", got)
	}
	if s.Remove(E3).Remove(E4) != 0 || !SquareSet(0).Empty() {
		t.Error("Remove did not empty the set")
	}
}
