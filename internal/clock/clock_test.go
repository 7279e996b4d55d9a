package clock

import (
	"testing"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

func TestTick(t *testing.T) {
	c := New(time.Minute)

	if flagged := c.Tick(board.White, 20*time.Second); flagged {
		t.Fatal("flagged after 20s of a minute")
	}
	if got := c.Remaining(board.White); got != 40*time.Second {
		t.Errorf("white remaining = %v, want 40s", got)
	}
	if got := c.Remaining(board.Black); got != time.Minute {
		t.Errorf("black remaining = %v, want 1m", got)
	}

	if flagged := c.Tick(board.White, time.Hour); !flagged {
		t.Error("not flagged after overrunning")
	}
	if got := c.Remaining(board.White); got != 0 {
		t.Errorf("remaining went to %v, want 0", got)
	}
	if !c.Flagged(board.White) || c.Flagged(board.Black) {
		t.Error("Flagged disagrees with Tick")
	}
}

func TestUntimed(t *testing.T) {
	c := New(0)
	if !c.Untimed() {
		t.Fatal("zero length should be untimed")
	}
	for i := 0; i < 10; i++ {
		if c.Tick(board.Black, time.Hour) {
			t.Fatal("untimed clock flagged")
		}
	}
	if got := c.Format(board.Black); got != "--:--" {
		t.Errorf("Format = %q", got)
	}
}

func TestSet(t *testing.T) {
	c := New(5 * time.Minute)
	c.Set(board.Black, 90*time.Second)
	if got := c.Remaining(board.Black); got != 90*time.Second {
		t.Errorf("Remaining = %v", got)
	}
	c.Set(board.White, time.Hour)
	if got := c.Remaining(board.White); got != 5*time.Minute {
		t.Errorf("Set above length = %v, want clamp to 5m", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{500 * time.Millisecond, "0:01"},
		{9*time.Second + 200*time.Millisecond, "0:10"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{10 * time.Minute, "10:00"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
