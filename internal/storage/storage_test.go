package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/pocketchess/internal/board"
)

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.Username != "Player" {
		t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
	}
	if prefs.Difficulty != DifficultyMedium {
		t.Errorf("Expected medium difficulty")
	}
	if prefs.TimerMinutes != 0 || prefs.Mode != ModeLocal {
		t.Errorf("Expected an untimed local game, got %+v", prefs)
	}
	if !prefs.SoundEnabled {
		t.Errorf("Expected sound enabled by default")
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTemp(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if prefs.Username != "Player" {
		t.Errorf("empty database gave %+v", prefs)
	}

	prefs.Username = "ada"
	prefs.Mode = ModeVsComputer
	prefs.PlayerColor = board.Black
	prefs.TimerMinutes = 5
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != "ada" || got.Mode != ModeVsComputer || got.PlayerColor != board.Black || got.TimerMinutes != 5 {
		t.Errorf("loaded %+v", got)
	}
}

func TestFirstLaunch(t *testing.T) {
	s := openTemp(t)
	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after marking")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTemp(t)

	results := []GameResult{
		{Winner: board.White, Reason: "king captured", Mode: ModeVsComputer, Local: board.White, Duration: time.Minute},
		{Winner: board.White, Reason: "time", Mode: ModeVsComputer, Local: board.White, Duration: time.Minute},
		{Winner: board.Black, Reason: "resignation", Mode: ModeVsComputer, Local: board.White, Duration: time.Minute},
		{Winner: board.Black, Reason: "king captured", Mode: ModeLocal, Local: board.NoColor, Duration: time.Minute},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 4 || stats.Wins != 2 || stats.Losses != 1 {
		t.Errorf("played %d won %d lost %d", stats.GamesPlayed, stats.Wins, stats.Losses)
	}
	if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
		t.Errorf("streaks %d/%d", stats.LongestWinStrk, stats.CurrentStreak)
	}
	if diff := cmp.Diff(map[string]int{"white": 2, "black": 2}, stats.WinsByColor); diff != "" {
		t.Errorf("WinsByColor (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"king captured": 2, "time": 1, "resignation": 1}, stats.WinsByReason); diff != "" {
		t.Errorf("WinsByReason (-want +got):\n%s", diff)
	}
	if stats.TotalPlayTime != 4*time.Minute {
		t.Errorf("TotalPlayTime = %v", stats.TotalPlayTime)
	}
}

func TestWinRate(t *testing.T) {
	stats := &GameStats{GamesPlayed: 10, Wins: 3, Losses: 3}
	if rate := stats.GetWinRate(); rate != 50 {
		t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
	}
	if NewGameStats().GetWinRate() != 0 {
		t.Error("Expected 0 win rate")
	}
}

func TestSavedGame(t *testing.T) {
	s := openTemp(t)

	g, err := s.LoadGame()
	if err != nil || g != nil {
		t.Fatalf("LoadGame on empty database = %v, %v", g, err)
	}

	saved := &SavedGame{
		FEN:         "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1",
		Mode:        ModeVsComputer,
		Local:       board.Black,
		TimerLength: 5 * time.Minute,
		WhiteLeft:   4 * time.Minute,
		BlackLeft:   5 * time.Minute,
		Moves:       []string{"e2e4"},
	}
	if err := s.SaveGame(saved); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadGame()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(saved, got, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("saved game (-want +got):\n%s", diff)
	}

	if err := s.ClearSavedGame(); err != nil {
		t.Fatal(err)
	}
	if g, _ := s.LoadGame(); g != nil {
		t.Error("game survived ClearSavedGame")
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	root := t.TempDir()
	dbDir, err := DatabaseDir(root)
	if err != nil {
		t.Fatalf("DatabaseDir failed: %v", err)
	}
	if want := filepath.Join(root, "db"); dbDir != want {
		t.Errorf("DatabaseDir = %q, want %q", dbDir, want)
	}
	if fi, err := os.Stat(dbDir); err != nil || !fi.IsDir() {
		t.Errorf("DatabaseDir did not create %s: %v", dbDir, err)
	}
}
