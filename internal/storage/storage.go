package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/pocketchess/internal/board"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
	keySavedGame   = "saved_game"
)

// GameMode is how the opponent is chosen.
type GameMode int

const (
	ModeLocal      GameMode = iota // two players at one screen
	ModeVsComputer                 // against the engine
	ModeLANHost                    // hosting a network game
	ModeLANJoin                    // joining a network game
)

func (m GameMode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeVsComputer:
		return "computer"
	case ModeLANHost:
		return "lan-host"
	case ModeLANJoin:
		return "lan-join"
	}
	return fmt.Sprintf("GameMode(%d)", int(m))
}

// Difficulty mirrors the engine's difficulty levels.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username     string      `json:"username"`
	Mode         GameMode    `json:"mode"`
	Difficulty   Difficulty  `json:"difficulty"`
	PlayerColor  board.Color `json:"player_color"`
	TimerMinutes int         `json:"timer_minutes"`
	SoundEnabled bool        `json:"sound_enabled"`
	LANAddr      string      `json:"lan_addr"`
	LastPlayed   time.Time   `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:     "Player",
		Mode:         ModeLocal,
		Difficulty:   DifficultyMedium,
		PlayerColor:  board.White,
		TimerMinutes: 0,
		SoundEnabled: true,
		LANAddr:      "127.0.0.1:5555",
		LastPlayed:   time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	WinsByColor    map[string]int `json:"wins_by_color"`
	WinsByReason   map[string]int `json:"wins_by_reason"`
	WinsByMode     map[string]int `json:"wins_by_mode"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByColor:  make(map[string]int),
		WinsByReason: make(map[string]int),
		WinsByMode:   make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Winner   board.Color
	Reason   string
	Mode     GameMode
	Duration time.Duration
	// Local is the color of the player at this screen. NoColor for games
	// where both sides are local.
	Local board.Color
}

// SavedGame is an unfinished game kept across restarts.
type SavedGame struct {
	FEN         string        `json:"fen"`
	Mode        GameMode      `json:"mode"`
	Local       board.Color   `json:"local"`
	TimerLength time.Duration `json:"timer_length"`
	WhiteLeft   time.Duration `json:"white_left"`
	BlackLeft   time.Duration `json:"black_left"`
	Moves       []string      `json:"moves"`
	SavedAt     time.Time     `json:"saved_at"`
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database under dataDir. Empty means the default directory.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := DatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbDir, err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	found, err := s.get(keyFirstLaunch, nil)
	return !found, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.put(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	_, err := s.get(keyStats, stats)
	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration
	stats.WinsByColor[result.Winner.String()]++
	stats.WinsByReason[result.Reason]++

	switch {
	case result.Local == board.NoColor:
		// Both players were here; only the per-color tallies apply.
	case result.Winner == result.Local:
		stats.Wins++
		stats.CurrentStreak++
		stats.LongestWinStrk = max(stats.LongestWinStrk, stats.CurrentStreak)
		stats.WinsByMode[result.Mode.String()]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// SaveGame stores the unfinished game, replacing any earlier one.
func (s *Storage) SaveGame(g *SavedGame) error {
	g.SavedAt = time.Now()
	return s.put(keySavedGame, g)
}

// LoadGame returns the suspended game, or nil if there is none.
func (s *Storage) LoadGame() (*SavedGame, error) {
	var g SavedGame
	found, err := s.get(keySavedGame, &g)
	if err != nil || !found {
		return nil, err
	}
	return &g, nil
}

// ClearSavedGame forgets the suspended game.
func (s *Storage) ClearSavedGame() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keySavedGame))
	})
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	decided := s.Wins + s.Losses
	if decided == 0 {
		return 0
	}
	return float64(s.Wins) / float64(decided) * 100
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the value at key into v (when v is non-nil) and reports
// whether the key exists.
func (s *Storage) get(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		if v == nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}
