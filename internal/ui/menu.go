package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/config"
	"github.com/hailam/pocketchess/internal/storage"
)

// Menu layout
const (
	menuLeftX  = 110
	menuRightX = 520
	menuColW   = 340
	menuRowH   = 36
)

var modeLabels = []string{"1v1", "vs AI", "Host", "Join"}

// MenuChoice is what the player picked on the main menu.
type MenuChoice struct {
	Name         string
	Mode         storage.GameMode
	Difficulty   storage.Difficulty
	Color        board.Color
	TimerMinutes int
	Addr         string
	Sound        bool
}

// Menu is the start screen: game mode, clock and opponent settings plus
// the player's statistics.
type Menu struct {
	name       *TextInput
	mode       *ButtonGroup
	difficulty *ButtonGroup
	side       *ButtonGroup
	timer      *Stepper
	addr       *TextInput
	sound      *Checkbox

	startBtn  *Button
	resumeBtn *Button
	quitBtn   *Button

	listenAddr string
	stats      *storage.GameStats
	saved      *storage.SavedGame
}

// NewMenu builds the menu from the saved preferences. listenAddr is where a
// hosted game listens.
func NewMenu(prefs *storage.UserPreferences, listenAddr string, onStart func(MenuChoice), onResume, onQuit func()) *Menu {
	m := &Menu{listenAddr: listenAddr}

	m.name = NewTextInput(Rect{menuLeftX, 120, menuColW, menuRowH}, "Your name", 20)
	m.name.Value = prefs.Username
	m.mode = NewButtonGroup(menuLeftX, 195, modeLabels, int(prefs.Mode), menuColW/4, menuRowH)
	m.difficulty = NewButtonGroup(menuLeftX, 270, []string{"Easy", "Medium", "Hard"}, int(prefs.Difficulty), menuColW/3, menuRowH)
	side := 0
	if prefs.PlayerColor == board.Black {
		side = 1
	}
	m.side = NewButtonGroup(menuLeftX, 345, []string{"White", "Black"}, side, menuColW/2, menuRowH)

	m.timer = NewStepper(menuRightX, 120, menuRowH, prefs.TimerMinutes, 0, config.MaxTimerMinutes, 1)
	m.timer.Format = func(v int) string {
		if v == 0 {
			return "Untimed"
		}
		return fmt.Sprintf("%d min", v)
	}
	m.addr = NewTextInput(Rect{menuRightX, 195, menuColW, menuRowH}, "host:port", 64)
	m.addr.Value = prefs.LANAddr
	m.sound = NewCheckbox(menuRightX, 275, "Sound effects", prefs.SoundEnabled)

	y := ScreenHeight - 110
	m.startBtn = NewButton(Rect{ScreenWidth/2 - 230, y, 140, 44}, "Start", StylePrimary, func() { onStart(m.Choice()) })
	m.resumeBtn = NewButton(Rect{ScreenWidth/2 - 70, y, 140, 44}, "Resume", StyleSecondary, onResume)
	m.quitBtn = NewButton(Rect{ScreenWidth/2 + 90, y, 140, 44}, "Quit", StyleSecondary, onQuit)
	return m
}

// SetStats updates the statistics shown.
func (m *Menu) SetStats(stats *storage.GameStats) {
	m.stats = stats
}

// SetSaved enables Resume for a suspended game, or disables it for nil.
func (m *Menu) SetSaved(saved *storage.SavedGame) {
	m.saved = saved
}

// SetTimer overrides the clock length shown.
func (m *Menu) SetTimer(minutes int) {
	m.timer.Value = max(m.timer.Min, min(m.timer.Max, minutes))
}

// Choice returns the current selection.
func (m *Menu) Choice() MenuChoice {
	name := strings.TrimSpace(m.name.Value)
	if name == "" {
		name = "Player"
	}
	c := board.White
	if m.side.Selected == 1 {
		c = board.Black
	}
	return MenuChoice{
		Name:         name,
		Mode:         storage.GameMode(m.mode.Selected),
		Difficulty:   storage.Difficulty(m.difficulty.Selected),
		Color:        c,
		TimerMinutes: m.timer.Value,
		Addr:         strings.TrimSpace(m.addr.Value),
		Sound:        m.sound.Checked,
	}
}

func (m *Menu) selectedMode() storage.GameMode {
	return storage.GameMode(m.mode.Selected)
}

// Update handles input. Enter starts a game unless a field has focus.
func (m *Menu) Update(input *InputHandler) {
	typing := m.name.Update(input)
	if m.selectedMode() == storage.ModeLANJoin {
		typing = m.addr.Update(input) || typing
	}
	m.mode.Update(input)
	switch m.selectedMode() {
	case storage.ModeVsComputer:
		m.difficulty.Update(input)
		m.side.Update(input)
	case storage.ModeLANHost:
		m.side.Update(input)
	}
	if m.selectedMode() != storage.ModeLANJoin {
		m.timer.Update(input)
	}
	m.sound.Update(input)

	m.resumeBtn.Disabled = m.saved == nil
	m.startBtn.Update(input)
	m.resumeBtn.Update(input)
	m.quitBtn.Update(input)

	if !typing && IsKeyJustPressed(ebiten.KeyEnter) && m.startBtn.OnClick != nil {
		m.startBtn.OnClick()
	}
}

// Draw renders the menu.
func (m *Menu) Draw(screen *ebiten.Image) {
	screen.Fill(panelBg)
	drawTextCentered(screen, "POCKETCHESS", GetFaceWithSize(30), ScreenWidth/2, 50, textPrimary)
	drawTextCentered(screen, "Capture the king to win", regularFace, ScreenWidth/2, 82, textMuted)

	label := func(s string, w interface{ Draw(*ebiten.Image) }, x, y int) {
		DrawSectionHeader(screen, s, x, y-22)
		w.Draw(screen)
	}
	label("Name", m.name, menuLeftX, m.name.Y)
	label("Opponent", m.mode, menuLeftX, m.mode.Y)

	mode := m.selectedMode()
	if mode == storage.ModeVsComputer {
		label("Difficulty", m.difficulty, menuLeftX, m.difficulty.Y)
	}
	if mode == storage.ModeVsComputer || mode == storage.ModeLANHost {
		label("Play as", m.side, menuLeftX, m.side.Y)
	}

	if mode == storage.ModeLANJoin {
		DrawSectionHeader(screen, "Clock", menuRightX, m.timer.Y-22)
		drawText(screen, "Set by the host", regularFace, menuRightX, m.timer.Y+10, textSecondary)
		label("Host address", m.addr, menuRightX, m.addr.Y)
	} else {
		label("Minutes per player", m.timer, menuRightX, m.timer.Y)
	}
	if mode == storage.ModeLANHost {
		DrawSectionHeader(screen, "Listening on", menuRightX, m.addr.Y-22)
		drawText(screen, m.listenAddr, regularFace, menuRightX, m.addr.Y+10, textSecondary)
	}
	m.sound.Draw(screen)

	m.drawStats(screen, menuRightX, 330)

	DrawDivider(screen, menuLeftX, ScreenHeight-136, ScreenWidth-menuLeftX*2)
	m.startBtn.Draw(screen)
	m.resumeBtn.Draw(screen)
	m.quitBtn.Draw(screen)
	if m.saved != nil {
		note := fmt.Sprintf("Saved %s game from %s", m.saved.Mode, m.saved.SavedAt.Format("Jan 2 15:04"))
		drawTextCentered(screen, note, GetFaceWithSize(11), ScreenWidth/2, ScreenHeight-44, textMuted)
	}
}

func (m *Menu) drawStats(screen *ebiten.Image, x, y int) {
	DrawSectionHeader(screen, "Statistics", x, y)
	s := m.stats
	if s == nil || s.GamesPlayed == 0 {
		drawText(screen, "No games played yet", regularFace, x, y+24, textSecondary)
		return
	}
	lines := []string{
		fmt.Sprintf("Games %d   Wins %d   Losses %d", s.GamesPlayed, s.Wins, s.Losses),
		fmt.Sprintf("Win rate %.0f%%   Best streak %d", s.GetWinRate(), s.LongestWinStrk),
		fmt.Sprintf("White won %d   Black won %d", s.WinsByColor["white"], s.WinsByColor["black"]),
	}
	reasons := make([]string, 0, len(s.WinsByReason))
	for r, n := range s.WinsByReason {
		reasons = append(reasons, fmt.Sprintf("%s %d", r, n))
	}
	sort.Strings(reasons)
	if len(reasons) > 0 {
		lines = append(lines, "By "+strings.Join(reasons, ", "))
	}
	for i, l := range lines {
		drawText(screen, l, regularFace, x, y+24+i*22, textSecondary)
	}
}

// Hovered reports whether the mouse is over a clickable widget.
func (m *Menu) Hovered() bool {
	return m.startBtn.Hovered() || m.resumeBtn.Hovered() || m.quitBtn.Hovered()
}
