package ui

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/config"
	"github.com/hailam/pocketchess/internal/engine"
	"github.com/hailam/pocketchess/internal/game"
	"github.com/hailam/pocketchess/internal/match"
	"github.com/hailam/pocketchess/internal/storage"
)

// Window layout in logical pixels.
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	PanelWidth   = ScreenWidth - BoardSize
)

type screenID int

const (
	screenMenu screenID = iota
	screenConnecting
	screenPlaying
)

// Game implements ebiten.Game. It owns the screens and at most one match.
type Game struct {
	cfg    config.Config
	store  *storage.Storage // nil when the database could not be opened
	prefs  *storage.UserPreferences
	stats  *storage.GameStats
	engine *engine.Engine

	screen screenID
	choice MenuChoice

	// Connecting
	conn      *match.Connection
	cancelBtn *Button

	// Playing
	match     *match.Match
	panel     *Panel
	promotion *PromotionDialog
	gameOver  *GameOverDialog

	menu     *Menu
	renderer *Renderer
	input    *InputHandler
	feedback *FeedbackManager
	backdrop *Backdrop

	quitting bool
	closed   bool
}

// NewGame creates the application. store may be nil; nothing is persisted then.
func NewGame(cfg config.Config, store *storage.Storage) *Game {
	g := &Game{
		cfg:       cfg,
		store:     store,
		prefs:     storage.DefaultPreferences(),
		stats:     storage.NewGameStats(),
		engine:    engine.NewEngine(cfg.HashMB),
		renderer:  NewRenderer(BoardSize, SquareSize),
		input:     NewInputHandler(),
		feedback:  NewFeedbackManager(),
		backdrop:  NewBackdrop(),
		promotion: NewPromotionDialog(),
	}
	g.loadStored()

	g.menu = NewMenu(g.prefs, cfg.LanAddr, g.start, g.resume, func() { g.quitting = true })
	g.menu.SetStats(g.stats)
	if minutes, ok := cfg.TimerOverride(); ok {
		g.menu.SetTimer(minutes)
	}
	if store != nil {
		if saved, err := store.LoadGame(); err != nil {
			log.Printf("[STORAGE] load saved game: %v", err)
		} else {
			g.menu.SetSaved(saved)
		}
	}
	g.feedback.Audio().SetEnabled(g.prefs.SoundEnabled)

	cancel := dialogRect(360, 160)
	g.cancelBtn = NewButton(Rect{cancel.X + 110, cancel.Y + 100, 140, ButtonHeight}, "Cancel", StyleSecondary, g.cancelConnect)
	return g
}

func (g *Game) loadStored() {
	if g.store == nil {
		return
	}
	if prefs, err := g.store.LoadPreferences(); err != nil {
		log.Printf("[STORAGE] load preferences: %v", err)
	} else {
		g.prefs = prefs
	}
	if stats, err := g.store.LoadStats(); err != nil {
		log.Printf("[STORAGE] load stats: %v", err)
	} else {
		g.stats = stats
	}

	first, err := g.store.IsFirstLaunch()
	if err != nil {
		log.Printf("[STORAGE] first launch: %v", err)
		return
	}
	if first {
		g.feedback.Info("Welcome! Pick an opponent and press Start")
		if err := g.store.MarkFirstLaunchComplete(); err != nil {
			log.Printf("[STORAGE] mark first launch: %v", err)
		}
	}
}

func (g *Game) savePreferences(c MenuChoice) {
	g.prefs.Username = c.Name
	g.prefs.Mode = c.Mode
	g.prefs.Difficulty = c.Difficulty
	g.prefs.PlayerColor = c.Color
	g.prefs.TimerMinutes = c.TimerMinutes
	g.prefs.SoundEnabled = c.Sound
	if c.Addr != "" {
		g.prefs.LANAddr = c.Addr
	}
	g.prefs.LastPlayed = time.Now()
	if g.store == nil {
		return
	}
	if err := g.store.SavePreferences(g.prefs); err != nil {
		log.Printf("[STORAGE] save preferences: %v", err)
	}
}

// RecordGame stores a finished game and refreshes the statistics.
func (g *Game) RecordGame(res storage.GameResult) error {
	if g.store == nil {
		return nil
	}
	if err := g.store.RecordGame(res); err != nil {
		return err
	}
	stats, err := g.store.LoadStats()
	if err != nil {
		return err
	}
	g.stats = stats
	g.menu.SetStats(stats)
	return nil
}

// start begins a game from the menu settings.
func (g *Game) start(c MenuChoice) {
	g.savePreferences(c)
	g.feedback.Audio().SetEnabled(c.Sound)
	g.choice = c
	g.discardSaved()

	timer := time.Duration(c.TimerMinutes) * time.Minute
	switch c.Mode {
	case storage.ModeLocal:
		g.begin(match.Config{Mode: c.Mode, Local: board.NoColor, TimerLength: timer})
	case storage.ModeVsComputer:
		g.engine.SetDifficulty(engine.Difficulty(c.Difficulty))
		g.begin(match.Config{Mode: c.Mode, Local: c.Color, TimerLength: timer, Opponent: g.engine})
	case storage.ModeLANHost:
		conn, err := match.Host(g.cfg.LanAddr, c.Color, timer)
		if err != nil {
			g.feedback.Error(fmt.Sprintf("Cannot host: %v", err))
			return
		}
		g.conn = conn
		g.backdrop.Invalidate()
		g.screen = screenConnecting
	case storage.ModeLANJoin:
		if c.Addr == "" {
			g.feedback.Error("Enter the host address")
			return
		}
		g.conn = match.Join(c.Addr)
		g.backdrop.Invalidate()
		g.screen = screenConnecting
	}
}

// resume continues the suspended game.
func (g *Game) resume() {
	if g.store == nil {
		return
	}
	m, err := match.Resume(g.store, g.resumeConfig)
	if err != nil {
		g.feedback.Error(fmt.Sprintf("Cannot resume: %v", err))
		if errors.Is(err, match.ErrNoSavedGame) {
			g.menu.SetSaved(nil)
		}
		return
	}
	g.menu.SetSaved(nil)
	g.play(m)
}

// resumeConfig sets up the menu choice and opponent for a saved game.
func (g *Game) resumeConfig(saved *storage.SavedGame) match.Config {
	g.choice = g.menu.Choice()
	g.choice.Mode = saved.Mode
	g.choice.Color = saved.Local
	g.choice.TimerMinutes = int(saved.TimerLength / time.Minute)

	cfg := match.Config{Debug: g.cfg.Debug, Recorder: g}
	if saved.Mode == storage.ModeVsComputer {
		g.engine.SetDifficulty(engine.Difficulty(g.prefs.Difficulty))
		cfg.Opponent = g.engine
	}
	return cfg
}

func (g *Game) discardSaved() {
	g.menu.SetSaved(nil)
	if g.store == nil {
		return
	}
	if err := g.store.ClearSavedGame(); err != nil {
		log.Printf("[STORAGE] clear saved game: %v", err)
	}
}

// begin starts a new match and switches to the board.
func (g *Game) begin(cfg match.Config) {
	cfg.Debug = g.cfg.Debug
	cfg.Recorder = g
	m, err := match.New(cfg)
	if err != nil {
		g.feedback.Error(fmt.Sprintf("Cannot start: %v", err))
		g.screen = screenMenu
		return
	}
	g.play(m)
}

// play shows the board for m.
func (g *Game) play(m *match.Match) {
	g.match = m
	g.engine.SetClock(m.Session())
	g.renderer.SetFlipped(m.Local() == board.Black)

	var again func()
	if m.Mode() == storage.ModeLocal || m.Mode() == storage.ModeVsComputer {
		again = g.playAgain
	}
	g.panel = NewPanel(g.resign, g.toMenu)
	g.gameOver = NewGameOverDialog(again, g.toMenu)
	g.backdrop.Invalidate()
	g.screen = screenPlaying
}

func (g *Game) playAgain() {
	g.endMatch()
	g.start(g.choice)
}

func (g *Game) resign() {
	if g.match == nil {
		return
	}
	if err := g.match.Resign(); err != nil {
		g.feedback.Error(RejectionMessage(err))
	}
}

// toMenu leaves the current game, keeping it for later when possible.
func (g *Game) toMenu() {
	g.suspend()
	g.endMatch()
	g.screen = screenMenu
}

func (g *Game) suspend() {
	if g.match == nil || g.store == nil {
		return
	}
	saved := g.match.Suspend()
	if saved == nil {
		return
	}
	if err := g.store.SaveGame(saved); err != nil {
		log.Printf("[STORAGE] save game: %v", err)
		return
	}
	log.Printf("[STORAGE] suspended %v game after %d moves", saved.Mode, len(saved.Moves))
	g.menu.SetSaved(saved)
}

func (g *Game) endMatch() {
	if g.match == nil {
		return
	}
	if err := g.match.Close(); err != nil {
		log.Printf("[LAN] close: %v", err)
	}
	g.engine.SetClock(nil)
	g.match = nil
}

func (g *Game) cancelConnect() {
	if g.conn != nil {
		g.conn.Cancel()
		g.conn = nil
	}
	g.screen = screenMenu
}

// Close suspends the running game and releases everything but the store.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	g.suspend()
	g.endMatch()
	if g.conn != nil {
		g.conn.Cancel()
	}
}

// Update advances one frame.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.Close()
		return ebiten.Termination
	}
	g.input.Update()
	g.feedback.Update()

	switch g.screen {
	case screenMenu:
		g.menu.Update(g.input)
	case screenConnecting:
		g.updateConnecting()
	case screenPlaying:
		g.updatePlaying()
	}

	if g.quitting {
		g.Close()
		return ebiten.Termination
	}
	g.updateCursor()
	return nil
}

func (g *Game) updateConnecting() {
	g.cancelBtn.Update(g.input)
	if g.conn == nil || !g.conn.Ready() {
		return
	}
	peer, err := g.conn.Result()
	g.conn = nil
	if err != nil {
		g.feedback.Error(fmt.Sprintf("Connection failed: %v", err))
		g.screen = screenMenu
		return
	}
	g.begin(match.Config{
		Mode:        g.choice.Mode,
		Local:       peer.LocalColor(),
		TimerLength: peer.TimerLength(),
		Opponent:    peer,
	})
}

func (g *Game) updatePlaying() {
	for _, ev := range g.match.Update() {
		g.onEvent(ev)
	}
	v := g.match.View()

	switch {
	case v.Phase == game.PhaseOver:
		g.gameOver.Update(g.input)
		if !g.gameOver.Visible() && (IsKeyJustPressed(ebiten.KeySpace) || g.input.IsRightJustPressed()) {
			g.gameOver.Show()
			g.backdrop.Invalidate()
		}
	case v.Phase == game.PhasePromotion && g.match.CanMove():
		if kind := g.promotion.Update(g.input); kind != board.NoPieceType {
			if err := g.match.Promote(kind); err != nil {
				g.feedback.Error(RejectionMessage(err))
			} else {
				g.feedback.OnPromotion()
			}
		}
	default:
		g.handleBoardInput(v)
	}

	// The menu button may have ended the match.
	if g.match != nil && g.panel != nil {
		g.panel.Update(g.input, v.Phase == game.PhaseOver)
	}
}

func (g *Game) handleBoardInput(v game.View) {
	if g.input.IsRightJustPressed() {
		g.match.Session().ClearSelection()
		return
	}
	if !g.input.IsLeftJustPressed() {
		return
	}
	mx, my := g.input.MousePosition()
	sq := g.renderer.ScreenToSquare(mx, my)
	if sq == board.NoSquare {
		return
	}
	g.input.Consume()

	res, err := g.match.Click(sq)
	if err != nil {
		g.feedback.OnRejected(sq, board.NoSquare, err)
		return
	}
	switch res.Kind {
	case game.ClickMoved, game.ClickPromotion:
		g.feedback.OnMove(res.Record)
	case game.ClickCleared:
		if v.Selected != board.NoSquare && sq != v.Selected {
			g.feedback.OnRejected(v.Selected, sq, game.ErrIllegalMove)
		}
	}
}

func (g *Game) onEvent(ev match.Event) {
	switch ev.Kind {
	case match.OpponentMoved:
		g.feedback.OnMove(ev.Record)
	case match.OpponentFailed:
		g.feedback.Error(fmt.Sprintf("Opponent failed: %v", ev.Err))
	case match.RemoteResigned:
		g.feedback.Info(colorName(ev.Color) + " resigned")
	case match.RemoteLeft:
		g.feedback.Error("Opponent disconnected")
	case match.SendFailed:
		g.feedback.Error("Move not delivered to the opponent")
	case match.LowTime:
		g.feedback.OnLowTime(ev.Color)
	case match.GameOver:
		g.feedback.OnGameOver(ev.Result)
		g.gameOver.Show()
		g.backdrop.Invalidate()
	}
}

func (g *Game) updateCursor() {
	hovered := false
	switch g.screen {
	case screenMenu:
		hovered = g.menu.Hovered()
	case screenConnecting:
		hovered = g.cancelBtn.Hovered()
	case screenPlaying:
		hovered = (g.gameOver != nil && g.gameOver.Hovered()) || (g.panel != nil && g.panel.ResignHovered())
	}
	if hovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the current screen.
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.screen {
	case screenMenu:
		g.menu.Draw(screen)
	case screenConnecting:
		g.menu.Draw(screen)
		g.drawConnecting(screen)
	case screenPlaying:
		if g.match != nil {
			g.drawPlaying(screen)
		}
	}
	g.feedback.Draw(screen, g.renderer)
}

func (g *Game) drawConnecting(screen *ebiten.Image) {
	g.backdrop.Draw(screen, 0.4)
	r := dialogRect(360, 160)
	drawDialogFrame(screen, r)

	title, detail := "Hosting", "Waiting for a player on "
	if g.choice.Mode == storage.ModeLANJoin {
		title, detail = "Joining", "Connecting to "
	}
	if g.conn != nil {
		detail += g.conn.Addr()
	}
	drawTextCentered(screen, title, boldFace, r.X+r.W/2, r.Y+30, textPrimary)
	drawTextCentered(screen, detail, regularFace, r.X+r.W/2, r.Y+64, textSecondary)
	g.cancelBtn.Draw(screen)
}

func (g *Game) drawPlaying(screen *ebiten.Image) {
	v := g.match.View()
	screen.Fill(g.renderer.Theme().Background)
	g.renderer.DrawBoard(screen)
	g.renderer.DrawHighlights(screen, v.Position, v.Selected, v.Destinations, v.LastMove, v.Promotion)
	g.renderer.DrawPieces(screen, v.Position, g.feedback.Animations())

	st := PanelState{
		View:     v,
		Moves:    g.match.Moves(),
		Names:    g.names(),
		Flipped:  g.match.Local() == board.Black,
		Thinking: g.match.Thinking(),
	}
	if st.Thinking && g.match.Mode() != storage.ModeVsComputer {
		st.Waiting = "Waiting for " + colorName(v.Turn)
	}
	g.panel.Draw(screen, st)

	switch {
	case v.Phase == game.PhasePromotion && g.match.CanMove():
		g.backdrop.Draw(screen, 0.35)
		g.promotion.Draw(screen, g.renderer.Sprites(), v.Turn)
	case v.Phase == game.PhaseOver && g.gameOver.Visible():
		g.backdrop.Draw(screen, 0.35)
		g.gameOver.Draw(screen, v.Result, g.match.Local())
	default:
		g.backdrop.Invalidate()
	}
}

func (g *Game) names() [2]string {
	var names [2]string
	local := g.match.Local()
	if local == board.NoColor {
		return names
	}
	names[local] = g.prefs.Username
	switch g.match.Mode() {
	case storage.ModeVsComputer:
		names[local.Other()] = "Computer (" + engine.Difficulty(g.prefs.Difficulty).String() + ")"
	default:
		names[local.Other()] = "Opponent"
	}
	return names
}

// Layout returns the logical screen size; Ebitengine scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

var _ match.Recorder = (*Game)(nil)
