package ui

import (
	"errors"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/game"
)

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast is a short message over the board.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager keeps the most recent toasts.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast notification.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	tm.toasts = slices.DeleteFunc(tm.toasts, func(t *Toast) bool {
		return now.Sub(t.StartTime) >= t.Duration
	})
}

// Draw renders all active toasts.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := regularFace
	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		duration := t.Duration.Seconds()

		alpha := 1.0
		const fade = 0.2
		if elapsed < fade {
			alpha = elapsed / fade
		} else if elapsed > duration-fade {
			alpha = (duration - elapsed) / fade
		}
		alpha = max(0, min(1, alpha))

		bg := toastColor(t.Type)
		bg.A = uint8(220 * alpha)
		fg := color.RGBA{255, 255, 255, uint8(255 * alpha)}
		if t.Type == ToastWarning {
			fg = color.RGBA{40, 30, 0, uint8(255 * alpha)}
		}

		w, h := MeasureText(t.Message, face)
		const padding = 12.0
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)
		drawText(screen, t.Message, face, int(x+padding), int(y+padding), fg)
		y += boxH + 8
	}
}

func toastColor(t ToastType) color.RGBA {
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, 0}
	case ToastError:
		return color.RGBA{180, 50, 50, 0}
	case ToastSuccess:
		return color.RGBA{50, 150, 50, 0}
	}
	return color.RGBA{50, 100, 150, 0}
}

// ShakeAnimation represents a piece shake effect.
type ShakeAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// FlashAnimation represents a square flash effect.
type FlashAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Color     color.RGBA
}

// AnimationManager manages visual animations.
type AnimationManager struct {
	shakes  []*ShakeAnimation
	flashes []*FlashAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// StartFlash begins a flash animation on a square.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, &FlashAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  400 * time.Millisecond,
		Color:     c,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	am.shakes = slices.DeleteFunc(am.shakes, func(s *ShakeAnimation) bool {
		return now.Sub(s.StartTime) >= s.Duration
	})
	am.flashes = slices.DeleteFunc(am.flashes, func(f *FlashAnimation) bool {
		return now.Sub(f.StartTime) >= f.Duration
	})
}

// GetShakeOffset returns the current shake offset for a square.
func (am *AnimationManager) GetShakeOffset(sq board.Square) (float64, float64) {
	for _, s := range am.shakes {
		if s.Square != sq {
			continue
		}
		progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
		if progress >= 1.0 {
			return 0, 0
		}
		// Damped sine.
		amplitude := s.Intensity * math.Exp(-5*progress)
		return amplitude * math.Sin(40*progress), 0
	}
	return 0, 0
}

// DrawFlashes renders all active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, renderer *Renderer) {
	for _, f := range am.flashes {
		progress := time.Since(f.StartTime).Seconds() / f.Duration.Seconds()
		if progress >= 1.0 {
			continue
		}
		c := f.Color
		c.A = uint8(float64(f.Color.A) * (1 - progress))

		x, y := renderer.SquareToScreen(f.Square)
		size := float32(renderer.SquareSize())
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
}

var (
	flashInvalid     = color.RGBA{255, 80, 80, 150}
	flashKingCapture = color.RGBA{255, 40, 40, 220}
)

// FeedbackManager coordinates toasts, animations and sounds.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(),
	}
}

// Update updates all feedback systems.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders all feedback overlays.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, renderer *Renderer) {
	fm.animations.DrawFlashes(screen, renderer)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for renderer integration.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Audio returns the audio manager for settings access.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// RejectionMessage turns a session error into text for the player.
func RejectionMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, game.ErrIllegalMove):
		return "That piece cannot move there"
	case errors.Is(err, game.ErrPromotionPending):
		return "Choose a piece for the promotion first"
	case errors.Is(err, game.ErrGameOver):
		return "The game is over"
	case errors.Is(err, game.ErrEmptySquare):
		return "No piece there"
	}
	return "Invalid move"
}

// OnRejected reports a refused click or move.
func (fm *FeedbackManager) OnRejected(from, to board.Square, err error) {
	fm.toasts.Show(RejectionMessage(err), ToastWarning, 2*time.Second)
	if from.IsValid() {
		fm.animations.StartShake(from)
	}
	if to.IsValid() {
		fm.animations.StartFlash(to, flashInvalid)
	}
	fm.audio.Play(SoundInvalid)
}

// OnMove plays the sound for an accepted move.
func (fm *FeedbackManager) OnMove(rec game.MoveRecord) {
	switch {
	case rec.Captured.Type() == board.King:
		fm.animations.StartFlash(rec.Move.To, flashKingCapture)
		fm.audio.Play(SoundCapture)
	case rec.IsCapture():
		fm.audio.Play(SoundCapture)
	default:
		fm.audio.Play(SoundMove)
	}
}

// OnPromotion confirms a completed promotion.
func (fm *FeedbackManager) OnPromotion() {
	fm.audio.Play(SoundPromotion)
}

// OnLowTime warns that a clock is nearly out.
func (fm *FeedbackManager) OnLowTime(c board.Color) {
	fm.toasts.Show(colorName(c)+": 10 seconds left", ToastWarning, 2*time.Second)
	fm.audio.Play(SoundLowTime)
}

// OnGameOver announces the result.
func (fm *FeedbackManager) OnGameOver(result game.Result) {
	fm.toasts.Show(result.String(), ToastSuccess, 5*time.Second)
	fm.audio.Play(SoundGameEnd)
}

// Info shows a neutral message.
func (fm *FeedbackManager) Info(msg string) {
	fm.toasts.Show(msg, ToastInfo, 3*time.Second)
}

// Error shows a failure message.
func (fm *FeedbackManager) Error(msg string) {
	fm.toasts.Show(msg, ToastError, 4*time.Second)
	fm.audio.Play(SoundInvalid)
}

func colorName(c board.Color) string {
	if c == board.Black {
		return "Black"
	}
	return "White"
}
