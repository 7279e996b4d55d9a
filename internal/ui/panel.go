package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/clock"
	"github.com/hailam/pocketchess/internal/game"
	"github.com/hailam/pocketchess/internal/match"
)

// Panel layout
const (
	PanelPadding = 20
	ClockHeight  = 56
	ButtonHeight = 40
	moveRowH     = 22
)

var (
	clockActiveBg  = color.RGBA{60, 66, 74, 255}
	clockLowTime   = color.RGBA{230, 90, 80, 255}
	statusThinking = color.RGBA{100, 180, 255, 255}
	statusGameOver = color.RGBA{255, 200, 80, 255}
	moveRowAlt     = color.RGBA{44, 48, 54, 255}
)

// PanelState is what the side panel shows for one frame.
type PanelState struct {
	View     game.View
	Moves    []string
	Names    [2]string // by color
	Flipped  bool      // black at the bottom
	Thinking bool
	Waiting  string // non-empty while a network peer is expected
}

// Panel is the side panel next to the board: both clocks, the move list and
// the game buttons.
type Panel struct {
	resignBtn *Button
	menuBtn   *Button

	scrollY    int
	maxScrollY int
	follow     bool
	lastMoves  int
}

// NewPanel creates the panel. The callbacks run on the UI goroutine.
func NewPanel(onResign, onMenu func()) *Panel {
	x := BoardSize + PanelPadding
	w := (PanelWidth - PanelPadding*3) / 2
	y := ScreenHeight - PanelPadding - ButtonHeight
	return &Panel{
		resignBtn: NewButton(Rect{x, y, w, ButtonHeight}, "Resign", StyleDanger, onResign),
		menuBtn:   NewButton(Rect{x + w + PanelPadding, y, w, ButtonHeight}, "Menu", StyleSecondary, onMenu),
		follow:    true,
	}
}

// Update handles the buttons and scrolling of the move list.
func (p *Panel) Update(input *InputHandler, over bool) {
	p.resignBtn.Disabled = over
	p.resignBtn.Update(input)
	p.menuBtn.Update(input)

	top, bottom := p.listBounds()
	if wheel := input.Wheel(); wheel != 0 && input.IsInBounds(BoardSize, top, PanelWidth, bottom-top) {
		p.scrollY = max(0, min(p.maxScrollY, p.scrollY-int(wheel*30)))
		p.follow = p.scrollY == p.maxScrollY
	}
}

func (p *Panel) listBounds() (top, bottom int) {
	top = PanelPadding + ClockHeight + 64
	bottom = ScreenHeight - PanelPadding*2 - ButtonHeight - ClockHeight - 12
	return top, bottom
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image, st PanelState) {
	vector.DrawFilledRect(screen, BoardSize, 0, PanelWidth, ScreenHeight, panelBg, false)

	topColor, bottomColor := board.Black, board.White
	if st.Flipped {
		topColor, bottomColor = board.White, board.Black
	}
	x := BoardSize + PanelPadding
	w := PanelWidth - PanelPadding*2

	p.drawClock(screen, st, topColor, Rect{x, PanelPadding, w, ClockHeight})
	p.drawStatus(screen, st, x, PanelPadding+ClockHeight+14)

	top, bottom := p.listBounds()
	DrawSectionHeader(screen, "Moves", x, top-22)
	p.drawMoves(screen, st.Moves, x, top, bottom)

	p.drawClock(screen, st, bottomColor, Rect{x, bottom + 12, w, ClockHeight})

	p.resignBtn.Draw(screen)
	p.menuBtn.Draw(screen)
}

func (p *Panel) drawClock(screen *ebiten.Image, st PanelState, c board.Color, r Rect) {
	v := st.View
	active := v.Phase != game.PhaseOver && v.Turn == c
	bg := sectionBg
	if active {
		bg = clockActiveBg
	}
	fillRect(screen, r, bg)
	if active {
		fillRect(screen, Rect{r.X, r.Y, 4, r.H}, accentColor)
	}

	name := st.Names[c]
	if name == "" {
		name = colorName(c)
	}
	drawText(screen, name, regularFace, r.X+14, r.Y+8, textSecondary)
	drawText(screen, colorName(c), GetFaceWithSize(11), r.X+14, r.Y+30, textMuted)

	txt, fg := "--:--", color.Color(textPrimary)
	if !v.Untimed {
		left := v.Remaining[c]
		txt = clock.FormatDuration(left)
		if left <= match.LowTimeThreshold {
			fg = clockLowTime
		}
	}
	tw, th := MeasureText(txt, monoFace)
	drawText(screen, txt, monoFace, r.X+r.W-14-int(tw), r.Y+(r.H-int(th))/2, fg)
}

func (p *Panel) drawStatus(screen *ebiten.Image, st PanelState, x, y int) {
	v := st.View
	var msg string
	c := color.Color(textPrimary)
	switch {
	case v.Phase == game.PhaseOver:
		msg, c = v.Result.String(), statusGameOver
	case st.Waiting != "":
		msg, c = st.Waiting, statusThinking
	case v.Phase == game.PhasePromotion:
		msg = "Choose a promotion piece"
	case st.Thinking:
		msg, c = colorName(v.Turn)+" is thinking...", statusThinking
	default:
		msg = colorName(v.Turn) + " to move"
	}
	drawText(screen, msg, boldFace, x, y, c)
}

func (p *Panel) drawMoves(screen *ebiten.Image, moves []string, x, top, bottom int) {
	if len(moves) == 0 {
		drawText(screen, "No moves yet", regularFace, x, top+4, textMuted)
		p.scrollY, p.maxScrollY = 0, 0
		return
	}

	rows := (len(moves) + 1) / 2
	visible := bottom - top
	p.maxScrollY = max(0, rows*moveRowH-visible)
	if len(moves) != p.lastMoves {
		p.lastMoves = len(moves)
		if p.follow {
			p.scrollY = p.maxScrollY
		}
	}
	p.scrollY = min(p.scrollY, p.maxScrollY)

	first := p.scrollY / moveRowH
	y := top - p.scrollY%moveRowH
	for row := first; row < rows && y < bottom; row++ {
		if y >= top {
			if row%2 == 1 {
				fillRect(screen, Rect{x - 4, y - 2, PanelWidth - PanelPadding*2 + 8, moveRowH}, moveRowAlt)
			}
			drawText(screen, fmt.Sprintf("%d.", row+1), regularFace, x, y, textMuted)
			drawText(screen, moves[row*2], regularFace, x+40, y, textPrimary)
			if row*2+1 < len(moves) {
				drawText(screen, moves[row*2+1], regularFace, x+140, y, textPrimary)
			}
		}
		y += moveRowH
	}

	if p.maxScrollY > 0 {
		barH := max(20, visible*visible/(rows*moveRowH))
		barY := top + (visible-barH)*p.scrollY/p.maxScrollY
		fillRect(screen, Rect{BoardSize + PanelWidth - 8, barY, 4, barH}, textMuted)
	}
}

// ResignHovered reports whether the mouse is over the resign button.
func (p *Panel) ResignHovered() bool {
	return p.resignBtn.Hovered()
}
