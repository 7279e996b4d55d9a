package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/game"
)

const promoCell = 88

var promotionKeys = map[ebiten.Key]board.PieceType{
	ebiten.KeyQ: board.Queen,
	ebiten.KeyR: board.Rook,
	ebiten.KeyB: board.Bishop,
	ebiten.KeyN: board.Knight,
}

// PromotionDialog asks which piece a pawn on the last rank becomes.
type PromotionDialog struct {
	frame   Rect
	hovered int
}

// NewPromotionDialog creates the dialog.
func NewPromotionDialog() *PromotionDialog {
	w := promoCell*len(board.PromotionTypes) + PanelPadding*2
	return &PromotionDialog{frame: dialogRect(w, promoCell+80), hovered: -1}
}

func (d *PromotionDialog) cell(i int) Rect {
	return Rect{d.frame.X + PanelPadding + i*promoCell, d.frame.Y + 56, promoCell, promoCell}
}

// Update returns the chosen kind, or NoPieceType while undecided.
func (d *PromotionDialog) Update(input *InputHandler) board.PieceType {
	for key, pt := range promotionKeys {
		if IsKeyJustPressed(key) {
			return pt
		}
	}
	mx, my := input.MousePosition()
	d.hovered = -1
	for i, pt := range board.PromotionTypes {
		if d.cell(i).contains(mx, my) {
			d.hovered = i
			if input.IsLeftJustPressed() {
				input.Consume()
				return pt
			}
		}
	}
	return board.NoPieceType
}

// Draw renders the choices in color c.
func (d *PromotionDialog) Draw(screen *ebiten.Image, sprites *SpriteManager, c board.Color) {
	drawDialogFrame(screen, d.frame)
	drawTextCentered(screen, "Promote to", boldFace, d.frame.X+d.frame.W/2, d.frame.Y+28, textPrimary)
	for i, pt := range board.PromotionTypes {
		r := d.cell(i)
		bg := sectionBg
		if i == d.hovered {
			bg = buttonHoverBg
		}
		fillRect(screen, Rect{r.X + 4, r.Y, r.W - 8, r.H}, bg)
		sprites.DrawPieceScaled(screen, board.NewPiece(pt, c), r.X+8, r.Y+4, r.W-16)
	}
}

// GameOverDialog announces the result.
type GameOverDialog struct {
	frame    Rect
	againBtn *Button
	menuBtn  *Button
	closeBtn *Button
	hidden   bool
}

// NewGameOverDialog creates the dialog. onAgain may be nil when a rematch
// is not possible.
func NewGameOverDialog(onAgain, onMenu func()) *GameOverDialog {
	d := &GameOverDialog{frame: dialogRect(380, 200)}
	y := d.frame.Y + d.frame.H - PanelPadding - ButtonHeight
	w := (d.frame.W - PanelPadding*4) / 3
	x := d.frame.X + PanelPadding
	d.againBtn = NewButton(Rect{x, y, w, ButtonHeight}, "Play again", StylePrimary, onAgain)
	d.againBtn.Disabled = onAgain == nil
	d.menuBtn = NewButton(Rect{x + w + PanelPadding, y, w, ButtonHeight}, "Menu", StyleSecondary, onMenu)
	d.closeBtn = NewButton(Rect{x + (w+PanelPadding)*2, y, w, ButtonHeight}, "Board", StyleSecondary, func() { d.hidden = true })
	return d
}

// Visible reports whether the dialog covers the board.
func (d *GameOverDialog) Visible() bool { return !d.hidden }

// Show brings the dialog back after it was dismissed.
func (d *GameOverDialog) Show() { d.hidden = false }

// Update handles the buttons.
func (d *GameOverDialog) Update(input *InputHandler) {
	if d.hidden {
		return
	}
	d.againBtn.Update(input)
	d.menuBtn.Update(input)
	d.closeBtn.Update(input)
}

// Draw renders the result. local is the color played at this screen, or
// NoColor when both sides are.
func (d *GameOverDialog) Draw(screen *ebiten.Image, res game.Result, local board.Color) {
	if d.hidden {
		return
	}
	drawDialogFrame(screen, d.frame)
	cx := d.frame.X + d.frame.W/2

	title := "Game over"
	switch {
	case local == board.NoColor:
	case res.Winner == local:
		title = "You won"
	default:
		title = "You lost"
	}
	drawTextCentered(screen, title, GetFaceWithSize(26), cx, d.frame.Y+40, statusGameOver)
	drawTextCentered(screen, res.String(), regularFace, cx, d.frame.Y+82, textPrimary)

	d.againBtn.Draw(screen)
	d.menuBtn.Draw(screen)
	d.closeBtn.Draw(screen)
}

// Hovered reports whether the mouse is over a button.
func (d *GameOverDialog) Hovered() bool {
	return !d.hidden && (d.againBtn.Hovered() || d.menuBtn.Hovered() || d.closeBtn.Hovered())
}
