package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/pocketchess/internal/board"
)

// Theme defines the color scheme for the board.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	LegalMoveColor color.RGBA
	CaptureColor   color.RGBA
	LastMoveColor  color.RGBA
	PromotionColor color.RGBA
	Background     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255},
		DarkSquare:     color.RGBA{181, 136, 99, 255},
		SelectedSquare: color.RGBA{247, 247, 105, 180},
		LegalMoveColor: color.RGBA{130, 151, 105, 200},
		CaptureColor:   color.RGBA{200, 80, 80, 170},
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		PromotionColor: color.RGBA{100, 160, 255, 140},
		Background:     color.RGBA{40, 44, 52, 255},
	}
}

// Renderer draws the board and the pieces.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	flipped    bool // black at the bottom
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
	}
}

// SetFlipped puts black's side at the bottom of the screen.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// DrawBoard draws the squares and the coordinate labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := float32(r.squareSize)
	for sq := board.A1; sq <= board.H8; sq++ {
		c := r.theme.LightSquare
		if (sq.Rank()+sq.File())%2 == 0 {
			c = r.theme.DarkSquare
		}
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels the files along the bottom edge and the ranks
// along the left edge, in the contrasting square color.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	face := GetFaceWithSize(11)
	for i := 0; i < 8; i++ {
		file, rank := i, i
		if r.flipped {
			file, rank = 7-i, 7-i
		}

		bottom := board.NewSquare(file, 0)
		if r.flipped {
			bottom = board.NewSquare(file, 7)
		}
		x, y := r.SquareToScreen(bottom)
		drawText(screen, string(rune('a'+file)), face, x+r.squareSize-10, y+r.squareSize-15, r.labelColor(bottom))

		left := board.NewSquare(0, rank)
		if r.flipped {
			left = board.NewSquare(7, rank)
		}
		x, y = r.SquareToScreen(left)
		drawText(screen, string(rune('1'+rank)), face, x+3, y+2, r.labelColor(left))
	}
}

func (r *Renderer) labelColor(sq board.Square) color.RGBA {
	if (sq.Rank()+sq.File())%2 == 0 {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

// DrawHighlights draws the last move, the selection, the destinations of the
// selection and a pending promotion square.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, pos *board.Position, selected board.Square, dests board.SquareSet, lastMove board.Move, promotion board.Square) {
	if lastMove != board.NoMove {
		r.highlightSquare(screen, lastMove.From, r.theme.LastMoveColor)
		r.highlightSquare(screen, lastMove.To, r.theme.LastMoveColor)
	}
	if selected != board.NoSquare {
		r.highlightSquare(screen, selected, r.theme.SelectedSquare)
	}
	if promotion != board.NoSquare {
		r.highlightSquare(screen, promotion, r.theme.PromotionColor)
	}
	for _, sq := range dests.Squares() {
		if pos.IsEmpty(sq) {
			r.drawMoveDot(screen, sq)
		} else {
			r.drawCaptureRing(screen, sq)
		}
	}
}

// highlightSquare draws a colored overlay on a square.
func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if !sq.IsValid() {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(r.squareSize), float32(r.squareSize), c, false)
}

func (r *Renderer) drawMoveDot(screen *ebiten.Image, sq board.Square) {
	cx, cy := r.squareCenter(sq)
	vector.DrawFilledCircle(screen, cx, cy, float32(r.squareSize)*0.15, r.theme.LegalMoveColor, false)
}

func (r *Renderer) drawCaptureRing(screen *ebiten.Image, sq board.Square) {
	cx, cy := r.squareCenter(sq)
	vector.StrokeCircle(screen, cx, cy, float32(r.squareSize)*0.44, 5, r.theme.CaptureColor, false)
}

func (r *Renderer) squareCenter(sq board.Square) (float32, float32) {
	x, y := r.SquareToScreen(sq)
	half := float32(r.squareSize) / 2
	return float32(x) + half, float32(y) + half
}

// DrawPieces draws every piece, offset by any running shake animation.
func (r *Renderer) DrawPieces(screen *ebiten.Image, pos *board.Position, anims *AnimationManager) {
	for sq := board.A1; sq <= board.H8; sq++ {
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece {
			continue
		}
		x, y := r.SquareToScreen(sq)
		if anims != nil {
			dx, dy := anims.GetShakeOffset(sq)
			x += int(dx)
			y += int(dy)
		}
		r.sprites.DrawPieceAt(screen, piece, x, y)
	}
}

// SquareToScreen returns the top-left pixel of a square.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if r.flipped {
		file, rank = 7-file, 7-rank
	}
	return file * r.squareSize, (7 - rank) * r.squareSize
}

// ScreenToSquare converts a pixel to the square under it, or NoSquare.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.NoSquare
	}
	file, rank := x/r.squareSize, 7-y/r.squareSize
	if r.flipped {
		file, rank = 7-file, 7-rank
	}
	return board.NewSquare(file, rank)
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// Sprites returns the sprite manager.
func (r *Renderer) Sprites() *SpriteManager {
	return r.sprites
}
