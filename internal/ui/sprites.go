package ui

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/pocketchess/internal/board"
)

//go:embed assets/pieces/*.svg
var pieceAssets embed.FS

// SpriteManager rasterises the embedded piece SVGs once and draws them.
type SpriteManager struct {
	pieces      map[board.Piece]*ebiten.Image
	size        int     // Display size of one square
	renderScale float64 // Oversampling factor for sharp downscaling
}

// NewSpriteManager creates a sprite manager with pieces of the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[board.Piece]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
	}
	sm.loadPieces()
	return sm
}

// pieceAsset returns the embedded file name for a piece, e.g. "wN.svg".
func pieceAsset(p board.Piece) string {
	side := "w"
	if p.Color() == board.Black {
		side = "b"
	}
	return fmt.Sprintf("assets/pieces/%s%c.svg", side, board.NewPiece(p.Type(), board.White).String()[0])
}

func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for p := board.WhitePawn; p < board.NoPiece; p++ {
		path := pieceAsset(p)
		img, err := rasterizeSVG(path, renderSize)
		if err != nil {
			log.Printf("[UI] piece sprite %s: %v", path, err)
			continue
		}
		sm.pieces[p] = ebiten.NewImageFromImage(img)
	}
}

// rasterizeSVG renders an embedded SVG into a size x size RGBA image.
func rasterizeSVG(path string, size int) (*image.RGBA, error) {
	data, err := pieceAssets.ReadFile(path)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return rgba, nil
}

// DrawPieceAt draws a piece with its top-left corner at x, y.
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y int) {
	sm.DrawPieceScaled(screen, p, x, y, sm.size)
}

// DrawPieceScaled draws a piece into a size x size box at x, y.
func (sm *SpriteManager) DrawPieceScaled(screen *ebiten.Image, p board.Piece, x, y, size int) {
	sprite := sm.pieces[p]
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := float64(size) / float64(sprite.Bounds().Dx())
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(x), float64(y))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the display size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
