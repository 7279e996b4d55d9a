// Package ui is the Ebitengine front end: the menu, the board, the side panel
// and the overlays that drive a game.Session.
package ui

import (
	"bytes"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFace *text.GoTextFace
	boldFace    *text.GoTextFace
	monoFace    *text.GoTextFace // clocks
)

const (
	defaultFontSize = 14.0
	titleFontSize   = 16.0
	clockFontSize   = 28.0
)

func init() {
	regularFace = loadFace(goregular.TTF, defaultFontSize)
	boldFace = loadFace(gobold.TTF, titleFontSize)
	monoFace = loadFace(gomono.TTF, clockFontSize)
}

func loadFace(ttf []byte, size float64) *text.GoTextFace {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttf))
	if err != nil {
		log.Printf("[UI] failed to load font: %v", err)
		return nil
	}
	return &text.GoTextFace{Source: src, Size: size}
}

// GetFaceWithSize returns the regular face at a custom size.
func GetFaceWithSize(size float64) *text.GoTextFace {
	if regularFace == nil {
		return nil
	}
	return &text.GoTextFace{Source: regularFace.Source, Size: size}
}

// MeasureText returns the width and height of s in face.
func MeasureText(s string, face *text.GoTextFace) (width, height float64) {
	if face == nil {
		return 0, 0
	}
	return text.Measure(s, face, 0)
}

// drawText draws s with its top-left corner at x, y.
func drawText(screen *ebiten.Image, s string, face *text.GoTextFace, x, y int, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// drawTextCentered draws s centred on cx, cy.
func drawTextCentered(screen *ebiten.Image, s string, face *text.GoTextFace, cx, cy int, c color.Color) {
	w, h := MeasureText(s, face)
	drawText(screen, s, face, cx-int(w/2), cy-int(h/2), c)
}
