package ui

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// One separable blur pass. Dir is (1, 0) for horizontal and (0, 1) for
// vertical; the 7 taps are binomial weights.
var blurShaderSrc = []byte(`
//kage:unit pixels

package main

var Dir vec2
var Spread float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	step := Dir * Spread
	sum := imageSrc0At(srcPos) * 20.0
	sum += (imageSrc0At(srcPos+step) + imageSrc0At(srcPos-step)) * 15.0
	sum += (imageSrc0At(srcPos+step*2.0) + imageSrc0At(srcPos-step*2.0)) * 6.0
	sum += (imageSrc0At(srcPos+step*3.0) + imageSrc0At(srcPos-step*3.0)) * 1.0
	return sum / 64.0
}
`)

// Backdrop freezes the frame behind a dialog and draws it blurred and
// dimmed. Without shader support it falls back to a flat overlay.
type Backdrop struct {
	shader  *ebiten.Shader
	frozen  *ebiten.Image
	scratch *ebiten.Image
	valid   bool
}

// NewBackdrop compiles the blur shader.
func NewBackdrop() *Backdrop {
	sh, err := ebiten.NewShader(blurShaderSrc)
	if err != nil {
		log.Printf("[UI] blur shader unavailable: %v", err)
		return &Backdrop{}
	}
	return &Backdrop{shader: sh}
}

// Invalidate makes the next Draw capture a fresh frame.
func (b *Backdrop) Invalidate() {
	b.valid = false
}

// Draw blurs what is currently on screen, once per dialog, and paints it
// back with dim applied (0 none, 1 black).
func (b *Backdrop) Draw(screen *ebiten.Image, dim float64) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if b.shader == nil {
		vector.DrawFilledRect(screen, 0, 0, float32(w), float32(h), modalOverlay, false)
		return
	}
	if !b.valid {
		b.capture(screen, w, h)
	}

	op := &ebiten.DrawImageOptions{}
	op.ColorScale.Scale(float32(1-dim), float32(1-dim), float32(1-dim), 1)
	screen.DrawImage(b.frozen, op)
}

func (b *Backdrop) capture(screen *ebiten.Image, w, h int) {
	if b.frozen == nil || b.frozen.Bounds().Dx() != w || b.frozen.Bounds().Dy() != h {
		b.frozen = ebiten.NewImage(w, h)
		b.scratch = ebiten.NewImage(w, h)
	}
	b.frozen.Clear()
	b.frozen.DrawImage(screen, nil)

	for _, dir := range [][]float32{{1, 0}, {0, 1}} {
		b.scratch.Clear()
		b.scratch.DrawRectShader(w, h, b.shader, &ebiten.DrawRectShaderOptions{
			Uniforms: map[string]any{"Dir": dir, "Spread": float32(2)},
			Images:   [4]*ebiten.Image{b.frozen},
		})
		b.frozen, b.scratch = b.scratch, b.frozen
	}
	b.valid = true
}

// drawDialogFrame draws a dialog's panel.
func drawDialogFrame(screen *ebiten.Image, r Rect) {
	fillRect(screen, r, modalBg)
	strokeRect(screen, r, 2, modalBorder)
}

// dialogRect centers a w x h dialog on the board.
func dialogRect(w, h int) Rect {
	return Rect{(BoardSize - w) / 2, (ScreenHeight - h) / 2, w, h}
}
