package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler samples mouse and keyboard state once per frame.
// Coordinates are logical screen pixels.
type InputHandler struct {
	mouseX, mouseY   int
	leftPressed      bool
	leftJustPressed  bool
	rightJustPressed bool
	wheelY           float64
	consumed         bool
}

// NewInputHandler creates a new input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{}
}

// Update samples the input state. Call this once per frame.
func (ih *InputHandler) Update() {
	ih.mouseX, ih.mouseY = ebiten.CursorPosition()
	ih.leftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	ih.rightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	ih.leftPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	_, ih.wheelY = ebiten.Wheel()
	ih.consumed = false
}

// Consume marks this frame's click as handled so later widgets ignore it.
func (ih *InputHandler) Consume() {
	ih.consumed = true
}

// MousePosition returns the current mouse position.
func (ih *InputHandler) MousePosition() (int, int) {
	return ih.mouseX, ih.mouseY
}

// IsLeftJustPressed returns true if the left button went down this frame
// and no widget has consumed the click.
func (ih *InputHandler) IsLeftJustPressed() bool {
	return ih.leftJustPressed && !ih.consumed
}

// IsRightJustPressed returns true if the right button went down this frame.
func (ih *InputHandler) IsRightJustPressed() bool {
	return ih.rightJustPressed && !ih.consumed
}

// IsLeftPressed returns true if the left mouse button is held.
func (ih *InputHandler) IsLeftPressed() bool {
	return ih.leftPressed
}

// Wheel returns the vertical scroll amount of this frame.
func (ih *InputHandler) Wheel() float64 {
	return ih.wheelY
}

// IsInBounds returns true if the mouse is within the given rectangle.
func (ih *InputHandler) IsInBounds(x, y, w, h int) bool {
	return ih.mouseX >= x && ih.mouseX < x+w && ih.mouseY >= y && ih.mouseY < y+h
}

// ClickedInBounds returns true if the mouse was just clicked within the given rectangle.
func (ih *InputHandler) ClickedInBounds(x, y, w, h int) bool {
	return ih.IsLeftJustPressed() && ih.IsInBounds(x, y, w, h)
}

// IsKeyJustPressed returns true if the specified key was just pressed.
func IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}
