package ui

import (
	"image/color"
	"strconv"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Palette shared by the panel, the menu and the dialogs.
var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	sectionBg       = color.RGBA{48, 52, 58, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	dangerColor     = color.RGBA{190, 70, 70, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	modalOverlay    = color.RGBA{0, 0, 0, 140}
	modalBg         = color.RGBA{44, 47, 53, 245}
	modalBorder     = color.RGBA{70, 75, 82, 255}
)

// Rect is a widget's bounds in logical pixels.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func fillRect(screen *ebiten.Image, r Rect, c color.Color) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func strokeRect(screen *ebiten.Image, r Rect, width float32, c color.Color) {
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), width, c, false)
}

// ButtonStyle picks a button's colors.
type ButtonStyle int

const (
	StyleSecondary ButtonStyle = iota
	StylePrimary
	StyleDanger
)

// Button is a clickable label.
type Button struct {
	Rect
	Label    string
	Style    ButtonStyle
	Disabled bool
	OnClick  func()
	hovered  bool
	pressed  bool
}

// NewButton creates a button.
func NewButton(r Rect, label string, style ButtonStyle, onClick func()) *Button {
	return &Button{Rect: r, Label: label, Style: style, OnClick: onClick}
}

// Update handles hover and clicks. It reports whether the button fired.
func (b *Button) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	b.hovered = !b.Disabled && b.contains(mx, my)
	b.pressed = b.hovered && input.IsLeftPressed()
	if b.hovered && input.IsLeftJustPressed() {
		input.Consume()
		if b.OnClick != nil {
			b.OnClick()
		}
		return true
	}
	return false
}

// Hovered reports whether the mouse is over the button.
func (b *Button) Hovered() bool { return b.hovered }

// Draw renders the button.
func (b *Button) Draw(screen *ebiten.Image) {
	bg, border := buttonBg, buttonBorder
	switch b.Style {
	case StylePrimary:
		bg, border = accentColor, accentPressed
		if b.pressed {
			bg = accentPressed
		} else if b.hovered {
			bg = accentHover
		}
	case StyleDanger:
		bg, border = dangerColor, dangerColor
		if b.hovered {
			bg = color.RGBA{215, 90, 90, 255}
		}
	default:
		if b.pressed {
			bg = buttonPressedBg
		} else if b.hovered {
			bg, border = buttonHoverBg, accentColor
		}
	}
	fg := color.Color(textPrimary)
	if b.Disabled {
		bg, fg = buttonPressedBg, textMuted
	}
	fillRect(screen, b.Rect, bg)
	strokeRect(screen, b.Rect, 1, border)
	drawTextCentered(screen, b.Label, regularFace, b.X+b.W/2, b.Y+b.H/2, fg)
}

// TextInput is an editable single-line field.
type TextInput struct {
	Rect
	Value       string
	Placeholder string
	MaxLength   int
	focused     bool
	hovered     bool
	blink       int
}

// NewTextInput creates a text field.
func NewTextInput(r Rect, placeholder string, maxLen int) *TextInput {
	return &TextInput{Rect: r, Placeholder: placeholder, MaxLength: maxLen}
}

// Update handles focus and typing. It reports whether the field has focus.
func (ti *TextInput) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	ti.hovered = ti.contains(mx, my)
	if input.IsLeftJustPressed() {
		ti.focused = ti.hovered
		if ti.focused {
			input.Consume()
		}
	}
	if !ti.focused {
		return false
	}

	ti.blink = (ti.blink + 1) % 60
	for _, r := range ebiten.AppendInputChars(nil) {
		if ti.MaxLength == 0 || utf8.RuneCountInString(ti.Value) < ti.MaxLength {
			ti.Value += string(r)
		}
	}
	if IsKeyJustPressed(ebiten.KeyBackspace) && ti.Value != "" {
		_, size := utf8.DecodeLastRuneInString(ti.Value)
		ti.Value = ti.Value[:len(ti.Value)-size]
	}
	if IsKeyJustPressed(ebiten.KeyEscape) || IsKeyJustPressed(ebiten.KeyEnter) {
		ti.focused = false
	}
	return true
}

// Focused reports whether the field receives keystrokes.
func (ti *TextInput) Focused() bool { return ti.focused }

// Draw renders the field.
func (ti *TextInput) Draw(screen *ebiten.Image) {
	fillRect(screen, ti.Rect, sectionBg)
	border := buttonBorder
	if ti.focused || ti.hovered {
		border = accentColor
	}
	strokeRect(screen, ti.Rect, 2, border)

	x, cy := ti.X+10, ti.Y+ti.H/2
	s, c := ti.Value, color.Color(textPrimary)
	if s == "" {
		s, c = ti.Placeholder, textMuted
	}
	_, h := MeasureText(s, regularFace)
	drawText(screen, s, regularFace, x, cy-int(h/2), c)

	if ti.focused && ti.blink < 30 {
		w, _ := MeasureText(ti.Value, regularFace)
		vector.DrawFilledRect(screen, float32(x)+float32(w)+2, float32(ti.Y+8), 2, float32(ti.H-16), textPrimary, false)
	}
}

// Checkbox toggles a boolean.
type Checkbox struct {
	X, Y    int
	Label   string
	Checked bool
	hovered bool
}

// NewCheckbox creates a checkbox.
func NewCheckbox(x, y int, label string, checked bool) *Checkbox {
	return &Checkbox{X: x, Y: y, Label: label, Checked: checked}
}

// Update toggles on click and reports whether the value changed.
func (cb *Checkbox) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	cb.hovered = (Rect{cb.X, cb.Y, 200, 20}).contains(mx, my)
	if cb.hovered && input.IsLeftJustPressed() {
		input.Consume()
		cb.Checked = !cb.Checked
		return true
	}
	return false
}

// Draw renders the checkbox.
func (cb *Checkbox) Draw(screen *ebiten.Image) {
	box := Rect{cb.X, cb.Y, 20, 20}
	fillRect(screen, box, sectionBg)
	border := buttonBorder
	if cb.hovered || cb.Checked {
		border = accentColor
	}
	strokeRect(screen, box, 2, border)
	if cb.Checked {
		x, y := float32(cb.X), float32(cb.Y)
		vector.StrokeLine(screen, x+4, y+10, x+8, y+14, 2, accentColor, false)
		vector.StrokeLine(screen, x+8, y+14, x+16, y+6, 2, accentColor, false)
	}
	_, h := MeasureText(cb.Label, regularFace)
	drawText(screen, cb.Label, regularFace, cb.X+30, cb.Y+10-int(h/2), textSecondary)
}

// ButtonGroup is a row of mutually exclusive toggle buttons.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
}

// NewButtonGroup creates a button group.
func NewButtonGroup(x, y int, options []string, selected, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{X: x, Y: y, Options: options, Selected: selected, ButtonW: buttonW, ButtonH: buttonH, hovered: -1}
}

func (bg *ButtonGroup) rect(i int) Rect {
	return Rect{bg.X + i*bg.ButtonW, bg.Y, bg.ButtonW, bg.ButtonH}
}

// Update selects the clicked option and reports whether the selection changed.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	bg.hovered = -1
	for i := range bg.Options {
		if !bg.rect(i).contains(mx, my) {
			continue
		}
		bg.hovered = i
		if input.IsLeftJustPressed() {
			input.Consume()
			changed := bg.Selected != i
			bg.Selected = i
			return changed
		}
	}
	return false
}

// Draw renders the group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	for i, label := range bg.Options {
		r := bg.rect(i)
		fill, border, fg := buttonBg, buttonBorder, textSecondary
		switch {
		case i == bg.Selected:
			fill, border, fg = tabActiveBg, tabActiveBg, textPrimary
		case i == bg.hovered:
			fill, border = buttonHoverBg, accentColor
		}
		fillRect(screen, r, fill)
		strokeRect(screen, r, 1, border)
		drawTextCentered(screen, label, regularFace, r.X+r.W/2, r.Y+r.H/2, fg)
	}
}

// Stepper edits an integer within [Min, Max] with − and + buttons.
type Stepper struct {
	X, Y     int
	Value    int
	Min, Max int
	Step     int
	// Format renders the value; nil prints the number.
	Format func(int) string
	minus  *Button
	plus   *Button
}

// NewStepper creates a stepper whose buttons are h pixels square.
func NewStepper(x, y, h, value, lo, hi, step int) *Stepper {
	s := &Stepper{X: x, Y: y, Value: value, Min: lo, Max: hi, Step: step}
	s.minus = NewButton(Rect{x, y, h, h}, "−", StyleSecondary, func() { s.Value = max(s.Min, s.Value-s.Step) })
	s.plus = NewButton(Rect{x + h + 90, y, h, h}, "+", StyleSecondary, func() { s.Value = min(s.Max, s.Value+s.Step) })
	return s
}

// Update handles the buttons and reports whether the value changed.
func (s *Stepper) Update(input *InputHandler) bool {
	before := s.Value
	s.minus.Update(input)
	s.plus.Update(input)
	return s.Value != before
}

// Draw renders the stepper.
func (s *Stepper) Draw(screen *ebiten.Image) {
	s.minus.Disabled = s.Value <= s.Min
	s.plus.Disabled = s.Value >= s.Max
	s.minus.Draw(screen)
	s.plus.Draw(screen)
	label := strconv.Itoa(s.Value)
	if s.Format != nil {
		label = s.Format(s.Value)
	}
	cx := s.minus.X + s.minus.W + 45
	drawTextCentered(screen, label, regularFace, cx, s.Y+s.minus.H/2, textPrimary)
}

// DrawDivider draws a horizontal rule.
func DrawDivider(screen *ebiten.Image, x, y, w int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), 1, dividerColor, false)
}

// DrawSectionHeader draws a muted label above a group of widgets.
func DrawSectionHeader(screen *ebiten.Image, label string, x, y int) {
	drawText(screen, label, regularFace, x, y, textMuted)
}
