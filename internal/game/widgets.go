package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// slider is a horizontal drag control mapping a pixel track onto [min, max].
type slider struct {
	label      string
	x, y, w, h int
	min, max   float64
	value      float64

	hovered  bool
	dragging bool
}

func newSlider(label string, x, y, w, h int, min, max, value float64) *slider {
	return &slider{label: label, x: x, y: y, w: w, h: h, min: min, max: max, value: value}
}

// valueAt maps a pointer x position to a clamped slider value.
func (s *slider) valueAt(px int) float64 {
	if s.w <= 0 {
		return s.value
	}
	frac := clamp01(float64(px-s.x) / float64(s.w))
	return s.min + frac*(s.max-s.min)
}

// update processes one frame of pointer state and reports whether the value
// changed.
func (s *slider) update(mx, my int, justPressed, pressed, justReleased bool) bool {
	s.hovered = mx >= s.x && mx <= s.x+s.w && my >= s.y && my <= s.y+s.h

	if s.hovered && justPressed {
		s.dragging = true
	}
	if justReleased {
		s.dragging = false
	}

	if s.dragging && (pressed || justPressed) {
		v := s.valueAt(mx)
		if v != s.value {
			s.value = v
			return true
		}
	}
	return false
}

func (s *slider) draw(screen *ebiten.Image, colorPhase float64) {
	vector.DrawFilledRect(screen, float32(s.x), float32(s.y), float32(s.w), float32(s.h),
		color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)

	frac := 0.0
	if s.max > s.min {
		frac = clamp01((s.value - s.min) / (s.max - s.min))
	}
	if frac > 0 {
		r, gc, b := hsvToRgb((colorPhase+frac*0.5)*360, 0.7, 0.85)
		vector.DrawFilledRect(screen, float32(s.x), float32(s.y), float32(frac*float64(s.w)), float32(s.h),
			color.RGBA{R: r, G: gc, B: b, A: 200}, false)
	}

	border := color.RGBA{R: 70, G: 80, B: 100, A: 255}
	if s.hovered || s.dragging {
		border = color.RGBA{R: 150, G: 170, B: 200, A: 255}
	}
	vector.StrokeRect(screen, float32(s.x), float32(s.y), float32(s.w), float32(s.h), 1, border, false)

	ebitenutil.DebugPrintAt(screen, s.label+" "+formatValue(s.value), s.x+s.w+8, s.y)
}

// button is a click target with hover and pressed states.
type button struct {
	label      string
	x, y, w, h int

	hovered bool
	pressed bool
}

func newButton(label string, x, y, w, h int) *button {
	return &button{label: label, x: x, y: y, w: w, h: h}
}

// update reports a completed click: press and release both inside.
func (b *button) update(mx, my int, justPressed, justReleased bool) bool {
	b.hovered = mx >= b.x && mx <= b.x+b.w && my >= b.y && my <= b.y+b.h

	if b.hovered && justPressed {
		b.pressed = true
	}
	if justReleased {
		clicked := b.pressed && b.hovered
		b.pressed = false
		return clicked
	}
	return false
}

func (b *button) draw(screen *ebiten.Image) {
	var bg color.Color
	switch {
	case b.pressed:
		bg = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	case b.hovered:
		bg = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	default:
		bg = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	vector.DrawFilledRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), bg, false)
	vector.StrokeRect(screen, float32(b.x), float32(b.y), float32(b.w), float32(b.h), 2,
		color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	textWidth := len(b.label) * 6
	ebitenutil.DebugPrintAt(screen, b.label, b.x+(b.w-textWidth)/2, b.y+(b.h-12)/2)
}
