package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// pane displays one render artifact scaled into a fixed rectangle. The
// ebiten texture is rebuilt only when the source image changes identity, so
// reuploads happen once per applied artifact, not per frame.
type pane struct {
	title      string
	x, y, w, h int

	src image.Image
	tex *ebiten.Image
}

func newPane(title string, x, y, w, h int) *pane {
	return &pane{title: title, x: x, y: y, w: w, h: h}
}

// setImage swaps the displayed artifact if it changed.
func (p *pane) setImage(img image.Image) {
	if img == nil || img == p.src {
		return
	}
	p.src = img
	p.tex = ebiten.NewImageFromImage(img)
}

func (p *pane) contains(mx, my int) bool {
	return mx >= p.x && mx <= p.x+p.w && my >= p.y && my <= p.y+p.h
}

func (p *pane) draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, float32(p.x), float32(p.y), float32(p.w), float32(p.h),
		color.RGBA{R: 15, G: 18, B: 26, A: 255}, false)

	if p.tex != nil {
		bounds := p.tex.Bounds()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(p.w)/float64(bounds.Dx()), float64(p.h)/float64(bounds.Dy()))
		op.GeoM.Translate(float64(p.x), float64(p.y))
		screen.DrawImage(p.tex, op)
	}

	vector.StrokeRect(screen, float32(p.x), float32(p.y), float32(p.w), float32(p.h), 1,
		color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, p.title, p.x+4, p.y-16)
}
