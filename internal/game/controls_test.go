package game

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/fourier-studio/internal/orchestrator"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

type nullTransport struct{}

func (nullTransport) Mix(context.Context, params.Snapshot) (image.Image, error) {
	return nil, context.Canceled
}
func (nullTransport) BeamMap(context.Context, params.Snapshot) (image.Image, error) {
	return nil, context.Canceled
}
func (nullTransport) BeamProfile(context.Context, params.Snapshot) (image.Image, error) {
	return nil, context.Canceled
}
func (nullTransport) Component(context.Context, int, params.ComponentKind) (image.Image, error) {
	return nil, context.Canceled
}
func (nullTransport) Upload(context.Context, int, string, []byte) error {
	return context.Canceled
}

func newTestGame() *Game {
	store := params.NewStore()
	orch := orchestrator.New(store, nullTransport{}, orchestrator.Options{
		Spawn: func(func()) {},
	})
	return New(store, orch)
}

// click simulates a press frame followed by a release frame at one point.
func click(g *Game, mx, my int) {
	g.ctl.update(g, mx, my, true, true, false)
	g.ctl.update(g, mx, my, false, false, true)
}

func TestModeButtonTogglesWeightVariant(t *testing.T) {
	g := newTestGame()
	b := g.ctl.modeBtn

	click(g, b.x+5, b.y+5)
	assert.Equal(t, params.ModeRealImag, g.store.MixMode())
	assert.Equal(t, "Mode: real-imag", b.label)

	click(g, b.x+5, b.y+5)
	assert.Equal(t, params.ModeMagPhase, g.store.MixMode())
}

func TestWeightSliderWritesStore(t *testing.T) {
	g := newTestGame()
	s := g.ctl.weightA[0]

	g.ctl.update(g, s.x+s.w/2, s.y+s.h/2, true, true, false)
	g.ctl.update(g, s.x+s.w/2, s.y+s.h/2, false, false, true)

	ws, ok := g.store.Weights().(params.MagPhaseWeights)
	require.True(t, ok)
	assert.InDelta(t, 0.5, ws[0].Magnitude, 1e-9)
	assert.InDelta(t, 0.0, ws[0].Phase, 1e-9)
}

func TestArrayButtonsEditList(t *testing.T) {
	g := newTestGame()

	click(g, g.ctl.addArrBtn.x+5, g.ctl.addArrBtn.y+5)
	assert.Len(t, g.store.Arrays(), 2)
	assert.Equal(t, 1, g.store.ActiveArray())

	click(g, g.ctl.delArrBtn.x+5, g.ctl.delArrBtn.y+5)
	assert.Len(t, g.store.Arrays(), 1)

	// The last array refuses removal and the failure is shown, not fatal.
	click(g, g.ctl.delArrBtn.x+5, g.ctl.delArrBtn.y+5)
	assert.Len(t, g.store.Arrays(), 1)
	assert.Equal(t, params.ErrLastArray.Error(), g.lastErr)
}

func TestElementSlidersNeedSelection(t *testing.T) {
	g := newTestGame()
	s := g.ctl.offXSl

	// No element selected: the drag is ignored by the store.
	g.ctl.update(g, s.x+s.w, s.y+s.h/2, true, true, false)
	g.ctl.update(g, s.x+s.w, s.y+s.h/2, false, false, true)
	assert.Empty(t, g.store.Arrays()[0].Offsets)

	click(g, g.ctl.nextElemBtn.x+5, g.ctl.nextElemBtn.y+5)
	assert.Equal(t, 0, g.store.ActiveElement())

	g.ctl.update(g, s.x+s.w, s.y+s.h/2, true, true, false)
	g.ctl.update(g, s.x+s.w, s.y+s.h/2, false, false, true)
	off, ok := g.store.Arrays()[0].Offsets[0]
	require.True(t, ok)
	assert.InDelta(t, 0.5, off.X, 1e-9)
}
