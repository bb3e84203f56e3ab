package game

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/fourier-studio/internal/config"
	"github.com/iburimskiy/fourier-studio/internal/orchestrator"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

// controls owns every slider and button and the store wiring behind them.
// Pure plumbing: each changed widget becomes one store mutation, and the
// orchestrator notices through the revision counters.
type controls struct {
	modeBtn    *button
	processBtn *button
	weightA    [params.NumSlots]*slider // magnitude or real
	weightB    [params.NumSlots]*slider // phase or imag
	loadBtns   [params.NumSlots]*button

	addArrBtn  *button
	delArrBtn  *button
	prevArrBtn *button
	nextArrBtn *button
	geoBtn     *button

	countSl *slider
	steerSl *slider
	curveSl *slider
	spaceSl *slider
	posXSl  *slider
	posYSl  *slider

	prevElemBtn  *button
	nextElemBtn  *button
	clearElemBtn *button
	offXSl       *slider
	offYSl       *slider
	multSl       *slider
}

func newControls(store *params.Store) *controls {
	c := &controls{}

	// Mix weight sliders: two per slot in two columns.
	for i := 0; i < params.NumSlots; i++ {
		col := i / 2
		row := i % 2
		x := config.ControlsX + col*260
		y := config.ControlsY + row*2*config.SliderGap
		c.weightA[i] = newSlider(fmt.Sprintf("w%d", i), x, y, config.SliderWidth, config.SliderHeight, 0, 1, 0)
		c.weightB[i] = newSlider(fmt.Sprintf("p%d", i), x, y+config.SliderGap, config.SliderWidth, config.SliderHeight, 0, 1, 0)
	}
	btnY := config.ControlsY + 4*config.SliderGap + 10
	c.modeBtn = newButton("Mode: mag-phase", config.ControlsX, btnY, config.ButtonWidth+30, config.ButtonHeight)
	c.processBtn = newButton("Process", config.ControlsX+170, btnY, config.ButtonWidth, config.ButtonHeight)

	// Per-slot load buttons sit inside the slot panels.
	for i := 0; i < params.NumSlots; i++ {
		py := config.SlotPanelY + i*(config.SlotPanelHeight+config.SlotPanelGap)
		c.loadBtns[i] = newButton("Load", config.SlotPanelX+config.SlotPanelWidth-54,
			py+config.SlotPanelHeight-24, 50, 20)
	}

	// Beam controls under the profile viewer.
	bx := config.BeamProfileX
	by := config.BeamProfileY + config.BeamProfileH + 24
	c.countSl = newSlider("count", bx, by, 120, config.SliderHeight, 1, 32, 10)
	c.steerSl = newSlider("steer", bx, by+config.SliderGap, 120, config.SliderHeight, -90, 90, 0)
	c.curveSl = newSlider("curve", bx, by+2*config.SliderGap, 120, config.SliderHeight, 0, 100, 0)
	c.spaceSl = newSlider("space", bx, by+3*config.SliderGap, 120, config.SliderHeight, 0.1, 1, 0.5)
	c.posXSl = newSlider("posX", bx, by+4*config.SliderGap, 120, config.SliderHeight, -1, 1, 0)
	c.posYSl = newSlider("posY", bx, by+5*config.SliderGap, 120, config.SliderHeight, -1, 1, 0)

	ex := bx + 270
	c.offXSl = newSlider("offX", ex, by, 120, config.SliderHeight, -0.5, 0.5, 0)
	c.offYSl = newSlider("offY", ex, by+config.SliderGap, 120, config.SliderHeight, -0.5, 0.5, 0)
	c.multSl = newSlider("mult", ex, by+2*config.SliderGap, 120, config.SliderHeight, 0.5, 3, 1)
	c.prevElemBtn = newButton("< el", ex, by+3*config.SliderGap, 46, 20)
	c.nextElemBtn = newButton("el >", ex+50, by+3*config.SliderGap, 46, 20)
	c.clearElemBtn = newButton("none", ex+100, by+3*config.SliderGap, 50, 20)

	arrY := by + 5*config.SliderGap
	c.prevArrBtn = newButton("<", ex, arrY, 30, 20)
	c.nextArrBtn = newButton(">", ex+34, arrY, 30, 20)
	c.addArrBtn = newButton("+", ex+68, arrY, 30, 20)
	c.delArrBtn = newButton("-", ex+102, arrY, 30, 20)
	c.geoBtn = newButton("linear", ex, arrY-config.SliderGap, 100, 20)

	c.syncFromStore(store)
	return c
}

// syncFromStore reloads every widget from the store after a selection or
// mode change.
func (c *controls) syncFromStore(store *params.Store) {
	switch ws := store.Weights().(type) {
	case params.MagPhaseWeights:
		for i := 0; i < params.NumSlots; i++ {
			c.weightA[i].label = fmt.Sprintf("mag%d", i)
			c.weightA[i].min, c.weightA[i].max = 0, 1
			c.weightA[i].value = ws[i].Magnitude
			c.weightB[i].label = fmt.Sprintf("ph%d", i)
			c.weightB[i].min, c.weightB[i].max = 0, 1
			c.weightB[i].value = ws[i].Phase
		}
		c.modeBtn.label = "Mode: mag-phase"
	case params.RealImagWeights:
		for i := 0; i < params.NumSlots; i++ {
			c.weightA[i].label = fmt.Sprintf("re%d", i)
			c.weightA[i].min, c.weightA[i].max = -1, 1
			c.weightA[i].value = ws[i].Real
			c.weightB[i].label = fmt.Sprintf("im%d", i)
			c.weightB[i].min, c.weightB[i].max = -1, 1
			c.weightB[i].value = ws[i].Imag
		}
		c.modeBtn.label = "Mode: real-imag"
	}

	a := store.Arrays()[store.ActiveArray()]
	c.countSl.value = float64(a.Count)
	c.steerSl.value = a.Steering
	c.curveSl.value = a.Curvature
	c.spaceSl.value = a.Spacing
	c.posXSl.value = a.X
	c.posYSl.value = a.Y
	c.geoBtn.label = a.Geometry.String()

	elem := store.ActiveElement()
	if elem >= 0 {
		off := a.Offsets[elem]
		c.offXSl.value = off.X
		c.offYSl.value = off.Y
		if m, ok := a.FreqMultipliers[elem]; ok {
			c.multSl.value = m
		} else {
			c.multSl.value = 1
		}
	} else {
		c.offXSl.value, c.offYSl.value, c.multSl.value = 0, 0, 1
	}
}

// update runs one frame of widget input. It reports whether the pointer is
// over any widget so the region editor does not also see the press.
func (c *controls) update(g *Game, mx, my int, jp, pressed, jr bool) bool {
	store := g.store

	if c.modeBtn.update(mx, my, jp, jr) {
		if store.MixMode() == params.ModeMagPhase {
			store.SetMixMode(params.ModeRealImag)
		} else {
			store.SetMixMode(params.ModeMagPhase)
		}
		c.syncFromStore(store)
	}
	if c.processBtn.update(mx, my, jp, jr) {
		g.orch.Flush(orchestrator.GroupMix)
		g.orch.Flush(orchestrator.GroupBeam)
	}

	for i := 0; i < params.NumSlots; i++ {
		changedA := c.weightA[i].update(mx, my, jp, pressed, jr)
		changedB := c.weightB[i].update(mx, my, jp, pressed, jr)
		if !changedA && !changedB {
			continue
		}
		switch store.MixMode() {
		case params.ModeMagPhase:
			store.SetMagPhaseWeight(i, params.MagPhaseWeight{
				Magnitude: c.weightA[i].value, Phase: c.weightB[i].value,
			})
		case params.ModeRealImag:
			store.SetRealImagWeight(i, params.RealImagWeight{
				Real: c.weightA[i].value, Imag: c.weightB[i].value,
			})
		}
	}

	for i := 0; i < params.NumSlots; i++ {
		if c.loadBtns[i].update(mx, my, jp, jr) {
			g.openSourceDialog(i)
		}
	}

	c.updateArrayControls(g, mx, my, jp, pressed, jr)

	return c.anyHot()
}

func (c *controls) updateArrayControls(g *Game, mx, my int, jp, pressed, jr bool) {
	store := g.store

	if c.addArrBtn.update(mx, my, jp, jr) {
		store.AddArray()
		c.syncFromStore(store)
	}
	if c.delArrBtn.update(mx, my, jp, jr) {
		if err := store.RemoveArray(store.ActiveArray()); err != nil {
			g.lastErr = err.Error()
		} else {
			c.syncFromStore(store)
		}
	}
	if c.prevArrBtn.update(mx, my, jp, jr) {
		store.SetActiveArray(store.ActiveArray() - 1)
		c.syncFromStore(store)
	}
	if c.nextArrBtn.update(mx, my, jp, jr) {
		store.SetActiveArray(store.ActiveArray() + 1)
		c.syncFromStore(store)
	}
	if c.geoBtn.update(mx, my, jp, jr) {
		store.UpdateActiveArray(func(a *params.ArraySpec) {
			if a.Geometry == params.GeometryLinear {
				a.Geometry = params.GeometryCurved
			} else {
				a.Geometry = params.GeometryLinear
			}
		})
		c.syncFromStore(store)
	}

	if c.countSl.update(mx, my, jp, pressed, jr) {
		n := int(math.Round(c.countSl.value))
		c.countSl.value = float64(n)
		if n != store.Arrays()[store.ActiveArray()].Count {
			store.UpdateActiveArray(func(a *params.ArraySpec) { a.Count = n })
		}
	}
	if c.steerSl.update(mx, my, jp, pressed, jr) {
		v := c.steerSl.value
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.Steering = v })
	}
	if c.curveSl.update(mx, my, jp, pressed, jr) {
		v := c.curveSl.value
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.Curvature = v })
	}
	if c.spaceSl.update(mx, my, jp, pressed, jr) {
		v := c.spaceSl.value
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.Spacing = v })
	}
	if c.posXSl.update(mx, my, jp, pressed, jr) {
		v := c.posXSl.value
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.X = v })
	}
	if c.posYSl.update(mx, my, jp, pressed, jr) {
		v := c.posYSl.value
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.Y = v })
	}

	if c.prevElemBtn.update(mx, my, jp, jr) {
		if e := store.ActiveElement(); e > 0 {
			store.SetActiveElement(e - 1)
		} else if e == -1 {
			store.SetActiveElement(0)
		}
		c.syncFromStore(store)
	}
	if c.nextElemBtn.update(mx, my, jp, jr) {
		store.SetActiveElement(store.ActiveElement() + 1)
		c.syncFromStore(store)
	}
	if c.clearElemBtn.update(mx, my, jp, jr) {
		store.SetActiveElement(-1)
		c.syncFromStore(store)
	}

	if elem := store.ActiveElement(); elem >= 0 {
		if c.offXSl.update(mx, my, jp, pressed, jr) || c.offYSl.update(mx, my, jp, pressed, jr) {
			store.SetElementOffset(elem, params.Offset{X: c.offXSl.value, Y: c.offYSl.value})
		}
		if c.multSl.update(mx, my, jp, pressed, jr) {
			store.SetFreqMultiplier(elem, c.multSl.value)
		}
	}
}

// anyHot reports whether any widget is hovered or mid-drag.
func (c *controls) anyHot() bool {
	sliders := []*slider{
		c.countSl, c.steerSl, c.curveSl, c.spaceSl, c.posXSl, c.posYSl,
		c.offXSl, c.offYSl, c.multSl,
	}
	for i := 0; i < params.NumSlots; i++ {
		sliders = append(sliders, c.weightA[i], c.weightB[i])
	}
	for _, s := range sliders {
		if s.hovered || s.dragging {
			return true
		}
	}
	buttons := []*button{
		c.modeBtn, c.processBtn, c.addArrBtn, c.delArrBtn, c.prevArrBtn,
		c.nextArrBtn, c.geoBtn, c.prevElemBtn, c.nextElemBtn, c.clearElemBtn,
	}
	for i := 0; i < params.NumSlots; i++ {
		buttons = append(buttons, c.loadBtns[i])
	}
	for _, b := range buttons {
		if b.hovered || b.pressed {
			return true
		}
	}
	return false
}

func (c *controls) draw(screen *ebiten.Image, colorPhase float64) {
	for i := 0; i < params.NumSlots; i++ {
		c.weightA[i].draw(screen, colorPhase)
		c.weightB[i].draw(screen, colorPhase)
		c.loadBtns[i].draw(screen)
	}
	c.modeBtn.draw(screen)
	c.processBtn.draw(screen)

	for _, s := range []*slider{c.countSl, c.steerSl, c.curveSl, c.spaceSl, c.posXSl, c.posYSl} {
		s.draw(screen, colorPhase)
	}
	for _, s := range []*slider{c.offXSl, c.offYSl, c.multSl} {
		s.draw(screen, colorPhase)
	}
	for _, b := range []*button{
		c.addArrBtn, c.delArrBtn, c.prevArrBtn, c.nextArrBtn, c.geoBtn,
		c.prevElemBtn, c.nextElemBtn, c.clearElemBtn,
	} {
		b.draw(screen)
	}
}
