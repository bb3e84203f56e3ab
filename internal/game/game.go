package game

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/fourier-studio/internal/config"
	"github.com/iburimskiy/fourier-studio/internal/geometry"
	"github.com/iburimskiy/fourier-studio/internal/monitoring"
	"github.com/iburimskiy/fourier-studio/internal/orchestrator"
	"github.com/iburimskiy/fourier-studio/internal/params"
	"github.com/iburimskiy/fourier-studio/internal/region"
)

// Game is the ebiten front end. One Update per frame moves pointer input
// into the widgets and the region editor, ticks the orchestrator, and pulls
// finished artifacts into the viewer panes.
type Game struct {
	store  *params.Store
	editor *region.Editor
	orch   *orchestrator.Orchestrator
	ctl    *controls

	slotPanes   [params.NumSlots]*pane
	mixPane     *pane
	mapPane     *pane
	profilePane *pane

	// editorCapture keeps pointer-moves flowing to the editor after the
	// press, even when the cursor leaves the mix viewer.
	editorCapture bool
	lastMx        int
	lastMy        int

	lastErr    string
	colorPhase float64
}

func New(store *params.Store, orch *orchestrator.Orchestrator) *Game {
	g := &Game{store: store, orch: orch}

	g.editor = region.New(store.Region(), config.HandleRadius, config.ClickDeadZone)
	g.editor.OnRegion = func(r geometry.Region) { store.SetRegion(r) }
	g.editor.OnClassify = func(k geometry.RegionKind) { store.SetRegionKind(k) }

	g.ctl = newControls(store)

	for i := 0; i < params.NumSlots; i++ {
		y := config.SlotPanelY + i*(config.SlotPanelHeight+config.SlotPanelGap)
		g.slotPanes[i] = newPane(fmt.Sprintf("slot %d", i),
			config.SlotPanelX, y, config.SlotPanelWidth, config.SlotPanelHeight)
	}
	g.mixPane = newPane("mix", config.MixViewX, config.MixViewY,
		config.MixViewWidth, config.MixViewHeight)
	g.mapPane = newPane("beam map", config.BeamMapX, config.BeamMapY,
		config.BeamMapWidth, config.BeamMapHeight)
	g.profilePane = newPane("profile", config.BeamProfileX, config.BeamProfileY,
		config.BeamProfileW, config.BeamProfileH)

	return g
}

func (g *Game) Update() error {
	mx, my := ebiten.CursorPosition()
	jp := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	jr := inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)

	overWidget := g.ctl.update(g, mx, my, jp, pressed, jr)

	g.updateSlotClicks(mx, my, jr, overWidget)
	g.updateEditor(mx, my, jp, jr, overWidget)

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.orch.Flush(orchestrator.GroupMix)
		g.orch.Flush(orchestrator.GroupBeam)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		if g.store.MixMode() == params.ModeMagPhase {
			g.store.SetMixMode(params.ModeRealImag)
		} else {
			g.store.SetMixMode(params.ModeMagPhase)
		}
		g.ctl.syncFromStore(g.store)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.orch.Close()
		return ebiten.Termination
	}

	// Keep the editor's copy in step with the store (classification changes
	// the kind behind the editor's back). Refused while a gesture is active.
	g.editor.SetRegion(g.store.Region())

	g.orch.Tick()
	g.collectErrors()

	g.mixPane.setImage(g.orch.MixResult())
	g.mapPane.setImage(g.orch.BeamMapResult())
	g.profilePane.setImage(g.orch.BeamProfileResult())
	for i := 0; i < params.NumSlots; i++ {
		g.slotPanes[i].setImage(g.orch.SlotImage(i))
	}

	g.colorPhase += 0.4
	return nil
}

// updateEditor translates window pointer events into surface-local editor
// events. The press must start inside the mix viewer and off every widget;
// after that the gesture owns the pointer until release.
func (g *Game) updateEditor(mx, my int, jp, jr, overWidget bool) {
	sx := float64(mx - config.MixViewX)
	sy := float64(my - config.MixViewY)
	surfW := float64(config.MixViewWidth)
	surfH := float64(config.MixViewHeight)

	if jp && !overWidget && g.mixPane.contains(mx, my) {
		g.editor.PointerDown(sx, sy, surfW, surfH)
		g.editorCapture = true
	}
	if g.editorCapture && (mx != g.lastMx || my != g.lastMy) {
		g.editor.PointerMove(sx, sy, surfW, surfH)
	}
	if jr {
		if g.editorCapture {
			g.editor.PointerUp(sx, sy, surfW, surfH)
		}
		g.editorCapture = false
	}
	g.lastMx, g.lastMy = mx, my
}

func (g *Game) collectErrors() {
	if msg, ok := g.orch.TakeError(orchestrator.GroupMix); ok {
		g.lastErr = msg
	}
	if msg, ok := g.orch.TakeError(orchestrator.GroupBeam); ok {
		g.lastErr = msg
	}
	if msg, ok := g.orch.TakeSlotError(); ok {
		g.lastErr = msg
	}
}

// updateSlotClicks cycles the component view of a slot panel on click.
func (g *Game) updateSlotClicks(mx, my int, jr, overWidget bool) {
	if !jr || overWidget || g.editorCapture {
		return
	}
	for i := 0; i < params.NumSlots; i++ {
		if !g.slotPanes[i].contains(mx, my) || !g.store.ImagePresent(i) {
			continue
		}
		g.store.SetSlotView(i, g.store.SlotView(i).Next())
		g.orch.RefreshSlot(i)
		return
	}
}

// openSourceDialog asks for an image file and uploads it into the slot.
// The dialog blocks the frame, matching how file picking behaves elsewhere
// in the app.
func (g *Game) openSourceDialog(slot int) {
	path, err := zenity.SelectFile(
		zenity.Title(fmt.Sprintf("Load source %d", slot)),
		zenity.FileFilters{{
			Name:     "Images",
			Patterns: []string{"*.png", "*.jpg", "*.jpeg", "*.bmp"},
		}},
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			monitoring.Logf("file dialog: %v", err)
		}
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		g.lastErr = fmt.Sprintf("read %s: %v", path, err)
		return
	}
	g.orch.Upload(slot, filepath.Base(path), data)
}

func (g *Game) Draw(screen *ebiten.Image) {
	for i := 0; i < params.NumSlots; i++ {
		g.slotPanes[i].draw(screen)
	}
	g.mixPane.draw(screen)
	g.mapPane.draw(screen)
	g.profilePane.draw(screen)

	g.drawRegion(screen)
	g.ctl.draw(screen, g.colorPhase)
	g.drawStatus(screen)
}

// drawRegion overlays the editable rectangle and its three resize handles
// on the mix viewer.
func (g *Game) drawRegion(screen *ebiten.Image) {
	bb := g.editor.Region().BoundingBoxPercent()
	x := float32(config.MixViewX) + float32(bb.LeftPct/100*config.MixViewWidth)
	y := float32(config.MixViewY) + float32(bb.TopPct/100*config.MixViewHeight)
	w := float32(bb.WidthPct / 100 * config.MixViewWidth)
	h := float32(bb.HeightPct / 100 * config.MixViewHeight)

	var outline color.RGBA
	if g.editor.Region().Kind == geometry.Inner {
		outline = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	} else {
		outline = color.RGBA{R: 240, G: 160, B: 60, A: 255}
	}
	vector.StrokeRect(screen, x, y, w, h, 2, outline, false)

	r := float32(config.HandleRadius)
	vector.DrawFilledCircle(screen, x+w, y+h/2, r, outline, true)
	vector.DrawFilledCircle(screen, x+w/2, y+h, r, outline, true)
	vector.DrawFilledCircle(screen, x+w, y+h, r, outline, true)
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	status := fmt.Sprintf("mix: %s   beam: %s   region: %s",
		g.orch.Status(orchestrator.GroupMix),
		g.orch.Status(orchestrator.GroupBeam),
		g.store.Region().Kind)
	if g.lastErr != "" {
		status += "   error: " + g.lastErr
	}
	ebitenutil.DebugPrintAt(screen, status, config.SlotPanelX, config.WindowHeight-22)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}
