package orchestrator

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/fourier-studio/internal/geometry"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

// manualClock lets tests move time by hand.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// jobQueue replaces `go f()` so tests decide when (and in which order)
// network work completes.
type jobQueue struct{ jobs []func() }

func (q *jobQueue) spawn(f func()) { q.jobs = append(q.jobs, f) }

func (q *jobQueue) runAll() {
	jobs := q.jobs
	q.jobs = nil
	for _, f := range jobs {
		f()
	}
}

func newImg() image.Image { return image.NewGray(image.Rect(0, 0, 2, 2)) }

// fakeTransport records calls and answers from per-endpoint stubs.
type fakeTransport struct {
	mixCalls     []params.Snapshot
	mixCtxs      []context.Context
	mapCalls     []params.Snapshot
	profileCalls []params.Snapshot

	mixErr     error
	mapErr     error
	profileErr error

	mixImgs     []image.Image // one per call, reused last when exhausted
	mapImg      image.Image
	profileImg  image.Image
	uploadErr   error
	uploadCalls int
	compCalls   []params.ComponentKind
	compImg     image.Image
}

func (f *fakeTransport) Mix(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	f.mixCalls = append(f.mixCalls, snap)
	f.mixCtxs = append(f.mixCtxs, ctx)
	if f.mixErr != nil {
		return nil, f.mixErr
	}
	i := len(f.mixCalls) - 1
	if i >= len(f.mixImgs) {
		if len(f.mixImgs) == 0 {
			return newImg(), nil
		}
		i = len(f.mixImgs) - 1
	}
	return f.mixImgs[i], nil
}

func (f *fakeTransport) BeamMap(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	f.mapCalls = append(f.mapCalls, snap)
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	if f.mapImg == nil {
		f.mapImg = newImg()
	}
	return f.mapImg, nil
}

func (f *fakeTransport) BeamProfile(ctx context.Context, snap params.Snapshot) (image.Image, error) {
	f.profileCalls = append(f.profileCalls, snap)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profileImg == nil {
		f.profileImg = newImg()
	}
	return f.profileImg, nil
}

func (f *fakeTransport) Component(ctx context.Context, slot int, kind params.ComponentKind) (image.Image, error) {
	f.compCalls = append(f.compCalls, kind)
	if f.compImg == nil {
		f.compImg = newImg()
	}
	return f.compImg, nil
}

func (f *fakeTransport) Upload(ctx context.Context, slot int, filename string, data []byte) error {
	f.uploadCalls++
	return f.uploadErr
}

func newRig(mixWindow, beamWindow time.Duration) (*params.Store, *fakeTransport, *jobQueue, *manualClock, *Orchestrator) {
	store := params.NewStore()
	tr := &fakeTransport{}
	q := &jobQueue{}
	clk := &manualClock{t: time.Unix(1000, 0)}
	o := New(store, tr, Options{
		MixWindow:  mixWindow,
		BeamWindow: beamWindow,
		Now:        clk.now,
		Spawn:      q.spawn,
	})
	return store, tr, q, clk, o
}

func TestBurstCollapsesToOneRequestWithLastParams(t *testing.T) {
	store, tr, q, clk, o := newRig(time.Second, 30*time.Millisecond)

	// Five weight edits inside 800ms with a 1000ms window.
	for i := 1; i <= 5; i++ {
		store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: float64(i) / 10})
		o.Tick()
		clk.advance(160 * time.Millisecond)
		o.Tick()
	}
	require.Empty(t, tr.mixCalls, "request fired before the window elapsed")
	assert.Equal(t, StatusPending, o.Status(GroupMix))

	clk.advance(time.Second)
	o.Tick()
	q.runAll()
	o.Tick()

	require.Len(t, tr.mixCalls, 1, "burst must collapse to exactly one cycle")
	ws := tr.mixCalls[0].Weights.(params.MagPhaseWeights)
	assert.Equal(t, 0.5, ws[0].Magnitude, "cycle must carry the trailing edit")
	assert.Equal(t, StatusReady, o.Status(GroupMix))
}

func TestStaleResponseNeverApplied(t *testing.T) {
	store, tr, q, clk, o := newRig(10*time.Millisecond, 30*time.Millisecond)
	// The transport answers calls in run order: cycle 2 completes first.
	imgCycle2, imgCycle1 := newImg(), newImg()
	tr.mixImgs = []image.Image{imgCycle2, imgCycle1}

	// Cycle 1 fires but its response is withheld.
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.1})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	cycle1 := q.jobs
	q.jobs = nil

	// Cycle 2 starts and completes first.
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.2})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()
	require.Same(t, imgCycle2, o.MixResult())

	// Cycle 1's late response arrives successfully anyway: dropped silently.
	for _, f := range cycle1 {
		f()
	}
	o.Tick()
	assert.Same(t, imgCycle2, o.MixResult(), "stale response overwrote a newer result")
	if _, ok := o.TakeError(GroupMix); ok {
		t.Error("stale response surfaced an error")
	}

	// Superseding cancelled cycle 1's context before its call even started.
	require.Len(t, tr.mixCtxs, 2)
	assert.ErrorIs(t, tr.mixCtxs[1].Err(), context.Canceled, "superseded context not cancelled")
}

func TestCancelledCycleLeavesSlotUnchanged(t *testing.T) {
	store, tr, q, clk, o := newRig(10*time.Millisecond, 30*time.Millisecond)
	first, second := newImg(), newImg()
	tr.mixImgs = []image.Image{first, second}

	// Establish a result.
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.1})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()
	require.Same(t, first, o.MixResult())

	// Fire cycle 2 and withhold its response.
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.2})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	cancelled := q.jobs
	q.jobs = nil

	// Cycle 3 fires, cancelling cycle 2.
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.3})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.jobs = nil // cycle 3's response never arrives in this test

	// Cycle 2's response comes back successfully despite the cancellation.
	for _, f := range cancelled {
		f()
	}
	o.Tick()
	assert.Same(t, first, o.MixResult(), "cancelled cycle's response mutated the slot")
}

func TestBeamArtifactsApplyIndependently(t *testing.T) {
	store, tr, q, clk, o := newRig(time.Second, 30*time.Millisecond)
	tr.mapImg, tr.profileImg = newImg(), newImg()

	store.UpdateActiveArray(func(a *params.ArraySpec) { a.Steering = 25 })
	o.Tick()
	clk.advance(40 * time.Millisecond)
	o.Tick()
	require.Len(t, q.jobs, 2, "beam cycle issues map and profile under one token")

	// Complete only the map.
	mapJob, profileJob := q.jobs[0], q.jobs[1]
	q.jobs = nil
	mapJob()
	o.Tick()
	assert.Same(t, tr.mapImg, o.BeamMapResult())
	assert.Nil(t, o.BeamProfileResult())
	assert.Equal(t, StatusInFlight, o.Status(GroupBeam), "group stays in flight until all artifacts settle")

	profileJob()
	o.Tick()
	assert.Same(t, tr.profileImg, o.BeamProfileResult())
	assert.Equal(t, StatusReady, o.Status(GroupBeam))
}

func TestContinuousDragSpacing(t *testing.T) {
	store, tr, q, clk, o := newRig(time.Second, 30*time.Millisecond)

	// Steering dragged every 10ms for 500ms: each edit reopens the 30ms
	// window, so nothing fires mid-drag.
	var angle float64
	for i := 0; i < 50; i++ {
		angle = float64(i)
		store.UpdateActiveArray(func(a *params.ArraySpec) { a.Steering = angle })
		o.Tick()
		clk.advance(10 * time.Millisecond)
		o.Tick()
	}
	require.Empty(t, tr.mapCalls, "fired during continuous drag without a 30ms idle gap")

	// Pointer released: a 30ms quiet period elapses.
	clk.advance(30 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()

	require.Len(t, tr.mapCalls, 1)
	assert.Equal(t, angle, tr.mapCalls[0].Arrays[0].Steering, "payload must match the release-time angle")
}

func TestStatusPhases(t *testing.T) {
	store, _, q, clk, o := newRig(100*time.Millisecond, 30*time.Millisecond)
	assert.Equal(t, StatusReady, o.Status(GroupMix))

	store.SetRegionKind(geometry.Outer)
	o.Tick()
	assert.Equal(t, StatusPending, o.Status(GroupMix))

	clk.advance(150 * time.Millisecond)
	o.Tick()
	assert.Equal(t, StatusInFlight, o.Status(GroupMix))

	q.runAll()
	o.Tick()
	assert.Equal(t, StatusReady, o.Status(GroupMix))
}

func TestTransportFailureSurfacedOnce(t *testing.T) {
	store, tr, q, clk, o := newRig(10*time.Millisecond, 30*time.Millisecond)
	prev := newImg()
	tr.mixImgs = []image.Image{prev}

	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.1})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()
	require.Same(t, prev, o.MixResult())

	tr.mixErr = errors.New("render service returned 500: boom")
	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.2})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()

	msg, ok := o.TakeError(GroupMix)
	require.True(t, ok, "failure not surfaced")
	assert.Contains(t, msg, "boom")
	if _, again := o.TakeError(GroupMix); again {
		t.Error("failure surfaced twice")
	}
	assert.Same(t, prev, o.MixResult(), "failure corrupted the previous result")
	assert.Equal(t, StatusReady, o.Status(GroupMix), "group must return to ready after failure")
}

func TestCancellationIsNotAnError(t *testing.T) {
	store, tr, q, clk, o := newRig(10*time.Millisecond, 30*time.Millisecond)
	tr.mixErr = context.Canceled

	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.1})
	o.Tick()
	clk.advance(20 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()

	if _, ok := o.TakeError(GroupMix); ok {
		t.Error("cancellation surfaced as an error")
	}
	assert.Equal(t, StatusReady, o.Status(GroupMix))
}

func TestFlushSkipsDebounceWindow(t *testing.T) {
	store, tr, q, _, o := newRig(time.Hour, time.Hour)

	store.SetMagPhaseWeight(0, params.MagPhaseWeight{Magnitude: 0.4})
	o.Tick()
	require.Empty(t, tr.mixCalls)

	o.Flush(GroupMix)
	q.runAll()
	o.Tick()
	require.Len(t, tr.mixCalls, 1)

	// Flush with nothing pending is a no-op.
	o.Flush(GroupMix)
	q.runAll()
	o.Tick()
	require.Len(t, tr.mixCalls, 1)
}

func TestGroupsAreIndependent(t *testing.T) {
	store, tr, q, clk, o := newRig(time.Second, 30*time.Millisecond)

	store.UpdateActiveArray(func(a *params.ArraySpec) { a.Steering = 10 })
	o.Tick()
	clk.advance(40 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()

	assert.Empty(t, tr.mixCalls, "beam edit leaked into the mix group")
	assert.Len(t, tr.mapCalls, 1)
	assert.Len(t, tr.profileCalls, 1)
}

func TestArraySwitchRefreshesProfile(t *testing.T) {
	store, tr, q, clk, o := newRig(time.Second, 30*time.Millisecond)

	store.AddArray()
	store.UpdateActiveArray(func(a *params.ArraySpec) { a.Count = 7 })
	o.Tick()
	clk.advance(40 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()
	require.Len(t, tr.profileCalls, 1)
	require.Equal(t, 1, tr.profileCalls[0].Active)

	// The profile payload is built from the active array, so switching back
	// must fire a fresh beam cycle even with no other edit.
	store.SetActiveArray(0)
	o.Tick()
	clk.advance(40 * time.Millisecond)
	o.Tick()
	q.runAll()
	o.Tick()

	require.Len(t, tr.profileCalls, 2)
	assert.Equal(t, 0, tr.profileCalls[1].Active)
	assert.Equal(t, StatusReady, o.Status(GroupBeam))
}

func TestUploadSetsPresenceAndRefreshesView(t *testing.T) {
	store, tr, q, _, o := newRig(time.Second, 30*time.Millisecond)

	o.Upload(1, "src.png", []byte("bytes"))
	q.runAll() // upload completes
	o.Tick()

	assert.True(t, store.ImagePresent(1))
	require.Len(t, q.jobs, 1, "upload success must queue a component refresh")
	q.runAll()
	o.Tick()
	assert.NotNil(t, o.SlotImage(1))
	assert.Equal(t, 1, tr.uploadCalls)
}

func TestSupersededComponentFetchDropped(t *testing.T) {
	store, tr, q, _, o := newRig(time.Second, 30*time.Millisecond)

	store.SetSlotView(0, params.ComponentMagnitude)
	o.RefreshSlot(0)
	stale := q.jobs
	q.jobs = nil

	store.SetSlotView(0, params.ComponentPhase)
	o.RefreshSlot(0)
	q.runAll()
	o.Tick()
	fresh := o.SlotImage(0)
	require.NotNil(t, fresh)

	// The superseded fetch completes late; its artifact is dropped.
	tr.compImg = newImg()
	for _, f := range stale {
		f()
	}
	o.Tick()
	assert.Same(t, fresh, o.SlotImage(0))
}
