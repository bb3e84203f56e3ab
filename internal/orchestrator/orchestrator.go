// Package orchestrator turns the stream of parameter edits into a minimal,
// correctly ordered sequence of render requests. Each parameter group runs a
// debounce -> cancel-superseded -> request -> apply-if-current cycle. The
// staleness token checked at apply time is the correctness mechanism;
// cancelling a superseded request is only an optimization.
//
// The orchestrator is single-threaded by convention: Tick and every other
// exported method run on the game loop. Network calls run on goroutines but
// their results re-enter through a channel drained by Tick, so all state
// mutation happens on the loop.
package orchestrator

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/iburimskiy/fourier-studio/internal/monitoring"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

// Group identifies an independently debounced parameter group.
type Group int

const (
	GroupMix Group = iota
	GroupBeam
)

func (g Group) String() string {
	if g == GroupBeam {
		return "beam"
	}
	return "mix"
}

// Status is one of the three user-visible phases of a group.
type Status int

const (
	// StatusReady means no work is scheduled or outstanding.
	StatusReady Status = iota
	// StatusPending means the debounce window is open; nothing sent yet.
	StatusPending
	// StatusInFlight means requests are out and responses are awaited.
	StatusInFlight
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInFlight:
		return "rendering"
	default:
		return "ready"
	}
}

// Transport is the render service seen through the orchestrator's eyes. All
// calls must honor context cancellation on a best-effort basis.
type Transport interface {
	Mix(ctx context.Context, snap params.Snapshot) (image.Image, error)
	BeamMap(ctx context.Context, snap params.Snapshot) (image.Image, error)
	BeamProfile(ctx context.Context, snap params.Snapshot) (image.Image, error)
	Component(ctx context.Context, slot int, kind params.ComponentKind) (image.Image, error)
	Upload(ctx context.Context, slot int, filename string, data []byte) error
}

type artifactKind int

const (
	artifactMix artifactKind = iota
	artifactBeamMap
	artifactBeamProfile
	artifactComponent
	artifactUpload
)

type message struct {
	kind  artifactKind
	group Group
	slot  int
	token uint64
	img   image.Image
	err   error
}

type groupState struct {
	window      time.Duration
	lastRev     uint64
	deadline    time.Time
	status      Status
	token       uint64
	cancel      context.CancelFunc
	outstanding int
	errMsg      string
	hasErr      bool
	surfaced    bool
}

// Options configures an Orchestrator. Zero values fall back to sane defaults;
// Now and Spawn exist so tests can drive time and concurrency by hand.
type Options struct {
	MixWindow      time.Duration
	BeamWindow     time.Duration
	RequestTimeout time.Duration
	Now            func() time.Time
	Spawn          func(func())
}

// Orchestrator owns the per-group tokens and result slots. Nothing else in
// the program writes a result slot.
type Orchestrator struct {
	store   *params.Store
	tr      Transport
	now     func() time.Time
	spawn   func(func())
	timeout time.Duration

	results   chan message
	nextToken uint64

	mix  groupState
	beam groupState

	mixImage    image.Image
	beamMapImg  image.Image
	beamProfile image.Image

	slotToken  [params.NumSlots]uint64
	slotCancel [params.NumSlots]context.CancelFunc
	slotImage  [params.NumSlots]image.Image
	slotErr    string
}

// New wires an orchestrator to a store and a transport. The store's current
// revisions count as clean: nothing fires until a parameter actually changes.
func New(store *params.Store, tr Transport, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Spawn == nil {
		opts.Spawn = func(f func()) { go f() }
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Orchestrator{
		store:   store,
		tr:      tr,
		now:     opts.Now,
		spawn:   opts.Spawn,
		timeout: opts.RequestTimeout,
		results: make(chan message, 64),
		mix:     groupState{window: opts.MixWindow, lastRev: store.MixRevision()},
		beam:    groupState{window: opts.BeamWindow, lastRev: store.BeamRevision()},
	}
}

func (o *Orchestrator) group(g Group) *groupState {
	if g == GroupBeam {
		return &o.beam
	}
	return &o.mix
}

// Tick drives the orchestrator: drains finished responses, notices parameter
// changes and fires cycles whose debounce window has elapsed. Call once per
// frame.
func (o *Orchestrator) Tick() {
	o.drain()

	o.watch(&o.mix, o.store.MixRevision())
	o.watch(&o.beam, o.store.BeamRevision())

	now := o.now()
	if o.mix.status == StatusPending && !now.Before(o.mix.deadline) {
		o.fire(GroupMix)
	}
	if o.beam.status == StatusPending && !now.Before(o.beam.deadline) {
		o.fire(GroupBeam)
	}
}

// watch restarts the debounce window on any new store revision. Only the
// trailing edit in a burst survives.
func (o *Orchestrator) watch(st *groupState, rev uint64) {
	if rev == st.lastRev {
		return
	}
	st.lastRev = rev
	st.deadline = o.now().Add(st.window)
	st.status = StatusPending
}

// Flush fires the group's pending cycle immediately, skipping the rest of
// the debounce window. The explicit "process now" action.
func (o *Orchestrator) Flush(g Group) {
	if o.group(g).status == StatusPending {
		o.fire(g)
	}
}

// fire mints a token, cancels the superseded in-flight cycle and issues the
// group's request(s) against a snapshot of the current parameters.
func (o *Orchestrator) fire(g Group) {
	st := o.group(g)
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	o.nextToken++
	token := o.nextToken
	st.token = token
	st.hasErr = false
	st.surfaced = false
	st.status = StatusInFlight

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	st.cancel = cancel
	snap := o.store.Snapshot()

	switch g {
	case GroupMix:
		st.outstanding = 1
		o.spawn(func() {
			img, err := o.tr.Mix(ctx, snap)
			o.results <- message{kind: artifactMix, group: GroupMix, token: token, img: img, err: err}
		})
	case GroupBeam:
		// Map and profile run under one token and apply independently as
		// they arrive, so a consumer can briefly see a map from this token
		// next to a profile from the previous one. Accepted; gating on both
		// would be the stricter policy.
		st.outstanding = 2
		o.spawn(func() {
			img, err := o.tr.BeamMap(ctx, snap)
			o.results <- message{kind: artifactBeamMap, group: GroupBeam, token: token, img: img, err: err}
		})
		o.spawn(func() {
			img, err := o.tr.BeamProfile(ctx, snap)
			o.results <- message{kind: artifactBeamProfile, group: GroupBeam, token: token, img: img, err: err}
		})
	}
}

func (o *Orchestrator) drain() {
	for {
		select {
		case m := <-o.results:
			o.apply(m)
		default:
			return
		}
	}
}

// apply is the staleness guard. A response whose token is no longer current
// is dropped without touching any state.
func (o *Orchestrator) apply(m message) {
	switch m.kind {
	case artifactComponent, artifactUpload:
		o.applySlot(m)
		return
	}

	st := o.group(m.group)
	if m.token != st.token {
		return
	}
	st.outstanding--

	if m.err != nil {
		if !errors.Is(m.err, context.Canceled) && !st.hasErr {
			st.hasErr = true
			st.errMsg = m.err.Error()
			monitoring.Logf("render %s failed: %v", m.group, m.err)
		}
	} else {
		switch m.kind {
		case artifactMix:
			o.mixImage = m.img
		case artifactBeamMap:
			o.beamMapImg = m.img
		case artifactBeamProfile:
			o.beamProfile = m.img
		}
	}

	if st.outstanding <= 0 && st.status == StatusInFlight {
		st.status = StatusReady
		if st.cancel != nil {
			st.cancel()
			st.cancel = nil
		}
	}
}

// Status reports the group's phase: ready, pending or in-flight.
func (o *Orchestrator) Status(g Group) Status { return o.group(g).status }

// TakeError returns a group's failure message once. Subsequent calls return
// false until a new failure occurs.
func (o *Orchestrator) TakeError(g Group) (string, bool) {
	st := o.group(g)
	if !st.hasErr || st.surfaced {
		return "", false
	}
	st.surfaced = true
	return st.errMsg, true
}

// MixResult returns the last applied mix artifact, or nil.
func (o *Orchestrator) MixResult() image.Image { return o.mixImage }

// BeamMapResult returns the last applied 2-D interference map, or nil.
func (o *Orchestrator) BeamMapResult() image.Image { return o.beamMapImg }

// BeamProfileResult returns the last applied 1-D beam pattern, or nil.
func (o *Orchestrator) BeamProfileResult() image.Image { return o.beamProfile }

// Close cancels everything still in flight.
func (o *Orchestrator) Close() {
	for _, st := range []*groupState{&o.mix, &o.beam} {
		if st.cancel != nil {
			st.cancel()
			st.cancel = nil
		}
	}
	for i := range o.slotCancel {
		if o.slotCancel[i] != nil {
			o.slotCancel[i]()
			o.slotCancel[i] = nil
		}
	}
}
