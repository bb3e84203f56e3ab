package orchestrator

import (
	"context"
	"errors"
	"image"

	"github.com/iburimskiy/fourier-studio/internal/monitoring"
	"github.com/iburimskiy/fourier-studio/internal/params"
)

// Source slot traffic (uploads and component views) uses the immediate
// policy: no debounce, fire on request. Each slot carries its own token so a
// re-selected component view supersedes the previous fetch, and an upload
// supersedes either.

// RefreshSlot fetches the slot's currently selected component view.
func (o *Orchestrator) RefreshSlot(slot int) {
	if slot < 0 || slot >= params.NumSlots {
		return
	}
	token, ctx := o.mintSlot(slot)
	kind := o.store.SlotView(slot)
	o.spawn(func() {
		img, err := o.tr.Component(ctx, slot, kind)
		o.results <- message{kind: artifactComponent, slot: slot, token: token, img: img, err: err}
	})
}

// Upload ships source bytes to a slot. On success the slot's "image present"
// flag is set (which dirties the mix group) and the component view refreshes.
func (o *Orchestrator) Upload(slot int, filename string, data []byte) {
	if slot < 0 || slot >= params.NumSlots {
		return
	}
	token, ctx := o.mintSlot(slot)
	o.spawn(func() {
		err := o.tr.Upload(ctx, slot, filename, data)
		o.results <- message{kind: artifactUpload, slot: slot, token: token, err: err}
	})
}

func (o *Orchestrator) mintSlot(slot int) (uint64, context.Context) {
	if o.slotCancel[slot] != nil {
		o.slotCancel[slot]()
	}
	o.nextToken++
	token := o.nextToken
	o.slotToken[slot] = token
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	o.slotCancel[slot] = cancel
	return token, ctx
}

func (o *Orchestrator) applySlot(m message) {
	if m.token != o.slotToken[m.slot] {
		return
	}
	o.slotCancel[m.slot]()
	o.slotCancel[m.slot] = nil

	if m.err != nil {
		if !errors.Is(m.err, context.Canceled) {
			o.slotErr = m.err.Error()
			monitoring.Logf("slot %d request failed: %v", m.slot, m.err)
		}
		return
	}

	switch m.kind {
	case artifactUpload:
		o.store.SetImagePresent(m.slot, true)
		o.RefreshSlot(m.slot)
	case artifactComponent:
		o.slotImage[m.slot] = m.img
	}
}

// SlotImage returns the last fetched component view for a slot, or nil.
func (o *Orchestrator) SlotImage(slot int) image.Image {
	if slot < 0 || slot >= params.NumSlots {
		return nil
	}
	return o.slotImage[slot]
}

// TakeSlotError returns the most recent slot failure once.
func (o *Orchestrator) TakeSlotError() (string, bool) {
	if o.slotErr == "" {
		return "", false
	}
	msg := o.slotErr
	o.slotErr = ""
	return msg, true
}
