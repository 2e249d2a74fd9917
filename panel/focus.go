package panel

import "feeltech-tools/fygen-ctl/config"

// ControlID names one control on the screen: a per-channel parameter column
// slot, or the single global phase control (registered under channel 0).
type ControlID struct {
	Channel int
	Kind    config.Kind
}

// perChannelKinds is the tab order within one channel strip.
var perChannelKinds = []config.Kind{
	config.KindWaveform,
	config.KindFrequency,
	config.KindDuty,
	config.KindAmplitude,
	config.KindOffset,
}

// Focus owns which single control is editable. Controls hold no active flags
// of their own; rendering and key dispatch ask the coordinator. A fresh
// coordinator is idle until the first activation, and afterwards exactly one
// control is active at all times.
type Focus struct {
	controls []ControlID
	active   int // index into controls, -1 while idle
}

// NewFocus builds the control registry for the given channel count:
// channel-major per-channel kinds, then the global phase slot.
func NewFocus(channels int) *Focus {
	f := &Focus{active: -1}
	for ch := 0; ch < channels; ch++ {
		for _, k := range perChannelKinds {
			f.controls = append(f.controls, ControlID{Channel: ch, Kind: k})
		}
	}
	f.controls = append(f.controls, ControlID{Channel: 0, Kind: config.KindPhase})
	return f
}

// Active returns the focused control, or false while idle.
func (f *Focus) Active() (ControlID, bool) {
	if f.active < 0 {
		return ControlID{}, false
	}
	return f.controls[f.active], true
}

func (f *Focus) IsActive(id ControlID) bool {
	a, ok := f.Active()
	return ok && a == id
}

// Next advances focus in tab order, wrapping.
func (f *Focus) Next() {
	if f.active < 0 {
		f.active = 0
		return
	}
	f.active = (f.active + 1) % len(f.controls)
}

// Prev moves focus backwards in tab order, wrapping.
func (f *Focus) Prev() {
	if f.active < 0 {
		f.active = 0
		return
	}
	f.active = (f.active - 1 + len(f.controls)) % len(f.controls)
}

// JumpTo moves focus to the requested kind, staying on the current channel
// when possible: among controls of that kind, pick the first at a channel not
// below the active one that is not already focused; failing that, fall back
// to the first control of the kind at all. The fallback re-selects the active
// control only when it is the sole candidate. Idle focus counts as channel 0.
func (f *Focus) JumpTo(kind config.Kind) {
	from := 0
	if a, ok := f.Active(); ok {
		from = a.Channel
	}
	first := -1
	for i, ctl := range f.controls {
		if ctl.Kind != kind {
			continue
		}
		if first < 0 {
			first = i
		}
		if ctl.Channel >= from && i != f.active {
			f.active = i
			return
		}
	}
	if first >= 0 {
		f.active = first
	}
}
