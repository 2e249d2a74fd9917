package panel

import (
	"fmt"
	"math"
	"strings"

	"feeltech-tools/fygen-ctl/config"
	"feeltech-tools/fygen-ctl/device"
)

// Channel is one output's parameter group: the waveform choice and the four
// numeric fields. Fields are created once at startup and live for the whole
// session.
type Channel struct {
	Waveform  *ChoiceField
	Frequency *DigitField
	Duty      *DigitField
	Amplitude *DigitField
	Offset    *DigitField
}

func newChannel() *Channel {
	return &Channel{
		Waveform:  NewChoiceField("Wave", device.WaveformNames()),
		Frequency: NewDigitField(config.FrequencySpec),
		Duty:      NewDigitField(config.DutySpec),
		Amplitude: NewDigitField(config.AmplitudeSpec),
		Offset:    NewDigitField(config.OffsetSpec),
	}
}

// Field resolves a numeric kind to its digit field; nil for the waveform.
func (c *Channel) Field(k config.Kind) *DigitField {
	switch k {
	case config.KindFrequency:
		return c.Frequency
	case config.KindDuty:
		return c.Duty
	case config.KindAmplitude:
		return c.Amplitude
	case config.KindOffset:
		return c.Offset
	}
	return nil
}

// snapshot is a channel's pushed state in raw space, kept for change
// detection between push ticks.
type snapshot struct {
	waveform int
	freqRaw  int64
	dutyRaw  int64
	amplRaw  int64
	offsRaw  int64
}

func (c *Channel) snap() snapshot {
	return snapshot{
		waveform: c.Waveform.Index(),
		freqRaw:  c.Frequency.Raw(),
		dutyRaw:  c.Duty.Raw(),
		amplRaw:  c.Amplitude.Raw(),
		offsRaw:  c.Offset.Raw(),
	}
}

// Panel is the whole control surface: N channels fixed at startup from the
// device's channel count, the global phase field, and the focus coordinator.
type Panel struct {
	Channels []*Channel
	Phase    *DigitField
	Focus    *Focus

	last      []snapshot
	lastPhase int64
	primed    bool
}

// New builds a panel for the given channel count. Values start at their
// in-bounds zero and focus starts idle; call SeedFrom to mirror the device
// before first use.
func New(channels int) *Panel {
	p := &Panel{
		Phase: NewDigitField(config.PhaseSpec),
		Focus: NewFocus(channels),
	}
	for i := 0; i < channels; i++ {
		p.Channels = append(p.Channels, newChannel())
	}
	return p
}

// FieldAt resolves a focused control to its digit field; nil for waveform
// controls.
func (p *Panel) FieldAt(id ControlID) *DigitField {
	if id.Kind == config.KindPhase {
		return p.Phase
	}
	if id.Channel < 0 || id.Channel >= len(p.Channels) {
		return nil
	}
	return p.Channels[id.Channel].Field(id.Kind)
}

// ChoiceAt resolves a focused control to its choice field; nil for numeric
// controls.
func (p *Panel) ChoiceAt(id ControlID) *ChoiceField {
	if id.Kind != config.KindWaveform || id.Channel < 0 || id.Channel >= len(p.Channels) {
		return nil
	}
	return p.Channels[id.Channel].Waveform
}

// RawFor converts an engineering value into a field's raw space.
func RawFor(spec config.FieldSpec, value float64) int64 {
	return int64(math.Round(value * float64(pow10(spec.Places))))
}

// SeedFrom mirrors the device's current parameter state into the panel. This
// is the only read of device parameter state in a session; afterwards the
// panel is authoritative. The hardware has no phase read-back, so phase keeps
// its power-on zero until the first push.
func (p *Panel) SeedFrom(gen device.Generator) error {
	for i, ch := range p.Channels {
		w, err := gen.Waveform(i)
		if err != nil {
			return fmt.Errorf("seed channel %d waveform: %w", i+1, err)
		}
		ch.Waveform.SetIndex(w)

		hz, err := gen.Frequency(i)
		if err != nil {
			return fmt.Errorf("seed channel %d frequency: %w", i+1, err)
		}
		// The frequency field holds kilohertz at three places, so its raw
		// count is integer hertz.
		ch.Frequency.SetRaw(int64(math.Round(hz)))

		duty, err := gen.Duty(i)
		if err != nil {
			return fmt.Errorf("seed channel %d duty: %w", i+1, err)
		}
		ch.Duty.SetRaw(RawFor(config.DutySpec, duty))

		ampl, err := gen.Amplitude(i)
		if err != nil {
			return fmt.Errorf("seed channel %d amplitude: %w", i+1, err)
		}
		ch.Amplitude.SetRaw(RawFor(config.AmplitudeSpec, ampl))

		offs, err := gen.Offset(i)
		if err != nil {
			return fmt.Errorf("seed channel %d offset: %w", i+1, err)
		}
		ch.Offset.SetRaw(RawFor(config.OffsetSpec, offs))
	}
	p.prime()
	return nil
}

// prime resets change detection to the current state.
func (p *Panel) prime() {
	p.last = p.last[:0]
	for _, ch := range p.Channels {
		p.last = append(p.last, ch.snap())
	}
	p.lastPhase = p.Phase.Raw()
	p.primed = true
}

// PushAll writes every channel's five parameters and the global phase to the
// device. It runs unconditionally on each push tick and is idempotent;
// transport failure aborts the walk and is fatal to the session.
func (p *Panel) PushAll(gen device.Generator) error {
	for i, ch := range p.Channels {
		if err := gen.SetWaveform(i, ch.Waveform.Index()); err != nil {
			return fmt.Errorf("push channel %d waveform: %w", i+1, err)
		}
		if err := gen.SetFrequency(i, float64(ch.Frequency.Raw())); err != nil {
			return fmt.Errorf("push channel %d frequency: %w", i+1, err)
		}
		if err := gen.SetDuty(i, ch.Duty.Value()); err != nil {
			return fmt.Errorf("push channel %d duty: %w", i+1, err)
		}
		if err := gen.SetAmplitude(i, ch.Amplitude.Value()); err != nil {
			return fmt.Errorf("push channel %d amplitude: %w", i+1, err)
		}
		if err := gen.SetOffset(i, ch.Offset.Value()); err != nil {
			return fmt.Errorf("push channel %d offset: %w", i+1, err)
		}
	}
	if err := gen.SetPhase(p.Phase.Value()); err != nil {
		return fmt.Errorf("push phase: %w", err)
	}
	return nil
}

// Change is one operator-visible parameter transition detected between push
// ticks, used for the event journal and the on-screen history.
type Change struct {
	Source   string
	Previous string
	Value    string
	Unit     string
}

func channelSource(ch int, label string) string {
	return fmt.Sprintf("CH%d %s", ch+1, label)
}

func fieldText(f *DigitField) string {
	return strings.TrimSpace(f.Text())
}

func rawText(spec config.FieldSpec, raw int64) string {
	f := &DigitField{spec: spec, raw: raw}
	return fieldText(f)
}

// CollectChanges diffs current state against the previously collected one and
// advances the baseline. The first call after seeding reports nothing.
func (p *Panel) CollectChanges() []Change {
	if !p.primed {
		p.prime()
		return nil
	}
	var changes []Change
	for i, ch := range p.Channels {
		prev := p.last[i]
		cur := ch.snap()
		if cur.waveform != prev.waveform {
			changes = append(changes, Change{
				Source:   channelSource(i, "Wave"),
				Previous: device.WaveformName(prev.waveform),
				Value:    device.WaveformName(cur.waveform),
			})
		}
		if cur.freqRaw != prev.freqRaw {
			changes = append(changes, Change{
				Source:   channelSource(i, config.FrequencySpec.Label),
				Previous: rawText(config.FrequencySpec, prev.freqRaw),
				Value:    rawText(config.FrequencySpec, cur.freqRaw),
				Unit:     config.FrequencySpec.Unit,
			})
		}
		if cur.dutyRaw != prev.dutyRaw {
			changes = append(changes, Change{
				Source:   channelSource(i, config.DutySpec.Label),
				Previous: rawText(config.DutySpec, prev.dutyRaw),
				Value:    rawText(config.DutySpec, cur.dutyRaw),
				Unit:     config.DutySpec.Unit,
			})
		}
		if cur.amplRaw != prev.amplRaw {
			changes = append(changes, Change{
				Source:   channelSource(i, config.AmplitudeSpec.Label),
				Previous: rawText(config.AmplitudeSpec, prev.amplRaw),
				Value:    rawText(config.AmplitudeSpec, cur.amplRaw),
				Unit:     config.AmplitudeSpec.Unit,
			})
		}
		if cur.offsRaw != prev.offsRaw {
			changes = append(changes, Change{
				Source:   channelSource(i, config.OffsetSpec.Label),
				Previous: rawText(config.OffsetSpec, prev.offsRaw),
				Value:    rawText(config.OffsetSpec, cur.offsRaw),
				Unit:     config.OffsetSpec.Unit,
			})
		}
		p.last[i] = cur
	}
	if p.Phase.Raw() != p.lastPhase {
		changes = append(changes, Change{
			Source:   config.PhaseSpec.Label,
			Previous: rawText(config.PhaseSpec, p.lastPhase),
			Value:    rawText(config.PhaseSpec, p.Phase.Raw()),
			Unit:     config.PhaseSpec.Unit,
		})
		p.lastPhase = p.Phase.Raw()
	}
	return changes
}

// InitialState describes every parameter for startup journaling.
func (p *Panel) InitialState() []Change {
	var out []Change
	for i, ch := range p.Channels {
		out = append(out,
			Change{Source: channelSource(i, "Wave"), Value: ch.Waveform.Selected()},
			Change{Source: channelSource(i, config.FrequencySpec.Label), Value: fieldText(ch.Frequency), Unit: config.FrequencySpec.Unit},
			Change{Source: channelSource(i, config.DutySpec.Label), Value: fieldText(ch.Duty), Unit: config.DutySpec.Unit},
			Change{Source: channelSource(i, config.AmplitudeSpec.Label), Value: fieldText(ch.Amplitude), Unit: config.AmplitudeSpec.Unit},
			Change{Source: channelSource(i, config.OffsetSpec.Label), Value: fieldText(ch.Offset), Unit: config.OffsetSpec.Unit},
		)
	}
	out = append(out, Change{Source: config.PhaseSpec.Label, Value: fieldText(p.Phase), Unit: config.PhaseSpec.Unit})
	return out
}
