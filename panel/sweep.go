package panel

import (
	"fmt"
	"math"

	"feeltech-tools/fygen-ctl/config"
)

// Sweep ramps one channel's frequency linearly in raw space, advanced once
// per push tick so the device follows at the push cadence. Endpoints clamp
// through the field's own setter like any other edit.
type Sweep struct {
	Channel  int
	startRaw int64
	endRaw   int64
	ticks    int
	done     int
}

// NewSweep starts a ramp on the given channel and immediately applies the
// start point. ticks is the number of push intervals the ramp spans; values
// below one snap straight to the end point on the first step.
func NewSweep(p *Panel, channel int, startRaw, endRaw int64, ticks int) (*Sweep, error) {
	if channel < 0 || channel >= len(p.Channels) {
		return nil, fmt.Errorf("sweep channel %d out of range", channel+1)
	}
	f := p.Channels[channel].Frequency
	f.SetRaw(startRaw)
	return &Sweep{
		Channel:  channel,
		startRaw: f.Raw(),
		endRaw:   endRaw,
		ticks:    ticks,
	}, nil
}

// Step advances the ramp by one push interval and writes the interpolated
// frequency into the channel's field. It reports whether the sweep is
// finished.
func (s *Sweep) Step(p *Panel) bool {
	s.done++
	f := p.Channels[s.Channel].Frequency
	if s.done >= s.ticks {
		f.SetRaw(s.endRaw)
		return true
	}
	span := float64(s.endRaw - s.startRaw)
	raw := s.startRaw + int64(math.Round(span*float64(s.done)/float64(s.ticks)))
	f.SetRaw(raw)
	return false
}

// Describe renders the sweep for the status line and journal.
func (s *Sweep) Describe() string {
	return fmt.Sprintf("CH%d sweep %s -> %s kHz over %d ticks",
		s.Channel+1,
		rawText(config.FrequencySpec, s.startRaw),
		rawText(config.FrequencySpec, s.endRaw),
		s.ticks)
}
