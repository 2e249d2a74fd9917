package device

import "fmt"

// Sim is an in-memory Generator used by `-mode sim` and by package tests.
// It mirrors the FY's two channels and answers measurements deterministically:
// the measured frequency tracks whatever was last pushed to channel 1, and
// the pulse counter advances by one per read.
type Sim struct {
	channels []simChannel
	phase    float64
	counter  uint64
}

type simChannel struct {
	waveform  int
	frequency float64 // Hz
	duty      float64 // percent
	amplitude float64 // volts peak-to-peak
	offset    float64 // volts
}

// NewSim returns a simulator with bench-typical power-on defaults.
func NewSim() *Sim {
	return &Sim{
		channels: []simChannel{
			{waveform: 0, frequency: 1000, duty: 50, amplitude: 5, offset: 0},
			{waveform: 1, frequency: 1000, duty: 50, amplitude: 5, offset: 0},
		},
	}
}

func (s *Sim) ChannelCount() int {
	return len(s.channels)
}

func (s *Sim) channel(ch int) (*simChannel, error) {
	if ch < 0 || ch >= len(s.channels) {
		return nil, fmt.Errorf("channel %d out of range 0..%d", ch, len(s.channels)-1)
	}
	return &s.channels[ch], nil
}

func (s *Sim) Waveform(ch int) (int, error) {
	c, err := s.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.waveform, nil
}

func (s *Sim) SetWaveform(ch int, index int) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	c.waveform = index
	return nil
}

func (s *Sim) Frequency(ch int) (float64, error) {
	c, err := s.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.frequency, nil
}

func (s *Sim) SetFrequency(ch int, hz float64) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	c.frequency = hz
	return nil
}

func (s *Sim) Duty(ch int) (float64, error) {
	c, err := s.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.duty, nil
}

func (s *Sim) SetDuty(ch int, percent float64) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	c.duty = percent
	return nil
}

func (s *Sim) Amplitude(ch int) (float64, error) {
	c, err := s.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.amplitude, nil
}

func (s *Sim) SetAmplitude(ch int, volts float64) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	c.amplitude = volts
	return nil
}

func (s *Sim) Offset(ch int) (float64, error) {
	c, err := s.channel(ch)
	if err != nil {
		return 0, err
	}
	return c.offset, nil
}

func (s *Sim) SetOffset(ch int, volts float64) error {
	c, err := s.channel(ch)
	if err != nil {
		return err
	}
	c.offset = volts
	return nil
}

func (s *Sim) SetPhase(degrees float64) error {
	s.phase = degrees
	return nil
}

// Phase reports the last pushed phase. The real hardware has no phase
// read-back either; this exists for tests.
func (s *Sim) Phase() float64 {
	return s.phase
}

func (s *Sim) MeasureFrequency() (float64, error) {
	return s.channels[0].frequency, nil
}

func (s *Sim) ReadCounter() (uint64, error) {
	s.counter++
	return s.counter, nil
}

func (s *Sim) ResetCounter() error {
	s.counter = 0
	return nil
}

func (s *Sim) Close() error {
	return nil
}
