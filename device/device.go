// Package device talks to FeelTech FY6x00-class signal generators. The panel
// consumes the Generator capability set and never sees the wire protocol;
// implementations are the FY serial driver and an in-memory simulator.
package device

// Generator is the capability set the control panel drives. Channel indexes
// run 0..ChannelCount()-1 and are fixed for the life of the connection.
// Getters are used once, to seed the panel at startup; afterwards the panel
// is authoritative and only pushes. Frequencies cross this boundary in hertz,
// amplitude and offset in volts, duty in percent, phase in degrees.
type Generator interface {
	ChannelCount() int

	Waveform(ch int) (int, error)
	SetWaveform(ch int, index int) error
	Frequency(ch int) (float64, error)
	SetFrequency(ch int, hz float64) error
	Duty(ch int) (float64, error)
	SetDuty(ch int, percent float64) error
	Amplitude(ch int) (float64, error)
	SetAmplitude(ch int, volts float64) error
	Offset(ch int) (float64, error)
	SetOffset(ch int, volts float64) error

	// Phase is a single device-wide setting: the FY hardware holds one
	// phase offset register between its two outputs.
	SetPhase(degrees float64) error

	MeasureFrequency() (float64, error)
	ReadCounter() (uint64, error)
	ResetCounter() error

	Close() error
}

// waveformNames lists the FY6x00 built-in shapes in firmware index order,
// followed by the four arbitrary slots. UI columns size off the longest name.
var waveformNames = []string{
	"Sine",
	"Square",
	"Pulse",
	"Triangle",
	"Ramp",
	"CMOS",
	"DC",
	"Half-Sine",
	"Exp-Rise",
	"Exp-Decay",
	"Noise",
	"Arb1",
	"Arb2",
	"Arb3",
	"Arb4",
}

// WaveformNames returns the waveform table. Callers must not mutate it.
func WaveformNames() []string {
	return waveformNames
}

// WaveformName maps a firmware waveform index to its display name.
func WaveformName(index int) string {
	if index < 0 || index >= len(waveformNames) {
		return "Unknown"
	}
	return waveformNames[index]
}
