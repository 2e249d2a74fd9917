package config

// --- Configuration Constants ---
const (
	DefaultSerialPort   = "/dev/ttyUSB0"
	DefaultBaudRate     = 115200
	DefaultPushMs       = 500  // parameter push interval, milliseconds
	DefaultJournalDir   = "."  // where daily event databases land
	SerialReadTimeoutMs = 1000 // per-command response deadline
)

// Kind identifies one parameter column of the panel. The per-channel kinds
// appear once per channel; Phase exists once for the whole device.
type Kind int

const (
	KindWaveform Kind = iota
	KindFrequency
	KindDuty
	KindAmplitude
	KindOffset
	KindPhase
)

func (k Kind) String() string {
	switch k {
	case KindWaveform:
		return "waveform"
	case KindFrequency:
		return "frequency"
	case KindDuty:
		return "duty"
	case KindAmplitude:
		return "amplitude"
	case KindOffset:
		return "offset"
	case KindPhase:
		return "phase"
	}
	return "unknown"
}

// FieldSpec fixes the digit layout and raw-space bounds of one numeric
// parameter. Raw values are the logical value scaled by 10^Places; bounds
// must be representable in Digits digits.
type FieldSpec struct {
	Label  string
	Unit   string
	Digits int
	Places int
	MinRaw int64
	MaxRaw int64
}

// Numeric parameter table for the FY6x00 family. The frequency field holds
// kilohertz at three decimal places, which makes its raw count equal to
// integer hertz; the device boundary converts. The 60 MHz ceiling matches
// the top of the FY6900 range.
var (
	FrequencySpec = FieldSpec{Label: "Freq", Unit: "kHz", Digits: 8, Places: 3, MinRaw: 0, MaxRaw: 60_000_000}
	DutySpec      = FieldSpec{Label: "Duty", Unit: "%", Digits: 3, Places: 1, MinRaw: 0, MaxRaw: 999}
	AmplitudeSpec = FieldSpec{Label: "Ampl", Unit: "Vpp", Digits: 4, Places: 2, MinRaw: 0, MaxRaw: 2000}
	OffsetSpec    = FieldSpec{Label: "Offs", Unit: "V", Digits: 4, Places: 2, MinRaw: -1200, MaxRaw: 1200}
	PhaseSpec     = FieldSpec{Label: "Phase", Unit: "deg", Digits: 4, Places: 1, MinRaw: 0, MaxRaw: 3599}
)

// SpecFor returns the field table entry for a numeric kind.
func SpecFor(k Kind) FieldSpec {
	switch k {
	case KindFrequency:
		return FrequencySpec
	case KindDuty:
		return DutySpec
	case KindAmplitude:
		return AmplitudeSpec
	case KindOffset:
		return OffsetSpec
	case KindPhase:
		return PhaseSpec
	}
	return FieldSpec{}
}
