package device

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"feeltech-tools/fygen-ctl/config"
)

// Channel register letters in the FY6x00 command set: the main output is
// register M, the second output register F.
var channelRegisters = []byte{'M', 'F'}

// FY drives a FeelTech FY6x00 generator over its USB-CDC serial port.
// Commands are newline-terminated ASCII; the firmware acknowledges every
// command with exactly one line, so traffic is strictly lockstep. All calls
// must come from a single goroutine (the panel's update loop plus startup
// seeding satisfy this by construction).
type FY struct {
	port io.ReadWriteCloser
	name string
}

// Open connects to the generator on the named serial port.
func Open(portName string) (*FY, error) {
	mode := &serial.Mode{
		BaudRate: config.DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(config.SerialReadTimeoutMs * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	return &FY{port: port, name: portName}, nil
}

func (g *FY) Close() error {
	return g.port.Close()
}

func (g *FY) ChannelCount() int {
	return len(channelRegisters)
}

func (g *FY) register(ch int) (byte, error) {
	if ch < 0 || ch >= len(channelRegisters) {
		return 0, fmt.Errorf("channel %d out of range 0..%d", ch, len(channelRegisters)-1)
	}
	return channelRegisters[ch], nil
}

// cmd sends one command line and returns the firmware's response line with
// surrounding whitespace stripped.
func (g *FY) cmd(command string) (string, error) {
	if _, err := g.port.Write([]byte(command + "\n")); err != nil {
		return "", fmt.Errorf("write %q: %w", command, err)
	}
	line, err := g.readLine()
	if err != nil {
		return "", fmt.Errorf("response to %q: %w", command, err)
	}
	return line, nil
}

// set sends a write command. Acknowledgement content varies between firmware
// revisions, so only its arrival is checked.
func (g *FY) set(command string) error {
	_, err := g.cmd(command)
	return err
}

func (g *FY) readLine() (string, error) {
	var line []byte
	buf := make([]byte, 64)
	for {
		n, err := g.port.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			// go.bug.st/serial signals an expired read timeout as a
			// zero-byte read with nil error.
			return "", fmt.Errorf("timeout after %dms on %s", config.SerialReadTimeoutMs, g.name)
		}
		for _, b := range buf[:n] {
			if b == '\n' {
				return strings.TrimSpace(string(line)), nil
			}
			if b != '\r' {
				line = append(line, b)
			}
		}
	}
}

func (g *FY) Waveform(ch int) (int, error) {
	reg, err := g.register(ch)
	if err != nil {
		return 0, err
	}
	resp, err := g.cmd(fmt.Sprintf("R%cW", reg))
	if err != nil {
		return 0, err
	}
	index, err := strconv.Atoi(resp)
	if err != nil {
		return 0, fmt.Errorf("bad waveform response %q: %w", resp, err)
	}
	return index, nil
}

func (g *FY) SetWaveform(ch int, index int) error {
	reg, err := g.register(ch)
	if err != nil {
		return err
	}
	return g.set(fmt.Sprintf("W%cW%02d", reg, index))
}

// Frequency values cross the wire as 14-digit zero-padded microhertz counts.
func (g *FY) Frequency(ch int) (float64, error) {
	reg, err := g.register(ch)
	if err != nil {
		return 0, err
	}
	resp, err := g.cmd(fmt.Sprintf("R%cF", reg))
	if err != nil {
		return 0, err
	}
	uhz, err := strconv.ParseUint(resp, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad frequency response %q: %w", resp, err)
	}
	return float64(uhz) / 1e6, nil
}

func (g *FY) SetFrequency(ch int, hz float64) error {
	reg, err := g.register(ch)
	if err != nil {
		return err
	}
	uhz := uint64(math.Round(hz * 1e6))
	return g.set(fmt.Sprintf("W%cF%014d", reg, uhz))
}

func (g *FY) Duty(ch int) (float64, error) {
	return g.readFloat(ch, 'D')
}

func (g *FY) SetDuty(ch int, percent float64) error {
	reg, err := g.register(ch)
	if err != nil {
		return err
	}
	return g.set(fmt.Sprintf("W%cD%04.1f", reg, percent))
}

func (g *FY) Amplitude(ch int) (float64, error) {
	return g.readFloat(ch, 'A')
}

func (g *FY) SetAmplitude(ch int, volts float64) error {
	reg, err := g.register(ch)
	if err != nil {
		return err
	}
	return g.set(fmt.Sprintf("W%cA%05.2f", reg, volts))
}

func (g *FY) Offset(ch int) (float64, error) {
	return g.readFloat(ch, 'O')
}

func (g *FY) SetOffset(ch int, volts float64) error {
	reg, err := g.register(ch)
	if err != nil {
		return err
	}
	return g.set(fmt.Sprintf("W%cO%+06.2f", reg, volts))
}

// SetPhase writes the device-wide phase offset. The hardware keeps the
// setting in the second channel's register block.
func (g *FY) SetPhase(degrees float64) error {
	return g.set(fmt.Sprintf("WFP%05.1f", degrees))
}

func (g *FY) MeasureFrequency() (float64, error) {
	resp, err := g.cmd("RCF")
	if err != nil {
		return 0, err
	}
	hz, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, fmt.Errorf("bad measurement response %q: %w", resp, err)
	}
	return hz, nil
}

func (g *FY) ReadCounter() (uint64, error) {
	resp, err := g.cmd("RCC")
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseUint(resp, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad counter response %q: %w", resp, err)
	}
	return count, nil
}

func (g *FY) ResetCounter() error {
	return g.set("WCZ0")
}

func (g *FY) readFloat(ch int, param byte) (float64, error) {
	reg, err := g.register(ch)
	if err != nil {
		return 0, err
	}
	resp, err := g.cmd(fmt.Sprintf("R%c%c", reg, param))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %c response %q: %w", param, resp, err)
	}
	return v, nil
}
