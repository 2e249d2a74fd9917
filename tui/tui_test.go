package tui

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"feeltech-tools/fygen-ctl/config"
	"feeltech-tools/fygen-ctl/device"
	"feeltech-tools/fygen-ctl/journal"
	"feeltech-tools/fygen-ctl/panel"
)

func newTestModel(t *testing.T) (Model, *device.Sim, chan journal.Event) {
	t.Helper()
	sim := device.NewSim()
	p := panel.New(sim.ChannelCount())
	if err := p.SeedFrom(sim); err != nil {
		t.Fatalf("SeedFrom: %v", err)
	}
	events := make(chan journal.Event, 64)
	logger := log.New(io.Discard, "", 0)
	m := NewModel(p, sim, logger, events, nil, 500*time.Millisecond)
	return m, sim, events
}

func press(m Model, s string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch s {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func tick(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(tickMsg(time.Now()))
	return next.(Model), cmd
}

func TestTickPushesEditsToDevice(t *testing.T) {
	m, sim, _ := newTestModel(t)
	m.panel.Channels[0].Frequency.SetRaw(2500)
	m, cmd := tick(m)
	if cmd == nil {
		t.Fatalf("tick did not re-arm")
	}
	if hz, _ := sim.Frequency(0); hz != 2500 {
		t.Fatalf("device frequency = %v Hz, want 2500", hz)
	}
	if m.Err != nil {
		t.Fatalf("push against the simulator errored: %v", m.Err)
	}
}

func TestKeyEditsReachDeviceOnNextTick(t *testing.T) {
	m, sim, events := newTestModel(t)
	m, _ = press(m, "f") // jump to channel 1 frequency
	m, _ = press(m, "up")
	want := int64(1000 + 10_000_000)
	if got := m.panel.Channels[0].Frequency.Raw(); got != want {
		t.Fatalf("after increment: raw = %d, want %d", got, want)
	}
	m, _ = tick(m)
	if hz, _ := sim.Frequency(0); hz != float64(want) {
		t.Fatalf("device frequency = %v Hz, want %d", hz, want)
	}
	select {
	case e := <-events:
		if e.Type != journal.TypeFieldChange || e.Source != "CH1 Freq" {
			t.Fatalf("journaled %+v, want a CH1 Freq field change", e)
		}
	default:
		t.Fatalf("no field change journaled after the tick")
	}
}

func TestZeroDigitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, "f")
	m, _ = press(m, "up") // raw 10001000
	m, _ = press(m, "0")  // zero the most significant digit
	if got := m.panel.Channels[0].Frequency.Raw(); got != 1000 {
		t.Fatalf("after zeroing: raw = %d, want 1000", got)
	}
}

func TestQuitDoesNotPush(t *testing.T) {
	m, sim, _ := newTestModel(t)
	m.panel.Channels[0].Frequency.SetRaw(9999)
	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatalf("quit key produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit key produced %T, want tea.QuitMsg", cmd())
	}
	if hz, _ := sim.Frequency(0); hz != 1000 {
		t.Fatalf("quit pushed a farewell update: device at %v Hz", hz)
	}
}

func TestPickerSelectsWaveform(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, "w")
	m, _ = press(m, "enter")
	if m.picker == nil {
		t.Fatalf("enter on a waveform control did not open the picker")
	}
	m, _ = press(m, "down")
	m, _ = press(m, "down")
	m, _ = press(m, "enter")
	if m.picker != nil {
		t.Fatalf("picker still open after the pick")
	}
	if got := m.panel.Channels[0].Waveform.Selected(); got != "Pulse" {
		t.Fatalf("picked %q, want Pulse", got)
	}
}

func TestPickerEscCancels(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, "w")
	m, _ = press(m, "enter")
	m, _ = press(m, "down")
	m, _ = press(m, "esc")
	if m.picker != nil {
		t.Fatalf("esc left the picker open")
	}
	if got := m.panel.Channels[0].Waveform.Selected(); got != "Sine" {
		t.Fatalf("cancelled pick still changed the waveform to %q", got)
	}
}

func TestMeasurementPull(t *testing.T) {
	m, _, events := newTestModel(t)
	m, _ = press(m, "m")
	if m.measured != "1000.0 Hz" {
		t.Fatalf("measured display = %q, want 1000.0 Hz", m.measured)
	}
	e := <-events
	if e.Type != journal.TypeMeasurement || e.Source != "Measure" {
		t.Fatalf("journaled %+v, want a measurement event", e)
	}
}

func TestCounterPullAndReset(t *testing.T) {
	m, _, events := newTestModel(t)
	m, _ = press(m, "c")
	if m.counter != "1" {
		t.Fatalf("counter display = %q, want 1", m.counter)
	}
	<-events
	m, _ = press(m, "z")
	if m.counter != "" {
		t.Fatalf("counter display not cleared after reset: %q", m.counter)
	}
	m, _ = press(m, "c")
	if m.counter != "1" {
		t.Fatalf("counter did not restart from zero: %q", m.counter)
	}
}

func TestScriptOpsApply(t *testing.T) {
	m, _, _ := newTestModel(t)
	next, _ := m.Update(ScriptMsg{Op: panel.SetParamOp{Channel: 1, Kind: config.KindDuty, Raw: 250}})
	m = next.(Model)
	if got := m.panel.Channels[1].Duty.Raw(); got != 250 {
		t.Fatalf("script duty op: raw = %d, want 250", got)
	}
	next, _ = m.Update(ScriptMsg{Op: panel.SetWaveOp{Channel: 0, Name: "Noise"}})
	m = next.(Model)
	if got := m.panel.Channels[0].Waveform.Selected(); got != "Noise" {
		t.Fatalf("script wave op: selected %q, want Noise", got)
	}
}

func TestScriptSweepStepsWithTicks(t *testing.T) {
	m, sim, _ := newTestModel(t)
	// 1 second at a 500ms push interval is two ticks.
	next, _ := m.Update(ScriptMsg{Op: panel.SweepOp{Channel: 0, StartRaw: 1000, EndRaw: 3000, Seconds: 1}})
	m = next.(Model)
	if m.sweep == nil {
		t.Fatalf("sweep op did not start a sweep")
	}
	m, _ = tick(m)
	if hz, _ := sim.Frequency(0); hz != 2000 {
		t.Fatalf("after tick 1: device at %v Hz, want 2000", hz)
	}
	m, _ = tick(m)
	if hz, _ := sim.Frequency(0); hz != 3000 {
		t.Fatalf("after tick 2: device at %v Hz, want 3000", hz)
	}
	if m.sweep != nil {
		t.Fatalf("sweep still running after reaching the end point")
	}
}

func TestCommandLinePresetRoundTrip(t *testing.T) {
	m, _, _ := newTestModel(t)
	store, err := journal.OpenPresets(filepath.Join(t.TempDir(), "fygen_presets.db"))
	if err != nil {
		t.Fatalf("OpenPresets: %v", err)
	}
	defer store.Close()
	m.presets = store

	m.panel.Channels[0].Frequency.SetRaw(2500)
	m, _ = press(m, ":")
	if !m.textInput.Focused() {
		t.Fatalf("command key did not focus the input")
	}
	m.textInput.SetValue("save bench1")
	m, _ = press(m, "enter")

	m.panel.Channels[0].Frequency.SetRaw(7777)
	m, _ = press(m, ":")
	m.textInput.SetValue("load bench1")
	m, _ = press(m, "enter")
	if got := m.panel.Channels[0].Frequency.Raw(); got != 2500 {
		t.Fatalf("loaded preset raw = %d, want 2500", got)
	}

	m, _ = press(m, ":")
	m.textInput.SetValue("presets")
	m, _ = press(m, "enter")
	if m.status != "Presets: bench1" {
		t.Fatalf("status = %q, want the preset listing", m.status)
	}
}

func TestCommandLineQuotedPresetName(t *testing.T) {
	m, _, _ := newTestModel(t)
	store, err := journal.OpenPresets(filepath.Join(t.TempDir(), "fygen_presets.db"))
	if err != nil {
		t.Fatalf("OpenPresets: %v", err)
	}
	defer store.Close()
	m.presets = store

	m.panel.Channels[0].Frequency.SetRaw(2500)
	m, _ = press(m, ":")
	m.textInput.SetValue(`save "bench a"`)
	m, _ = press(m, "enter")
	if m.status != "Saved preset 'bench a'." {
		t.Fatalf("status = %q, want the quoted name saved whole", m.status)
	}
	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "bench a" {
		t.Fatalf("stored names = %v, want [bench a]", names)
	}

	m.panel.Channels[0].Frequency.SetRaw(7777)
	m, _ = press(m, ":")
	m.textInput.SetValue(`load "bench a"`)
	m, _ = press(m, "enter")
	if got := m.panel.Channels[0].Frequency.Raw(); got != 2500 {
		t.Fatalf("loaded preset raw = %d, want 2500", got)
	}
}

func TestCommandLineUnbalancedQuote(t *testing.T) {
	m, _, _ := newTestModel(t)
	store, err := journal.OpenPresets(filepath.Join(t.TempDir(), "fygen_presets.db"))
	if err != nil {
		t.Fatalf("OpenPresets: %v", err)
	}
	defer store.Close()
	m.presets = store

	m, _ = press(m, ":")
	m.textInput.SetValue(`save "bench`)
	m, _ = press(m, "enter")
	if !strings.HasPrefix(m.status, "Error:") {
		t.Fatalf("status = %q, want a tokenizer error", m.status)
	}
	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("unterminated quote still saved a preset: %v", names)
	}
}

func TestCommandSweepOnFocusedChannel(t *testing.T) {
	m, sim, _ := newTestModel(t)
	m, _ = press(m, "f") // channel 1 frequency
	m, _ = press(m, "f") // advance to channel 2
	m, _ = press(m, ":")
	m.textInput.SetValue("sweep 1.0 3.0 1")
	m, _ = press(m, "enter")
	if m.sweep == nil {
		t.Fatalf("three-argument sweep did not start: status = %q", m.status)
	}
	if m.sweep.Channel != 1 {
		t.Fatalf("sweep targets channel %d, want the focused channel 2", m.sweep.Channel+1)
	}
	// 1 second at a 500ms push interval is two ticks.
	m, _ = tick(m)
	m, _ = tick(m)
	if hz, _ := sim.Frequency(1); hz != 3000 {
		t.Fatalf("after the ramp: device channel 2 at %v Hz, want 3000", hz)
	}
	if m.sweep != nil {
		t.Fatalf("sweep still running after reaching the end point")
	}
}

func TestCommandSweepExplicitChannel(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, ":")
	m.textInput.SetValue("sweep 2 1.0 3.0 1")
	m, _ = press(m, "enter")
	if m.sweep == nil {
		t.Fatalf("explicit-channel sweep did not start: status = %q", m.status)
	}
	if m.sweep.Channel != 1 {
		t.Fatalf("sweep targets channel %d, want channel 2", m.sweep.Channel+1)
	}
}

func TestCommandLineQuit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = press(m, ":")
	m.textInput.SetValue("quit")
	_, cmd := press(m, "enter")
	if cmd == nil {
		t.Fatalf("quit command produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("quit command produced %T, want tea.QuitMsg", cmd())
	}
}

type brokenGen struct {
	*device.Sim
}

func (b *brokenGen) SetWaveform(ch int, index int) error {
	return errors.New("port gone")
}

func TestPushFailureEndsSession(t *testing.T) {
	m, sim, _ := newTestModel(t)
	m.gen = &brokenGen{Sim: sim}
	m, cmd := tick(m)
	if m.Err == nil {
		t.Fatalf("push failure not recorded")
	}
	if cmd == nil {
		t.Fatalf("push failure produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("push failure produced %T, want tea.QuitMsg", cmd())
	}
}
