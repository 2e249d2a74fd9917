// Package tui is the interactive control panel: one bubbletea update loop
// owning all panel state, a push tick driving the device, and a command line
// for presets and sweeps.
package tui

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/shlex"

	"feeltech-tools/fygen-ctl/config"
	"feeltech-tools/fygen-ctl/device"
	"feeltech-tools/fygen-ctl/journal"
	"feeltech-tools/fygen-ctl/panel"
)

// --- MODEL ---
type tickMsg time.Time

// ScriptMsg delivers one scripted operation into the update loop; the
// scenario runner sends these through Program.Send from its own goroutine.
type ScriptMsg struct {
	Op interface{}
}

// waveformPicker is the modal choice sub-interaction for one waveform field.
type waveformPicker struct {
	target *panel.ChoiceField
	index  int
}

type Model struct {
	panel     *panel.Panel
	gen       device.Generator
	log       *log.Logger
	events    chan<- journal.Event
	presets   *journal.PresetStore
	keys      keyMap
	help      help.Model
	textInput textinput.Model
	viewport  viewport.Model
	history   []string
	picker    *waveformPicker
	sweep     *panel.Sweep
	measured  string
	counter   string
	status    string
	pushEvery time.Duration
	ready     bool
	width     int

	// Err is the device failure that ended the session, if any; main
	// inspects it after the program exits.
	Err error
}

func NewModel(p *panel.Panel, gen device.Generator, logger *log.Logger, events chan<- journal.Event, presets *journal.PresetStore, pushEvery time.Duration) Model {
	ti := textinput.New()
	ti.Placeholder = "save bench1 | load bench1 | presets | sweep 1.0 10.0 5 | abort"

	return Model{
		panel:     p,
		gen:       gen,
		log:       logger,
		events:    events,
		presets:   presets,
		keys:      keys,
		help:      help.New(),
		textInput: ti,
		status:    "Ready.",
		pushEvery: pushEvery,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(m.pushEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// --- UPDATE ---
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.textInput.Focused() {
			switch msg.Type {
			case tea.KeyEnter:
				if quit := m.handleCommand(); quit {
					return m, tea.Quit
				}
				return m, nil
			case tea.KeyCtrlC, tea.KeyEsc:
				m.textInput.Blur()
				return m, nil
			}
		} else if m.picker != nil {
			m.handlePickerKey(msg)
			return m, nil
		} else {
			return m.handlePanelKey(msg)
		}

	case tea.WindowSizeMsg:
		verticalMargin := titleHeight + channelPaneHeight + statusHeight + footerHeight
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.Style = baseStyle
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		if m.sweep != nil {
			if m.sweep.Step(m.panel) {
				m.log.Printf("SOE: [SWEEP] finished: %s", m.sweep.Describe())
				m.sendEvent(journal.Event{Source: "Sweep", Value: "finished", Type: journal.TypeSweep})
				m.setStatus("Sweep finished.")
				m.sweep = nil
			}
		}
		if err := m.panel.PushAll(m.gen); err != nil {
			m.log.Printf("FATAL: Push to device failed: %v", err)
			m.Err = err
			return m, tea.Quit
		}
		m.recordChanges()
		return m, tea.Tick(m.pushEvery, func(t time.Time) tea.Msg { return tickMsg(t) })

	case ScriptMsg:
		m.applyScriptOp(msg.Op)
		return m, nil
	}

	if m.textInput.Focused() {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handlePanelKey dispatches keys while no modal is up: global commands first,
// then operations scoped to the focused control.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		// No farewell push; the device keeps the last pushed state.
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.textInput.Focus()
		return m, nil
	case key.Matches(msg, m.keys.NextControl):
		m.panel.Focus.Next()
		return m, nil
	case key.Matches(msg, m.keys.PrevControl):
		m.panel.Focus.Prev()
		return m, nil
	case key.Matches(msg, m.keys.JumpWave):
		m.panel.Focus.JumpTo(config.KindWaveform)
		return m, nil
	case key.Matches(msg, m.keys.JumpFreq):
		m.panel.Focus.JumpTo(config.KindFrequency)
		return m, nil
	case key.Matches(msg, m.keys.JumpDuty):
		m.panel.Focus.JumpTo(config.KindDuty)
		return m, nil
	case key.Matches(msg, m.keys.JumpAmpl):
		m.panel.Focus.JumpTo(config.KindAmplitude)
		return m, nil
	case key.Matches(msg, m.keys.JumpOffs):
		m.panel.Focus.JumpTo(config.KindOffset)
		return m, nil
	case key.Matches(msg, m.keys.JumpPhase):
		m.panel.Focus.JumpTo(config.KindPhase)
		return m, nil
	case key.Matches(msg, m.keys.Measure):
		return m.pullMeasurement()
	case key.Matches(msg, m.keys.Counter):
		return m.pullCounter()
	case key.Matches(msg, m.keys.CounterReset):
		if err := m.gen.ResetCounter(); err != nil {
			m.log.Printf("FATAL: Counter reset failed: %v", err)
			m.Err = err
			return m, tea.Quit
		}
		m.counter = ""
		m.setStatus("Counter zeroed.")
		return m, nil
	}

	active, ok := m.panel.Focus.Active()
	if !ok {
		return m, nil
	}
	if choice := m.panel.ChoiceAt(active); choice != nil {
		if key.Matches(msg, m.keys.Pick) {
			m.picker = &waveformPicker{target: choice, index: choice.Index()}
		}
		return m, nil
	}
	field := m.panel.FieldAt(active)
	if field == nil {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.CursorLeft):
		field.CursorLeft()
	case key.Matches(msg, m.keys.CursorRight):
		field.CursorRight()
	case key.Matches(msg, m.keys.Increment):
		field.Inc()
	case key.Matches(msg, m.keys.Decrement):
		field.Dec()
	case key.Matches(msg, m.keys.ZeroDigit):
		field.ZeroDigit()
	}
	return m, nil
}

// handlePickerKey drives the modal waveform list.
func (m *Model) handlePickerKey(msg tea.KeyMsg) {
	p := m.picker
	switch {
	case key.Matches(msg, m.keys.Increment):
		if p.index > 0 {
			p.index--
		}
	case key.Matches(msg, m.keys.Decrement):
		if p.index < len(p.target.Options())-1 {
			p.index++
		}
	case key.Matches(msg, m.keys.Pick):
		// Resolution is by label, so a duplicated label lands on its first
		// occurrence.
		p.target.Select(p.target.Options()[p.index])
		m.picker = nil
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.picker = nil
	}
}

func (m Model) pullMeasurement() (tea.Model, tea.Cmd) {
	hz, err := m.gen.MeasureFrequency()
	if err != nil {
		m.log.Printf("FATAL: Frequency measurement failed: %v", err)
		m.Err = err
		return m, tea.Quit
	}
	m.measured = fmt.Sprintf("%.1f Hz", hz)
	m.log.Printf("SOE: [MEASUREMENT] Measured frequency %s", m.measured)
	m.sendEvent(journal.Event{Source: "Measure", Value: fmt.Sprintf("%.1f", hz), Unit: "Hz", Type: journal.TypeMeasurement})
	m.setStatus("Measured " + m.measured)
	return m, nil
}

func (m Model) pullCounter() (tea.Model, tea.Cmd) {
	count, err := m.gen.ReadCounter()
	if err != nil {
		m.log.Printf("FATAL: Counter read failed: %v", err)
		m.Err = err
		return m, tea.Quit
	}
	m.counter = fmt.Sprintf("%d", count)
	m.log.Printf("SOE: [MEASUREMENT] Counter at %s", m.counter)
	m.sendEvent(journal.Event{Source: "Counter", Value: m.counter, Unit: "counts", Type: journal.TypeMeasurement})
	m.setStatus("Counter read.")
	return m, nil
}

// recordChanges journals every parameter transition since the previous tick
// and mirrors it into the history pane.
func (m *Model) recordChanges() {
	changes := m.panel.CollectChanges()
	for _, c := range changes {
		m.log.Printf("SOE: [FIELD_CHANGE] %s changed from %s to %s %s", c.Source, c.Previous, c.Value, c.Unit)
		m.sendEvent(journal.Event{
			Source:   c.Source,
			Previous: c.Previous,
			Value:    c.Value,
			Unit:     c.Unit,
			Type:     journal.TypeFieldChange,
		})
		line := fmt.Sprintf("[%s] %s: %s -> %s %s",
			time.Now().Format("15:04:05"), c.Source, c.Previous, c.Value, c.Unit)
		m.history = append(m.history, strings.TrimRight(line, " "))
	}
	if len(changes) > 0 && m.ready {
		if len(m.history) > 200 {
			m.history = m.history[len(m.history)-200:]
		}
		m.viewport.SetContent(strings.Join(m.history, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m *Model) sendEvent(e journal.Event) {
	if m.events == nil {
		return
	}
	e.Timestamp = time.Now()
	m.events <- e
}

func (m *Model) setStatus(s string) {
	m.status = s
}

// applyScriptOp folds one scenario operation into panel state. The next push
// tick carries the result to the device like any interactive edit.
func (m *Model) applyScriptOp(op interface{}) {
	switch op := op.(type) {
	case panel.SetWaveOp:
		choice := m.panel.ChoiceAt(panel.ControlID{Channel: op.Channel, Kind: config.KindWaveform})
		if choice == nil {
			m.setStatus(fmt.Sprintf("Error: Script channel %d out of range.", op.Channel+1))
			return
		}
		choice.Select(op.Name)
		m.sendEvent(journal.Event{Source: "Script", Value: fmt.Sprintf("CH%d wave %s", op.Channel+1, op.Name), Type: journal.TypeScript})
		m.setStatus(fmt.Sprintf("Script: CH%d wave %s", op.Channel+1, op.Name))
	case panel.SetParamOp:
		field := m.panel.FieldAt(panel.ControlID{Channel: op.Channel, Kind: op.Kind})
		if field == nil {
			m.setStatus(fmt.Sprintf("Error: Script target CH%d %s invalid.", op.Channel+1, op.Kind))
			return
		}
		field.SetRaw(op.Raw)
		m.sendEvent(journal.Event{Source: "Script", Value: fmt.Sprintf("CH%d %s set", op.Channel+1, op.Kind), Type: journal.TypeScript})
		m.setStatus(fmt.Sprintf("Script: CH%d %s updated.", op.Channel+1, op.Kind))
	case panel.SweepOp:
		m.startSweep(op.Channel, op.StartRaw, op.EndRaw, op.Seconds, "Script")
	default:
		m.log.Printf("TUI: Ignoring unknown script op %T", op)
	}
}

// startSweep begins a frequency ramp stepped by the push tick.
func (m *Model) startSweep(channel int, startRaw, endRaw int64, seconds float64, origin string) {
	ticks := int(seconds * float64(time.Second) / float64(m.pushEvery))
	if ticks < 1 {
		ticks = 1
	}
	sweep, err := panel.NewSweep(m.panel, channel, startRaw, endRaw, ticks)
	if err != nil {
		m.setStatus(fmt.Sprintf("Error: %v", err))
		return
	}
	m.sweep = sweep
	desc := sweep.Describe()
	m.log.Printf("SOE: [SWEEP] %s started: %s", origin, desc)
	m.sendEvent(journal.Event{Source: origin, Value: desc, Type: journal.TypeSweep})
	m.setStatus("Sweep started.")
}

// handleCommand parses the command line. Tokens follow shell quoting rules
// so preset names may contain spaces. It reports whether the session should
// end.
func (m *Model) handleCommand() bool {
	input := strings.TrimSpace(m.textInput.Value())
	defer m.textInput.SetValue("")
	m.textInput.Blur()
	if input == "" {
		return false
	}
	m.log.Printf("TUI: User input: '%s'", input)
	parts, err := shlex.Split(input)
	if err != nil {
		m.setStatus(fmt.Sprintf("Error: %v", err))
		return false
	}
	if len(parts) == 0 {
		return false
	}
	command := strings.ToLower(parts[0])
	switch command {
	case "quit", "q":
		return true
	case "save", "s":
		if len(parts) < 2 {
			m.setStatus("Error: 'save' requires a preset name.")
			return false
		}
		m.savePreset(parts[1])
	case "load", "l":
		if len(parts) < 2 {
			m.setStatus("Error: 'load' requires a preset name.")
			return false
		}
		m.loadPreset(parts[1])
	case "presets":
		m.listPresets()
	case "sweep":
		// "sweep START END SECONDS" ramps the focused control's channel
		// (channel 1 while idle); a leading channel number targets one
		// explicitly.
		args := parts[1:]
		ch := 0
		if a, ok := m.panel.Focus.Active(); ok {
			ch = a.Channel
		}
		if len(args) == 4 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				m.setStatus("Error: sweep channel must be numeric.")
				return false
			}
			ch = n - 1
			args = args[1:]
		}
		if len(args) != 3 {
			m.setStatus("Error: usage is 'sweep [CH] START END SECONDS' (kHz).")
			return false
		}
		start, err1 := strconv.ParseFloat(args[0], 64)
		end, err2 := strconv.ParseFloat(args[1], 64)
		seconds, err3 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			m.setStatus("Error: sweep arguments must be numeric.")
			return false
		}
		m.startSweep(ch, panel.RawFor(config.FrequencySpec, start), panel.RawFor(config.FrequencySpec, end), seconds, "Command")
	case "abort":
		if m.sweep == nil {
			m.setStatus("No sweep running.")
			return false
		}
		m.log.Printf("SOE: [SWEEP] aborted: %s", m.sweep.Describe())
		m.sendEvent(journal.Event{Source: "Command", Value: "aborted", Type: journal.TypeSweep})
		m.sweep = nil
		m.setStatus("Sweep aborted.")
	default:
		m.setStatus(fmt.Sprintf("Error: Unknown command '%s'.", command))
	}
	return false
}

func (m *Model) savePreset(name string) {
	if m.presets == nil {
		m.setStatus("Error: Preset store unavailable.")
		return
	}
	p := journal.Preset{Name: name, PhaseRaw: m.panel.Phase.Raw()}
	for _, ch := range m.panel.Channels {
		p.Channels = append(p.Channels, journal.ChannelPreset{
			Waveform:     ch.Waveform.Index(),
			FrequencyRaw: ch.Frequency.Raw(),
			DutyRaw:      ch.Duty.Raw(),
			AmplitudeRaw: ch.Amplitude.Raw(),
			OffsetRaw:    ch.Offset.Raw(),
		})
	}
	if err := m.presets.Save(p); err != nil {
		m.log.Printf("ERROR: Preset save failed: %v", err)
		m.setStatus(fmt.Sprintf("Error: %v", err))
		return
	}
	m.log.Printf("SOE: [PRESET] Saved '%s'", name)
	m.sendEvent(journal.Event{Source: "Preset", Value: name, Type: journal.TypePreset})
	m.setStatus(fmt.Sprintf("Saved preset '%s'.", name))
}

func (m *Model) loadPreset(name string) {
	if m.presets == nil {
		m.setStatus("Error: Preset store unavailable.")
		return
	}
	p, err := m.presets.Load(name)
	if err != nil {
		m.setStatus(fmt.Sprintf("Error: %v", err))
		return
	}
	for i, ch := range m.panel.Channels {
		if i >= len(p.Channels) {
			break
		}
		cp := p.Channels[i]
		ch.Waveform.SetIndex(cp.Waveform)
		ch.Frequency.SetRaw(cp.FrequencyRaw)
		ch.Duty.SetRaw(cp.DutyRaw)
		ch.Amplitude.SetRaw(cp.AmplitudeRaw)
		ch.Offset.SetRaw(cp.OffsetRaw)
	}
	m.panel.Phase.SetRaw(p.PhaseRaw)
	m.log.Printf("SOE: [PRESET] Loaded '%s'", name)
	m.sendEvent(journal.Event{Source: "Preset", Previous: "loaded", Value: name, Type: journal.TypePreset})
	m.setStatus(fmt.Sprintf("Loaded preset '%s'.", name))
}

func (m *Model) listPresets() {
	if m.presets == nil {
		m.setStatus("Error: Preset store unavailable.")
		return
	}
	names, err := m.presets.List()
	if err != nil {
		m.setStatus(fmt.Sprintf("Error: %v", err))
		return
	}
	if len(names) == 0 {
		m.setStatus("No presets saved yet.")
		return
	}
	m.setStatus("Presets: " + strings.Join(names, ", "))
}
