package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextControl  key.Binding
	PrevControl  key.Binding
	CursorLeft   key.Binding
	CursorRight  key.Binding
	Increment    key.Binding
	Decrement    key.Binding
	ZeroDigit    key.Binding
	Pick         key.Binding
	Cancel       key.Binding
	JumpWave     key.Binding
	JumpFreq     key.Binding
	JumpDuty     key.Binding
	JumpAmpl     key.Binding
	JumpOffs     key.Binding
	JumpPhase    key.Binding
	Measure      key.Binding
	Counter      key.Binding
	CounterReset key.Binding
	Command      key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextControl, k.Increment, k.Pick, k.Command, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextControl, k.PrevControl, k.CursorLeft, k.CursorRight},
		{k.Increment, k.Decrement, k.ZeroDigit, k.Pick, k.Cancel},
		{k.JumpWave, k.JumpFreq, k.JumpDuty, k.JumpAmpl, k.JumpOffs, k.JumpPhase},
		{k.Measure, k.Counter, k.CounterReset, k.Command, k.Quit},
	}
}

var keys = keyMap{
	NextControl:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next control")),
	PrevControl:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev control")),
	CursorLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "select digit")),
	CursorRight:  key.NewBinding(key.WithKeys("right")),
	Increment:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑/↓", "adjust digit")),
	Decrement:    key.NewBinding(key.WithKeys("down")),
	ZeroDigit:    key.NewBinding(key.WithKeys("0", "delete"), key.WithHelp("0", "zero digit")),
	Pick:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick waveform")),
	Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	JumpWave:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "waveform")),
	JumpFreq:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "frequency")),
	JumpDuty:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "duty")),
	JumpAmpl:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "amplitude")),
	JumpOffs:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "offset")),
	JumpPhase:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "phase")),
	Measure:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "measure freq")),
	Counter:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "read counter")),
	CounterReset: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zero counter")),
	Command:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
	Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
