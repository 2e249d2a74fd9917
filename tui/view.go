package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"feeltech-tools/fygen-ctl/config"
	"feeltech-tools/fygen-ctl/panel"
	"feeltech-tools/fygen-ctl/version"
)

// --- STYLES ---
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#575B7E")).
			Padding(0, 1)

	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	statusKeyStyle = lipgloss.NewStyle().Bold(true)

	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("202"))
	cursorStyle       = lipgloss.NewStyle().Background(lipgloss.Color("202")).Foreground(lipgloss.Color("0"))
	unitStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	rowLabelStyle = lipgloss.NewStyle().Width(6).Padding(0, 1)
	rowValueStyle = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
)

// Fixed vertical layout: title, the control pane row, a status line, the
// history viewport, then the command footer.
const (
	titleHeight       = 1
	channelPaneHeight = 9
	statusHeight      = 1
	footerHeight      = 2
)

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var controls string
	if m.picker != nil {
		controls = m.renderPickerPane()
	} else {
		panes := make([]string, 0, len(m.panel.Channels)+1)
		for i := range m.panel.Channels {
			panes = append(panes, m.renderChannelPane(i))
		}
		panes = append(panes, m.renderDevicePane())
		controls = lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("FY6x00 Control Panel"),
		controls,
		m.status,
		m.viewport.View(),
		m.renderFooter(),
	)
}

// renderDigitRow lays out one numeric field: label, digit text with the
// selected digit shown as a block cursor while the control is focused, then
// the unit.
func (m Model) renderDigitRow(label string, f *panel.DigitField, focused bool) string {
	text := f.Text()
	if focused {
		runes := []rune(text)
		cur := f.TextCursor()
		text = string(runes[:cur]) + cursorStyle.Render(string(runes[cur])) + string(runes[cur+1:])
	}
	rendered := rowLabelStyle.Render(label)
	if focused {
		rendered = rowLabelStyle.Render(focusedLabelStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		rendered,
		rowValueStyle.Render(text),
		unitStyle.Render(" "+f.Spec().Unit),
	)
}

// focusedField reports whether the given digit field is the active control.
func (m Model) focusedField(ch int, f *panel.DigitField) bool {
	active, ok := m.panel.Focus.Active()
	return ok && active.Channel == ch && m.panel.FieldAt(active) == f
}

func (m Model) phaseFocused() bool {
	active, ok := m.panel.Focus.Active()
	return ok && active.Kind == config.KindPhase
}

func (m Model) renderChannelPane(ch int) string {
	c := m.panel.Channels[ch]
	waveFocused := m.panel.Focus.IsActive(panel.ControlID{Channel: ch, Kind: config.KindWaveform})
	waveLabel := rowLabelStyle.Render(c.Waveform.Label())
	if waveFocused {
		waveLabel = rowLabelStyle.Render(focusedLabelStyle.Render(c.Waveform.Label()))
	}
	waveValue := c.Waveform.Selected()
	if waveFocused {
		waveValue = cursorStyle.Render(waveValue)
	}
	waveRow := lipgloss.JoinHorizontal(lipgloss.Left, waveLabel, rowValueStyle.Render(waveValue))

	rows := []string{
		titleStyle.Render(fmt.Sprintf("CH%d", ch+1)),
		waveRow,
		m.renderDigitRow("Freq", c.Frequency, m.focusedField(ch, c.Frequency)),
		m.renderDigitRow("Duty", c.Duty, m.focusedField(ch, c.Duty)),
		m.renderDigitRow("Ampl", c.Amplitude, m.focusedField(ch, c.Amplitude)),
		m.renderDigitRow("Offs", c.Offset, m.focusedField(ch, c.Offset)),
	}
	return baseStyle.Width(28).Height(channelPaneHeight - 2).Render(strings.Join(rows, "\n"))
}

func (m Model) renderDevicePane() string {
	measured := m.measured
	if measured == "" {
		measured = "--"
	}
	counter := m.counter
	if counter == "" {
		counter = "--"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Device"),
		m.renderDigitRow("Phase", m.panel.Phase, m.phaseFocused()),
		statusKeyStyle.Render("Measure: ")+measured,
		statusKeyStyle.Render("Counter: ")+counter,
		" ",
		statusKeyStyle.Render("Version: ")+version.Version,
	)
	return baseStyle.Width(30).Height(channelPaneHeight - 2).Render(content)
}

func (m Model) renderPickerPane() string {
	p := m.picker
	width := p.target.Width() + 6
	if width < 26 {
		width = 26
	}
	var content strings.Builder
	content.WriteString(titleStyle.Render("Select Waveform") + "\n")
	for i, opt := range p.target.Options() {
		line := " " + opt
		if i == p.index {
			line = cursorStyle.Render(">" + opt)
		}
		content.WriteString(line + "\n")
	}
	content.WriteString(unitStyle.Render("enter picks, esc cancels"))
	return baseStyle.Width(width).Render(content.String())
}

func (m Model) renderFooter() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.textInput.View(),
		m.help.View(m.keys),
	)
}
