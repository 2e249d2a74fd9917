// Package panel holds the live control-panel state: per-channel parameter
// fields edited digit by digit, the waveform choice fields, the focus
// coordinator, and the push/seed logic against the device boundary. All panel
// state is owned by the TUI update loop; nothing in here locks.
package panel

import (
	"fmt"
	"strings"

	"feeltech-tools/fygen-ctl/config"
)

// DigitField is a bounded fixed-point value stored as a scaled integer and
// edited one decimal place at a time through a movable cursor. The logical
// value (raw / 10^places) is read-only from the outside: every mutation goes
// through the raw-space operations below and saturates at the bounds, the way
// a hardware panel knob stops at its end positions. Bounds are trusted to fit
// in Digits digits (see the config field table).
type DigitField struct {
	spec   config.FieldSpec
	raw    int64
	cursor int
}

// NewDigitField returns a field at the lowest in-bounds magnitude: zero when
// the bounds straddle it, the nearer bound otherwise.
func NewDigitField(spec config.FieldSpec) *DigitField {
	f := &DigitField{spec: spec}
	f.SetRaw(0)
	return f
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// step is the raw-space weight of the digit under the cursor.
func (f *DigitField) step() int64 {
	return pow10(f.spec.Digits - f.cursor - 1)
}

// Inc adds one unit of the selected digit, saturating silently at the bound.
func (f *DigitField) Inc() {
	f.SetRaw(f.raw + f.step())
}

// Dec subtracts one unit of the selected digit, saturating silently.
func (f *DigitField) Dec() {
	f.SetRaw(f.raw - f.step())
}

// ZeroDigit clears the selected decimal place, leaving every other digit and
// the sign untouched. Go's truncated modulo keeps the identity valid for
// negative raw values.
func (f *DigitField) ZeroDigit() {
	above := pow10(f.spec.Digits - f.cursor)
	below := f.step()
	f.SetRaw(f.raw - f.raw%above + f.raw%below)
}

// CursorLeft moves the digit cursor one place up in significance, clamping at
// the most significant digit.
func (f *DigitField) CursorLeft() {
	if f.cursor > 0 {
		f.cursor--
	}
}

// CursorRight moves the digit cursor one place down, clamping at the least
// significant digit.
func (f *DigitField) CursorRight() {
	if f.cursor < f.spec.Digits-1 {
		f.cursor++
	}
}

// SetRaw clamps v into bounds and stores it. This is the only write path.
func (f *DigitField) SetRaw(v int64) {
	if v < f.spec.MinRaw {
		v = f.spec.MinRaw
	}
	if v > f.spec.MaxRaw {
		v = f.spec.MaxRaw
	}
	f.raw = v
}

func (f *DigitField) Raw() int64 {
	return f.raw
}

// Value is the logical reading, raw / 10^places.
func (f *DigitField) Value() float64 {
	return float64(f.raw) / float64(pow10(f.spec.Places))
}

func (f *DigitField) Cursor() int {
	return f.cursor
}

func (f *DigitField) Spec() config.FieldSpec {
	return f.spec
}

// Signed reports whether the bounds admit negative values, which reserves a
// leading sign column in the rendered text.
func (f *DigitField) Signed() bool {
	return f.spec.MinRaw < 0
}

// Text renders the field's digits left to right: an optional sign column,
// the integer part with leading zeros blanked (except the digit immediately
// left of the point), then the decimal point and the fractional digits. When
// the field is all-fractional the point is the first character; when it has
// no fractional places the point is omitted.
func (f *DigitField) Text() string {
	abs := f.raw
	neg := abs < 0
	if neg {
		abs = -abs
	}
	digits := []rune(fmt.Sprintf("%0*d", f.spec.Digits, abs))
	intLen := f.spec.Digits - f.spec.Places

	var b strings.Builder
	if f.Signed() {
		if neg {
			b.WriteRune('-')
		} else {
			b.WriteRune(' ')
		}
	}
	pad := 0
	for pad < intLen-1 && digits[pad] == '0' {
		pad++
	}
	b.WriteString(strings.Repeat(" ", pad))
	for _, r := range digits[pad:intLen] {
		b.WriteRune(r)
	}
	if f.spec.Places > 0 {
		b.WriteRune('.')
		for _, r := range digits[intLen:] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TextCursor is the rune index of the selected digit within Text(), skipping
// the sign column and the decimal point.
func (f *DigitField) TextCursor() int {
	col := f.cursor
	if f.Signed() {
		col++
	}
	if f.spec.Places > 0 && f.cursor >= f.spec.Digits-f.spec.Places {
		col++
	}
	return col
}
