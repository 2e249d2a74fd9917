package panel

import (
	"testing"

	"feeltech-tools/fygen-ctl/config"
)

func TestSetRawClamps(t *testing.T) {
	f := NewDigitField(config.FieldSpec{Label: "Test", Digits: 4, Places: 0, MinRaw: -500, MaxRaw: 2000})
	type C struct {
		set  int64
		want int64
	}
	for _, c := range []C{
		{0, 0},
		{2000, 2000},
		{2001, 2000},
		{99999, 2000},
		{-500, -500},
		{-501, -500},
		{1234, 1234},
	} {
		f.SetRaw(c.set)
		if got := f.Raw(); got != c.want {
			t.Fatalf("SetRaw(%d): raw = %d, want %d", c.set, got, c.want)
		}
	}
}

func TestNewDigitFieldStartsInBounds(t *testing.T) {
	type C struct {
		min, max int64
		want     int64
	}
	for _, c := range []C{
		{-1200, 1200, 0},
		{100, 900, 100},
		{-900, -100, -100},
	} {
		f := NewDigitField(config.FieldSpec{Digits: 4, MinRaw: c.min, MaxRaw: c.max})
		if got := f.Raw(); got != c.want {
			t.Fatalf("new field with bounds [%d,%d]: raw = %d, want %d", c.min, c.max, got, c.want)
		}
	}
}

func TestIncDecInverseAwayFromBounds(t *testing.T) {
	f := NewDigitField(config.FrequencySpec)
	f.SetRaw(10_000_000)
	for cur := 0; cur < config.FrequencySpec.Digits; cur++ {
		for f.Cursor() > cur {
			f.CursorLeft()
		}
		for f.Cursor() < cur {
			f.CursorRight()
		}
		before := f.Raw()
		f.Inc()
		f.Dec()
		if got := f.Raw(); got != before {
			t.Fatalf("cursor %d: Inc then Dec moved raw %d -> %d", cur, before, got)
		}
		f.Dec()
		f.Inc()
		if got := f.Raw(); got != before {
			t.Fatalf("cursor %d: Dec then Inc moved raw %d -> %d", cur, before, got)
		}
	}
}

func TestIncSaturatesAtCeiling(t *testing.T) {
	// A 24.0 kHz ceiling on an eight digit, three place field. Stepping the
	// most significant digit from 10.0 must stop dead at the ceiling.
	spec := config.FieldSpec{Label: "Freq", Unit: "kHz", Digits: 8, Places: 3, MinRaw: 0, MaxRaw: 24000}
	f := NewDigitField(spec)
	f.SetRaw(10000)
	for i := 0; i < 5; i++ {
		f.Inc()
		if got := f.Raw(); got > 24000 {
			t.Fatalf("Inc #%d overshot the ceiling: raw = %d", i+1, got)
		}
	}
	if got := f.Raw(); got != 24000 {
		t.Fatalf("after saturating Incs: raw = %d, want 24000", got)
	}
}

func TestDecSaturatesAtFloor(t *testing.T) {
	f := NewDigitField(config.OffsetSpec)
	f.SetRaw(config.OffsetSpec.MinRaw + 1)
	f.CursorRight()
	f.CursorRight()
	f.CursorRight()
	f.Dec()
	f.Dec()
	if got := f.Raw(); got != config.OffsetSpec.MinRaw {
		t.Fatalf("Dec past floor: raw = %d, want %d", got, config.OffsetSpec.MinRaw)
	}
}

func TestZeroDigitClearsOnlySelectedPlace(t *testing.T) {
	type C struct {
		raw    int64
		cursor int
		want   int64
	}
	spec := config.FieldSpec{Digits: 4, Places: 0, MinRaw: -9999, MaxRaw: 9999}
	for _, c := range []C{
		{1234, 1, 1034},
		{1234, 0, 234},
		{1234, 3, 1230},
		{-1234, 1, -1034}, // sign is preserved
		{-1234, 3, -1230},
		{1034, 1, 1034}, // already zero, no change
	} {
		f := NewDigitField(spec)
		f.SetRaw(c.raw)
		for i := 0; i < c.cursor; i++ {
			f.CursorRight()
		}
		f.ZeroDigit()
		if got := f.Raw(); got != c.want {
			t.Fatalf("ZeroDigit(raw=%d, cursor=%d) = %d, want %d", c.raw, c.cursor, got, c.want)
		}
	}
}

func TestCursorClampsAtEnds(t *testing.T) {
	f := NewDigitField(config.DutySpec)
	f.CursorLeft()
	if got := f.Cursor(); got != 0 {
		t.Fatalf("CursorLeft at MSD: cursor = %d, want 0", got)
	}
	for i := 0; i < 10; i++ {
		f.CursorRight()
	}
	if got := f.Cursor(); got != config.DutySpec.Digits-1 {
		t.Fatalf("CursorRight past LSD: cursor = %d, want %d", got, config.DutySpec.Digits-1)
	}
}

func TestValueScaling(t *testing.T) {
	f := NewDigitField(config.AmplitudeSpec)
	f.SetRaw(500)
	if got := f.Value(); got != 5.0 {
		t.Fatalf("Value() = %v, want 5.0", got)
	}
	f.SetRaw(1)
	if got := f.Value(); got != 0.01 {
		t.Fatalf("Value() = %v, want 0.01", got)
	}
}

func TestTextLayouts(t *testing.T) {
	type C struct {
		spec config.FieldSpec
		raw  int64
		want string
	}
	for _, c := range []C{
		{config.FrequencySpec, 10000, "   10.000"},
		{config.FrequencySpec, 0, "    0.000"},
		{config.FrequencySpec, 60_000_000, "60000.000"},
		{config.DutySpec, 500, "50.0"},
		{config.DutySpec, 33, " 3.3"},
		{config.OffsetSpec, -50, "- 0.50"},
		{config.OffsetSpec, 1200, " 12.00"},
		{config.PhaseSpec, 900, " 90.0"},
		{config.FieldSpec{Digits: 4, Places: 0, MinRaw: 0, MaxRaw: 9999}, 7, "   7"},
		{config.FieldSpec{Digits: 3, Places: 3, MinRaw: 0, MaxRaw: 999}, 123, ".123"},
	} {
		f := NewDigitField(c.spec)
		f.SetRaw(c.raw)
		if got := f.Text(); got != c.want {
			t.Fatalf("Text(%s raw=%d) = %q, want %q", c.spec.Label, c.raw, got, c.want)
		}
	}
}

func TestTextCursorSkipsSignAndPoint(t *testing.T) {
	type C struct {
		spec   config.FieldSpec
		cursor int
		want   int
	}
	for _, c := range []C{
		{config.FrequencySpec, 0, 0},
		{config.FrequencySpec, 4, 4},  // last integer digit
		{config.FrequencySpec, 5, 6},  // first fractional digit, point at 5
		{config.OffsetSpec, 0, 1},     // sign column occupies index 0
		{config.OffsetSpec, 2, 4},     // sign plus point
		{config.DutySpec, 2, 3},
	} {
		f := NewDigitField(c.spec)
		for i := 0; i < c.cursor; i++ {
			f.CursorRight()
		}
		if got := f.TextCursor(); got != c.want {
			t.Fatalf("TextCursor(%s cursor=%d) = %d, want %d", c.spec.Label, c.cursor, got, c.want)
		}
		if got := f.TextCursor(); got >= len([]rune(f.Text())) {
			t.Fatalf("TextCursor(%s cursor=%d) = %d points past Text %q", c.spec.Label, c.cursor, got, f.Text())
		}
	}
}
