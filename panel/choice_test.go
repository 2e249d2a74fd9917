package panel

import "testing"

func TestChoiceSelectByLabel(t *testing.T) {
	c := NewChoiceField("Wave", []string{"Sine", "Square", "Pulse"})
	c.Select("Pulse")
	if got := c.Index(); got != 2 {
		t.Fatalf("Select(Pulse): index = %d, want 2", got)
	}
	if got := c.Selected(); got != "Pulse" {
		t.Fatalf("Selected() = %q, want Pulse", got)
	}
}

func TestChoiceSelectUnknownLabelKeepsSelection(t *testing.T) {
	c := NewChoiceField("Wave", []string{"Sine", "Square"})
	c.Select("Square")
	c.Select("Sawtooth")
	if got := c.Index(); got != 1 {
		t.Fatalf("unknown label moved index to %d, want 1", got)
	}
}

func TestChoiceDuplicateLabelResolvesToFirst(t *testing.T) {
	c := NewChoiceField("Wave", []string{"Sine", "Square", "Sine", "Pulse"})
	c.SetIndex(3)
	c.Select("Sine")
	if got := c.Index(); got != 0 {
		t.Fatalf("duplicate label: index = %d, want first occurrence 0", got)
	}
}

func TestChoiceSetIndexClamps(t *testing.T) {
	c := NewChoiceField("Wave", []string{"Sine", "Square"})
	c.SetIndex(-3)
	if got := c.Index(); got != 0 {
		t.Fatalf("SetIndex(-3): index = %d, want 0", got)
	}
	c.SetIndex(99)
	if got := c.Index(); got != 1 {
		t.Fatalf("SetIndex(99): index = %d, want 1", got)
	}
}

func TestChoiceWidth(t *testing.T) {
	c := NewChoiceField("Wave", []string{"DC", "Half-Sine", "Sine"})
	if got := c.Width(); got != len("Half-Sine") {
		t.Fatalf("Width() = %d, want %d", got, len("Half-Sine"))
	}
}
