package panel

// ChoiceField is a single selection over an ordered list of labeled options.
// Editing happens through a modal pick in the TUI; the pick comes back as a
// label and is resolved here by value equality, so options sharing a label
// collapse to the first occurrence.
type ChoiceField struct {
	label   string
	options []string
	index   int
}

func NewChoiceField(label string, options []string) *ChoiceField {
	return &ChoiceField{label: label, options: options}
}

func (c *ChoiceField) Label() string {
	return c.label
}

// Options returns the option list. Callers must not mutate it.
func (c *ChoiceField) Options() []string {
	return c.options
}

func (c *ChoiceField) Index() int {
	return c.index
}

// Selected returns the active option's label.
func (c *ChoiceField) Selected() string {
	return c.options[c.index]
}

// SetIndex selects by position, clamping into range. Used when seeding from
// the device, whose waveform register is an index.
func (c *ChoiceField) SetIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(c.options) {
		i = len(c.options) - 1
	}
	c.index = i
}

// Select resolves a picked label to the first option equal to it. A label
// matching no option leaves the selection unchanged.
func (c *ChoiceField) Select(label string) {
	for i, opt := range c.options {
		if opt == label {
			c.index = i
			return
		}
	}
}

// Width is the widest option label, so rendered columns keep their width no
// matter which option is active.
func (c *ChoiceField) Width() int {
	w := 0
	for _, opt := range c.options {
		if len(opt) > w {
			w = len(opt)
		}
	}
	return w
}
