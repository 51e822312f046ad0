package mask

import "github.com/audioscript/jsfxgo/pkg/evaluator"

// Callbacks adapts a Bus to evaluator.HostCallbacks, the interface a
// compiled DSL program calls into for the slider mask built-ins. Slider ids
// here are the spec's 1-based ids; Bus works in 0-based indices.
type Callbacks struct {
	Bus *Bus
}

var _ evaluator.HostCallbacks = (*Callbacks)(nil)

// SliderChanged marks id's changed bit, the DSL's own `sliderchange(id)`.
func (c *Callbacks) SliderChanged(id int) {
	c.Bus.MarkChanged(id - 1)
}

// SliderAutomated marks id's automation bit and, since an automation event
// is itself a change, also marks it changed and publishes its touch bit.
func (c *Callbacks) SliderAutomated(id int) {
	idx := id - 1
	c.Bus.MarkAutomated(idx)
	c.Bus.MarkChanged(idx)
	c.Bus.SetTouch(idx)
}

// SliderShow applies mode to id's visible bit.
func (c *Callbacks) SliderShow(id int, mode int) {
	c.Bus.SetVisible(id-1, VisibilityMode(mode))
}
