// Package pin models the in_pin/out_pin channel-name lists a DSL header
// declares, adapted from a VST3 bus.Direction/bus.Info shape down to the
// simpler "named channel, no explicit count" model the header actually
// declares.
package pin

// Direction is which side of the effect a pin list describes.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

// List is an ordered set of channel names for one Direction. A List
// resolved to "no channels" (the `none` sentinel) has Names == nil and
// NoChannels == true.
type List struct {
	Names      []string
	NoChannels bool
}

// Builder accumulates raw `in_pin:`/`out_pin:` header lines in order and
// resolves the "none" sentinel rule once all lines have been seen:
// literal "none" (case-insensitive) in the first position, and only if it
// is the only pin line for that direction, means zero channels; otherwise
// "none" is a regular channel name.
type Builder struct {
	raw []string
}

// Add appends one pin line's name in declaration order.
func (b *Builder) Add(name string) {
	b.raw = append(b.raw, name)
}

// Len reports how many pin lines have been added.
func (b *Builder) Len() int { return len(b.raw) }

// Build resolves the accumulated lines into a List.
func (b *Builder) Build() List {
	if len(b.raw) == 1 && isNoneToken(b.raw[0]) {
		return List{NoChannels: true}
	}
	names := make([]string, len(b.raw))
	copy(names, b.raw)
	return List{Names: names}
}

func isNoneToken(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i, want := range "none" {
		c := rune(s[i])
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != want {
			return false
		}
	}
	return true
}

// DefaultForSampleSection returns the fallback pin lists used when a source
// declares no pin lines at all: stereo in/out when a @sample section
// exists, zero channels otherwise.
func DefaultForSampleSection(hasSample bool) (in, out List) {
	if !hasSample {
		return List{NoChannels: true}, List{NoChannels: true}
	}
	return List{Names: []string{"in 1", "in 2"}}, List{Names: []string{"out 1", "out 2"}}
}

// ChannelCount returns the number of channels a List represents.
func (l List) ChannelCount() int {
	if l.NoChannels {
		return 0
	}
	return len(l.Names)
}
