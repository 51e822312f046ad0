// Package slider implements the slider model: per-slider curve conversion
// and atomic value storage over a 256-entry table, sitting on top of the
// declarations pkg/parse produces.
package slider

import (
	"math"
	"strings"
	"sync/atomic"

	"github.com/audioscript/jsfxgo/pkg/parse"
)

const eps = 1e-9

// Curve carries a slider's shape parameters independent of its declaration
// AST, so a compiled effect can hold curves without retaining pkg/parse
// types end to end.
type Curve struct {
	Min, Max, Inc float64
	Shape         parse.Shape
	Modifier      float64
}

// FromParsed builds a Curve from a parsed slider declaration.
func FromParsed(s parse.Slider) Curve {
	return Curve{Min: s.Min, Max: s.Max, Inc: s.Inc, Shape: s.Shape, Modifier: s.ShapeModifier}
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func degenerateRange(min, max float64) bool {
	return math.Abs(max-min) < eps
}

// logCenter returns the effective center of the three-point exponential log
// curve (t=0 -> min, t=0.5 -> center, t=1 -> max), or ok=false when the
// curve should degrade to linear: no center declared and min/max don't
// admit a geometric one, the declared center sits too close to min, or the
// center falls outside (min, max) entirely.
func (c Curve) logCenter() (float64, bool) {
	center := c.Modifier
	if center == 0 {
		if c.Min > 0 && c.Max > 0 {
			center = math.Sqrt(c.Min * c.Max)
		} else {
			return 0, false
		}
	}
	if c.Min <= 0 || c.Max <= 0 || center <= 0 {
		return 0, false
	}
	if center <= c.Min || center >= c.Max || math.Abs(center-c.Min) < eps {
		return 0, false
	}
	return center, true
}

func (c Curve) logToDSL(t float64) float64 {
	center, ok := c.logCenter()
	if !ok {
		return c.Min + (c.Max-c.Min)*t
	}
	t = clamp01(t)
	if t <= 0.5 {
		return c.Min * math.Pow(center/c.Min, 2*t)
	}
	return center * math.Pow(c.Max/center, 2*t-1)
}

func (c Curve) logToNormalized(v float64) float64 {
	center, ok := c.logCenter()
	if !ok {
		return clamp01((v - c.Min) / (c.Max - c.Min))
	}
	if v <= 0 {
		return 0
	}
	if v <= center {
		return clamp01(0.5 * math.Log(v/c.Min) / math.Log(center/c.Min))
	}
	return clamp01(0.5 + 0.5*math.Log(v/center)/math.Log(c.Max/center))
}

// ToDSL converts a normalized host value t in [0,1] into a DSL value using
// the curve's "raw" mapping, the one used when reading a slider's current
// value.
func (c Curve) ToDSL(t float64) float64 { return c.toDSL(t, false) }

// ToDSLAutomated is ToDSL's inverse-warped counterpart, applied when
// converting an automation envelope point rather than an on-screen read.
func (c Curve) ToDSLAutomated(t float64) float64 { return c.toDSL(t, true) }

func (c Curve) toDSL(t float64, automated bool) float64 {
	if degenerateRange(c.Min, c.Max) {
		return c.Min
	}
	switch c.Shape {
	case parse.ShapeLog:
		return c.logToDSL(t)
	case parse.ShapeSqr:
		k := c.Modifier
		if k == 0 {
			return c.Min + (c.Max-c.Min)*t
		}
		if automated {
			k = 1 / k
		}
		return c.Min + (c.Max-c.Min)*math.Pow(clamp01(t), k)
	default:
		return c.Min + (c.Max-c.Min)*t
	}
}

// ToNormalized is ToDSL's inverse: a DSL value back to a normalized [0,1]
// host value, raw mapping.
func (c Curve) ToNormalized(v float64) float64 { return c.toNormalized(v, false) }

// ToNormalizedAutomated is ToNormalized's inverse-warped counterpart.
func (c Curve) ToNormalizedAutomated(v float64) float64 { return c.toNormalized(v, true) }

func (c Curve) toNormalized(v float64, automated bool) float64 {
	if degenerateRange(c.Min, c.Max) {
		return 0
	}
	switch c.Shape {
	case parse.ShapeLog:
		return c.logToNormalized(v)
	case parse.ShapeSqr:
		k := c.Modifier
		if k == 0 {
			return clamp01((v - c.Min) / (c.Max - c.Min))
		}
		if automated {
			k = 1 / k
		}
		t := (v - c.Min) / (c.Max - c.Min)
		if t < 0 {
			t = 0
		}
		return clamp01(math.Pow(t, 1/k))
	default:
		return clamp01((v - c.Min) / (c.Max - c.Min))
	}
}

// Slider is one live slider: its declaration plus the atomically-stored
// current DSL-space value the running VM's variable mirrors.
type Slider struct {
	ID              int
	Var             string
	Desc            string
	Curve           Curve
	IsEnum          bool
	EnumNames       []string
	IsPath          bool
	Path            string
	InitiallyHidden bool

	// Exists is cleared by the compiler façade (pkg/compile) when the
	// slider's declared var fails to resolve to a VM variable after
	// compile; the slider stays in the table for diagnostics either way.
	Exists bool

	bits         uint64
	hostNormBits uint64
}

// FromParsedSlider builds a live Slider from its parsed declaration,
// seeding its value with the declared default: a raw DSL-space value, not
// a normalized one.
func FromParsedSlider(s parse.Slider) *Slider {
	sl := &Slider{
		ID:              s.ID,
		Var:             s.Var,
		Desc:            s.Desc,
		Curve:           FromParsed(s),
		IsEnum:          s.IsEnum,
		EnumNames:       s.EnumNames,
		IsPath:          s.IsPath,
		Path:            s.Path,
		InitiallyHidden: s.InitiallyHidden,
		Exists:          true,
	}
	sl.SetValue(s.Default)
	return sl
}

// Value atomically reads the slider's current DSL-space value.
func (s *Slider) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.bits))
}

// SetValue atomically stores v as the slider's current DSL-space value.
func (s *Slider) SetValue(v float64) {
	atomic.StoreUint64(&s.bits, math.Float64bits(v))
}

// HostNormalized reads the last normalized ∈[0,1] value the host façade
// staged for this slider, pending conversion through its curve on the
// processing engine's next block.
func (s *Slider) HostNormalized() float64 {
	return math.Float64frombits(atomic.LoadUint64(&s.hostNormBits))
}

// SetHostNormalized stages t as the slider's pending host-side write. It
// does not itself mark the mask bus's changed bit; callers (typically
// pkg/host) do that once they've staged every slider in a batch.
func (s *Slider) SetHostNormalized(t float64) {
	atomic.StoreUint64(&s.hostNormBits, math.Float64bits(t))
}

// Index is the slider's 0-based position, matching pkg/mask's group/bit
// arithmetic: slider_group/slider_mask both take a 0-based i.
func (s *Slider) Index() int { return s.ID - 1 }

// Table is the fixed 256-entry slider bank a compiled effect exposes.
type Table struct {
	entries [256]*Slider
}

// NewTable returns an empty 256-slot table.
func NewTable() *Table { return &Table{} }

// Set installs s at its own declared ID.
func (t *Table) Set(s *Slider) {
	t.entries[s.ID-1] = s
}

// Get returns the slider at the given 1-based id, and whether it currently
// exists (declared and successfully bound).
func (t *Table) Get(id int) (*Slider, bool) {
	if id < 1 || id > len(t.entries) {
		return nil, false
	}
	s := t.entries[id-1]
	return s, s != nil && s.Exists
}

// ByIndex returns the slider at the given 0-based index, for callers
// working in pkg/mask's index space.
func (t *Table) ByIndex(index int) (*Slider, bool) {
	if index < 0 || index >= len(t.entries) {
		return nil, false
	}
	s := t.entries[index]
	return s, s != nil && s.Exists
}

// FindByVar looks up a slider by its declared `var` name, case-insensitive:
// slider variable aliases resolve the same way ordinary DSL variables do.
func (t *Table) FindByVar(name string) (*Slider, bool) {
	lower := strings.ToLower(name)
	for _, s := range t.entries {
		if s != nil && s.Exists && strings.ToLower(s.Var) == lower {
			return s, true
		}
	}
	return nil, false
}

// All returns every declared slider slot, including nil gaps for undeclared
// ids, for callers that need to walk the whole 256-entry table (e.g. a host
// UI enumerating available sliders).
func (t *Table) All() [256]*Slider { return t.entries }
