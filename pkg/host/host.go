// Package host implements the host-facing façade a plugin wrapper calls
// across the boundary: opaque handles over an Effect, reference counting
// so the wrapper and the background worker can each hold their own
// reference, parameter/preset enumeration, and the popup-menu descriptor
// parser gfx_showmenu-style scripts hand the host.
package host

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/audioscript/jsfxgo/pkg/effect"
	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
	"github.com/audioscript/jsfxgo/pkg/mask"
	"github.com/audioscript/jsfxgo/pkg/preset"
)

// Handle is an opaque reference to a registered Host, the numeric type a
// C-ABI or scripting-language binding can hold without exposing any Go
// pointer across the boundary.
type Handle uint64

// Host wraps one Effect's live snapshot plus the mask bus and
// configuration it was built with, everything a wrapper needs to drive
// parameter I/O and enumeration without touching pkg/effect or pkg/mask
// directly.
type Host struct {
	Config *jsfxconfig.Configuration
	Effect *effect.Effect
	Bus    *mask.Bus
}

// New creates a Host over an already-constructed Effect and its bus.
func New(cfg *jsfxconfig.Configuration, fx *effect.Effect, bus *mask.Bus) *Host {
	return &Host{Config: cfg, Effect: fx, Bus: bus}
}

// ParamInfo is one slider's enumeration record: everything a host needs
// to build its native parameter list without reaching into pkg/slider.
type ParamInfo struct {
	Index      int
	Var        string
	Name       string
	Min        float64
	Max        float64
	// Default is the slider's staged host-normalized value converted to
	// DSL space through its curve; the declared default is not kept.
	Default    float64
	Value      float64
	IsEnum     bool
	EnumNames  []string
	IsPath     bool
	Hidden     bool
}

// ListParams enumerates every slider currently declared on the live
// snapshot, in ascending index order. A nil or not-yet-installed Effect
// enumerates as empty.
func (h *Host) ListParams() []ParamInfo {
	snap := h.Effect.Current()
	if snap == nil || snap.Result == nil {
		return nil
	}
	var out []ParamInfo
	all := snap.Result.Sliders.All()
	for idx, sl := range all {
		if sl == nil || !sl.Exists {
			continue
		}
		out = append(out, ParamInfo{
			Index:     idx,
			Var:       sl.Var,
			Name:      sl.Desc,
			Min:       sl.Curve.Min,
			Max:       sl.Curve.Max,
			Default:   sl.Curve.ToDSL(sl.HostNormalized()),
			Value:     sl.Value(),
			IsEnum:    sl.IsEnum,
			EnumNames: sl.EnumNames,
			IsPath:    sl.IsPath,
			Hidden:    !h.Bus.Visible(idx),
		})
	}
	return out
}

// ParamCount reports how many sliders currently exist on the live
// snapshot.
func (h *Host) ParamCount() int {
	return len(h.ListParams())
}

// GetParamNormalized returns index's last host-normalized value, the
// value a VST3-style parameter automation lane would read back.
func (h *Host) GetParamNormalized(index int) (float64, bool) {
	snap := h.Effect.Current()
	if snap == nil || snap.Result == nil {
		return 0, false
	}
	sl, ok := snap.Result.Sliders.ByIndex(index)
	if !ok {
		return 0, false
	}
	return sl.HostNormalized(), true
}

// SetParamNormalized stages index's normalized value and marks it
// changed on the mask bus, so the processing engine's next block picks
// it up via drainHostChanges. Reports whether index names a slider that
// currently exists.
func (h *Host) SetParamNormalized(index int, normalized float64) bool {
	snap := h.Effect.Current()
	if snap == nil || snap.Result == nil {
		return false
	}
	sl, ok := snap.Result.Sliders.ByIndex(index)
	if !ok {
		return false
	}
	sl.SetHostNormalized(normalized)
	h.Bus.MarkChanged(index)
	h.Bus.SetTouch(index)
	return true
}

// ParamDisplay renders index's current DSL-space value for host-side
// display (formatted with %.4g), using the enum name table when the
// slider is enum-valued.
func (h *Host) ParamDisplay(index int) (string, bool) {
	snap := h.Effect.Current()
	if snap == nil || snap.Result == nil {
		return "", false
	}
	sl, ok := snap.Result.Sliders.ByIndex(index)
	if !ok {
		return "", false
	}
	v := sl.Value()
	if sl.IsEnum {
		i := int(v)
		if i >= 0 && i < len(sl.EnumNames) {
			return sl.EnumNames[i], true
		}
	}
	return fmt.Sprintf("%.4g", v), true
}

// ListPresets returns the live snapshot's bank preset names, in bank
// order.
func (h *Host) ListPresets() []string {
	snap := h.Effect.Current()
	if snap == nil {
		return nil
	}
	names := make([]string, len(snap.Bank.Presets))
	for i, p := range snap.Bank.Presets {
		names[i] = p.Name
	}
	return names
}

// FindPreset returns the preset named name on the live bank, if any.
func (h *Host) FindPreset(name string) (preset.Preset, bool) {
	snap := h.Effect.Current()
	if snap == nil {
		return preset.Preset{}, false
	}
	if idx := preset.PresetExists(snap.Bank, name); idx > 0 {
		return snap.Bank.Presets[idx-1], true
	}
	return preset.Preset{}, false
}

// VisibleSliderCount counts sliders currently marked visible on the mask
// bus, across all groups.
func (h *Host) VisibleSliderCount() int {
	n := 0
	for g := 0; g < mask.Groups; g++ {
		n += bits.OnesCount64(h.Bus.VisibleWord(g))
	}
	return n
}

// Registry is the opaque-handle table: every registered Host gets a
// Handle a wrapper can hold and pass back across a language boundary,
// with a reference count so the audio-thread wrapper and a background
// worker can each hold their own reference to the same Host (mirrors
// pkg/jsfxconfig.Configuration's Ref/Release shape, one level up).
type Registry struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*registryEntry
}

type registryEntry struct {
	host *Host
	refs int32
}

// NewRegistry creates an empty handle table.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*registryEntry)}
}

// Open registers h with a single reference and returns its handle.
func (r *Registry) Open(h *Host) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	handle := r.next
	r.entries[handle] = &registryEntry{host: h, refs: 1}
	return handle
}

// Ref increments handle's reference count. Reports false if handle is
// not currently registered.
func (r *Registry) Ref(handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok {
		return false
	}
	e.refs++
	return true
}

// Release decrements handle's reference count, removing it from the
// table once the count reaches zero. Reports whether this call dropped
// the count to zero.
func (r *Registry) Release(handle Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok {
		return false
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, handle)
		return true
	}
	return false
}

// RefCount reports handle's current reference count, or 0 if it is not
// registered.
func (r *Registry) RefCount(handle Handle) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok {
		return 0
	}
	return e.refs
}

// Lookup resolves handle to its Host.
func (r *Registry) Lookup(handle Handle) (*Host, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[handle]
	if !ok {
		return nil, false
	}
	return e.host, true
}
