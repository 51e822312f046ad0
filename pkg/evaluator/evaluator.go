// Package evaluator defines the narrow boundary the core consumes the DSL
// evaluator through: a compile / init / run-section / read-var / read-mem
// interface. WriteVMem is the one addition beyond that, needed by state
// restore to feed a saved serialize blob back into the VM before re-running
// @serialize. Nothing in this package or its callers depends on any
// particular execution strategy: pkg/evaluator/refvm is one (minimal,
// explicitly non-authoritative) implementation; a real EEL2-compatible JIT
// could satisfy the same interface without the rest of the module changing.
package evaluator

// SectionID identifies one of the compiled bodies the evaluator executes.
// Unlike parse.Section, there is no SectionGfx entry: gfx painting never
// reaches the evaluator.
type SectionID int

const (
	SectionInit SectionID = iota
	SectionSlider
	SectionBlock
	SectionSample
	SectionSerialize
)

// CompileOptions mirrors the compiler façade's compile(options) knobs.
type CompileOptions struct {
	NoSerialize bool
	NoGfx       bool
}

// HostCallbacks lets compiled DSL code reach the slider mask bus
// without the evaluator owning it: `sliderchange`, `slider_automate`, and
// `slider_show` are DSL built-ins whose only effect is mask-bus mutation,
// which lives in pkg/mask, not here.
type HostCallbacks interface {
	SliderChanged(id int)
	SliderAutomated(id int)
	SliderShow(id int, mode int)
}

// Evaluator is the compile/init/run-section/read-var/read-mem boundary.
// sliderVars, passed to Compile, binds each slider's declared VM variable
// name (case-insensitive) to its 1-based slider id, so built-ins
// like `sliderchange(slider2)` that take a slider reference by variable
// name can resolve it back to an id.
type Evaluator interface {
	Compile(opts CompileOptions, sections map[SectionID]string, sliderVars map[string]int, callbacks HostCallbacks) error
	Init() error
	RunSection(id SectionID, frames int) error

	ReadVar(name string) (float64, bool)
	WriteVar(name string, v float64) bool
	FindVar(name string) bool

	ReadVMem(addr, n int) ([]float64, error)
	WriteVMem(addr int, values []float64) error
	UsedMem() int
}
