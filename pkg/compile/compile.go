// Package compile implements the compiler façade: it turns an already
// loaded import graph (pkg/importgraph) into a running pkg/evaluator
// program, binds slider variables, and exposes a narrow
// compile/init/run-section/read-var/read-mem surface to the rest of the
// runtime.
package compile

import (
	"strings"

	"github.com/audioscript/jsfxgo/pkg/evaluator"
	"github.com/audioscript/jsfxgo/pkg/importgraph"
	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
	"github.com/audioscript/jsfxgo/pkg/mask"
	"github.com/audioscript/jsfxgo/pkg/parse"
	"github.com/audioscript/jsfxgo/pkg/pin"
	"github.com/audioscript/jsfxgo/pkg/slider"
)

// Options mirrors the compiler façade's compile(options) knobs.
type Options struct {
	NoSerialize bool
	NoGfx       bool
}

// Result is what compile(options) hands back: the resolved slider table and
// header metadata a host needs once compilation succeeds.
type Result struct {
	Desc        string
	Author      string
	Tags        []string
	InPins      pin.List
	OutPins     pin.List
	WantsMeters bool
	GfxWidth    int
	GfxHeight   int
	HasGfx      bool
	Sliders     *slider.Table
	Warnings    []jsfxerr.Warning
}

var sectionMap = map[parse.Section]evaluator.SectionID{
	parse.SectionInit:      evaluator.SectionInit,
	parse.SectionSlider:    evaluator.SectionSlider,
	parse.SectionBlock:     evaluator.SectionBlock,
	parse.SectionSample:    evaluator.SectionSample,
	parse.SectionSerialize: evaluator.SectionSerialize,
}

// Compiler owns one evaluator instance and the graph it was last compiled
// from; it is the object the rest of the runtime holds onto across
// compile/init/run_section calls.
type Compiler struct {
	eval  evaluator.Evaluator
	graph *importgraph.Graph
	Bus   *mask.Bus

	result   *Result
	compiled bool
}

// New wires eval (a pkg/evaluator.Evaluator, e.g. refvm.New()) and the mask
// bus its compiled program's slider built-ins will publish to.
func New(eval evaluator.Evaluator, bus *mask.Bus) *Compiler {
	return &Compiler{eval: eval, Bus: bus}
}

// Compile concatenates graph's imports (dependency-first) and root file's
// section bodies per evaluator section, binds slider variables from the
// root header, and hands the assembled program to the evaluator; each
// slider's var is then written with the slider's declared default. Each
// declared slider's var must resolve to a VM variable afterward, or that
// slider is marked Exists=false but kept in the result for diagnostics.
func (c *Compiler) Compile(graph *importgraph.Graph, opts Options) (*Result, error) {
	sections := make(map[evaluator.SectionID]string)
	for parseSec, evalSec := range sectionMap {
		if opts.NoSerialize && evalSec == evaluator.SectionSerialize {
			continue
		}
		text := concatSection(graph, parseSec)
		if text != "" {
			sections[evalSec] = text
		}
	}

	root := graph.Root.Unit.Header
	sliderVars := make(map[string]int)
	for i := range root.Sliders {
		if !root.SliderExists[i] {
			continue
		}
		sl := root.Sliders[i]
		if sl.Var != "" {
			sliderVars[strings.ToLower(sl.Var)] = sl.ID
		}
	}

	callbacks := &mask.Callbacks{Bus: c.Bus}
	if err := c.eval.Compile(evaluator.CompileOptions{NoSerialize: opts.NoSerialize, NoGfx: opts.NoGfx}, sections, sliderVars, callbacks); err != nil {
		return nil, err
	}
	c.compiled = true
	c.graph = graph

	table := slider.NewTable()
	for i := range root.Sliders {
		if !root.SliderExists[i] {
			continue
		}
		sl := slider.FromParsedSlider(root.Sliders[i])
		if sl.Var != "" && (!c.eval.WriteVar(sl.Var, sl.Value()) || !c.eval.FindVar(sl.Var)) {
			sl.Exists = false
		}
		table.Set(sl)
	}

	c.result = &Result{
		Desc:        root.Desc,
		Author:      root.Author,
		Tags:        root.Tags,
		InPins:      root.InPins,
		OutPins:     root.OutPins,
		WantsMeters: root.WantsMeters,
		GfxWidth:    graph.Root.Unit.Sections.GfxWidth,
		GfxHeight:   graph.Root.Unit.Sections.GfxHeight,
		HasGfx:      graph.Root.Unit.Sections.HasGfx && !opts.NoGfx,
		Sliders:     table,
		Warnings:    root.Warnings,
	}
	return c.result, nil
}

// concatSection joins every import's body for sec (dependency-first) with
// the root's own body, separated by a blank line, matching the way
// pkg/parse.concatenable sections are joined within a single file.
func concatSection(graph *importgraph.Graph, sec parse.Section) string {
	var parts []string
	for _, imp := range graph.Imports {
		if body, ok := imp.Unit.Sections.Bodies[sec]; ok && body.Text != "" {
			parts = append(parts, body.Text)
		}
	}
	if body, ok := graph.Root.Unit.Sections.Bodies[sec]; ok && body.Text != "" {
		parts = append(parts, body.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Init runs @init once.
func (c *Compiler) Init() error {
	return c.eval.Init()
}

// RunSection runs one of the compiled sections, frames times where that is
// meaningful (currently only @sample, per pkg/evaluator/refvm's contract).
func (c *Compiler) RunSection(id evaluator.SectionID, frames int) error {
	return c.eval.RunSection(id, frames)
}

// ReadVar reads a VM variable by name.
func (c *Compiler) ReadVar(name string) (float64, bool) {
	return c.eval.ReadVar(name)
}

// FindVar reports whether name resolved to a VM variable.
func (c *Compiler) FindVar(name string) bool {
	return c.eval.FindVar(name)
}

// WriteVar writes a VM variable by name, used by the processing engine to
// push a slider's current value into its bound variable before running
// @slider.
func (c *Compiler) WriteVar(name string, v float64) bool {
	return c.eval.WriteVar(name, v)
}

// ReadVMem reads n values starting at addr from the evaluator's shared
// memory block.
func (c *Compiler) ReadVMem(addr, n int) ([]float64, error) {
	return c.eval.ReadVMem(addr, n)
}

// WriteVMem writes values into the evaluator's shared memory block starting
// at addr, used to restore a saved serialize blob before re-running
// @serialize.
func (c *Compiler) WriteVMem(addr int, values []float64) error {
	return c.eval.WriteVMem(addr, values)
}

// UsedMem returns the high-water mark of the evaluator's memory block.
func (c *Compiler) UsedMem() int {
	return c.eval.UsedMem()
}

// Result returns the last successful Compile's Result, or nil if the
// compiler hasn't compiled anything yet.
func (c *Compiler) Result() *Result {
	return c.result
}

// IsCompiled reports whether Compile has succeeded at least once.
func (c *Compiler) IsCompiled() bool {
	return c.compiled
}
