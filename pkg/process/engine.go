// Package process implements the block-level processing engine: Process
// runs a single block in a fixed order: host parameter drain, MIDI in,
// compiled-section dispatch, and mask publication. Refreshing TimeInfo
// (RefreshTimeInfo) and draining MIDI out (DrainMidiOut) are separate
// calls that Process does not make.
package process

import (
	"math/bits"
	"strconv"

	"github.com/audioscript/jsfxgo/pkg/compile"
	"github.com/audioscript/jsfxgo/pkg/evaluator"
	"github.com/audioscript/jsfxgo/pkg/mask"
	"github.com/audioscript/jsfxgo/pkg/midi"
	"github.com/audioscript/jsfxgo/pkg/slider"
	"github.com/audioscript/jsfxgo/pkg/timeinfo"
)

// PublishedMasks is what a block's step 6 hands back to the message
// thread: the automation mask it drained (read-and-clear) and a snapshot
// of the touch mask, per group.
type PublishedMasks struct {
	Automation [mask.Groups]uint64
	Touch      [mask.Groups]uint64
}

// Engine drives one compiled effect's steady-state block loop. It owns no
// audio buffers itself; Process is handed the block's channel strips
// directly, a zero-allocation pattern generalized from a fixed
// stereo/mono shape to the DSL's arbitrary spl0..splN register convention.
type Engine struct {
	Compiler *compile.Compiler
	Bus      *mask.Bus
	Sliders  *slider.Table
	MidiIn   *midi.Bus
	MidiOut  *midi.Bus

	sampleRate    float64
	blockSize     int
	initPending   bool
	pdcDelay      int
	channelDelays []int
}

// NewEngine wires an already-compiled Compiler to its mask bus, slider
// table, and MIDI buses.
func NewEngine(compiler *compile.Compiler, bus *mask.Bus, sliders *slider.Table, midiIn, midiOut *midi.Bus) *Engine {
	return &Engine{Compiler: compiler, Bus: bus, Sliders: sliders, MidiIn: midiIn, MidiOut: midiOut, initPending: true}
}

// SetSampleRate updates the engine's sample rate, scheduling a fresh @init
// on the next Process call if it actually changed.
func (e *Engine) SetSampleRate(rate float64) {
	if rate != e.sampleRate {
		e.sampleRate = rate
		e.initPending = true
	}
}

// SetBlockSize updates the engine's block size, scheduling a fresh @init
// on the next Process call if it actually changed.
func (e *Engine) SetBlockSize(size int) {
	if size != e.blockSize {
		e.blockSize = size
		e.initPending = true
	}
}

// RequestReinit forces the next Process call to run @init regardless of
// sample-rate/block-size change; used after a structural reload (a fresh
// compile installed via the hot-swap protocol).
func (e *Engine) RequestReinit() {
	e.initPending = true
}

// SetLatency records the DSL-reported processing delay (pdc_delay) for the
// host to read back after a block.
func (e *Engine) SetLatency(samples int) {
	e.pdcDelay = samples
}

// Latency returns the last reported pdc_delay.
func (e *Engine) Latency() int {
	return e.pdcDelay
}

// Process runs one block: in and out are per-channel float64 slices of
// equal length (the block's frame count); inEvents are the host's MIDI
// input for this block, appended to MidiIn before @block/@sample run.
// It returns the automation/touch mask snapshot step 6 publishes.
func (e *Engine) Process(in, out [][]float64, inEvents []midi.RawEvent) (PublishedMasks, error) {
	frames := 0
	if len(in) > 0 {
		frames = len(in[0])
	} else if len(out) > 0 {
		frames = len(out[0])
	}

	anyChanged := e.drainHostChanges()

	for _, ev := range inEvents {
		e.MidiIn.Send(ev)
	}

	if e.initPending {
		if err := e.Compiler.Init(); err != nil {
			return PublishedMasks{}, err
		}
		e.initPending = false
	}

	if anyChanged {
		if err := e.Compiler.RunSection(evaluator.SectionSlider, 1); err != nil {
			return PublishedMasks{}, err
		}
	}

	if err := e.Compiler.RunSection(evaluator.SectionBlock, 1); err != nil {
		return PublishedMasks{}, err
	}

	numChannels := len(in)
	if len(out) < numChannels {
		numChannels = len(out)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			e.Compiler.WriteVar(splVar(ch), in[ch][i])
		}
		if err := e.Compiler.RunSection(evaluator.SectionSample, 1); err != nil {
			return PublishedMasks{}, err
		}
		for ch := 0; ch < numChannels; ch++ {
			if v, ok := e.Compiler.ReadVar(splVar(ch)); ok {
				out[ch][i] = v
			}
		}
	}

	return e.publish(), nil
}

// drainHostChanges implements step 1: exchange each group's host-changed
// mask to zero and push the affected sliders' curve-converted values into
// their bound VM variables. Returns whether anything changed at all, so
// the caller knows whether to run @slider.
func (e *Engine) drainHostChanges() bool {
	any := false
	for g := 0; g < mask.Groups; g++ {
		word := e.Bus.FetchChanged(g)
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			idx := bit + g*64
			word &^= 1 << uint(bit)

			sl, ok := e.Sliders.ByIndex(idx)
			if !ok {
				continue
			}
			dsl := sl.Curve.ToDSL(sl.HostNormalized())
			sl.SetValue(dsl)
			if sl.Var != "" {
				e.Compiler.WriteVar(sl.Var, dsl)
			}
			any = true
		}
	}
	return any
}

// RefreshTimeInfo implements step 2: pushing the host transport snapshot
// into the DSL's conventional built-in variable names.
func (e *Engine) RefreshTimeInfo(ti timeinfo.TimeInfo) {
	e.Compiler.WriteVar("play_state", float64(ti.State))
	e.Compiler.WriteVar("tempo", ti.Tempo)
	e.Compiler.WriteVar("beat_position", ti.TimeBeats)
	e.Compiler.WriteVar("play_position", ti.TimeSeconds)
	e.Compiler.WriteVar("ts_num", float64(ti.TimeSignature.Num))
	e.Compiler.WriteVar("ts_denom", float64(ti.TimeSignature.Den))
}

// DrainMidiOut implements step 5: pops every pending output event off
// MidiOut for the host to deliver.
func (e *Engine) DrainMidiOut() []midi.RawEvent {
	var out []midi.RawEvent
	for {
		ev, ok := e.MidiOut.Receive()
		if !ok {
			break
		}
		out = append(out, ev)
	}
	return out
}

// publish implements step 6: read-and-clear each group's automation mask
// and snapshot its touch mask.
func (e *Engine) publish() PublishedMasks {
	var p PublishedMasks
	for g := 0; g < mask.Groups; g++ {
		p.Automation[g] = e.Bus.FetchAutomation(g)
		p.Touch[g] = e.Bus.SnapshotTouch(g)
	}
	return p
}

func splVar(channel int) string {
	return "spl" + strconv.Itoa(channel)
}
