// Package state implements the state codec: a value type pairing a sorted
// slider snapshot with the compiled VM's opaque serialize
// blob, plus save/load operations that move it in and out of a live
// Compiler+slider.Table pair. The on-wire shape (magic header, version,
// count-then-items) follows pkg/framework/state/manager.go's binary layout,
// generalized from a parameter registry to a slider table and adapted to
// carry the VM's serialize blob instead of a plugin-supplied custom-state
// callback.
package state

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/audioscript/jsfxgo/pkg/compile"
	"github.com/audioscript/jsfxgo/pkg/evaluator"
	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
	"github.com/audioscript/jsfxgo/pkg/slider"
)

const (
	magic          = "JSFXST"
	currentVersion = uint32(1)
)

// SliderValue is one (index, value) pair in a State's slider snapshot.
type SliderValue struct {
	Index int
	Value float64
}

// State is the deep-equal-comparable snapshot save_state/load_state move
// around: every existing slider's current value, in ascending index
// order, plus the VM's opaque serialize blob. The blob is never
// interpreted here, only captured and replayed.
type State struct {
	Sliders []SliderValue
	Blob    []byte
}

// Equal reports whether s and o hold the same ordered slider pairs and a
// byte-equal blob. Equality is deep.
func (s State) Equal(o State) bool {
	if len(s.Sliders) != len(o.Sliders) {
		return false
	}
	for i := range s.Sliders {
		if s.Sliders[i] != o.Sliders[i] {
			return false
		}
	}
	return bytes.Equal(s.Blob, o.Blob)
}

// Save implements save_state: visits every slider with Exists=true in
// ascending index order, then runs @serialize and captures its memory
// footprint as the opaque blob.
func Save(sliders *slider.Table, comp *compile.Compiler) (State, error) {
	var pairs []SliderValue
	all := sliders.All()
	for i, sl := range all {
		if sl != nil && sl.Exists {
			pairs = append(pairs, SliderValue{Index: i, Value: sl.Value()})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Index < pairs[j].Index })

	if err := comp.RunSection(evaluator.SectionSerialize, 1); err != nil {
		return State{}, err
	}
	blob, err := blobFromVMem(comp)
	if err != nil {
		return State{}, err
	}
	return State{Sliders: pairs, Blob: blob}, nil
}

// LoadState implements load_state: writes every pair whose index still
// exists in sliders, then feeds the blob into @serialize via
// LoadSerializedState. Indices that no longer exist are ignored.
func LoadState(sliders *slider.Table, comp *compile.Compiler, s State) error {
	for _, pair := range s.Sliders {
		sl, ok := sliders.ByIndex(pair.Index)
		if !ok {
			continue
		}
		sl.SetValue(pair.Value)
		if sl.Var != "" {
			comp.WriteVar(sl.Var, pair.Value)
		}
	}
	return LoadSerializedState(comp, s.Blob)
}

// LoadSerializedState loads only the blob, skipping every slider write,
// used by undo to avoid a parameter-write storm.
func LoadSerializedState(comp *compile.Compiler, blob []byte) error {
	values, err := blobToFloats(blob)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		if err := comp.WriteVMem(0, values); err != nil {
			return err
		}
	}
	return comp.RunSection(evaluator.SectionSerialize, 1)
}

// blobFromVMem snapshots the evaluator's used memory range as the opaque
// serialize blob. refvm has no file_var-style stream of its own, so this
// reference implementation treats the shared memory block itself as the
// state a @serialize section stages for persistence: every float64 word
// little-endian, one after another.
func blobFromVMem(comp *compile.Compiler) ([]byte, error) {
	n := comp.UsedMem()
	if n == 0 {
		return nil, nil
	}
	values, err := comp.ReadVMem(0, n)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, n*8)
	for _, v := range values {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf = append(buf, b[:]...)
	}
	return buf, nil
}

func blobToFloats(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, &jsfxerr.StateError{Message: "serialize blob length not a multiple of 8"}
	}
	values := make([]float64, len(blob)/8)
	for i := range values {
		bits := binary.LittleEndian.Uint64(blob[i*8 : i*8+8])
		values[i] = math.Float64frombits(bits)
	}
	return values, nil
}

// Encode writes s to w in the on-wire form: magic header, version, slider
// count, each (index uint32, value float64) pair, then a blob length and
// its bytes.
func Encode(w io.Writer, s State) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, currentVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Sliders))); err != nil {
		return err
	}
	for _, pair := range s.Sliders {
		if err := binary.Write(w, binary.LittleEndian, uint32(pair.Index)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, pair.Value); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Blob))); err != nil {
		return err
	}
	_, err := w.Write(s.Blob)
	return err
}

// Decode reads a State written by Encode. A version newer than this
// package understands is a StateError, not a panic.
func Decode(r io.Reader) (State, error) {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return State{}, &jsfxerr.StateError{Message: "truncated header: " + err.Error()}
	}
	if string(header) != magic {
		return State{}, &jsfxerr.StateError{Message: "bad magic header"}
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return State{}, &jsfxerr.StateError{Message: "truncated version: " + err.Error()}
	}
	if version > currentVersion {
		return State{}, &jsfxerr.StateError{Message: "state version newer than supported"}
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return State{}, &jsfxerr.StateError{Message: "truncated slider count: " + err.Error()}
	}

	pairs := make([]SliderValue, count)
	for i := range pairs {
		var idx uint32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return State{}, &jsfxerr.StateError{Message: "truncated slider index: " + err.Error()}
		}
		var value float64
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return State{}, &jsfxerr.StateError{Message: "truncated slider value: " + err.Error()}
		}
		pairs[i] = SliderValue{Index: int(idx), Value: value}
	}

	var blobLen uint32
	if err := binary.Read(r, binary.LittleEndian, &blobLen); err != nil {
		return State{}, &jsfxerr.StateError{Message: "truncated blob length: " + err.Error()}
	}
	blob := make([]byte, blobLen)
	if _, err := io.ReadFull(r, blob); err != nil {
		return State{}, &jsfxerr.StateError{Message: "truncated blob: " + err.Error()}
	}

	return State{Sliders: pairs, Blob: blob}, nil
}
