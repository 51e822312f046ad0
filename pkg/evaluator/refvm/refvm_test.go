package refvm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioscript/jsfxgo/pkg/evaluator"
)

type fakeCallbacks struct {
	changed    []int
	automated  []int
	shows      [][2]int
}

func (f *fakeCallbacks) SliderChanged(id int)         { f.changed = append(f.changed, id) }
func (f *fakeCallbacks) SliderAutomated(id int)       { f.automated = append(f.automated, id) }
func (f *fakeCallbacks) SliderShow(id int, mode int)  { f.shows = append(f.shows, [2]int{id, mode}) }

func TestVMAssignmentAndReadVar(t *testing.T) {
	vm := New()
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionInit: "x = 1 + 2 * 3;",
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, vm.Init())

	v, ok := vm.ReadVar("x")
	require.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestVMSliderAliasCaseInsensitive(t *testing.T) {
	vm := New()
	sliderVars := map[string]int{"fOo": 1}
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionInit: "foo=2;",
	}, sliderVars, nil)
	require.NoError(t, err)
	require.NoError(t, vm.Init())

	v, ok := vm.ReadVar("fOo")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestVMSliderShowNumericRef(t *testing.T) {
	vm := New()
	cb := &fakeCallbacks{}
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionBlock: "slider_show(1,0); slider_show(2,1); slider_show(3,-1);",
	}, nil, cb)
	require.NoError(t, err)
	require.NoError(t, vm.RunSection(evaluator.SectionBlock, 1))

	assert.Equal(t, [][2]int{{1, 0}, {2, 1}, {3, -1}}, cb.shows)
}

func TestVMSliderChangeByVarNameRef(t *testing.T) {
	vm := New()
	cb := &fakeCallbacks{}
	sliderVars := map[string]int{"slider1": 1, "slider2": 2}
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionBlock: "sliderchange(slider1); slider_automate(slider2);",
	}, sliderVars, cb)
	require.NoError(t, err)
	require.NoError(t, vm.RunSection(evaluator.SectionBlock, 1))

	assert.Equal(t, []int{1}, cb.changed)
	assert.Equal(t, []int{2}, cb.automated)
}

func TestVMSampleSectionRunsPerFrame(t *testing.T) {
	vm := New()
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionSample: "n = n + 1;",
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, vm.RunSection(evaluator.SectionSample, 4))

	v, ok := vm.ReadVar("n")
	require.True(t, ok)
	assert.Equal(t, 4.0, v)
}

func TestVMMemReadWriteTracksUsedMem(t *testing.T) {
	vm := New()
	err := vm.Compile(evaluator.CompileOptions{}, map[evaluator.SectionID]string{
		evaluator.SectionInit: "mem_write(10, 5); y = mem_read(10);",
	}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, vm.Init())

	v, ok := vm.ReadVar("y")
	require.True(t, ok)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 11, vm.UsedMem())
}

func TestVMFindVarAndUncompiledError(t *testing.T) {
	vm := New()
	assert.False(t, vm.FindVar("x"))
	err := vm.RunSection(evaluator.SectionInit, 1)
	assert.Error(t, err)
}
