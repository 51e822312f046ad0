package compile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioscript/jsfxgo/pkg/evaluator"
	"github.com/audioscript/jsfxgo/pkg/evaluator/refvm"
	"github.com/audioscript/jsfxgo/pkg/importgraph"
	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
	"github.com/audioscript/jsfxgo/pkg/mask"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadGraph(t *testing.T, dir, root string) *importgraph.Graph {
	t.Helper()
	cfg := jsfxconfig.New()
	cfg.SetImportRoot(dir)
	g, err := importgraph.Load(cfg, root)
	require.NoError(t, err)
	return g
}

func TestCompileBindsSliderVarAndRunsInit(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.jsfx", "slider1:fOo=1<1,3,0.1>Foo\n@init\nfoo=2;\n")
	g := loadGraph(t, dir, root)

	c := New(refvm.New(), &mask.Bus{})
	result, err := c.Compile(g, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Init())

	v, ok := c.ReadVar("fOo")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	sl, exists := result.Sliders.Get(1)
	require.True(t, exists)
	assert.True(t, sl.Exists)
	assert.Equal(t, "fOo", sl.Var)
}

func TestCompileBindsSliderVarNeverAssignedInCode(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.jsfx", "slider1:unused=1<0,1>Unused\n@init\nx=1;\n")
	g := loadGraph(t, dir, root)

	c := New(refvm.New(), &mask.Bus{})
	result, err := c.Compile(g, Options{})
	require.NoError(t, err)

	sl, exists := result.Sliders.Get(1)
	require.NotNil(t, sl)
	assert.True(t, exists, "a declared slider var resolves even when no section assigns it")
	assert.True(t, sl.Exists)
}

func TestCompileConcatenatesImportedInitBeforeRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.jsfx-inc", "desc:lib\n@init\nbase=10;\n")
	root := writeFile(t, dir, "main.jsfx", "import:lib.jsfx-inc\n@init\ntotal=base+1;\n")
	g := loadGraph(t, dir, root)

	c := New(refvm.New(), &mask.Bus{})
	_, err := c.Compile(g, Options{})
	require.NoError(t, err)
	require.NoError(t, c.Init())

	v, ok := c.ReadVar("total")
	require.True(t, ok)
	assert.Equal(t, 11.0, v)
}

func TestCompileNoSerializeOmitsSerializeSection(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.jsfx", "@serialize\ny=1;\n@init\nx=1;\n")
	g := loadGraph(t, dir, root)

	c := New(refvm.New(), &mask.Bus{})
	_, err := c.Compile(g, Options{NoSerialize: true})
	require.NoError(t, err)
	require.NoError(t, c.Init())

	require.NoError(t, c.RunSection(evaluator.SectionSerialize, 1))
	_, ok := c.ReadVar("y")
	assert.False(t, ok, "serialize section body must not have run when NoSerialize is set")
}

func TestCompileSliderShowUpdatesMaskBus(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.jsfx", "@block\nslider_show(1,0);\n@init\nx=1;\n")
	g := loadGraph(t, dir, root)

	bus := &mask.Bus{}
	bus.SetVisibleWord(0, 0b1)
	c := New(refvm.New(), bus)
	_, err := c.Compile(g, Options{})
	require.NoError(t, err)
	require.NoError(t, c.RunSection(evaluator.SectionBlock, 1))

	assert.False(t, bus.Visible(0))
}
