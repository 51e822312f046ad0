package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSectionsBasic(t *testing.T) {
	src := "desc:Test\n@init\nx=1;\n@sample\nspl0=spl0;\n"
	s, err := SplitSections("t.jsfx", src)
	require.NoError(t, err)
	assert.Equal(t, "desc:Test", s.Header)
	assert.True(t, s.Has(SectionInit))
	assert.True(t, s.Has(SectionSample))
	assert.Equal(t, "x=1;", s.Bodies[SectionInit].Text)
}

func TestSplitSectionsUnknownDirective(t *testing.T) {
	_, err := SplitSections("t.jsfx", "desc:x\n@bogus\nfoo\n")
	require.Error(t, err)
}

func TestSplitSectionsInitConcatenates(t *testing.T) {
	src := "@init\na=1;\n@block\nb=1;\n@init\nc=1;\n"
	s, err := SplitSections("t.jsfx", src)
	require.NoError(t, err)
	assert.Equal(t, "a=1;\n\nc=1;", s.Bodies[SectionInit].Text)
}

func TestSplitSectionsDuplicateSampleIsError(t *testing.T) {
	src := "@sample\na=1;\n@sample\nb=1;\n"
	_, err := SplitSections("t.jsfx", src)
	require.Error(t, err)
}

func TestSplitSectionsGfxDims(t *testing.T) {
	s, err := SplitSections("t.jsfx", "@gfx 400 300\n")
	require.NoError(t, err)
	assert.True(t, s.HasGfx)
	assert.Equal(t, 400, s.GfxWidth)
	assert.Equal(t, 300, s.GfxHeight)
}

func TestSplitSectionsGfxGarbageDims(t *testing.T) {
	s, err := SplitSections("t.jsfx", "@gfx banana pudding\n")
	require.NoError(t, err)
	assert.Equal(t, 0, s.GfxWidth)
	assert.Equal(t, 0, s.GfxHeight)
}

func TestSplitSectionsGfxNoDims(t *testing.T) {
	s, err := SplitSections("t.jsfx", "@gfx\n")
	require.NoError(t, err)
	assert.Equal(t, 0, s.GfxWidth)
	assert.Equal(t, 0, s.GfxHeight)
}
