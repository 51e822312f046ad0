package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSplit(t *testing.T, src string) Sections {
	t.Helper()
	s, err := SplitSections("t.jsfx", src)
	require.NoError(t, err)
	return s
}

func TestParseHeaderBasicMetadata(t *testing.T) {
	src := "desc:My Effect\nauthor:Someone\ntags:distortion gain\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Equal(t, "My Effect", h.Desc)
	assert.Equal(t, "Someone", h.Author)
	assert.Equal(t, []string{"distortion", "gain"}, h.Tags)
}

func TestParseHeaderFirstDescWins(t *testing.T) {
	src := "desc:First\ndesc:Second\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Equal(t, "First", h.Desc)
}

func TestParseHeaderPins(t *testing.T) {
	src := "desc:x\nin_pin:Left\nin_pin:Right\nout_pin:Left\nout_pin:Right\n@sample\nspl0=spl0;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"Left", "Right"}, h.InPins.Names)
	assert.Equal(t, []string{"Left", "Right"}, h.OutPins.Names)
}

func TestParseHeaderDefaultPinsWithSample(t *testing.T) {
	src := "desc:x\n@sample\nspl0=spl0;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Equal(t, 2, h.InPins.ChannelCount())
	assert.Equal(t, 2, h.OutPins.ChannelCount())
}

func TestParseHeaderNonePinSentinel(t *testing.T) {
	src := "desc:x\nin_pin:none\n@sample\nspl0=spl0;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.True(t, h.InPins.NoChannels)
	assert.Equal(t, 0, h.InPins.ChannelCount())
}

func TestParseHeaderFilenamesInOrder(t *testing.T) {
	src := "desc:x\nfilename:0,kick.wav\nfilename:1,snare.wav\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	require.Len(t, h.Filenames, 2)
	assert.Equal(t, "kick.wav", h.Filenames[0].Path)
	assert.Equal(t, "snare.wav", h.Filenames[1].Path)
	assert.Empty(t, h.Warnings)
}

func TestParseHeaderFilenamesOutOfOrderWarns(t *testing.T) {
	src := "desc:x\nfilename:1,snare.wav\nfilename:0,kick.wav\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Len(t, h.Filenames, 1)
	assert.NotEmpty(t, h.Warnings)
}

func TestParseHeaderImports(t *testing.T) {
	src := "desc:x\nimport:lib/util.jsfx-inc\nimport:lib/other.jsfx-inc\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/util.jsfx-inc", "lib/other.jsfx-inc"}, h.Imports)
}

func TestParseHeaderOptionsRecognizedAndNoMeter(t *testing.T) {
	src := "desc:x\noptions:no_meter gfx_hz=30\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.False(t, h.WantsMeters)
	assert.Equal(t, "30", h.Options["gfx_hz"])
	assert.Empty(t, h.Warnings)
}

func TestParseHeaderUnrecognizedOptionWarns(t *testing.T) {
	src := "desc:x\noptions:bogus_flag\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.NotEmpty(t, h.Warnings)
	assert.NotContains(t, h.Options, "bogus_flag")
}

func TestParseHeaderDefaultWantsMeters(t *testing.T) {
	src := "desc:x\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.True(t, h.WantsMeters)
}

func TestParseHeaderConfigWithLabels(t *testing.T) {
	src := `desc:x
config:MODE Mode 0 0=Off 1=On
@init
x=1;
`
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	require.Len(t, h.Configs, 1)
	c := h.Configs[0]
	assert.Equal(t, "MODE", c.ID)
	assert.Equal(t, "Mode", c.Name)
	assert.Equal(t, "0", c.Default)
	require.Len(t, c.Options, 2)
	assert.Equal(t, "Off", c.Options[0].Label)
	assert.Equal(t, "On", c.Options[1].Label)
}

func TestParseHeaderConfigTrailingEqualsReusesValue(t *testing.T) {
	src := "desc:x\nconfig:M N 0 0= 1=\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	require.Len(t, h.Configs, 1)
	assert.Equal(t, "0", h.Configs[0].Options[0].Label)
	assert.Equal(t, "1", h.Configs[0].Options[1].Label)
}

func TestParseHeaderConfigTooFewOptionsWarns(t *testing.T) {
	src := "desc:x\nconfig:M N 0 0=Only\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.Empty(t, h.Configs)
	assert.NotEmpty(t, h.Warnings)
}

func TestParseHeaderSlidersPopulateExistsArray(t *testing.T) {
	src := "desc:x\nslider1:0.5<0,1,0.01>Gain\nslider3:0<0,1>Mix\n@init\nx=1;\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.True(t, h.SliderExists[0])
	assert.False(t, h.SliderExists[1])
	assert.True(t, h.SliderExists[2])
	assert.Equal(t, "Gain", h.Sliders[0].Desc)
}

func TestParseHeaderGfxDimsCarryThrough(t *testing.T) {
	src := "desc:x\n@gfx 200 100\n"
	h, err := ParseHeader("t.jsfx", mustSplit(t, src))
	require.NoError(t, err)
	assert.True(t, h.HasGfx)
	assert.Equal(t, 200, h.GfxWidth)
	assert.Equal(t, 100, h.GfxHeight)
}
