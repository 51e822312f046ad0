// Command jsfxrender is an offline bounce-to-wav tool: it loads an
// effect, feeds it an input wav file (or silence, for a generator-only
// effect) block by block, and writes the rendered output to a wav file
// through internal/audioformat.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/audioscript/jsfxgo/internal/audioformat"
	"github.com/audioscript/jsfxgo/pkg/compile"
	"github.com/audioscript/jsfxgo/pkg/diagnostics"
	"github.com/audioscript/jsfxgo/pkg/effect"
	"github.com/audioscript/jsfxgo/pkg/evaluator/refvm"
	"github.com/audioscript/jsfxgo/pkg/importgraph"
	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
	"github.com/audioscript/jsfxgo/pkg/jsfxlog"
	"github.com/audioscript/jsfxgo/pkg/mask"
	"github.com/audioscript/jsfxgo/pkg/midi"
	"github.com/audioscript/jsfxgo/pkg/preset"
	"github.com/audioscript/jsfxgo/pkg/process"
	"github.com/audioscript/jsfxgo/pkg/timeinfo"
)

func main() {
	file := flag.String("file", "", "path to the .jsfx effect to render")
	inPath := flag.String("in", "", "input wav file (omit to render from silence)")
	outPath := flag.String("out", "", "output wav file path")
	sampleRate := flag.Int("samplerate", 44100, "sample rate to use when no -in file is given")
	channels := flag.Int("channels", 2, "channel count to use when no -in file is given")
	duration := flag.Float64("seconds", 5, "duration to render, in seconds, when no -in file is given")
	blockSize := flag.Int("blocksize", 512, "processing block size, in frames")
	flag.Parse()

	if *file == "" || *outPath == "" {
		log.Fatal("jsfxrender: -file and -out are required")
	}

	logger := jsfxlog.New(os.Stderr, "jsfxrender", jsfxlog.LevelInfo)

	cfg := jsfxconfig.New()
	cfg.SetImportRoot(filepath.Dir(*file))
	cfg.SetLogReporter(logger)
	cfg.RegisterAudioFormat(audioformat.WAVHandler{})
	defer cfg.Release()

	graph, err := importgraph.Load(cfg, *file)
	if err != nil {
		log.Fatalf("jsfxrender: load %s: %v", *file, err)
	}

	bus := &mask.Bus{}
	compiler := compile.New(refvm.New(), bus)
	result, err := compiler.Compile(graph, compile.Options{})
	if err != nil {
		log.Fatalf("jsfxrender: compile %s: %v", *file, err)
	}

	fx := effect.New(bus)
	fx.Install(effect.NoSuspend{}, &effect.Snapshot{
		Graph:    graph,
		Compiler: compiler,
		Result:   result,
		Bank:     preset.CreateEmptyBank(result.Desc),
	})

	sr := float64(*sampleRate)
	numChannels := *channels
	var inChannels [][]float64

	if *inPath != "" {
		handler := cfg.AudioFormatFor(*inPath)
		if handler == nil {
			log.Fatalf("jsfxrender: no audio format handler for %s", *inPath)
		}
		stream, err := handler.Open(*inPath)
		if err != nil {
			log.Fatalf("jsfxrender: open %s: %v", *inPath, err)
		}
		defer stream.Close()

		streamRate, streamChannels, err := stream.Info()
		if err != nil {
			log.Fatalf("jsfxrender: info %s: %v", *inPath, err)
		}
		sr = streamRate
		numChannels = streamChannels

		frames := stream.Avail()
		inChannels = make([][]float64, numChannels)
		for ch := range inChannels {
			inChannels[ch] = make([]float64, frames)
		}
		f32 := make([][]float32, numChannels)
		for ch := range f32 {
			f32[ch] = make([]float32, frames)
		}
		if _, err := stream.Read(f32); err != nil {
			log.Fatalf("jsfxrender: read %s: %v", *inPath, err)
		}
		for ch := range f32 {
			for i, v := range f32[ch] {
				inChannels[ch][i] = float64(v)
			}
		}
	} else {
		totalFrames := int(*duration * sr)
		inChannels = make([][]float64, numChannels)
		for ch := range inChannels {
			inChannels[ch] = make([]float64, totalFrames)
		}
	}

	totalFrames := 0
	if numChannels > 0 {
		totalFrames = len(inChannels[0])
	}

	outChannels := result.OutPins.ChannelCount()
	if outChannels == 0 {
		outChannels = numChannels
	}
	rendered := make([][]float64, outChannels)
	for ch := range rendered {
		rendered[ch] = make([]float64, totalFrames)
	}

	midiIn := midi.NewBus(midi.DefaultCapacity, false)
	midiOut := midi.NewBus(midi.DefaultCapacity, false)
	engine := process.NewEngine(compiler, bus, result.Sliders, midiIn, midiOut)
	engine.SetSampleRate(sr)
	engine.SetBlockSize(*blockSize)
	engine.RefreshTimeInfo(timeinfo.TimeInfo{State: timeinfo.PlayStatePlaying, TimeSignature: timeinfo.TimeSignature{Num: 4, Den: 4}, Tempo: 120})

	inBlock := make([][]float64, numChannels)
	outBlock := make([][]float64, outChannels)

	for pos := 0; pos < totalFrames; pos += *blockSize {
		n := *blockSize
		if pos+n > totalFrames {
			n = totalFrames - pos
		}
		for ch := range inBlock {
			inBlock[ch] = inChannels[ch][pos : pos+n]
		}
		for ch := range outBlock {
			outBlock[ch] = rendered[ch][pos : pos+n]
		}
		if _, err := engine.Process(inBlock, outBlock, nil); err != nil {
			log.Fatalf("jsfxrender: process at frame %d: %v", pos, err)
		}
	}

	interleaved := make([]float64, totalFrames*outChannels)
	for i := 0; i < totalFrames; i++ {
		for ch := 0; ch < outChannels; ch++ {
			interleaved[i*outChannels+ch] = rendered[ch][i]
		}
	}

	if err := audioformat.WriteWAV(*outPath, interleaved, int(sr), outChannels); err != nil {
		log.Fatalf("jsfxrender: write %s: %v", *outPath, err)
	}

	for ch, samples := range rendered {
		for _, issue := range diagnostics.CheckBuffer(samples, fmt.Sprintf("out ch%d", ch)) {
			logger.Logf(jsfxlog.LevelWarn, "%s", issue)
		}
	}

	logger.Logf(jsfxlog.LevelInfo, "rendered %d frames from %q to %s", totalFrames, result.Desc, *outPath)
}
