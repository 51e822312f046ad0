// Command jsfxhost is a demo real-time host: it loads one effect file,
// opens a portaudio duplex stream sized to the effect's declared pin
// count, and optionally drains a portmidi input device into the effect's
// MIDI bus each block.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gordonklaus/portaudio"
	"github.com/rakyll/portmidi"

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

	"github.com/audioscript/jsfxgo/internal/audioformat"
)

func main() {
	file := flag.String("file", "", "path to the .jsfx effect to host")
	importRoot := flag.String("importroot", "", "root directory for import: resolution (defaults to the effect's own directory)")
	sampleRate := flag.Float64("samplerate", 44100, "audio stream sample rate")
	blockSize := flag.Int("blocksize", 512, "audio stream block size, in frames")
	useMidi := flag.Bool("midi", false, "read the default portmidi input device into the effect's MIDI bus")
	flag.Parse()

	if *file == "" {
		log.Fatal("jsfxhost: -file is required")
	}

	logger := jsfxlog.New(os.Stderr, "jsfxhost", jsfxlog.LevelInfo)

	root := *importRoot
	if root == "" {
		root = filepath.Dir(*file)
	}

	cfg := jsfxconfig.New()
	cfg.SetImportRoot(root)
	cfg.SetLogReporter(logger)
	cfg.RegisterAudioFormat(audioformat.WAVHandler{})
	defer cfg.Release()

	graph, err := importgraph.Load(cfg, *file)
	if err != nil {
		logger.Logf(jsfxlog.LevelError, "load %s: %v", *file, err)
		os.Exit(1)
	}

	bus := &mask.Bus{}
	compiler := compile.New(refvm.New(), bus)
	result, err := compiler.Compile(graph, compile.Options{})
	if err != nil {
		logger.Logf(jsfxlog.LevelError, "compile %s: %v", *file, err)
		os.Exit(1)
	}
	for _, w := range result.Warnings {
		logger.Logf(jsfxlog.LevelWarn, "%s", w.String())
	}

	fx := effect.New(bus)
	fx.Install(effect.NoSuspend{}, &effect.Snapshot{
		Graph:    graph,
		Compiler: compiler,
		Result:   result,
		Bank:     preset.CreateEmptyBank(result.Desc),
	})

	midiIn := midi.NewBus(midi.DefaultCapacity, false)
	midiOut := midi.NewBus(midi.DefaultCapacity, false)
	engine := process.NewEngine(compiler, bus, result.Sliders, midiIn, midiOut)
	engine.SetSampleRate(*sampleRate)
	engine.SetBlockSize(*blockSize)

	inChannels := result.InPins.ChannelCount()
	outChannels := result.OutPins.ChannelCount()
	if outChannels == 0 {
		outChannels = 2
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Logf(jsfxlog.LevelError, "portaudio init: %v", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	var midiStream *portmidi.Stream
	if *useMidi {
		portmidi.Initialize()
		defer portmidi.Terminate()
		s, err := portmidi.NewInputStream(portmidi.DefaultInputDeviceID(), 1024)
		if err != nil {
			logger.Logf(jsfxlog.LevelWarn, "portmidi input unavailable: %v", err)
		} else {
			midiStream = s
			defer midiStream.Close()
		}
	}

	inBufs := make([][]float64, inChannels)
	outBufs := make([][]float64, outChannels)
	for ch := range inBufs {
		inBufs[ch] = make([]float64, *blockSize)
	}
	for ch := range outBufs {
		outBufs[ch] = make([]float64, *blockSize)
	}

	ti := timeinfo.Default()
	profiler := diagnostics.NewProcessProfiler(*sampleRate, *blockSize)
	var blocksProcessed uint64

	// in/out are interleaved sample buffers, matching portaudio's default
	// callback convention.
	callback := func(in, out []float32) {
		frames := *blockSize
		if inChannels > 0 {
			for i := 0; i < frames; i++ {
				for ch := 0; ch < inChannels; ch++ {
					inBufs[ch][i] = float64(in[i*inChannels+ch])
				}
			}
		}

		var events []midi.RawEvent
		if midiStream != nil {
			raw, err := midiStream.Read(1024)
			if err == nil {
				for _, ev := range raw {
					events = append(events, midi.RawEvent{
						Bytes: []byte{byte(ev.Status), byte(ev.Data1), byte(ev.Data2)},
					})
				}
			}
		}

		engine.RefreshTimeInfo(ti)
		var processErr error
		profiler.Time("Process", func() {
			_, processErr = engine.Process(inBufs, outBufs, events)
		})
		if processErr != nil {
			logger.Logf(jsfxlog.LevelError, "process: %v", processErr)
			return
		}

		for i := 0; i < frames; i++ {
			for ch := 0; ch < outChannels; ch++ {
				out[i*outChannels+ch] = float32(outBufs[ch][i])
			}
		}
		engine.DrainMidiOut()

		blocksProcessed++
		if blocksProcessed%256 == 0 {
			logger.Logf(jsfxlog.LevelDebug, "cpu load: %.2f%%", profiler.CPULoad())
		}
	}

	stream, err := portaudio.OpenDefaultStream(inChannels, outChannels, *sampleRate, *blockSize, callback)
	if err != nil {
		logger.Logf(jsfxlog.LevelError, "open audio stream: %v", err)
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Logf(jsfxlog.LevelError, "start audio stream: %v", err)
		os.Exit(1)
	}
	defer stream.Stop()

	logger.Logf(jsfxlog.LevelInfo, "hosting %s (%q by %q), %d in / %d out channels", *file, result.Desc, result.Author, inChannels, outChannels)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
