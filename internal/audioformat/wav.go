// Package audioformat implements the audio-format capability set: the
// dynamic dispatch boundary jsfxconfig.Configuration registers file
// handlers through, with a reference WAV implementation, plus an encoder
// helper for bouncing rendered audio to disk.
package audioformat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/audioscript/jsfxgo/pkg/jsfxconfig"
)

// WAVHandler is the reference jsfxconfig.AudioFormatHandler: any file
// whose extension is ".wav" (case-insensitive), decoded eagerly into an
// in-memory PCM buffer on Open.
type WAVHandler struct{}

// CanHandle reports whether path names a ".wav" file by extension.
func (WAVHandler) CanHandle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// Open decodes path's full PCM data and returns a stream positioned at
// its first frame.
func (WAVHandler) Open(path string) (jsfxconfig.AudioFormatStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("audioformat: %s is not a valid wav file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audioformat: decoding %s: %w", path, err)
	}
	f.Close()

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	return &wavStream{
		sampleRate: float64(buf.Format.SampleRate),
		channels:   channels,
		bitDepth:   buf.SourceBitDepth,
		buf:        buf,
	}, nil
}

type wavStream struct {
	sampleRate float64
	channels   int
	bitDepth   int
	buf        *audio.IntBuffer
	pos        int
}

func (s *wavStream) Info() (sampleRate float64, channels int, err error) {
	return s.sampleRate, s.channels, nil
}

func (s *wavStream) Avail() int64 {
	total := len(s.buf.Data) / s.channels
	remaining := int64(total - s.pos)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *wavStream) Rewind() error {
	s.pos = 0
	return nil
}

func (s *wavStream) Read(out [][]float32) (int, error) {
	if len(out) == 0 || len(out[0]) == 0 {
		return 0, nil
	}
	total := len(s.buf.Data) / s.channels
	frames := len(out[0])
	full := fullScale(s.bitDepth)

	n := 0
	for n < frames && s.pos < total {
		for ch := 0; ch < len(out); ch++ {
			var v int
			if ch < s.channels {
				v = s.buf.Data[s.pos*s.channels+ch]
			}
			out[ch][n] = float32(v) / full
		}
		s.pos++
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return n, nil
}

func (s *wavStream) Close() error { return nil }

func fullScale(bitDepth int) float32 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return float32(int64(1)<<uint(bitDepth-1)) - 1
}

// WriteWAV bounces interleaved float64 samples in [-1,1] to a 16-bit
// PCM wav file at sampleRate/channels.
func WriteWAV(path string, samples []float64, sampleRate, channels int) error {
	const bitDepth = 16
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	enc := wav.NewEncoder(out, sampleRate, bitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		out.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
