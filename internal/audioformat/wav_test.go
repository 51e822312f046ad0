package audioformat

import (
	"path/filepath"
	"testing"
)

func TestWAVHandlerCanHandleIsCaseInsensitiveByExtension(t *testing.T) {
	h := WAVHandler{}
	for _, path := range []string{"kick.wav", "KICK.WAV", "dir/sub/snare.Wav"} {
		if !h.CanHandle(path) {
			t.Fatalf("CanHandle(%q) = false, want true", path)
		}
	}
	for _, path := range []string{"kick.mp3", "kick", "kick.wav.txt"} {
		if h.CanHandle(path) {
			t.Fatalf("CanHandle(%q) = true, want false", path)
		}
	}
}

func TestWriteWAVThenOpenRoundTripsSampleCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	const sampleRate = 44100
	const channels = 2
	frames := 100
	samples := make([]float64, frames*channels)
	for i := range samples {
		samples[i] = 0.25
	}

	if err := WriteWAV(path, samples, sampleRate, channels); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	h := WAVHandler{}
	stream, err := h.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer stream.Close()

	gotRate, gotChannels, err := stream.Info()
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if gotRate != sampleRate {
		t.Fatalf("sample rate = %v, want %v", gotRate, sampleRate)
	}
	if gotChannels != channels {
		t.Fatalf("channels = %v, want %v", gotChannels, channels)
	}
	if got := stream.Avail(); got != int64(frames) {
		t.Fatalf("Avail() = %d, want %d", got, frames)
	}

	buf := [][]float32{make([]float32, frames), make([]float32, frames)}
	n, err := stream.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != frames {
		t.Fatalf("Read n = %d, want %d", n, frames)
	}
	for ch := 0; ch < channels; ch++ {
		for i := 0; i < frames; i++ {
			if diff := buf[ch][i] - 0.25; diff > 0.001 || diff < -0.001 {
				t.Fatalf("buf[%d][%d] = %v, want ~0.25", ch, i, buf[ch][i])
			}
		}
	}
	if stream.Avail() != 0 {
		t.Fatalf("Avail() after full read = %d, want 0", stream.Avail())
	}

	if err := stream.Rewind(); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if stream.Avail() != int64(frames) {
		t.Fatalf("Avail() after rewind = %d, want %d", stream.Avail(), frames)
	}
}
