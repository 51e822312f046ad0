// Package timeinfo holds the host transport snapshot the processing
// engine refreshes once per block.
package timeinfo

// PlayState is the host transport's playback state.
type PlayState int

const (
	PlayStateError PlayState = iota
	PlayStatePlaying
	PlayStatePaused
	PlayStateRecording
	PlayStateRecordingPaused
)

func (s PlayState) String() string {
	switch s {
	case PlayStatePlaying:
		return "playing"
	case PlayStatePaused:
		return "paused"
	case PlayStateRecording:
		return "recording"
	case PlayStateRecordingPaused:
		return "recording_paused"
	default:
		return "error"
	}
}

// TimeSignature is a musical time signature, e.g. 4/4.
type TimeSignature struct {
	Num int
	Den int
}

// TimeInfo is the host transport snapshot exposed to the DSL and the
// processing engine: tempo, playback state, position in seconds and in
// quarter-note beats, and the current time signature.
type TimeInfo struct {
	Tempo         float64
	State         PlayState
	TimeSeconds   float64
	TimeBeats     float64
	TimeSignature TimeSignature
}

// Default returns a TimeInfo matching a freshly loaded, stopped host: 120
// BPM, 4/4, at the transport origin.
func Default() TimeInfo {
	return TimeInfo{
		Tempo:         120,
		State:         PlayStatePaused,
		TimeSignature: TimeSignature{Num: 4, Den: 4},
	}
}

// BeatsToSeconds converts a beat position to seconds at this TimeInfo's
// current tempo.
func (t TimeInfo) BeatsToSeconds(beats float64) float64 {
	if t.Tempo <= 0 {
		return 0
	}
	return beats * 60.0 / t.Tempo
}

// SecondsToBeats is BeatsToSeconds's inverse.
func (t TimeInfo) SecondsToBeats(seconds float64) float64 {
	return seconds * t.Tempo / 60.0
}
