package timeinfo

import "testing"

func TestDefaultIsStoppedAt120BPMCommonTime(t *testing.T) {
	ti := Default()
	if ti.Tempo != 120 {
		t.Fatalf("Tempo = %v, want 120", ti.Tempo)
	}
	if ti.State != PlayStatePaused {
		t.Fatalf("State = %v, want paused", ti.State)
	}
	if ti.TimeSignature != (TimeSignature{Num: 4, Den: 4}) {
		t.Fatalf("TimeSignature = %+v, want 4/4", ti.TimeSignature)
	}
}

func TestBeatsSecondsRoundTrip(t *testing.T) {
	ti := TimeInfo{Tempo: 120}
	secs := ti.BeatsToSeconds(2)
	if secs != 1.0 {
		t.Fatalf("BeatsToSeconds(2) at 120bpm = %v, want 1.0", secs)
	}
	if got := ti.SecondsToBeats(secs); got != 2.0 {
		t.Fatalf("SecondsToBeats(%v) = %v, want 2.0", secs, got)
	}
}

func TestBeatsToSecondsGuardsZeroTempo(t *testing.T) {
	ti := TimeInfo{Tempo: 0}
	if got := ti.BeatsToSeconds(4); got != 0 {
		t.Fatalf("BeatsToSeconds with zero tempo = %v, want 0", got)
	}
}

func TestPlayStateString(t *testing.T) {
	cases := map[PlayState]string{
		PlayStateError:            "error",
		PlayStatePlaying:          "playing",
		PlayStatePaused:           "paused",
		PlayStateRecording:        "recording",
		PlayStateRecordingPaused:  "recording_paused",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", state, got, want)
		}
	}
}
