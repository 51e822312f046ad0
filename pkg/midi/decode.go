package midi

import (
	"fmt"
	"math"
)

// EventKind identifies a decoded MIDI message's type.
type EventKind uint8

const (
	KindNoteOff EventKind = iota
	KindNoteOn
	KindPolyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend
	KindSystemExclusive
	KindRealtime
	KindUnknown
)

// Event is a decoded MIDI message, carrying the fields common to every
// channel message plus a type-specific payload.
type Event struct {
	Kind    EventKind
	Channel uint8
	Offset  uint32

	Data1 uint8 // note/controller/program, meaning depends on Kind
	Data2 uint8 // velocity/value, meaning depends on Kind

	PitchBend int16  // set only when Kind == KindPitchBend, -8192..8191
	SysEx     []byte // set only when Kind == KindSystemExclusive
}

func (e Event) String() string {
	switch e.Kind {
	case KindNoteOn:
		return fmt.Sprintf("NoteOn{ch:%d note:%d vel:%d @%d}", e.Channel, e.Data1, e.Data2, e.Offset)
	case KindNoteOff:
		return fmt.Sprintf("NoteOff{ch:%d note:%d vel:%d @%d}", e.Channel, e.Data1, e.Data2, e.Offset)
	case KindControlChange:
		return fmt.Sprintf("CC{ch:%d ctrl:%d val:%d @%d}", e.Channel, e.Data1, e.Data2, e.Offset)
	case KindPitchBend:
		return fmt.Sprintf("PitchBend{ch:%d val:%d @%d}", e.Channel, e.PitchBend, e.Offset)
	case KindProgramChange:
		return fmt.Sprintf("ProgramChange{ch:%d prog:%d @%d}", e.Channel, e.Data1, e.Offset)
	case KindChannelPressure:
		return fmt.Sprintf("ChannelPressure{ch:%d pressure:%d @%d}", e.Channel, e.Data1, e.Offset)
	case KindPolyPressure:
		return fmt.Sprintf("PolyPressure{ch:%d note:%d pressure:%d @%d}", e.Channel, e.Data1, e.Data2, e.Offset)
	case KindSystemExclusive:
		return fmt.Sprintf("SysEx{%d bytes @%d}", len(e.SysEx), e.Offset)
	case KindRealtime:
		return fmt.Sprintf("Realtime{status:0x%02x @%d}", e.Data1, e.Offset)
	default:
		return fmt.Sprintf("Unknown{@%d}", e.Offset)
	}
}

// CC numbers a DSL script commonly branches on.
const (
	CCModWheel     uint8 = 1
	CCVolume       uint8 = 7
	CCPan          uint8 = 10
	CCExpression   uint8 = 11
	CCSustain      uint8 = 64
	CCAllSoundOff  uint8 = 120
	CCResetAll     uint8 = 121
	CCLocalControl uint8 = 122
	CCAllNotesOff  uint8 = 123
)

// DecodeEvent parses a raw MIDI byte string into a structured Event.
// Reports ok=false for a zero-length or unrecognized message rather than
// erroring; a byte string the bus doesn't understand still passes through.
func DecodeEvent(bytes []byte, offset uint32) (Event, bool) {
	if len(bytes) == 0 {
		return Event{}, false
	}
	status := bytes[0]
	if status >= 0xF8 {
		return Event{Kind: KindRealtime, Data1: status, Offset: offset}, true
	}
	if status == 0xF0 {
		return Event{Kind: KindSystemExclusive, SysEx: append([]byte(nil), bytes...), Offset: offset}, true
	}
	if status < 0x80 {
		return Event{}, false
	}
	channel := status & 0x0F
	base := Event{Channel: channel, Offset: offset}

	switch status & 0xF0 {
	case 0x80:
		return withData(base, KindNoteOff, bytes), true
	case 0x90:
		ev := withData(base, KindNoteOn, bytes)
		if ev.Data2 == 0 {
			ev.Kind = KindNoteOff // velocity-0 note-on is a note-off (MIDI convention)
		}
		return ev, true
	case 0xA0:
		return withData(base, KindPolyPressure, bytes), true
	case 0xB0:
		return withData(base, KindControlChange, bytes), true
	case 0xC0:
		base.Kind = KindProgramChange
		if len(bytes) > 1 {
			base.Data1 = bytes[1]
		}
		return base, true
	case 0xD0:
		base.Kind = KindChannelPressure
		if len(bytes) > 1 {
			base.Data1 = bytes[1]
		}
		return base, true
	case 0xE0:
		base.Kind = KindPitchBend
		if len(bytes) > 2 {
			raw := int16(bytes[1]) | int16(bytes[2])<<7
			base.PitchBend = raw - 8192
		}
		return base, true
	default:
		return Event{}, false
	}
}

func withData(base Event, kind EventKind, bytes []byte) Event {
	base.Kind = kind
	if len(bytes) > 1 {
		base.Data1 = bytes[1]
	}
	if len(bytes) > 2 {
		base.Data2 = bytes[2]
	}
	return base
}

// NoteToFrequency converts a MIDI note number to Hz given a tuning
// reference for A4 (440 if 0 is passed).
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Pow(2, (float64(note)-69.0)/12.0)
}

// FrequencyToNote is NoteToFrequency's inverse, rounded and clamped to the
// valid MIDI note range.
func FrequencyToNote(freq, tuningA4 float64) uint8 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	note := 69.0 + 12.0*math.Log2(freq/tuningA4)
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return uint8(note + 0.5)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteNumberToName renders a MIDI note number as e.g. "A4".
func NoteNumberToName(note uint8) string {
	octave := int(note/12) - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}
