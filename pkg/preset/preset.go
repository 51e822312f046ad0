// Package preset implements the RPL bank codec: a recursive
// `<REAPER_PRESET_LIBRARY "name"> <PRESET "name" ...> ...>` token stream
// whose preset bodies are base64-encoded state blobs
// (pkg/state.Encode/Decode) wrapped across lines. Banks and presets are
// immutable values here: every mutating primitive returns a new bank rather
// than mutating its receiver, grounded on
// original_source/sources/ysfx_preset.cpp's add/delete/rename/exists shape,
// generalized from REAPER's own legacy slider-line blob format to this
// module's own pkg/state wire format (the blob only needs to round-trip
// through this package, not through REAPER itself).
package preset

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
	"github.com/audioscript/jsfxgo/pkg/state"
)

const wrapWidth = 128

// Preset is one named state snapshot inside a Bank.
type Preset struct {
	Name  string
	State state.State
}

// Bank is an immutable ordered set of presets under a library name. Every
// mutating primitive in this package returns a new Bank rather than
// mutating the receiver.
type Bank struct {
	Name    string
	Presets []Preset
}

// CreateEmptyBank returns a new, preset-less bank named name.
func CreateEmptyBank(name string) Bank {
	return Bank{Name: name}
}

// PresetExists reports whether name is present in bank, returning 0 if not
// found or index+1 if found.
func PresetExists(bank Bank, name string) int {
	for i, p := range bank.Presets {
		if p.Name == name {
			return i + 1
		}
	}
	return 0
}

// AddPreset returns a new bank with name/st installed: replacing by index
// if name is already present, otherwise appended, matching the
// index-preserving replace behavior original_source/sources/ysfx_preset.cpp
// implements in ysfx_add_preset_to_bank.
func AddPreset(bank Bank, name string, st state.State) Bank {
	out := Bank{Name: bank.Name, Presets: make([]Preset, len(bank.Presets))}
	copy(out.Presets, bank.Presets)

	if idx := PresetExists(bank, name); idx > 0 {
		out.Presets[idx-1] = Preset{Name: name, State: st}
	} else {
		out.Presets = append(out.Presets, Preset{Name: name, State: st})
	}
	return out
}

// RenamePreset returns a new bank with the preset named from renamed to
// to. A name miss is a no-op: the returned bank is a copy of bank
// unchanged.
func RenamePreset(bank Bank, from, to string) Bank {
	out := Bank{Name: bank.Name, Presets: make([]Preset, len(bank.Presets))}
	copy(out.Presets, bank.Presets)

	if idx := PresetExists(bank, from); idx > 0 {
		out.Presets[idx-1].Name = to
	}
	return out
}

// DeletePreset returns a new bank without the preset named name. A name
// miss is a no-op.
func DeletePreset(bank Bank, name string) Bank {
	idx := PresetExists(bank, name)
	if idx == 0 {
		out := Bank{Name: bank.Name, Presets: make([]Preset, len(bank.Presets))}
		copy(out.Presets, bank.Presets)
		return out
	}
	out := Bank{Name: bank.Name, Presets: make([]Preset, 0, len(bank.Presets)-1)}
	for i, p := range bank.Presets {
		if i != idx-1 {
			out.Presets = append(out.Presets, p)
		}
	}
	return out
}

// Equal reports whether b and o hold the same bank name and the same
// ordered (name, state) preset pairs.
func (b Bank) Equal(o Bank) bool {
	if b.Name != o.Name || len(b.Presets) != len(o.Presets) {
		return false
	}
	for i := range b.Presets {
		if b.Presets[i].Name != o.Presets[i].Name {
			return false
		}
		if !b.Presets[i].State.Equal(o.Presets[i].State) {
			return false
		}
	}
	return true
}

// Save renders bank as RPL text.
func Save(bank Bank) (string, error) {
	var b strings.Builder
	b.WriteString("<REAPER_PRESET_LIBRARY ")
	b.WriteString(quote(bank.Name))
	b.WriteByte('\n')

	for _, p := range bank.Presets {
		var buf bytes.Buffer
		if err := state.Encode(&buf, p.State); err != nil {
			return "", jsfxerr.NewBankError("encoding preset state", err)
		}
		b.WriteString("  <PRESET ")
		b.WriteString(quote(p.Name))
		b.WriteByte('\n')
		b.WriteString(wrapBase64(buf.Bytes()))
		b.WriteString("  >\n")
	}

	b.WriteString(">\n")
	return b.String(), nil
}

// Load parses RPL text into a Bank. Load(Save(bank)) reproduces an
// equivalent bank.
func Load(text string) (Bank, error) {
	toks := tokenize(text)
	pos := 0

	next := func() (string, bool) {
		if pos >= len(toks) {
			return "", false
		}
		t := toks[pos]
		pos++
		return t, true
	}

	tok, ok := next()
	if !ok || tok != "<REAPER_PRESET_LIBRARY" {
		return Bank{}, jsfxerr.NewBankError("missing REAPER_PRESET_LIBRARY header", nil)
	}
	name, ok := next()
	if !ok {
		return Bank{}, jsfxerr.NewBankError("missing bank name", nil)
	}
	bank := Bank{Name: unquote(name)}

	for {
		tok, ok = next()
		if !ok {
			return Bank{}, jsfxerr.NewBankError("unterminated REAPER_PRESET_LIBRARY block", nil)
		}
		if tok == ">" {
			break
		}
		if tok != "<PRESET" {
			return Bank{}, jsfxerr.NewBankError("expected <PRESET, got "+tok, nil)
		}
		presetName, ok := next()
		if !ok {
			return Bank{}, jsfxerr.NewBankError("missing preset name", nil)
		}

		var b64 strings.Builder
		for {
			part, ok := next()
			if !ok {
				return Bank{}, jsfxerr.NewBankError("unterminated PRESET block", nil)
			}
			if part == ">" {
				break
			}
			b64.WriteString(part)
		}

		blob, err := base64.StdEncoding.DecodeString(b64.String())
		if err != nil {
			return Bank{}, jsfxerr.NewBankError("invalid base64 preset payload", err)
		}
		st, err := state.Decode(bytes.NewReader(blob))
		if err != nil {
			return Bank{}, jsfxerr.NewBankError("invalid preset state blob", err)
		}
		bank.Presets = append(bank.Presets, Preset{Name: unquote(presetName), State: st})
	}

	return bank, nil
}

func wrapBase64(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b strings.Builder
	for i := 0; i < len(encoded); i += wrapWidth {
		end := i + wrapWidth
		if end > len(encoded) {
			end = len(encoded)
		}
		b.WriteString("    ")
		b.WriteString(encoded[i:end])
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "'") + "\""
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// tokenize splits RPL text into whitespace-separated tokens, treating a
// quoted span (" or `) as a single token including its delimiters.
func tokenize(text string) []string {
	var toks []string
	i := 0
	n := len(text)
	for i < n {
		for i < n && isSpace(text[i]) {
			i++
		}
		if i >= n {
			break
		}
		if text[i] == '"' || text[i] == '`' {
			quoteChar := text[i]
			start := i
			i++
			for i < n && text[i] != quoteChar {
				i++
			}
			if i < n {
				i++
			}
			toks = append(toks, text[start:i])
			continue
		}
		start := i
		for i < n && !isSpace(text[i]) {
			i++
		}
		toks = append(toks, text[start:i])
	}
	return toks
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
