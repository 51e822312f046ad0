package parse

import (
	"strconv"
	"strings"

	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
	"github.com/audioscript/jsfxgo/pkg/pin"
)

// ConfigOption is one labeled value of a `config:` directive.
type ConfigOption struct {
	Value string
	Label string
}

// ConfigItem is one `config:<id> <name> <default> <v1[=label1]> ...` line.
type ConfigItem struct {
	ID      string
	Name    string
	Default string
	Options []ConfigOption
}

// FilenameEntry is one `filename:<n>,<path>` line.
type FilenameEntry struct {
	Index int
	Path  string
}

// Header is the fully parsed header metadata for one source.
type Header struct {
	Desc        string
	Author      string
	Tags        []string
	InPins      pin.List
	OutPins     pin.List
	Filenames   []FilenameEntry
	Imports     []string
	Options     map[string]string
	Configs     []ConfigItem
	Sliders     [256]Slider
	SliderExists [256]bool
	GfxWidth    int
	GfxHeight   int
	HasGfx      bool
	WantsMeters bool
	Warnings    []jsfxerr.Warning
}

var recognizedOptions = map[string]bool{
	"gfx_hz":      true,
	"no_meter":    true,
	"want_all_kb": true,
	"maxmem":      true,
}

// ParseHeader implements pass 2 of the parser: it walks the header lines in
// order, applying each directive's parsing rules in turn.
func ParseHeader(file string, sections Sections) (Header, error) {
	h := Header{Options: make(map[string]string), WantsMeters: true}
	h.GfxWidth, h.GfxHeight, h.HasGfx = sections.GfxWidth, sections.GfxHeight, sections.HasGfx

	var inBuilder, outBuilder pin.Builder
	descSet, authorSet, tagsSet := false, false, false

	lines := strings.Split(sections.Header, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case hasKey(trimmed, "desc"):
			if !descSet {
				h.Desc = valueOf(trimmed, "desc")
				descSet = true
			}
		case hasKey(trimmed, "author"):
			if !authorSet {
				h.Author = valueOf(trimmed, "author")
				authorSet = true
			}
		case hasKey(trimmed, "tags"):
			if !tagsSet {
				h.Tags = strings.Fields(valueOf(trimmed, "tags"))
				tagsSet = true
			}
		case hasKey(trimmed, "in_pin"):
			inBuilder.Add(valueOf(trimmed, "in_pin"))
		case hasKey(trimmed, "out_pin"):
			outBuilder.Add(valueOf(trimmed, "out_pin"))
		case hasKey(trimmed, "filename"):
			entry, ok := parseFilename(valueOf(trimmed, "filename"), len(h.Filenames))
			if ok {
				h.Filenames = append(h.Filenames, entry)
			} else {
				h.Warnings = append(h.Warnings, jsfxerr.Warning{File: file, Line: lineNo, Message: "out-of-order filename index, list truncated"})
			}
		case hasKey(trimmed, "import"):
			path := strings.TrimSpace(valueOf(trimmed, "import"))
			if path != "" {
				h.Imports = append(h.Imports, path)
			}
		case hasKey(trimmed, "options"):
			for k, v := range parseOptions(valueOf(trimmed, "options")) {
				if recognizedOptions[k] {
					h.Options[k] = v
					if k == "no_meter" {
						h.WantsMeters = false
					}
				} else {
					h.Warnings = append(h.Warnings, jsfxerr.Warning{File: file, Line: lineNo, Message: "unrecognized option: " + k})
				}
			}
		case hasKey(trimmed, "config"):
			item, ok := parseConfig(valueOf(trimmed, "config"))
			if ok {
				h.Configs = append(h.Configs, item)
			} else {
				h.Warnings = append(h.Warnings, jsfxerr.Warning{File: file, Line: lineNo, Message: "malformed config directive"})
			}
		default:
			if sl, ok := ParseSliderDirective(trimmed); ok {
				h.Sliders[sl.ID-1] = sl
				h.SliderExists[sl.ID-1] = true
			}
			// Any other header line (comments, blank directives) is
			// silently ignored, matching the original's permissive parser.
		}
	}

	if inBuilder.Len() == 0 && outBuilder.Len() == 0 {
		h.InPins, h.OutPins = pin.DefaultForSampleSection(sections.Has(SectionSample))
	} else {
		h.InPins = inBuilder.Build()
		h.OutPins = outBuilder.Build()
	}

	return h, nil
}

// hasKey reports whether line starts with "key:" or "key " (case-sensitive,
// matching the DSL's lowercase directive keywords).
func hasKey(line, key string) bool {
	if strings.HasPrefix(line, key+":") || strings.HasPrefix(line, key+" ") {
		return true
	}
	return false
}

func valueOf(line, key string) string {
	return strings.TrimSpace(line[len(key)+1:])
}

func parseFilename(value string, currentLen int) (FilenameEntry, bool) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return FilenameEntry{}, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n != currentLen {
		return FilenameEntry{}, false
	}
	return FilenameEntry{Index: n, Path: strings.TrimSpace(parts[1])}, true
}

func parseOptions(value string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Fields(value) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) == 2 {
			out[kv[0]] = kv[1]
		} else {
			out[kv[0]] = "1"
		}
	}
	return out
}

// parseConfig parses `<id> <name> <default> <v1[=label1]> <v2[=label2]> ...`.
// At least two value options are required; quoted labels may contain
// spaces; a trailing '=' with no label re-uses the value as the label.
func parseConfig(value string) (ConfigItem, bool) {
	toks := tokenizeConfig(value)
	if len(toks) < 5 {
		return ConfigItem{}, false
	}
	item := ConfigItem{ID: toks[0], Name: toks[1], Default: toks[2]}
	for _, tok := range toks[3:] {
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			item.Options = append(item.Options, ConfigOption{Value: tok, Label: tok})
			continue
		}
		val := tok[:eq]
		label := tok[eq+1:]
		if label == "" {
			label = val
		}
		item.Options = append(item.Options, ConfigOption{Value: val, Label: label})
	}
	if len(item.Options) < 2 {
		return ConfigItem{}, false
	}
	return item, true
}

// tokenizeConfig splits on whitespace but keeps double-quoted spans intact
// (quoted labels may contain spaces); an unmatched quote consumes to the
// end of the line, matching the parser's general permissiveness.
func tokenizeConfig(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
