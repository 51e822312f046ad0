// Package parse splits a DSL source into header text plus the six named
// section bodies, and parses the header's directive lines and slider
// grammar.
package parse

import (
	"strings"

	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
)

// Section identifies one of the six `@name` bodies a source may declare.
type Section int

const (
	SectionInit Section = iota
	SectionSlider
	SectionBlock
	SectionSample
	SectionSerialize
	SectionGfx
)

var sectionNames = map[string]Section{
	"init":      SectionInit,
	"slider":    SectionSlider,
	"block":     SectionBlock,
	"sample":    SectionSample,
	"serialize": SectionSerialize,
	"gfx":       SectionGfx,
}

// concatenable sections may appear more than once in a source; their
// fragments are joined with a blank line between them, preserving line
// numbers. Only @init and @block do this; every other section is
// single-definition.
var concatenable = map[Section]bool{
	SectionInit:  true,
	SectionBlock: true,
}

// Body is one section's text plus the 1-based line number of its first
// line in the original source, for diagnostics.
type Body struct {
	Text       string
	LineOffset int
}

// Sections holds the header text and the parsed section bodies, plus any
// @gfx dimensions found on the `@gfx` directive line itself.
type Sections struct {
	Header     string
	HeaderLine int
	Bodies     map[Section]Body
	GfxWidth   int
	GfxHeight  int
	HasGfx     bool
}

// Has reports whether a section was declared at all (even if empty).
func (s Sections) Has(sec Section) bool {
	_, ok := s.Bodies[sec]
	return ok
}

// SplitSections implements pass 1 of the parser.
func SplitSections(file, src string) (Sections, error) {
	lines := strings.Split(src, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(src, "\n") {
		lines = lines[:len(lines)-1]
	}
	result := Sections{Bodies: make(map[Section]Body), HeaderLine: 1}

	var headerLines []string
	var currentSection Section
	inSection := false
	var currentLines []string
	currentStart := 0

	flush := func() {
		if !inSection {
			return
		}
		text := strings.Join(currentLines, "\n")
		if existing, ok := result.Bodies[currentSection]; ok {
			result.Bodies[currentSection] = Body{
				Text:       existing.Text + "\n\n" + text,
				LineOffset: existing.LineOffset,
			}
		} else {
			result.Bodies[currentSection] = Body{Text: text, LineOffset: currentStart}
		}
	}

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, "@") {
			name, rest := splitDirective(trimmed[1:])
			sec, ok := sectionNames[strings.ToLower(name)]
			if !ok {
				return Sections{}, &jsfxerr.UnknownSection{
					ParseError: jsfxerr.ParseError{File: file, Line: lineNo, Message: "unknown section @" + name},
					Section:    name,
				}
			}

			flush()
			if _, exists := result.Bodies[sec]; exists && !concatenable[sec] {
				return Sections{}, &jsfxerr.ParseError{File: file, Line: lineNo, Message: "section @" + name + " already defined"}
			}

			currentSection = sec
			inSection = true
			currentLines = nil
			currentStart = lineNo + 1

			if sec == SectionGfx {
				w, h := parseGfxDims(rest)
				result.GfxWidth, result.GfxHeight = w, h
				result.HasGfx = true
			}
			continue
		}

		if !inSection {
			headerLines = append(headerLines, line)
			continue
		}
		currentLines = append(currentLines, line)
	}
	flush()

	result.Header = strings.Join(headerLines, "\n")
	return result, nil
}

func splitDirective(afterAt string) (name, rest string) {
	i := strings.IndexAny(afterAt, " \t")
	if i < 0 {
		return afterAt, ""
	}
	return afterAt[:i], strings.TrimSpace(afterAt[i+1:])
}

// parseGfxDims parses up to two positive integers from an `@gfx` line's
// trailing text; anything else (missing, non-numeric, negative, extra
// tokens malformed) silently decays to 0 0.
func parseGfxDims(rest string) (int, int) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return 0, 0
	}
	w, ok1 := parsePositiveInt(fields[0])
	h, ok2 := parsePositiveInt(fields[1])
	if !ok1 || !ok2 {
		return 0, 0
	}
	return w, h
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}
