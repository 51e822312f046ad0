// Package preprocess implements expansion of `<? ... ?>` macro blocks
// against a running key/value environment. The output always has exactly
// as many newlines as the input, and every diagnostic carries the
// original (pre-expansion) line number.
package preprocess

import (
	"strings"

	"github.com/audioscript/jsfxgo/pkg/jsfxerr"
)

// Preprocess expands every `<? ... ?>` block in src, in order, against a
// single shared environment (so a variable set in one block is visible to
// later blocks). file is used only to annotate diagnostics.
func Preprocess(file, src string) (string, error) {
	e := make(env)
	return preprocessWithEnv(file, src, e)
}

// PreprocessWithSeed is Preprocess but the caller supplies the initial
// environment (e.g. host-provided preprocessor variables).
func PreprocessWithSeed(file, src string, seed map[string]float64) (string, error) {
	e := make(env, len(seed))
	for k, v := range seed {
		e[strings.ToLower(k)] = v
	}
	return preprocessWithEnv(file, src, e)
}

func preprocessWithEnv(file, src string, e env) (string, error) {
	var out strings.Builder
	runes := []rune(src)
	line := 1
	i := 0
	for i < len(runes) {
		if runes[i] == '<' && i+1 < len(runes) && runes[i+1] == '?' {
			start := i
			startLine := line
			end := indexOf(runes, i+2, "?>")
			if end < 0 {
				return "", &jsfxerr.ParseError{File: file, Line: startLine, Message: "unterminated <? ... ?> block"}
			}
			block := string(runes[i+2 : end])
			spanText := string(runes[start : end+2])
			originalNewlines := strings.Count(spanText, "\n")

			result, err := run(e, block)
			if err != nil {
				ee, _ := err.(*evalError)
				offsetLine := startLine
				if ee != nil {
					offsetLine += strings.Count(block[:clamp(ee.offset, len(block))], "\n")
				}
				msg := err.Error()
				return "", &jsfxerr.ParseError{File: file, Line: offsetLine, Message: msg}
			}

			result = reconcileNewlines(result, originalNewlines)
			out.WriteString(result)

			line += originalNewlines
			i = end + 2
			continue
		}
		if runes[i] == '\n' {
			line++
		}
		out.WriteRune(runes[i])
		i++
	}
	return out.String(), nil
}

func clamp(offset, max int) int {
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

func indexOf(runes []rune, from int, needle string) int {
	nr := []rune(needle)
	for i := from; i+len(nr) <= len(runes); i++ {
		match := true
		for j := range nr {
			if runes[i+j] != nr[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// reconcileNewlines pads or trims trailing newlines in text so it contains
// exactly want newlines, preserving the preprocessor's newline-count
// invariant regardless of what the script printed. Surplus newlines that
// are not trailing are replaced with spaces, last first.
func reconcileNewlines(text string, want int) string {
	have := strings.Count(text, "\n")
	if have == want {
		return text
	}
	if have < want {
		return text + strings.Repeat("\n", want-have)
	}
	// Trim surplus trailing newlines.
	surplus := have - want
	for surplus > 0 && strings.HasSuffix(text, "\n") {
		text = text[:len(text)-1]
		surplus--
	}
	for surplus > 0 {
		i := strings.LastIndexByte(text, '\n')
		text = text[:i] + " " + text[i+1:]
		surplus--
	}
	return text
}
