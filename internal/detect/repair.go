package detect

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Textual repair heuristics for almost-JSON emitted by the AI providers.
// These are regex substitutions, not a grammar repair: they fix the
// handful of syntax slips observed in practice (dangling colons, trailing
// commas, bare keys, truncated output) and nothing more.
var (
	colonCommaRe    = regexp.MustCompile(`:\s*,`)
	colonCloseRe    = regexp.MustCompile(`:\s*([}\]])`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// Repair applies the substitutions in a fixed order and reports whether
// anything changed. Valid JSON is returned untouched: the substitutions
// can misfire on legal constructs (a comma inside a string value before a
// closing brace), so input that already decodes is never altered.
func Repair(s string) (string, bool) {
	if json.Valid([]byte(s)) {
		return s, false
	}

	repaired := colonCommaRe.ReplaceAllString(s, ": null,")
	repaired = colonCloseRe.ReplaceAllString(repaired, ": null$1")
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	repaired = bareKeyRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = closeOpenBrackets(repaired)

	if repaired == s {
		return s, false
	}
	return repaired, true
}

// closeOpenBrackets appends the closing characters missing from a
// truncated payload. Providers cut off mid-structure when they hit a
// token limit, so the unclosed scopes sit at the end of the text; a
// bracket stack (skipping string literals) yields the closers in the
// right order, innermost first.
func closeOpenBrackets(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}
