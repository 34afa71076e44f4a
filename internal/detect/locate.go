package detect

import (
	"encoding/json"
	"regexp"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

var excessNewlineRe = regexp.MustCompile(`\n{3,}`)

// Locate scans free-form AI response text for the first JSON object or
// array that decodes and passes the detection shape check. The scan
// starts a candidate at every '{' or '['; the end position expands right
// until a decode succeeds. If no end position works, the maximal
// substring from that start gets one tolerant pass (JSON5, then the
// textual repair heuristics) before the scan moves on. First validated
// match wins.
//
// On success, the returned cleaned text is the input with the JSON span
// removed and excess blank lines collapsed. On failure the input comes
// back unchanged with found=false — prose without detections is a normal
// response, not an error.
//
// Worst case is quadratic in the text length; responses are a few KB to
// tens of KB, so the scan stays well under a second.
func Locate(text string) (cleaned string, value any, found bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}

		for end := i + 1; end <= len(text); end++ {
			var v any
			if err := json.Unmarshal([]byte(text[i:end]), &v); err != nil {
				continue
			}
			if !validShape(v) {
				continue
			}
			return cleanRemainder(text, i, end), v, true
		}

		// Every end position failed; try the maximal substring once with
		// the tolerant decoders.
		if v, ok := tolerantDecode(text[i:]); ok && validShape(v) {
			return cleanRemainder(text, i, len(text)), v, true
		}
	}

	return text, nil, false
}

// tolerantDecode attempts a candidate that standard JSON rejected: first
// as JSON5 (handles unquoted keys, trailing commas, comments), then via
// the textual repair engine.
func tolerantDecode(candidate string) (any, bool) {
	var v any
	if err := json5.Unmarshal([]byte(candidate), &v); err == nil {
		return v, true
	}

	repaired, changed := Repair(candidate)
	if !changed {
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &v); err == nil {
		return v, true
	}
	return nil, false
}

// cleanRemainder removes the located JSON span from the text and tidies
// the leftover prose.
func cleanRemainder(text string, start, end int) string {
	cleaned := text[:start] + text[end:]
	cleaned = excessNewlineRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
