package detect

import (
	"fmt"
	"strconv"
	"strings"
)

// Field alias table. The providers disagree on field names, casing and
// spacing, so every logical field is resolved through one ordered alias
// list shared by all call sites.
var (
	labelAliases  = []string{"label", "object_type", "object type", "objectType"}
	bboxAliases   = []string{"box_2d", "box2d", "bounding_box", "bounding box", "bbox"}
	pointAliases  = []string{"point", "points", "coordinates"}
	probAliases   = []string{"probability", "confidence", "confidence_score", "confidence score", "prob", "score"}
	reasonAliases = []string{"reason", "explanation", "description"}

	xywhAliases = [4]string{"x", "y", "width", "height"}
	cornAliases = [4]string{"xmin", "ymin", "xmax", "ymax"}
)

// fieldValue returns the value of the first alias present in the record.
// Keys are matched case-insensitively: the record's keys are indexed by
// their lowercase form once, then each alias is tried in order.
func fieldValue(rec map[string]any, aliases []string) (any, bool) {
	if len(rec) == 0 {
		return nil, false
	}
	lower := make(map[string]string, len(rec))
	for k := range rec {
		lower[strings.ToLower(k)] = k
	}
	for _, alias := range aliases {
		if actual, ok := lower[strings.ToLower(alias)]; ok {
			return rec[actual], true
		}
	}
	return nil, false
}

// ParseProbability normalizes a confidence value to the 0-100 scale.
// Numbers are taken directly, strings may carry a trailing percent sign.
// A value at or below 1.0 is read as a fraction and scaled to a
// percentage. Anything unparseable yields ok=false — absence, not an
// error; the caller decides how to treat a missing confidence.
func ParseProbability(v any) (float64, bool) {
	var p float64
	switch val := v.(type) {
	case float64:
		p = val
	case int:
		p = float64(val)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		p = f
	default:
		return 0, false
	}
	if p <= 1.0 {
		p *= 100
	}
	return p, true
}

// stringField resolves an alias set to a non-empty string. Non-string
// scalars are stringified the way the providers intend them (a numeric
// label is still a label).
func stringField(rec map[string]any, aliases []string) (string, bool) {
	v, ok := fieldValue(rec, aliases)
	if !ok || v == nil {
		return "", false
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		s = fmt.Sprint(val)
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// floatValue coerces a decoded JSON scalar to float64.
func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	}
	return 0, false
}

// floatList coerces a decoded JSON array to a slice of floats, requiring
// at least n numeric elements and returning exactly the first n.
func floatList(v any, n int) ([]float64, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, ok := floatValue(arr[i])
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
