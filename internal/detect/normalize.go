package detect

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/juergenlandauer/landtalk/internal/model"
)

// wrapperKeys are the top-level object keys some providers nest their
// detection list under, checked in priority order.
var wrapperKeys = []string{"objects", "detections", "features", "results"}

// unwrapItems flattens the decoded payload into a list of candidate
// records: a list is used as-is, a wrapper object yields its nested list,
// any other object is treated as a single detection.
func unwrapItems(payload any) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range wrapperKeys {
			if nested, ok := v[key]; ok {
				if list, ok := nested.([]any); ok {
					return list
				}
			}
		}
		return []any{v}
	}
	return nil
}

// extractGeometry resolves a record's geometry, preferring a 4-element
// bounding box over a 2-element point, with a final attempt to synthesize
// a box from four separate scalar fields (x/y/width/height or
// xmin/ymin/xmax/ymax). Exactly one of the results is non-nil on success.
func extractGeometry(rec map[string]any) (*model.BBox, *model.Point) {
	if v, ok := fieldValue(rec, bboxAliases); ok {
		if vals, ok := floatList(v, 4); ok {
			return &model.BBox{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
		}
	}
	if v, ok := fieldValue(rec, pointAliases); ok {
		if vals, ok := floatList(v, 2); ok {
			return nil, &model.Point{X: vals[0], Y: vals[1]}
		}
	}
	if vals, ok := scalarFields(rec, xywhAliases); ok {
		return &model.BBox{XMin: vals[0], YMin: vals[1], XMax: vals[0] + vals[2], YMax: vals[1] + vals[3]}, nil
	}
	if vals, ok := scalarFields(rec, cornAliases); ok {
		return &model.BBox{XMin: vals[0], YMin: vals[1], XMax: vals[2], YMax: vals[3]}, nil
	}
	return nil, nil
}

func scalarFields(rec map[string]any, names [4]string) ([4]float64, bool) {
	var out [4]float64
	for i, name := range names {
		v, ok := fieldValue(rec, []string{name})
		if !ok {
			return out, false
		}
		f, ok := floatValue(v)
		if !ok {
			return out, false
		}
		out[i] = f
	}
	return out, true
}

// hasDetectionFields reports whether a record at least names a label and
// a geometry. This is a key-presence check, deliberately weaker than the
// value checks in Normalize: a record with "label": null passes here and
// is then counted as skipped_missing during normalization, so a
// successful repair never bypasses schema validation.
func hasDetectionFields(rec map[string]any) bool {
	if _, ok := fieldValue(rec, labelAliases); !ok {
		return false
	}
	if _, ok := fieldValue(rec, bboxAliases); ok {
		return true
	}
	if _, ok := fieldValue(rec, pointAliases); ok {
		return true
	}
	for _, names := range [][4]string{xywhAliases, cornAliases} {
		present := true
		for _, name := range names {
			if _, ok := fieldValue(rec, []string{name}); !ok {
				present = false
				break
			}
		}
		if present {
			return true
		}
	}
	return false
}

// validShape reports whether a decoded value is plausibly detection
// output: a non-empty list of detection-shaped records, a wrapper object
// holding one, or a single such record. The locator uses this to reject
// coincidental JSON-looking fragments embedded in prose (a stray "{}",
// a quoted config snippet).
func validShape(v any) bool {
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return false
		}
		for _, item := range val {
			rec, ok := item.(map[string]any)
			if !ok {
				return false
			}
			if !hasDetectionFields(rec) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, key := range wrapperKeys {
			if nested, ok := val[key]; ok {
				return validShape(nested)
			}
		}
		return hasDetectionFields(val)
	}
	return false
}

// Normalize converts one decoded AI payload into canonical detections,
// applying the confidence threshold (0-100). Result numbers are 1-based
// input positions and are never renumbered after skips, so surviving
// detections stay traceable to the provider's original output.
//
// A record whose confidence value fails to parse is kept without a
// probability — unknown confidence is not zero confidence.
func Normalize(payload any, threshold float64, log zerolog.Logger) ([]model.Detection, model.Stats) {
	items := unwrapItems(payload)
	stats := model.Stats{Total: len(items)}
	var out []model.Detection

	for i, item := range items {
		n := i + 1

		rec, ok := item.(map[string]any)
		if !ok {
			log.Warn().Int("item", n).Msg("skipping item: not an object")
			stats.SkippedMissing++
			continue
		}

		objectType, hasLabel := stringField(rec, labelAliases)
		bbox, point := extractGeometry(rec)
		if !hasLabel || (bbox == nil && point == nil) {
			log.Warn().Int("item", n).Str("object_type", objectType).
				Msg("skipping item: missing object type or geometry")
			stats.SkippedMissing++
			continue
		}

		var prob *float64
		if v, found := fieldValue(rec, probAliases); found {
			if p, ok := ParseProbability(v); ok {
				prob = &p
			} else {
				log.Warn().Int("item", n).Interface("value", v).
					Msg("unparseable confidence value, keeping detection")
			}
		}

		if prob != nil && *prob < threshold {
			log.Debug().Int("item", n).Str("object_type", objectType).
				Float64("confidence", *prob).Float64("threshold", threshold).
				Msg("skipping item: below confidence threshold")
			stats.SkippedConfidence++
			continue
		}

		label := fmt.Sprintf("(%d) %s", n, objectType)
		if prob != nil {
			label = fmt.Sprintf("(%d) %s (%.0f%%)", n, objectType, *prob)
		}

		reason, _ := stringField(rec, reasonAliases)

		out = append(out, model.Detection{
			Label:        label,
			ObjectType:   objectType,
			Probability:  prob,
			ResultNumber: n,
			Reason:       reason,
			BBox:         bbox,
			Point:        point,
		})
		stats.Processed++
	}

	log.Info().Int("total", stats.Total).Int("processed", stats.Processed).
		Int("skipped_confidence", stats.SkippedConfidence).
		Int("skipped_missing", stats.SkippedMissing).
		Msg("normalized detections")

	return out, stats
}
