// Package pipeline drives one AI response through JSON location,
// schema normalization and geocoding.
package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/juergenlandauer/landtalk/internal/detect"
	"github.com/juergenlandauer/landtalk/internal/geocode"
	"github.com/juergenlandauer/landtalk/internal/model"
)

// State names the stages of one AI exchange.
type State string

const (
	StateExtracting  State = "extracting_json"
	StateNormalizing State = "normalizing"
	StateGeocoding   State = "geocoding"
	StateDone        State = "done"
	StateNoJSON      State = "no_json_found"
)

// Options snapshot the configuration one run consumes. Both values are
// copied at entry, so settings changes while a run is in flight never
// affect it.
type Options struct {
	// ConfidenceThreshold in [0,100]; detections strictly below it are dropped.
	ConfidenceThreshold float64
	// Extent of the capture the analyzed image came from. Nil disables
	// geocoding: features come back with normalized coordinates and
	// Geocoded=false.
	Extent *model.Extent
}

// Result of one pipeline run. StateNoJSON is a normal terminal state,
// not an error: the response was prose without detections and
// CleanedText carries it verbatim for display.
type Result struct {
	State       State
	CleanedText string
	Features    []model.GeoDetection
	Stats       model.Stats
}

// Run executes the pipeline on one raw AI response. It never returns an
// error: AI output is untrusted by nature, so every stage degrades to
// the best available result plus stats rather than failing the exchange.
func Run(resultText string, opts Options, log zerolog.Logger) Result {
	log.Debug().Str("state", string(StateExtracting)).
		Int("chars", len(resultText)).Msg("locating detection JSON")

	cleaned, payload, found := detect.Locate(resultText)
	if !found {
		log.Info().Str("state", string(StateNoJSON)).
			Msg("no detection JSON in response")
		return Result{State: StateNoJSON, CleanedText: resultText}
	}

	log.Debug().Str("state", string(StateNormalizing)).Msg("normalizing detections")
	dets, stats := detect.Normalize(payload, opts.ConfidenceThreshold, log)

	log.Debug().Str("state", string(StateGeocoding)).Msg("geocoding detections")
	if opts.Extent == nil && len(dets) > 0 {
		log.Warn().Msg("no captured extent available, passing normalized coordinates through")
	}

	features := make([]model.GeoDetection, 0, len(dets))
	for _, d := range dets {
		features = append(features, geocode.Detection(d, opts.Extent))
	}

	log.Info().Str("state", string(StateDone)).Int("features", len(features)).
		Msg("pipeline finished")
	return Result{State: StateDone, CleanedText: cleaned, Features: features, Stats: stats}
}

// QueryExtentMarker builds the synthetic detection covering the whole
// captured rectangle. Callers append it to a run's features so the
// analyzed area itself shows up on the map, numbered 0 to sort before
// real results.
func QueryExtentMarker(ext *model.Extent) model.GeoDetection {
	d := model.Detection{
		Label:        "query_extent",
		ObjectType:   "query_extent",
		ResultNumber: 0,
		BBox: &model.BBox{
			XMin: 0, YMin: 0,
			XMax: model.NormalizedRange, YMax: model.NormalizedRange,
		},
	}
	return geocode.Detection(d, ext)
}
