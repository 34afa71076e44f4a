package web

import (
	"encoding/json"
	"net/http"

	"github.com/juergenlandauer/landtalk/internal/model"
)

func (s *Server) handleCaptures(w http.ResponseWriter, r *http.Request) {
	captures, err := s.Store.ListCaptures()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, captures)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.Store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	state := r.URL.Query().Get("state")
	if state != "" {
		var filtered []any
		for _, run := range runs {
			if run.State == state {
				filtered = append(filtered, run)
			}
		}
		writeJSON(w, filtered)
		return
	}

	writeJSON(w, runs)
}

// handleFeatures serves one run's features as a GeoJSON FeatureCollection.
// Bounding boxes become Polygons, points become Points; coordinates are in
// the capture's CRS when the run was geocoded.
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "" {
		http.Error(w, "missing 'run' parameter", http.StatusBadRequest)
		return
	}

	features, err := s.Store.ReadFeatures(runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, toFeatureCollection(features))
}

type geoJSONFeature struct {
	Type       string         `json:"type"`
	Geometry   map[string]any `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func toFeatureCollection(dets []model.GeoDetection) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: []geoJSONFeature{}}
	for _, d := range dets {
		var geom map[string]any
		switch {
		case d.MapBBox != nil:
			b := d.MapBBox
			geom = map[string]any{
				"type": "Polygon",
				"coordinates": [][][2]float64{{
					{b.XMin, b.YMin}, {b.XMax, b.YMin},
					{b.XMax, b.YMax}, {b.XMin, b.YMax},
					{b.XMin, b.YMin},
				}},
			}
		case d.MapPoint != nil:
			geom = map[string]any{
				"type":        "Point",
				"coordinates": [2]float64{d.MapPoint.X, d.MapPoint.Y},
			}
		default:
			continue
		}

		props := map[string]any{
			"label":         d.Label,
			"object_type":   d.ObjectType,
			"result_number": d.ResultNumber,
			"geocoded":      d.Geocoded,
		}
		if d.Probability != nil {
			props["probability"] = *d.Probability
		}
		if d.Reason != "" {
			props["reason"] = d.Reason
		}

		fc.Features = append(fc.Features, geoJSONFeature{
			Type:       "Feature",
			Geometry:   geom,
			Properties: props,
		})
	}
	return fc
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS — this is a local development tool, not a public API.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
