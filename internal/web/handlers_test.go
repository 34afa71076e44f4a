package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/juergenlandauer/landtalk/internal/model"
	"github.com/juergenlandauer/landtalk/internal/store"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := filepath.Join(os.TempDir(), "landtalk-web-test-"+t.Name())
	os.RemoveAll(dir)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.New(dir)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Server{Store: s, Addr: "localhost:0"}
}

func testRun(t *testing.T, srv *Server, id, state string, features []model.GeoDetection) {
	t.Helper()
	run := &model.Run{ID: id, Provider: "gemini", Model: "gemini-2.5-flash",
		ResultText: "x", State: state, CreatedAt: "2025-06-01T00:00:00Z"}
	if err := srv.Store.WriteRun(run, features); err != nil {
		t.Fatalf("writing run: %v", err)
	}
}

func TestHandleRuns(t *testing.T) {
	srv := testServer(t)
	testRun(t, srv, "run-1", "done", nil)
	testRun(t, srv, "run-2", "no_json_found", nil)

	req := httptest.NewRequest("GET", "/api/runs", nil)
	w := httptest.NewRecorder()
	srv.handleRuns(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var runs []model.Run
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestHandleRunsStateFilter(t *testing.T) {
	srv := testServer(t)
	testRun(t, srv, "run-1", "done", nil)
	testRun(t, srv, "run-2", "no_json_found", nil)

	req := httptest.NewRequest("GET", "/api/runs?state=done", nil)
	w := httptest.NewRecorder()
	srv.handleRuns(w, req)

	var runs []model.Run
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("expected only the done run, got %+v", runs)
	}
}

func TestHandleFeaturesGeoJSON(t *testing.T) {
	srv := testServer(t)

	prob := 85.0
	testRun(t, srv, "run-1", "done", []model.GeoDetection{
		{
			Detection: model.Detection{Label: "(1) pond (85%)", ObjectType: "pond",
				Probability: &prob, ResultNumber: 1},
			MapBBox:  &model.BBox{XMin: 20, YMin: 20, XMax: 40, YMax: 40},
			Geocoded: true,
		},
		{
			Detection: model.Detection{Label: "(2) mound", ObjectType: "mound", ResultNumber: 2},
			MapPoint:  &model.Point{X: 60, Y: 30},
			Geocoded:  true,
		},
	})

	req := httptest.NewRequest("GET", "/api/features?run=run-1", nil)
	w := httptest.NewRecorder()
	srv.handleFeatures(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var fc featureCollection
	if err := json.NewDecoder(w.Body).Decode(&fc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Geometry["type"] != "Polygon" {
		t.Errorf("first geometry should be a Polygon, got %v", fc.Features[0].Geometry["type"])
	}
	if fc.Features[1].Geometry["type"] != "Point" {
		t.Errorf("second geometry should be a Point, got %v", fc.Features[1].Geometry["type"])
	}
	if fc.Features[0].Properties["probability"].(float64) != 85 {
		t.Errorf("probability property missing: %v", fc.Features[0].Properties)
	}
	if _, ok := fc.Features[1].Properties["probability"]; ok {
		t.Error("absent probability must not appear as a property")
	}
}

func TestHandleFeaturesMissingRunParam(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest("GET", "/api/features", nil)
	w := httptest.NewRecorder()
	srv.handleFeatures(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
