package pipeline

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/juergenlandauer/landtalk/internal/model"
)

func TestRunFullPipeline(t *testing.T) {
	ext := model.NewExtent(10, 50, 110, 10)
	text := `I found two objects.

[{"label":"greenhouse","box_2d":[0,0,1000,1000],"confidence":95},
 {"label":"shed","box_2d":[0,0,100,100],"confidence":20}]

Let me know if you need more detail.`

	res := Run(text, Options{ConfidenceThreshold: 50, Extent: &ext}, zerolog.Nop())

	if res.State != StateDone {
		t.Fatalf("state = %q, want done", res.State)
	}
	if res.Stats.Processed != 1 || res.Stats.SkippedConfidence != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if len(res.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(res.Features))
	}

	f := res.Features[0]
	if !f.Geocoded {
		t.Error("feature should be geocoded")
	}
	if f.MapBBox == nil || *f.MapBBox != (model.BBox{XMin: 10, YMin: 10, XMax: 110, YMax: 50}) {
		t.Errorf("map bbox = %+v", f.MapBBox)
	}
	if strings.Contains(res.CleanedText, "box_2d") {
		t.Errorf("JSON span not removed from cleaned text: %q", res.CleanedText)
	}
	if !strings.Contains(res.CleanedText, "I found two objects.") {
		t.Errorf("prose lost from cleaned text: %q", res.CleanedText)
	}
}

func TestRunNoJSONFound(t *testing.T) {
	text := "Sorry, I cannot identify any objects in this image."

	res := Run(text, Options{ConfidenceThreshold: 50}, zerolog.Nop())

	if res.State != StateNoJSON {
		t.Fatalf("state = %q, want no_json_found", res.State)
	}
	if res.CleanedText != text {
		t.Errorf("raw text must be preserved for display, got %q", res.CleanedText)
	}
	if len(res.Features) != 0 {
		t.Errorf("expected no features, got %d", len(res.Features))
	}
}

func TestRunWithoutExtent(t *testing.T) {
	text := `[{"label":"hut","box_2d":[100,100,200,200]}]`

	res := Run(text, Options{ConfidenceThreshold: 0}, zerolog.Nop())

	if res.State != StateDone {
		t.Fatalf("state = %q", res.State)
	}
	f := res.Features[0]
	if f.Geocoded {
		t.Error("feature must not claim geocoding without an extent")
	}
	if f.MapBBox == nil || f.MapBBox.XMax != 200 {
		t.Errorf("normalized coordinates must pass through, got %+v", f.MapBBox)
	}
}

func TestRunRecoverableJSON(t *testing.T) {
	// Truncated response: the repair pass must recover it.
	text := `Results: [{"label":"pond","box_2d":[600,500,700,580`

	res := Run(text, Options{ConfidenceThreshold: 0}, zerolog.Nop())

	if res.State != StateDone {
		t.Fatalf("state = %q, want done after repair", res.State)
	}
	if res.Stats.Processed != 1 {
		t.Fatalf("stats = %+v", res.Stats)
	}
}

func TestQueryExtentMarker(t *testing.T) {
	ext := model.NewExtent(10, 50, 110, 10)

	marker := QueryExtentMarker(&ext)
	if marker.ObjectType != "query_extent" || marker.ResultNumber != 0 {
		t.Fatalf("marker = %+v", marker.Detection)
	}
	if !marker.Geocoded || marker.MapBBox == nil {
		t.Fatal("marker should be geocoded")
	}
	if *marker.MapBBox != (model.BBox{XMin: 10, YMin: 10, XMax: 110, YMax: 50}) {
		t.Errorf("marker bbox = %+v, want the full extent", marker.MapBBox)
	}
}
