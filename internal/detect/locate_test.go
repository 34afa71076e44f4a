package detect

import (
	"testing"
)

func TestLocateJSONInProse(t *testing.T) {
	text := `Here are results: [{"label":"hut","box_2d":[0,0,10,10]}] Thanks!`

	cleaned, value, found := Locate(text)
	if !found {
		t.Fatal("expected JSON to be located")
	}

	list, ok := value.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected single-element list, got %T %v", value, value)
	}
	if cleaned != "Here are results:  Thanks!" {
		t.Errorf("cleaned text = %q", cleaned)
	}
}

func TestLocateDirectJSON(t *testing.T) {
	text := `[{"label":"road","box_2d":[100,200,300,400],"confidence":0.9}]`

	cleaned, _, found := Locate(text)
	if !found {
		t.Fatal("expected JSON to be located")
	}
	if cleaned != "" {
		t.Errorf("expected empty cleaned text, got %q", cleaned)
	}
}

func TestLocateWrapperObject(t *testing.T) {
	text := `{"detections":[{"label":"building","bbox":[1,2,3,4]}]}`

	_, value, found := Locate(text)
	if !found {
		t.Fatal("expected JSON to be located")
	}
	if _, ok := value.(map[string]any); !ok {
		t.Fatalf("expected wrapper object, got %T", value)
	}
}

func TestLocateSkipsStrayBraces(t *testing.T) {
	// A coincidental {} in prose must not be accepted; the real payload
	// comes later.
	text := `The set {} is empty. [{"label":"pond","point":[500,500]}] done`

	_, value, found := Locate(text)
	if !found {
		t.Fatal("expected JSON to be located")
	}
	list, ok := value.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected the detection list, got %T %v", value, value)
	}
}

func TestLocateNoJSON(t *testing.T) {
	text := "I could not find any objects in this image."

	cleaned, value, found := Locate(text)
	if found {
		t.Fatalf("expected no JSON, got %v", value)
	}
	if cleaned != text {
		t.Errorf("text must come back unchanged, got %q", cleaned)
	}
}

func TestLocateRepairsTrailingComma(t *testing.T) {
	text := `{"label":"x","box_2d":[0,0,1,1],}`

	_, value, found := Locate(text)
	if !found {
		t.Fatal("expected repaired JSON to be located")
	}
	rec, ok := value.(map[string]any)
	if !ok || rec["label"] != "x" {
		t.Fatalf("expected label x, got %v", value)
	}
}

func TestLocateRepairsDanglingColon(t *testing.T) {
	text := `{"label":,"box_2d":[0,0,1,1]}`

	_, value, found := Locate(text)
	if !found {
		t.Fatal("expected repaired JSON to be located")
	}
	rec, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", value)
	}
	if rec["label"] != nil {
		t.Errorf("label = %v, want null after repair", rec["label"])
	}
}

func TestLocateTruncatedResponse(t *testing.T) {
	text := `Found these:
[{"label":"greenhouse","box_2d":[120,80,400,300],"confidence":88},{"label":"pond","box_2d":[600,500,700,580`

	_, value, found := Locate(text)
	if !found {
		t.Fatal("expected truncated JSON to be recovered")
	}
	list, ok := value.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2 detections, got %T %v", value, value)
	}
}

func TestLocateCollapsesBlankLines(t *testing.T) {
	text := "Intro\n\n\n[{\"label\":\"hut\",\"box_2d\":[0,0,10,10]}]\n\n\nOutro"

	cleaned, _, found := Locate(text)
	if !found {
		t.Fatal("expected JSON to be located")
	}
	if cleaned != "Intro\n\nOutro" {
		t.Errorf("cleaned = %q", cleaned)
	}
}
