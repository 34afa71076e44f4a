package model

// NormalizedRange is the upper bound of the normalized image coordinate
// space used by the AI providers: positions within the captured image are
// expressed as values in [0, 1000], origin at the top-left corner with Y
// increasing downward.
const NormalizedRange = 1000.0

// BBox is an axis-aligned rectangle, either in normalized image
// coordinates (0-1000) or in map units after geocoding.
type BBox struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// Point is a single position, normalized or in map units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is a schema-unified detection record, independent of which AI
// provider produced it. Exactly one of BBox or Point is set. Probability is
// nil when the provider reported none (or an unparseable value) — "unknown
// confidence", not zero.
type Detection struct {
	Label        string   `json:"label"`
	ObjectType   string   `json:"object_type"`
	Probability  *float64 `json:"probability,omitempty"`
	ResultNumber int      `json:"result_number"`
	Reason       string   `json:"reason,omitempty"`
	BBox         *BBox    `json:"box_2d,omitempty"`
	Point        *Point   `json:"point,omitempty"`
}

// GeoDetection is a Detection resolved into map coordinates. Geocoded is
// false when no captured extent was available; in that case MapBBox/MapPoint
// carry the untransformed normalized coordinates and must not be rendered
// as if they were geographic.
type GeoDetection struct {
	Detection
	MapBBox  *BBox  `json:"map_bbox,omitempty"`
	MapPoint *Point `json:"map_point,omitempty"`
	Geocoded bool   `json:"geocoded"`
}

// Extent is the geographic rectangle corresponding to a captured map image:
// Left/Top is the west/north corner, Right/Bottom the east/south corner,
// Width and Height the extent dimensions in map units.
type Extent struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewExtent builds an Extent from its corner coordinates, deriving the
// dimensions in map units.
func NewExtent(left, top, right, bottom float64) Extent {
	return Extent{
		Left:   left,
		Top:    top,
		Right:  right,
		Bottom: bottom,
		Width:  right - left,
		Height: top - bottom,
	}
}

// Capture is one registered map-area selection: the extent in the host
// map's CRS plus the rendered image sent to the AI provider.
type Capture struct {
	ID         string `json:"id"`
	CRS        string `json:"crs"`
	Extent     Extent `json:"extent"`
	ImagePath  string `json:"image_path,omitempty"`
	CapturedAt string `json:"captured_at"`
}

// Stats counts the outcome of one normalization pass.
type Stats struct {
	Total             int `json:"total"`
	Processed         int `json:"processed"`
	SkippedConfidence int `json:"skipped_confidence"`
	SkippedMissing    int `json:"skipped_missing"`
}

// Run records one AI exchange processed by the pipeline.
type Run struct {
	ID          string `json:"id"`
	CaptureID   string `json:"capture_id"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	ResultText  string `json:"result_text"`
	CleanedText string `json:"cleaned_text"`
	State       string `json:"state"` // "done" or "no_json_found"
	Stats       Stats  `json:"stats"`
	CreatedAt   string `json:"created_at"`
}
