// Package geocode transforms detection geometry from the normalized
// 0-1000 image space into map coordinates using a captured extent.
package geocode

import (
	"github.com/juergenlandauer/landtalk/internal/model"
)

// BBoxToMap converts a normalized bounding box into map coordinates.
// Image Y grows downward while map Y grows upward, so the vertical
// fraction is subtracted from the extent's top edge. The result is
// reordered so min is always below max on both axes, whatever corner
// order the provider chose.
func BBoxToMap(b model.BBox, ext model.Extent) model.BBox {
	xmin := ext.Left + b.XMin/model.NormalizedRange*ext.Width
	ymin := ext.Top - b.YMin/model.NormalizedRange*ext.Height
	xmax := ext.Left + b.XMax/model.NormalizedRange*ext.Width
	ymax := ext.Top - b.YMax/model.NormalizedRange*ext.Height

	if xmin > xmax {
		xmin, xmax = xmax, xmin
	}
	if ymin > ymax {
		ymin, ymax = ymax, ymin
	}
	return model.BBox{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
}

// PointToMap converts a normalized point into map coordinates with the
// same per-axis transform, no reordering involved.
func PointToMap(p model.Point, ext model.Extent) model.Point {
	return model.Point{
		X: ext.Left + p.X/model.NormalizedRange*ext.Width,
		Y: ext.Top - p.Y/model.NormalizedRange*ext.Height,
	}
}

// Detection resolves a canonical detection into map space. With a nil
// extent the normalized geometry is passed through untransformed and
// Geocoded is false — callers must check the flag rather than trust
// coordinate magnitudes.
func Detection(d model.Detection, ext *model.Extent) model.GeoDetection {
	geo := model.GeoDetection{Detection: d}

	if ext == nil {
		if d.BBox != nil {
			b := *d.BBox
			geo.MapBBox = &b
		}
		if d.Point != nil {
			p := *d.Point
			geo.MapPoint = &p
		}
		return geo
	}

	if d.BBox != nil {
		b := BBoxToMap(*d.BBox, *ext)
		geo.MapBBox = &b
	}
	if d.Point != nil {
		p := PointToMap(*d.Point, *ext)
		geo.MapPoint = &p
	}
	geo.Geocoded = true
	return geo
}
