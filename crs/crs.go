// Package crs converts coordinates between the reference systems the
// pipeline works in: WGS84 geographic (EPSG:4326), Web Mercator
// (EPSG:3857) and MAGNA-SIRGAS / Colombia Bogota zone (EPSG:3116).
package crs

import (
	"fmt"
	"math"

	"github.com/venicegeo/geojson-go/geojson"
)

// ProjectionError reports an unknown CRS code or a coordinate outside
// the valid domain of a transform.
type ProjectionError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e ProjectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("EPSG:%d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unrecognized CRS EPSG:%d", e.Code)
}

// TransformFunc converts a single coordinate pair
type TransformFunc func(x, y float64) (float64, float64, error)

// The supported coordinate reference systems
const (
	EPSGWGS84       = 4326
	EPSGWebMercator = 3857
	EPSGBogota      = 3116
)

// projection converts between geographic WGS84 coordinates and a
// projected plane. forward takes lon/lat degrees; inverse returns them.
type projection struct {
	forward TransformFunc
	inverse TransformFunc
}

var projections = map[int]projection{
	EPSGWGS84:       {forward: identity, inverse: identity},
	EPSGWebMercator: {forward: webMercatorForward, inverse: webMercatorInverse},
	EPSGBogota:      {forward: bogotaZone.forward, inverse: bogotaZone.inverse},
}

func identity(x, y float64) (float64, float64, error) {
	if math.Abs(y) > 90 || math.Abs(x) > 180 {
		return 0, 0, ProjectionError{Code: 4326, Message: fmt.Sprintf("coordinate (%v, %v) outside geographic domain", x, y)}
	}
	return x, y, nil
}

// Transformer returns a function converting coordinates from one EPSG
// code to another. Unknown codes yield a ProjectionError.
func Transformer(fromEPSG, toEPSG int) (TransformFunc, error) {
	from, ok := projections[fromEPSG]
	if !ok {
		return nil, ProjectionError{Code: fromEPSG}
	}
	to, ok := projections[toEPSG]
	if !ok {
		return nil, ProjectionError{Code: toEPSG}
	}
	if fromEPSG == toEPSG {
		return func(x, y float64) (float64, float64, error) { return x, y, nil }, nil
	}
	return func(x, y float64) (float64, float64, error) {
		lon, lat, err := from.inverse(x, y)
		if err != nil {
			return 0, 0, err
		}
		return to.forward(lon, lat)
	}, nil
}

// ReprojectRing transforms each vertex of a linear ring, preserving
// vertex count and winding
func ReprojectRing(ring [][]float64, transform TransformFunc) ([][]float64, error) {
	out := make([][]float64, len(ring))
	for i, vertex := range ring {
		x, y, err := transform(vertex[0], vertex[1])
		if err != nil {
			return nil, err
		}
		out[i] = []float64{x, y}
	}
	return out, nil
}

// ReprojectPolygon returns a new polygon with every coordinate
// transformed from one CRS to another. The input is not modified.
func ReprojectPolygon(polygon *geojson.Polygon, fromEPSG, toEPSG int) (*geojson.Polygon, error) {
	transform, err := Transformer(fromEPSG, toEPSG)
	if err != nil {
		return nil, err
	}
	rings := make([][][]float64, len(polygon.Coordinates))
	for i, ring := range polygon.Coordinates {
		if rings[i], err = ReprojectRing(ring, transform); err != nil {
			return nil, err
		}
	}
	return geojson.NewPolygon(rings), nil
}

const earthRadius = 6378137.0

// Web Mercator is undefined at the poles; clamp just short of them
const webMercatorMaxLat = 89.9

func webMercatorForward(lon, lat float64) (float64, float64, error) {
	if math.Abs(lat) >= webMercatorMaxLat {
		return 0, 0, ProjectionError{Code: 3857, Message: fmt.Sprintf("latitude %v outside projection domain", lat)}
	}
	x := earthRadius * lon * math.Pi / 180
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return x, y, nil
}

func webMercatorInverse(x, y float64) (float64, float64, error) {
	lon := x / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	if math.Abs(lon) > 180+1e-9 {
		return 0, 0, ProjectionError{Code: 3857, Message: fmt.Sprintf("easting %v outside projection domain", x)}
	}
	return lon, lat, nil
}
