// Package roi loads the region-of-interest polygon the pipeline
// analyzes and prepares it for catalog queries and raster clipping.
package roi

import (
	"fmt"
	"io/ioutil"
	"math"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/crs"
)

// ROI is a region-of-interest polygon tagged with the EPSG code its
// coordinates are expressed in. Immutable once loaded; Reprojected
// returns a new ROI.
type ROI struct {
	Polygon *geojson.Polygon
	EPSG    int
}

// Load reads the first polygon found in a GeoJSON file. The file may
// contain a bare Polygon, a Feature or a FeatureCollection.
func Load(path string, sourceEPSG int) (*ROI, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parsed, err := geojson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse ROI file %s: %v", path, err)
	}

	polygon, err := firstPolygon(parsed)
	if err != nil {
		return nil, fmt.Errorf("ROI file %s: %v", path, err)
	}
	return &ROI{Polygon: polygon, EPSG: sourceEPSG}, nil
}

func firstPolygon(parsed interface{}) (*geojson.Polygon, error) {
	switch geometry := parsed.(type) {
	case *geojson.Polygon:
		return geometry, nil
	case *geojson.Feature:
		return firstPolygon(geometry.Geometry)
	case *geojson.FeatureCollection:
		if len(geometry.Features) == 0 {
			return nil, fmt.Errorf("feature collection contains no features")
		}
		return firstPolygon(geometry.Features[0])
	default:
		return nil, fmt.Errorf("no polygon found (got %T)", parsed)
	}
}

// Reprojected returns a copy of the ROI with coordinates transformed
// into the target CRS
func (r *ROI) Reprojected(targetEPSG int) (*ROI, error) {
	polygon, err := crs.ReprojectPolygon(r.Polygon, r.EPSG, targetEPSG)
	if err != nil {
		return nil, err
	}
	return &ROI{Polygon: polygon, EPSG: targetEPSG}, nil
}

// Bbox returns the bounding box of the ROI polygon
func (r *ROI) Bbox() geojson.BoundingBox {
	feature := geojson.NewFeature(r.Polygon, "roi", nil)
	return feature.ForceBbox()
}

// OuterRing returns the exterior ring as flat coordinates, the layout
// the raster clipping predicates expect
func (r *ROI) OuterRing() []float64 {
	if len(r.Polygon.Coordinates) == 0 {
		return nil
	}
	ring := r.Polygon.Coordinates[0]
	flat := make([]float64, 0, len(ring)*2)
	for _, vertex := range ring {
		flat = append(flat, vertex[0], vertex[1])
	}
	return flat
}

// BufferPoint builds a circular buffer around a geographic point. The
// circle is constructed in Web Mercator and transformed back, matching
// how the original field geometries were produced.
func BufferPoint(lon, lat, radiusMeters float64, segments int) (*ROI, error) {
	if segments < 3 {
		segments = 32
	}
	toMetric, err := crs.Transformer(4326, 3857)
	if err != nil {
		return nil, err
	}
	toGeographic, err := crs.Transformer(3857, 4326)
	if err != nil {
		return nil, err
	}

	centerX, centerY, err := toMetric(lon, lat)
	if err != nil {
		return nil, err
	}

	ring := make([][]float64, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		x := centerX + radiusMeters*math.Cos(angle)
		y := centerY + radiusMeters*math.Sin(angle)
		vertexLon, vertexLat, err := toGeographic(x, y)
		if err != nil {
			return nil, err
		}
		ring = append(ring, []float64{vertexLon, vertexLat})
	}
	ring = append(ring, []float64{ring[0][0], ring[0][1]})

	return &ROI{Polygon: geojson.NewPolygon([][][]float64{ring}), EPSG: 4326}, nil
}
