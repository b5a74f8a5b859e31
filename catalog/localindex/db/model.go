package db

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// IndexedScene is one row of the local scene index. The footprint is
// stored as a lon/lat bounding rectangle so the index works on a plain
// Postgres install without spatial extensions.
type IndexedScene struct {
	ProductID      string
	AcquiredDate   time.Time
	CloudCover     float64
	Baseline       string
	SceneURLString string
	MinLon         float64
	MinLat         float64
	MaxLon         float64
	MaxLat         float64
}

// Footprint returns the stored bounding rectangle as a closed polygon
func (scene IndexedScene) Footprint() *geojson.Polygon {
	return geojson.NewPolygon([][][]float64{{
		{scene.MinLon, scene.MinLat},
		{scene.MaxLon, scene.MinLat},
		{scene.MaxLon, scene.MaxLat},
		{scene.MinLon, scene.MaxLat},
		{scene.MinLon, scene.MinLat},
	}})
}
