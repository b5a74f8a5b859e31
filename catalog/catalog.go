// Package catalog defines the scene-catalog contract the compositor
// consumes, implemented by the Postgres local index and the remote
// Earth API client.
package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/raster"
)

// Band names used across the pipeline. Red and NIR feed the NDVI;
// SCL is the per-pixel scene classification used for cloud masking.
const (
	BandRed = "red"
	BandNIR = "nir"
	BandSCL = "scl"
)

// Scene is one candidate acquisition returned by a catalog search
type Scene struct {
	ID           string
	AcquiredDate time.Time
	CloudCover   float64 // percent, 0-100
	Footprint    *geojson.Polygon
	Assets       map[string]string // band name -> raster location
	Baseline     string            // processing baseline identifier
}

// SearchOptions filter a catalog search
type SearchOptions struct {
	Bbox            geojson.BoundingBox
	MinAcquiredDate time.Time
	MaxAcquiredDate time.Time
	MaxCloudCover   float64 // percent; <= 0 means no filter
	Baseline        string  // optional property filter
}

// Catalog is the provider-facing query contract. SearchScenes returns
// an empty slice, not an error, when nothing matches; QueryError is
// reserved for unreachable or misbehaving providers.
type Catalog interface {
	SearchScenes(options SearchOptions) ([]Scene, error)
	FetchBands(scene Scene, bands []string) (map[string]*raster.Grid, error)
}

// QueryError indicates the catalog provider was unreachable or
// returned a malformed response
type QueryError struct {
	Provider string
	Cause    error
}

// Error implements the error interface
func (e QueryError) Error() string {
	return fmt.Sprintf("catalog query against %s failed: %v", e.Provider, e.Cause)
}

// Unwrap exposes the underlying cause
func (e QueryError) Unwrap() error {
	return e.Cause
}

// SortScenes orders candidates by ascending cloud cover, breaking ties
// by descending acquisition date so fresher processing wins
func SortScenes(scenes []Scene) {
	sort.SliceStable(scenes, func(i, j int) bool {
		if scenes[i].CloudCover != scenes[j].CloudCover {
			return scenes[i].CloudCover < scenes[j].CloudCover
		}
		return scenes[i].AcquiredDate.After(scenes[j].AcquiredDate)
	})
}
