package roi

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleFeatureCollection = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"name": "line buffer"},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[-74.10, 4.60], [-74.05, 4.60], [-74.05, 4.65], [-74.10, 4.65], [-74.10, 4.60]]]
		}
	}]
}`

func writeTempGeoJSON(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "roi-test")
	assert.Nil(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "roi.geojson")
	assert.Nil(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FeatureCollection(t *testing.T) {
	path := writeTempGeoJSON(t, sampleFeatureCollection)

	r, err := Load(path, 4326)

	assert.Nil(t, err)
	assert.Equal(t, 4326, r.EPSG)
	assert.Len(t, r.Polygon.Coordinates, 1)
	assert.Len(t, r.Polygon.Coordinates[0], 5)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/roi.geojson", 4326)
	assert.Error(t, err)
}

func TestLoad_NotAPolygon(t *testing.T) {
	path := writeTempGeoJSON(t, `{"type": "Point", "coordinates": [-74.1, 4.6]}`)

	_, err := Load(path, 4326)
	assert.Error(t, err)
}

func TestReprojected_RoundTrip(t *testing.T) {
	path := writeTempGeoJSON(t, sampleFeatureCollection)
	original, err := Load(path, 4326)
	assert.Nil(t, err)

	projected, err := original.Reprojected(3116)
	assert.Nil(t, err)
	assert.Equal(t, 3116, projected.EPSG)

	back, err := projected.Reprojected(4326)
	assert.Nil(t, err)

	for i, ring := range original.Polygon.Coordinates {
		for j, vertex := range ring {
			assert.InDelta(t, vertex[0], back.Polygon.Coordinates[i][j][0], 1e-7)
			assert.InDelta(t, vertex[1], back.Polygon.Coordinates[i][j][1], 1e-7)
		}
	}
}

func TestBbox(t *testing.T) {
	path := writeTempGeoJSON(t, sampleFeatureCollection)
	r, _ := Load(path, 4326)

	bbox := r.Bbox()

	assert.InDelta(t, -74.10, bbox[0], 1e-9)
	assert.InDelta(t, 4.60, bbox[1], 1e-9)
	assert.InDelta(t, -74.05, bbox[2], 1e-9)
	assert.InDelta(t, 4.65, bbox[3], 1e-9)
}

func TestOuterRing_FlatLayout(t *testing.T) {
	path := writeTempGeoJSON(t, sampleFeatureCollection)
	r, _ := Load(path, 4326)

	flat := r.OuterRing()

	assert.Len(t, flat, 10)
	assert.Equal(t, -74.10, flat[0])
	assert.Equal(t, 4.60, flat[1])
}

func TestBufferPoint(t *testing.T) {
	r, err := BufferPoint(-74.0775, 4.5962, 2000, 64)

	assert.Nil(t, err)
	assert.Equal(t, 4326, r.EPSG)
	ring := r.Polygon.Coordinates[0]
	assert.Len(t, ring, 65) // closed ring

	// Closed
	assert.Equal(t, ring[0], ring[len(ring)-1])

	// Center is inside the bbox
	bbox := r.Bbox()
	assert.True(t, bbox[0] < -74.0775 && -74.0775 < bbox[2])
	assert.True(t, bbox[1] < 4.5962 && 4.5962 < bbox[3])
}
