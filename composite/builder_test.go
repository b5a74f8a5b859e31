package composite

import (
	"errors"
	"testing"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/raster"
)

// Mock

type fakeCatalog struct {
	scenes      []catalog.Scene
	bands       map[string]map[string]*raster.Grid
	searchErr   error
	searchCalls []catalog.SearchOptions
}

func (f *fakeCatalog) SearchScenes(options catalog.SearchOptions) ([]catalog.Scene, error) {
	f.searchCalls = append(f.searchCalls, options)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	matched := []catalog.Scene{}
	for _, scene := range f.scenes {
		if options.MaxCloudCover > 0 && scene.CloudCover > options.MaxCloudCover {
			continue
		}
		if scene.AcquiredDate.Before(options.MinAcquiredDate) || scene.AcquiredDate.After(options.MaxAcquiredDate) {
			continue
		}
		matched = append(matched, scene)
	}
	catalog.SortScenes(matched)
	return matched, nil
}

func (f *fakeCatalog) FetchBands(scene catalog.Scene, bands []string) (map[string]*raster.Grid, error) {
	sceneBands, ok := f.bands[scene.ID]
	if !ok {
		return nil, catalog.QueryError{Provider: "fake", Cause: errors.New("no such scene")}
	}
	grids := map[string]*raster.Grid{}
	for _, band := range bands {
		grid, ok := sceneBands[band]
		if !ok {
			return nil, catalog.QueryError{Provider: "fake", Cause: errors.New("no such band")}
		}
		grids[band] = grid
	}
	return grids, nil
}

func uniformGrid(value float64) *raster.Grid {
	grid := raster.GridForBounds(0, 0, 4, 4, 1)
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			grid.Set(col, row, value)
		}
	}
	return grid
}

func sceneBandSet(red, nir, scl float64) map[string]*raster.Grid {
	return map[string]*raster.Grid{
		catalog.BandRed: uniformGrid(red),
		catalog.BandNIR: uniformGrid(nir),
		catalog.BandSCL: uniformGrid(scl),
	}
}

func testScene(id string, cloudCover float64, acquired time.Time) catalog.Scene {
	return catalog.Scene{ID: id, CloudCover: cloudCover, AcquiredDate: acquired}
}

var fullRing = []float64{0, 0, 4, 0, 4, 4, 0, 4, 0, 0}

func newTestBuilder(fake *fakeCatalog) *Builder {
	return &Builder{
		Catalog:    fake,
		Bbox:       geojson.BoundingBox{0, 0, 4, 4},
		ClipRing:   fullRing,
		Template:   raster.GridForBounds(0, 0, 4, 4, 1),
		Thresholds: DefaultThresholds(),
	}
}

var testPeriod = Period{Year: 2020, Half: 1}

func midPeriod(day int) time.Time {
	return time.Date(2020, 3, day, 15, 30, 0, 0, time.UTC)
}

// Asserts

func TestBuild_StrictStrategyWins(t *testing.T) {
	fake := &fakeCatalog{
		scenes: []catalog.Scene{
			testScene("CLEAR", 5, midPeriod(1)),
			testScene("HAZY", 40, midPeriod(2)),
			testScene("CLOUDY", 60, midPeriod(3)),
		},
		bands: map[string]map[string]*raster.Grid{
			"CLEAR":  sceneBandSet(100, 300, 4),
			"HAZY":   sceneBandSet(500, 600, 4),
			"CLOUDY": sceneBandSet(900, 900, 9),
		},
	}
	builder := newTestBuilder(fake)

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Built, result.Outcome)
	assert.Equal(t, "strict", result.Strategy)
	assert.Equal(t, 1, result.SceneCount, "only the clear scene passes the strict cloud limit")
	assert.Equal(t, 1.0, result.Coverage)

	// Median of a single clear observation: RED=100, NIR=300
	value, valid := result.Composite.NDVI.At(1, 1)
	assert.True(t, valid)
	assert.InDelta(t, 0.5, value, 1e-9)
}

func TestBuild_FallsBackToRelaxed(t *testing.T) {
	fake := &fakeCatalog{
		scenes: []catalog.Scene{
			testScene("HAZY", 40, midPeriod(2)),
			testScene("CLOUDY", 55, midPeriod(3)),
		},
		bands: map[string]map[string]*raster.Grid{
			"HAZY":   sceneBandSet(100, 300, 4),
			"CLOUDY": sceneBandSet(200, 600, 4),
		},
	}
	builder := newTestBuilder(fake)

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Built, result.Outcome)
	assert.Equal(t, "relaxed", result.Strategy)
	assert.Equal(t, 2, result.SceneCount)

	// Both scenes have NDVI 0.5; median stays 0.5
	value, valid := result.Composite.NDVI.At(2, 2)
	assert.True(t, valid)
	assert.InDelta(t, 0.5, value, 1e-9)
}

func TestBuild_MaskedCloudsForceExpandedWindow(t *testing.T) {
	// The only in-window scene is fully cloud-classified, so the
	// relaxed strategy masks everything away. A clear scene sits just
	// outside the window, within the expansion margin.
	fake := &fakeCatalog{
		scenes: []catalog.Scene{
			testScene("CLOUDY", 55, midPeriod(3)),
			testScene("LATE_CLEAR", 20, time.Date(2020, 7, 20, 15, 30, 0, 0, time.UTC)),
		},
		bands: map[string]map[string]*raster.Grid{
			"CLOUDY":     sceneBandSet(900, 900, 9),
			"LATE_CLEAR": sceneBandSet(100, 300, 4),
		},
	}
	builder := newTestBuilder(fake)

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Built, result.Outcome)
	assert.Equal(t, "expanded", result.Strategy)
	assert.Equal(t, 1.0, result.Coverage)
}

func TestBuild_Unavailable(t *testing.T) {
	fake := &fakeCatalog{
		scenes: []catalog.Scene{
			testScene("CLOUDY", 55, midPeriod(3)),
		},
		bands: map[string]map[string]*raster.Grid{
			"CLOUDY": sceneBandSet(900, 900, 9),
		},
	}
	builder := newTestBuilder(fake)

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Unavailable, result.Outcome)
	assert.Nil(t, result.Composite)

	// All three strategies were attempted, in order
	assert.Len(t, fake.searchCalls, 3)
	assert.Equal(t, 10.0, fake.searchCalls[0].MaxCloudCover)
	assert.Equal(t, 60.0, fake.searchCalls[1].MaxCloudCover)
	assert.Equal(t, 60.0, fake.searchCalls[2].MaxCloudCover)
	exactStart, _ := testPeriod.Range()
	expandedStart, _ := testPeriod.Expanded(45)
	assert.Equal(t, exactStart, fake.searchCalls[1].MinAcquiredDate)
	assert.Equal(t, expandedStart, fake.searchCalls[2].MinAcquiredDate)
}

func TestBuild_EmptyCatalogIsUnavailableNotError(t *testing.T) {
	builder := newTestBuilder(&fakeCatalog{})

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Unavailable, result.Outcome)
}

func TestBuild_ProviderFailureIsAnError(t *testing.T) {
	fake := &fakeCatalog{searchErr: catalog.QueryError{Provider: "fake", Cause: errors.New("connection refused")}}
	builder := newTestBuilder(fake)

	_, err := builder.Build(testPeriod)

	assert.Error(t, err)
	assert.IsType(t, catalog.QueryError{}, err)
}

func TestBuild_UnreadableSceneIsSkipped(t *testing.T) {
	fake := &fakeCatalog{
		scenes: []catalog.Scene{
			testScene("CLEAR", 5, midPeriod(1)),
			testScene("MISSING", 6, midPeriod(2)),
		},
		bands: map[string]map[string]*raster.Grid{
			"CLEAR": sceneBandSet(100, 300, 4),
		},
	}
	builder := newTestBuilder(fake)

	result, err := builder.Build(testPeriod)

	assert.Nil(t, err)
	assert.Equal(t, Built, result.Outcome)
	assert.Equal(t, "strict", result.Strategy)
	assert.Equal(t, 1, result.SceneCount)
}

func TestMergeLayers_Median(t *testing.T) {
	template := raster.GridForBounds(0, 0, 2, 2, 1)
	layers := []*raster.Grid{}
	for _, value := range []float64{10, 30, 500} {
		layer := raster.GridForBounds(0, 0, 2, 2, 1)
		for row := 0; row < 2; row++ {
			for col := 0; col < 2; col++ {
				layer.Set(col, row, value)
			}
		}
		layers = append(layers, layer)
	}
	// One layer has a hole at (0, 0)
	layers[2].SetInvalid(0, 0)

	merged := mergeLayers(template, layers, stats.Median)

	value, valid := merged.At(1, 1)
	assert.True(t, valid)
	assert.Equal(t, 30.0, value)

	// Fewer observations at the hole, median of the remaining two
	value, valid = merged.At(0, 0)
	assert.True(t, valid)
	assert.Equal(t, 20.0, value)
}
