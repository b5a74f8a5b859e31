package composite

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/raster"
	"github.com/greenwatch/ndvi-broker/util"
)

// Outcome is the terminal state of a compositing attempt
type Outcome int

const (
	// Built means a strategy produced a composite meeting the
	// coverage requirement
	Built Outcome = iota
	// Unavailable means every strategy fell short; this is a value,
	// not an error
	Unavailable
)

func (o Outcome) String() string {
	if o == Built {
		return "built"
	}
	return "unavailable"
}

// Thresholds are the tunables of the strategy chain. Cloud limits are
// percentages, coverage a fraction.
type Thresholds struct {
	Strict              float64
	Relaxed             float64
	MinCoverage         float64
	WindowExpansionDays int
}

// DefaultThresholds returns the standard chain tuning
func DefaultThresholds() Thresholds {
	return Thresholds{
		Strict:              10,
		Relaxed:             60,
		MinCoverage:         0.70,
		WindowExpansionDays: 45,
	}
}

// Statistic reduces the valid observations of one pixel to a single
// value. The default is the median.
type Statistic func(stats.Float64Data) (float64, error)

// Composite holds the merged band grids for one period, clipped to
// the region of interest, plus the derived NDVI grid.
type Composite struct {
	Red  *raster.Grid
	NIR  *raster.Grid
	NDVI *raster.Grid
}

// Result is the per-period record of what the chain produced
type Result struct {
	Period     Period
	Outcome    Outcome
	Strategy   string
	Composite  *Composite
	SceneCount int
	Coverage   float64
}

// Builder drives the strategy chain for a fixed region and grid
// layout against a scene catalog.
type Builder struct {
	Catalog    catalog.Catalog
	Bbox       geojson.BoundingBox
	ClipRing   []float64
	Template   *raster.Grid
	Baseline   string
	Thresholds Thresholds
	Statistic  Statistic
	LogContext util.LogContext
}

type strategy struct {
	name       string
	maxCloud   float64
	applyMask  bool
	expandDays int
}

func (b *Builder) strategies() []strategy {
	t := b.Thresholds
	return []strategy{
		{name: "strict", maxCloud: t.Strict},
		{name: "relaxed", maxCloud: t.Relaxed, applyMask: true},
		{name: "expanded", maxCloud: t.Relaxed, applyMask: true, expandDays: t.WindowExpansionDays},
	}
}

// Build runs the chain for one period. Empty or insufficient data is
// reported through the Unavailable outcome; an error is returned only
// for provider failures.
func (b *Builder) Build(period Period) (Result, error) {
	statistic := b.Statistic
	if statistic == nil {
		statistic = stats.Median
	}

	for _, strat := range b.strategies() {
		start, end := period.Range()
		if strat.expandDays > 0 {
			start, end = period.Expanded(strat.expandDays)
		}

		scenes, err := b.Catalog.SearchScenes(catalog.SearchOptions{
			Bbox:            b.Bbox,
			MinAcquiredDate: start,
			MaxAcquiredDate: end,
			MaxCloudCover:   strat.maxCloud,
			Baseline:        b.Baseline,
		})
		if err != nil {
			return Result{}, err
		}
		if len(scenes) == 0 {
			b.logInfo(fmt.Sprintf("Period %v: no scenes for the %v strategy", period.Label(), strat.name))
			continue
		}

		result, err := b.tryStrategy(period, strat, scenes, statistic)
		if err != nil {
			return Result{}, err
		}
		if result.Outcome == Built {
			b.logInfo(fmt.Sprintf("Period %v: built from %v scenes via the %v strategy (coverage %.2f)",
				period.Label(), result.SceneCount, strat.name, result.Coverage))
			return result, nil
		}
		b.logInfo(fmt.Sprintf("Period %v: %v strategy coverage %.2f below minimum %.2f",
			period.Label(), strat.name, result.Coverage, b.Thresholds.MinCoverage))
	}

	return Result{Period: period, Outcome: Unavailable}, nil
}

func (b *Builder) tryStrategy(period Period, strat strategy, scenes []catalog.Scene, statistic Statistic) (Result, error) {
	bands := []string{catalog.BandRed, catalog.BandNIR}
	if strat.applyMask {
		bands = append(bands, catalog.BandSCL)
	}

	redLayers := []*raster.Grid{}
	nirLayers := []*raster.Grid{}
	for _, scene := range scenes {
		grids, err := b.Catalog.FetchBands(scene, bands)
		if err != nil {
			// One unreadable scene should not sink the period
			b.logAlert(fmt.Sprintf("Period %v: skipping scene %v: %v", period.Label(), scene.ID, err))
			continue
		}

		red, nir := grids[catalog.BandRed], grids[catalog.BandNIR]
		if strat.applyMask {
			if red, err = raster.ApplySCLMask(red, grids[catalog.BandSCL]); err != nil {
				return Result{}, err
			}
			if nir, err = raster.ApplySCLMask(nir, grids[catalog.BandSCL]); err != nil {
				return Result{}, err
			}
		}
		redLayers = append(redLayers, red)
		nirLayers = append(nirLayers, nir)
	}
	if len(redLayers) == 0 {
		return Result{Period: period, Outcome: Unavailable}, nil
	}

	red := mergeLayers(b.Template, redLayers, statistic)
	nir := mergeLayers(b.Template, nirLayers, statistic)

	ndvi, err := raster.NDVI(nir, red)
	if err != nil {
		return Result{}, err
	}

	composite := &Composite{
		Red:  red.ClipToRing(b.ClipRing),
		NIR:  nir.ClipToRing(b.ClipRing),
		NDVI: ndvi.ClipToRing(b.ClipRing),
	}
	coverage := composite.NDVI.CoverageFraction(b.ClipRing)

	result := Result{
		Period:     period,
		Strategy:   strat.name,
		Composite:  composite,
		SceneCount: len(redLayers),
		Coverage:   coverage,
	}
	if coverage < b.Thresholds.MinCoverage {
		result.Outcome = Unavailable
		result.Composite = nil
		return result, nil
	}
	result.Outcome = Built
	return result, nil
}

// mergeLayers reduces the observation stack onto the template grid,
// sampling each layer at the template cell centers
func mergeLayers(template *raster.Grid, layers []*raster.Grid, statistic Statistic) *raster.Grid {
	merged := raster.NewGrid(template.Width, template.Height,
		template.OriginX, template.OriginY, template.PixelWidth, template.PixelHeight)

	samples := make([]float64, 0, len(layers))
	for row := 0; row < merged.Height; row++ {
		for col := 0; col < merged.Width; col++ {
			x, y := merged.CellCenter(col, row)
			samples = samples[:0]
			for _, layer := range layers {
				if value, ok := layer.SampleAt(x, y); ok {
					samples = append(samples, value)
				}
			}
			if len(samples) == 0 {
				merged.SetInvalid(col, row)
				continue
			}
			value, err := statistic(stats.Float64Data(samples))
			if err != nil {
				merged.SetInvalid(col, row)
				continue
			}
			merged.Set(col, row, value)
		}
	}
	return merged
}

func (b *Builder) logInfo(message string) {
	if b.LogContext != nil {
		util.LogInfo(b.LogContext, message)
	}
}

func (b *Builder) logAlert(message string) {
	if b.LogContext != nil {
		util.LogAlert(b.LogContext, message)
	}
}
