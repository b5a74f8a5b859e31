// Package pipeline orchestrates a full NDVI run: ROI preparation, one
// composite per period via the strategy chain, and export of the
// results.
package pipeline

import (
	"context"
	"fmt"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/composite"
	"github.com/greenwatch/ndvi-broker/crs"
	"github.com/greenwatch/ndvi-broker/export"
	"github.com/greenwatch/ndvi-broker/raster"
	"github.com/greenwatch/ndvi-broker/roi"
	"github.com/greenwatch/ndvi-broker/util"
)

// PeriodReport is one line of the run summary
type PeriodReport struct {
	Label      string
	Outcome    string
	Strategy   string
	SceneCount int
	Coverage   float64
	OutputPath string
	Error      string
}

// Summary collects the per-period reports of a run
type Summary struct {
	Reports []PeriodReport
}

// String renders the summary for the log
func (s *Summary) String() string {
	out := "period\toutcome\tstrategy\tscenes\tcoverage\toutput\n"
	for _, report := range s.Reports {
		line := fmt.Sprintf("%s\t%s\t%s\t%d\t%.2f\t%s", report.Label, report.Outcome,
			report.Strategy, report.SceneCount, report.Coverage, report.OutputPath)
		if report.Error != "" {
			line += "\terror: " + report.Error
		}
		out += line + "\n"
	}
	return out
}

// Pipeline runs periods sequentially against a prepared catalog and
// exporter
type Pipeline struct {
	Config     *Config
	Catalog    catalog.Catalog
	Exporter   *export.Exporter
	LogContext util.LogContext
}

// Run executes every configured period. Setup failures abort the run;
// a failure inside one period is recorded in the summary and the run
// moves on, keeping outputs already written.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	logCtx := p.LogContext
	if logCtx == nil {
		logCtx = &util.BasicLogContext{}
	}

	region, err := roi.Load(p.Config.ROIPath, p.Config.SourceEPSG)
	if err != nil {
		return nil, err
	}
	if region.EPSG != crs.EPSGWGS84 {
		if region, err = region.Reprojected(crs.EPSGWGS84); err != nil {
			return nil, err
		}
	}

	bbox := region.Bbox()
	template := raster.GridForBounds(bbox[0], bbox[1], bbox[2], bbox[3], p.Config.Resolution)
	util.LogInfo(logCtx, fmt.Sprintf("Region ready: bbox %v, grid %dx%d at %v",
		[]float64(bbox), template.Width, template.Height, p.Config.Resolution))

	builder := &composite.Builder{
		Catalog:    p.Catalog,
		Bbox:       bbox,
		ClipRing:   region.OuterRing(),
		Template:   template,
		Baseline:   p.Config.Baseline,
		Thresholds: p.Config.BuilderThresholds(),
		LogContext: logCtx,
	}

	summary := &Summary{}
	for _, period := range composite.Periods(p.Config.FirstYear, p.Config.LastYear, p.Config.Semesters) {
		summary.Reports = append(summary.Reports, p.runPeriod(ctx, builder, period, logCtx))
	}

	util.LogInfo(logCtx, "Run complete:\n"+summary.String())
	return summary, nil
}

// runPeriod isolates one period: an error or panic here becomes a
// report line, never a run abort
func (p *Pipeline) runPeriod(ctx context.Context, builder *composite.Builder, period composite.Period, logCtx util.LogContext) (report PeriodReport) {
	report.Label = period.Label()

	defer func() {
		if recovered := recover(); recovered != nil {
			report.Outcome = "failed"
			report.Error = fmt.Sprintf("panic: %v", recovered)
			util.LogAlert(logCtx, fmt.Sprintf("Period %v paniced: %v", report.Label, recovered))
		}
	}()

	result, err := builder.Build(period)
	if err != nil {
		report.Outcome = "failed"
		report.Error = err.Error()
		util.LogSimpleErr(logCtx, fmt.Sprintf("Period %v failed", report.Label), err)
		return report
	}

	report.Outcome = result.Outcome.String()
	report.Strategy = result.Strategy
	report.SceneCount = result.SceneCount
	report.Coverage = result.Coverage
	if result.Outcome != composite.Built {
		return report
	}

	path, err := p.Exporter.WriteNDVI(ctx, report.Label, result.Composite.NDVI)
	if err != nil {
		report.Outcome = "failed"
		report.Error = err.Error()
		util.LogSimpleErr(logCtx, fmt.Sprintf("Period %v export failed", report.Label), err)
		return report
	}
	report.OutputPath = path
	return report
}
