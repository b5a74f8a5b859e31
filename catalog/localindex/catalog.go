package localindex

import (
	"fmt"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/catalog/localindex/db"
	"github.com/greenwatch/ndvi-broker/model"
	"github.com/greenwatch/ndvi-broker/raster"
	"github.com/greenwatch/ndvi-broker/util"
)

// LocalIndex adapts the scene index to the catalog contract. Band
// files are read straight from the filesystem paths recorded at ingest
// time rather than downloaded.
type LocalIndex struct {
	Context *Context
}

// NewLocalIndex opens a database connection using the given provider
func NewLocalIndex(connectionProvider db.ConnectionProvider) (*LocalIndex, error) {
	database, err := connectionProvider(&util.BasicLogContext{})
	if err != nil {
		return nil, err
	}
	return &LocalIndex{Context: &Context{DB: database}}, nil
}

// SearchScenes queries the index for matching scenes
func (li *LocalIndex) SearchScenes(options catalog.SearchOptions) ([]catalog.Scene, error) {
	tx, err := li.Context.DB.Begin()
	if err != nil {
		return nil, catalog.QueryError{Provider: "localindex", Cause: err}
	}
	defer tx.Commit()

	indexed, err := db.SearchScenes(tx, db.SearchOptions{
		Bbox:            options.Bbox,
		MaxCloudCover:   options.MaxCloudCover,
		MinAcquiredDate: options.MinAcquiredDate,
		MaxAcquiredDate: options.MaxAcquiredDate,
		Baseline:        options.Baseline,
	})
	if err != nil {
		tx.Rollback()
		return nil, catalog.QueryError{Provider: "localindex", Cause: err}
	}

	scenes := make([]catalog.Scene, 0, len(indexed))
	for _, scene := range indexed {
		converted, err := sceneFromIndexed(scene)
		if err != nil {
			util.LogAlert(li.Context, fmt.Sprintf("Skipping indexed scene %v: %v", scene.ProductID, err))
			continue
		}
		scenes = append(scenes, converted)
	}

	catalog.SortScenes(scenes)
	return scenes, nil
}

// FetchBands reads the requested band rasters from local storage
func (li *LocalIndex) FetchBands(scene catalog.Scene, bands []string) (map[string]*raster.Grid, error) {
	grids := make(map[string]*raster.Grid, len(bands))
	for _, band := range bands {
		path, ok := scene.Assets[band]
		if !ok {
			return nil, catalog.QueryError{Provider: "localindex",
				Cause: fmt.Errorf("scene %v has no %v asset", scene.ID, band)}
		}
		grid, err := raster.ReadBandTIFF(path)
		if err != nil {
			return nil, catalog.QueryError{Provider: "localindex", Cause: err}
		}
		grids[band] = grid
	}
	return grids, nil
}

func sceneFromIndexed(scene db.IndexedScene) (catalog.Scene, error) {
	bands, err := model.NewSentinelBands(scene.SceneURLString, scene.ProductID)
	if err != nil {
		return catalog.Scene{}, err
	}

	return catalog.Scene{
		ID:           scene.ProductID,
		AcquiredDate: scene.AcquiredDate,
		CloudCover:   scene.CloudCover,
		Baseline:     scene.Baseline,
		Footprint:    scene.Footprint(),
		Assets: map[string]string{
			catalog.BandRed: bands.Red.String(),
			catalog.BandNIR: bands.NIR.String(),
			catalog.BandSCL: bands.SCL.String(),
		},
	}, nil
}
