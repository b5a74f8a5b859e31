package localindex

import (
	"database/sql"

	"github.com/greenwatch/ndvi-broker/catalog/localindex/db"
	"github.com/greenwatch/ndvi-broker/model"
)

func discoverScenes(tx *sql.Tx, options db.SearchOptions) (model.GeoJSONFeatureCollectionCreator, error) {
	scenes, err := db.SearchScenes(tx, options)
	if err != nil {
		return nil, err
	}

	multiResult := model.MultiSceneResult{
		FeatureCreators: make([]model.GeoJSONFeatureCreator, len(scenes)),
	}

	for i, scene := range scenes {
		if multiResult.FeatureCreators[i], err = indexedSceneResultFromScene(scene); err != nil {
			return nil, err
		}
	}

	return multiResult, nil
}
