package localindex

import (
	"database/sql"

	"github.com/greenwatch/ndvi-broker/catalog/localindex/db"
	"github.com/greenwatch/ndvi-broker/model"
)

func getMetadata(tx *sql.Tx, sceneID string) (model.GeoJSONFeatureCreator, error) {
	scene, err := db.GetSceneByID(tx, sceneID)
	if err != nil {
		return nil, err
	}

	return indexedSceneResultFromScene(*scene)
}

func indexedSceneResultFromScene(scene db.IndexedScene) (model.IndexedSceneResult, error) {
	bands, err := model.NewSentinelBands(scene.SceneURLString, scene.ProductID)
	if err != nil {
		return model.IndexedSceneResult{}, err
	}

	return model.IndexedSceneResult{
		BasicSceneResult: model.BasicSceneResult{
			ID:           scene.ProductID,
			Geometry:     scene.Footprint(),
			CloudCover:   scene.CloudCover,
			AcquiredDate: scene.AcquiredDate,
			SensorName:   "Sentinel-2",
			Baseline:     scene.Baseline,
		},
		SentinelBands: *bands,
	}, nil
}
