package model

import (
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// BasicSceneResult holds the fields common to all scene results served
// by the broker endpoints
type BasicSceneResult struct {
	ID           string
	Geometry     interface{}
	CloudCover   float64
	AcquiredDate time.Time
	SensorName   string
	Baseline     string
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (sr BasicSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	f := geojson.NewFeature(sr.Geometry, sr.ID, map[string]interface{}{
		"cloudCover":   sr.CloudCover,
		"acquiredDate": sr.AcquiredDate.Format(StandardTimeLayout),
		"sensorName":   sr.SensorName,
		"baseline":     sr.Baseline,
	})
	f.Bbox = f.ForceBbox()
	return f, nil
}

// IndexedSceneResult is a local-index search result: basic data plus
// the band asset locations under the scene folder
type IndexedSceneResult struct {
	BasicSceneResult
	SentinelBands
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (result IndexedSceneResult) GeoJSONFeature() (*geojson.Feature, error) {
	feature, err := result.BasicSceneResult.GeoJSONFeature()
	if err != nil {
		return nil, err
	}

	err = result.SentinelBands.Apply(feature)
	if err != nil {
		return nil, err
	}

	return feature, nil
}

// MultiSceneResult is a container type for bundling multiple results
// together, e.g. as results from a discover endpoint
type MultiSceneResult struct {
	FeatureCreators []GeoJSONFeatureCreator
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (result MultiSceneResult) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(result.FeatureCreators))
	for i, creator := range result.FeatureCreators {
		features[i], err = creator.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
	}

	return geojson.NewFeatureCollection(features), nil
}
