package earthapi

import (
	"fmt"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/model"
	"github.com/greenwatch/ndvi-broker/util"
)

func parseSearchResults(context *Context, body []byte) ([]catalog.Scene, error) {
	featureCollection, err := rawBytesToFeatureCollection(context, body)
	if err != nil {
		return nil, err
	}

	scenes := make([]catalog.Scene, len(featureCollection.Features))
	for i, feature := range featureCollection.Features {
		scene, err := sceneFromFeature(feature)
		if err != nil {
			return nil, catalog.QueryError{Provider: "earthapi", Cause: err}
		}
		scenes[i] = *scene
	}

	return scenes, nil
}

func rawBytesToFeatureCollection(context *Context, body []byte) (*geojson.FeatureCollection, error) {
	var (
		featureCollection *geojson.FeatureCollection
		geoJSONParsedData interface{}
		ok                bool
		err               error
	)
	if geoJSONParsedData, err = geojson.Parse(body); err != nil {
		err = util.LogSimpleErr(context, fmt.Sprintf("Failed to parse GeoJSON.\n%v", string(body)), err)
		return nil, catalog.QueryError{Provider: "earthapi", Cause: err}
	}

	if featureCollection, ok = geoJSONParsedData.(*geojson.FeatureCollection); !ok {
		apiErr := util.Error{SimpleMsg: fmt.Sprintf("Expected a FeatureCollection and got %T", geoJSONParsedData), Response: string(body)}
		err = apiErr.Log(context, "")
		return nil, catalog.QueryError{Provider: "earthapi", Cause: err}
	}

	return featureCollection, nil
}

func sceneFromFeature(feature *geojson.Feature) (*catalog.Scene, error) {
	acquiredDate, err := model.ParseSceneTime(feature.PropertyString("acquired"))
	if err != nil {
		return nil, err
	}

	footprint, _ := feature.Geometry.(*geojson.Polygon)

	scene := catalog.Scene{
		ID:           feature.IDStr(),
		AcquiredDate: acquiredDate,
		CloudCover:   feature.PropertyFloat("eo:cloud_cover"),
		Footprint:    footprint,
		Baseline:     feature.PropertyString("s2:processing_baseline"),
		Assets:       map[string]string{},
	}

	assets, ok := feature.Properties["assets"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("scene %s carries no assets", scene.ID)
	}
	for _, band := range []string{catalog.BandRed, catalog.BandNIR, catalog.BandSCL} {
		href, ok := assets[band].(string)
		if !ok || href == "" {
			return nil, fmt.Errorf("scene %s is missing the %s asset", scene.ID, band)
		}
		scene.Assets[band] = href
	}

	return &scene, nil
}
