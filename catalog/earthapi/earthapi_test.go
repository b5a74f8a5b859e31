// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package earthapi

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/greenwatch/ndvi-broker/catalog"
)

func init() {
	sleepFunc = func(time.Duration) {} // no real backoff in tests
}

const searchResponse = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"id": "S2A_CLOUDY",
			"geometry": {"type": "Polygon", "coordinates": [[[-75, 4], [-73, 4], [-73, 5], [-75, 5], [-75, 4]]]},
			"properties": {
				"acquired": "2020-02-01T15:30:00Z",
				"eo:cloud_cover": 40.0,
				"s2:processing_baseline": "04.00",
				"assets": {
					"red": "https://assets.example.localhost/S2A_CLOUDY_B04.tif",
					"nir": "https://assets.example.localhost/S2A_CLOUDY_B08.tif",
					"scl": "https://assets.example.localhost/S2A_CLOUDY_SCL.tif"
				}
			}
		},
		{
			"type": "Feature",
			"id": "S2A_CLEAR",
			"geometry": {"type": "Polygon", "coordinates": [[[-75, 4], [-73, 4], [-73, 5], [-75, 5], [-75, 4]]]},
			"properties": {
				"acquired": "2020-01-15T15:30:00Z",
				"eo:cloud_cover": 5.0,
				"s2:processing_baseline": "04.00",
				"assets": {
					"red": "https://assets.example.localhost/S2A_CLEAR_B04.tif",
					"nir": "https://assets.example.localhost/S2A_CLEAR_B08.tif",
					"scl": "https://assets.example.localhost/S2A_CLEAR_SCL.tif"
				}
			}
		}
	]
}`

func newSearchServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Context) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, &Context{BaseURL: server.URL + "/", APIKey: "test-key"}
}

func testSearchOptions() catalog.SearchOptions {
	return catalog.SearchOptions{
		MinAcquiredDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxAcquiredDate: time.Date(2020, 6, 30, 23, 59, 59, 0, time.UTC),
		MaxCloudCover:   60,
	}
}

func TestGetScenes_ParsesAndOrders(t *testing.T) {
	// Mock
	var capturedBody []byte
	var capturedAuth string
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedBody, _ = ioutil.ReadAll(r.Body)
		capturedAuth = r.Header.Get("Authorization")
		w.Write([]byte(searchResponse))
	})

	// Tested code
	scenes, err := GetScenes(testSearchOptions(), context)

	// Asserts
	assert.Nil(t, err)
	assert.Len(t, scenes, 2)
	assert.Equal(t, "S2A_CLEAR", scenes[0].ID, "scenes must be ordered by ascending cloud cover")
	assert.Equal(t, 5.0, scenes[0].CloudCover)
	assert.Equal(t, "04.00", scenes[0].Baseline)
	assert.Equal(t, "https://assets.example.localhost/S2A_CLEAR_B08.tif", scenes[0].Assets[catalog.BandNIR])
	assert.NotNil(t, scenes[0].Footprint)
	assert.Equal(t, "Bearer test-key", capturedAuth)

	var req map[string]interface{}
	assert.Nil(t, json.Unmarshal(capturedBody, &req))
	assert.Equal(t, []interface{}{Collection}, req["collections"])
	filter := req["filter"].(map[string]interface{})
	assert.Equal(t, "AndFilter", filter["type"])
	assert.Len(t, filter["config"], 2) // date range + cloud cover; no bbox or baseline set
}

func TestGetScenes_EmptyResultIsNotAnError(t *testing.T) {
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "FeatureCollection", "features": []}`))
	})

	scenes, err := GetScenes(testSearchOptions(), context)

	assert.Nil(t, err)
	assert.Empty(t, scenes)
}

func TestGetScenes_RetriesOnServerError(t *testing.T) {
	attempts := 0
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(searchResponse))
	})

	scenes, err := GetScenes(testSearchOptions(), context)

	assert.Nil(t, err)
	assert.Len(t, scenes, 2)
	assert.Equal(t, 3, attempts)
}

func TestGetScenes_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := GetScenes(testSearchOptions(), context)

	assert.Error(t, err)
	assert.IsType(t, catalog.QueryError{}, err)
	assert.Equal(t, maxRequestAttempts, attempts)
}

func TestGetScenes_ClientErrorIsNotRetried(t *testing.T) {
	attempts := 0
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := GetScenes(testSearchOptions(), context)

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSignAssetURL(t *testing.T) {
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://assets.example.localhost/S2A_B04.tif", r.URL.Query().Get("href"))
		w.Write([]byte(`{"href": "https://assets.example.localhost/S2A_B04.tif?sig=abc"}`))
	})

	signed, err := SignAssetURL("https://assets.example.localhost/S2A_B04.tif", context)

	assert.Nil(t, err)
	assert.Equal(t, "https://assets.example.localhost/S2A_B04.tif?sig=abc", signed)
}

func TestSceneFromFeature_MissingAssets(t *testing.T) {
	_, context := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"id": "S2A_BROKEN",
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]},
				"properties": {"acquired": "2020-01-15T15:30:00Z", "eo:cloud_cover": 5.0}
			}]
		}`))
	})

	_, err := GetScenes(testSearchOptions(), context)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "assets")
}
