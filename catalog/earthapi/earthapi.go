// Copyright 2016, RadiantBlue Technologies, Inc.
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

// Package earthapi implements the catalog contract against a remote
// STAC-style imagery API with server-side filtering and signed asset
// downloads.
package earthapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/model"
	"github.com/greenwatch/ndvi-broker/util"
)

const maxRequestAttempts = 3

var retryBackoff = 2 * time.Second

// sleepFunc is swapped in tests to avoid real backoff delays
var sleepFunc = time.Sleep

// GetScenes returns the scene candidates matching the search options,
// ordered by ascending cloud cover then descending acquisition date.
// An empty result is not an error. Transient provider failures are
// retried a small fixed number of times with backoff.
func GetScenes(options catalog.SearchOptions, context *Context) ([]catalog.Scene, error) {
	var req request

	req.Collections = append(req.Collections, Collection)
	req.Filter.Type = "AndFilter"
	req.Filter.Config = make([]interface{}, 0)
	if options.Bbox != nil {
		req.Filter.Config = append(req.Filter.Config, objectFilter{Type: "GeometryFilter", FieldName: "geometry", Config: options.Bbox.Geometry()})
	}
	if !options.MinAcquiredDate.IsZero() || !options.MaxAcquiredDate.IsZero() {
		dc := dateConfig{}
		if !options.MinAcquiredDate.IsZero() {
			dc.GTE = options.MinAcquiredDate.Format(model.StandardTimeLayout)
		}
		if !options.MaxAcquiredDate.IsZero() {
			dc.LTE = options.MaxAcquiredDate.Format(model.StandardTimeLayout)
		}
		req.Filter.Config = append(req.Filter.Config, objectFilter{Type: "DateRangeFilter", FieldName: "acquired", Config: dc})
	}
	if options.MaxCloudCover > 0 {
		cc := rangeConfig{LTE: options.MaxCloudCover}
		req.Filter.Config = append(req.Filter.Config, objectFilter{Type: "RangeFilter", FieldName: "eo:cloud_cover", Config: cc})
	}
	if options.Baseline != "" {
		req.Filter.Config = append(req.Filter.Config, objectFilter{Type: "StringFilter", FieldName: "s2:processing_baseline", Config: stringConfig{EQ: options.Baseline}})
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal request object %#v.", req), err)
	}

	responseBody, err := searchWithRetry(requestBody, context)
	if err != nil {
		return nil, err
	}

	scenes, err := parseSearchResults(context, responseBody)
	if err != nil {
		return nil, err
	}
	catalog.SortScenes(scenes)
	return scenes, nil
}

func searchWithRetry(requestBody []byte, context *Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxRequestAttempts; attempt++ {
		if attempt > 1 {
			sleepFunc(retryBackoff * time.Duration(1<<(attempt-2)))
			util.LogInfo(context, fmt.Sprintf("Retrying Earth API search (attempt %d of %d)", attempt, maxRequestAttempts))
		}

		response, err := apiRequest(apiRequestInput{method: "POST", inputURL: "catalog/v1/search", body: requestBody, contentType: "application/json"}, context)
		if err != nil {
			// Network failure; worth a retry
			lastErr = catalog.QueryError{Provider: "earthapi", Cause: err}
			continue
		}

		switch {
		case (response.StatusCode >= 400) && (response.StatusCode < 500):
			message := fmt.Sprintf("Failed to discover scenes from the Earth API: %v. ", response.Status)
			util.LogAlert(context, message)
			response.Body.Close()
			return nil, catalog.QueryError{Provider: "earthapi", Cause: util.HTTPErr{Status: response.StatusCode, Message: message}}
		case response.StatusCode >= 500:
			// Server trouble; worth a retry
			lastErr = catalog.QueryError{Provider: "earthapi", Cause: errors.New(response.Status)}
			response.Body.Close()
			continue
		}

		responseBody, _ := ioutil.ReadAll(response.Body)
		response.Body.Close()
		return responseBody, nil
	}
	util.LogSimpleErr(context, "Earth API search did not succeed after retries.", lastErr)
	return nil, lastErr
}

// SignAssetURL exchanges an asset location for a short-lived signed
// download URL
func SignAssetURL(assetURL string, context *Context) (string, error) {
	signURL := resolveURL("catalog/v1/sign?href="+url.QueryEscape(assetURL), context)
	var signed signedAsset
	if _, err := util.ReqByObjJSON("GET", signURL, authHeader(context), nil, &signed); err != nil {
		return "", catalog.QueryError{Provider: "earthapi", Cause: err}
	}
	if signed.Href == "" {
		return "", catalog.QueryError{Provider: "earthapi", Cause: errors.New("signing endpoint returned an empty href")}
	}
	return signed.Href, nil
}

func authHeader(context *Context) string {
	if context.APIKey == "" {
		return ""
	}
	return "Bearer " + context.APIKey
}

func resolveURL(inputURL string, context *Context) string {
	if strings.Contains(inputURL, context.BaseURL) {
		return inputURL
	}
	baseURL, _ := url.Parse(context.BaseURL)
	parsedRelativeURL, _ := url.Parse(inputURL)
	if baseURL == nil || parsedRelativeURL == nil {
		return inputURL
	}
	return baseURL.ResolveReference(parsedRelativeURL).String()
}

// apiRequest performs the request
func apiRequest(input apiRequestInput, context *Context) (*http.Response, error) {
	inputURL := resolveURL(input.inputURL, context)

	request, err := http.NewRequest(input.method, inputURL, bytes.NewBuffer(input.body))
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", inputURL), err)
	}
	if input.contentType != "" {
		request.Header.Set("Content-Type", input.contentType)
	}
	if auth := authHeader(context); auth != "" {
		request.Header.Set("Authorization", auth)
	}

	util.LogAudit(context, util.LogAuditInput{Actor: "earthapi/apiRequest", Action: input.method, Actee: inputURL, Message: "Requesting data from the Earth API", Severity: util.INFO})
	return util.HTTPClient().Do(request)
}
