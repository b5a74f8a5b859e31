package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 120 * time.Second}

// HTTPClient returns the shared HTTP client for outbound provider requests
func HTTPClient() *http.Client {
	return httpClient
}

// ReqByObjJSON makes an HTTP request with a JSON-marshaled input object
// and unmarshals the response body into the output object. The auth
// parameter, when not empty, is sent as the Authorization header.
func ReqByObjJSON(method, url, auth string, input, output interface{}) (*http.Response, error) {
	var bodyReader *bytes.Buffer
	if input != nil {
		requestBody, err := json.Marshal(input)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(requestBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	request, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if auth != "" {
		request.Header.Set("Authorization", auth)
	}

	response, err := HTTPClient().Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBody, _ := ioutil.ReadAll(response.Body)
	if response.StatusCode >= 400 {
		return response, HTTPErr{Status: response.StatusCode,
			Message: fmt.Sprintf("%s %s failed: %s", method, url, response.Status)}
	}
	if output != nil {
		if err = json.Unmarshal(responseBody, output); err != nil {
			return response, err
		}
	}
	return response, nil
}
