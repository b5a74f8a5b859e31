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

package main

import (
	"database/sql"
	"io/ioutil"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/greenwatch/ndvi-broker/util"
)

func init() {
	// Mock: connections are opened lazily so no server is needed
	getDbConnectionFunc = func(ctx util.LogContext) (*sql.DB, error) {
		return sql.Open("postgres", "postgres://localhost/ndvi_test?sslmode=disable")
	}
}

func TestServe_CallsLaunchServer(t *testing.T) {
	success := make(chan bool)
	launchServerFunc = func(portStr string, router *mux.Router) { // Mock
		success <- true
	}
	timer := time.NewTimer(1 * time.Second)

	go serveAction(nil)

	select {
	case <-success:
	case <-timer.C:
		assert.Fail(t, "launchServer not called within 1 second of serve()")
	}
}

func TestServe_BaseHealthCheckEndpoint(t *testing.T) {
	success := make(chan bool)
	launchServerFunc = func(portStr string, router *mux.Router) { // Mock
		req := httptest.NewRequest("GET", "/", strings.NewReader(""))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, req)
		responseBody, _ := ioutil.ReadAll(response.Result().Body)
		success <- (string(responseBody) == "OK")
	}

	timer := time.NewTimer(1 * time.Second)

	go serveAction(nil)

	select {
	case <-success:
	case <-timer.C:
		assert.Fail(t, "launchServer not called within 1 second of serve()")
	}
}

func TestGetTimerDuration(t *testing.T) {
	t.Setenv(ingestFrequencyEnv, "2h")
	assert.Equal(t, 2*time.Hour, getTimerDuration())

	t.Setenv(ingestFrequencyEnv, "5s")
	assert.Equal(t, defaultIngestFrequency, getTimerDuration(), "sub-minute frequencies fall back to the default")

	t.Setenv(ingestFrequencyEnv, "")
	assert.Equal(t, defaultIngestFrequency, getTimerDuration())
}

func TestCreateCliApp(t *testing.T) {
	app := createCliApp()

	assert.Equal(t, "ndvi-broker", app.Name)
	names := []string{}
	for _, command := range app.Commands {
		names = append(names, command.Name)
	}
	assert.Equal(t, []string{"run", "serve", "ingest", "migrate", "version"}, names)
}
