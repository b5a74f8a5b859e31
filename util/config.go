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

package util

import (
	"os"
	"strconv"
)

// Environment variables
const (
	EARTH_API_URL        = "EARTH_API_URL"
	EARTH_API_KEY        = "EARTH_API_KEY"
	NDVI_OUTPUT_DIR      = "NDVI_OUTPUT_DIR"
	OBJECT_STORE_URL     = "OBJECT_STORE_URL"
	OBJECT_STORE_KEY     = "OBJECT_STORE_KEY"
	OBJECT_STORE_SECRET  = "OBJECT_STORE_SECRET"
	OBJECT_STORE_BUCKET  = "OBJECT_STORE_BUCKET"
	OBJECT_STORE_USE_SSL = "OBJECT_STORE_USE_SSL"
)

// GetEarthAPIURL returns a string for the EARTH_API_URL environment variable
func GetEarthAPIURL() string {
	earthAPIURL, ok := os.LookupEnv(EARTH_API_URL)
	if !ok {
		LogAlert(&BasicLogContext{}, "Did not get Earth API URL from the environment. The remote catalog will not be available.")
	}
	return earthAPIURL
}

// GetEarthAPIKey returns a string for the EARTH_API_KEY environment variable
func GetEarthAPIKey() string {
	earthAPIKey, ok := os.LookupEnv(EARTH_API_KEY)
	if !ok {
		LogAlert(&BasicLogContext{}, "Did not get an Earth API key from the environment. Remote catalog requests will be anonymous.")
	}
	return earthAPIKey
}

// GetOutputDir returns the directory for exported rasters, defaulting
// to the working directory
func GetOutputDir() string {
	outputDir, ok := os.LookupEnv(NDVI_OUTPUT_DIR)
	if !ok {
		return "."
	}
	return outputDir
}

// ObjectStoreConfig holds the connection settings for an S3-compatible
// store used for mirroring exported rasters
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// GetObjectStoreConfig reads the object store settings from the
// environment; ok is false when no endpoint is configured
func GetObjectStoreConfig() (config ObjectStoreConfig, ok bool) {
	config.Endpoint, ok = os.LookupEnv(OBJECT_STORE_URL)
	if !ok {
		return config, false
	}
	config.AccessKey = os.Getenv(OBJECT_STORE_KEY)
	config.SecretKey = os.Getenv(OBJECT_STORE_SECRET)
	config.Bucket = os.Getenv(OBJECT_STORE_BUCKET)
	config.UseSSL, _ = strconv.ParseBool(os.Getenv(OBJECT_STORE_USE_SSL))
	return config, true
}
