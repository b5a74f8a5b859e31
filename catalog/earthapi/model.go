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
	"github.com/google/uuid"
)

// Collection is the imagery collection every search targets
const Collection = "sentinel-2-l2a"

// Context is the context for an Earth API operation
type Context struct {
	BaseURL   string
	APIKey    string
	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return "ndvi-broker"
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID = uuid.New().String()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

type request struct {
	Collections []string `json:"collections"`
	Filter      filter   `json:"filter"`
}

type filter struct {
	Type   string        `json:"type"`
	Config []interface{} `json:"config"`
}

type objectFilter struct {
	Type      string      `json:"type"`
	FieldName string      `json:"field_name"`
	Config    interface{} `json:"config"`
}

type dateConfig struct {
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`
	GT  string `json:"gt,omitempty"`
	LT  string `json:"lt,omitempty"`
}

type rangeConfig struct {
	GTE float64 `json:"gte,omitempty"`
	LTE float64 `json:"lte,omitempty"`
	GT  float64 `json:"gt,omitempty"`
	LT  float64 `json:"lt,omitempty"`
}

type stringConfig struct {
	EQ string `json:"eq"`
}

// signedAsset is the response of the asset signing endpoint
type signedAsset struct {
	Href string `json:"href"`
}

type apiRequestInput struct {
	method      string
	inputURL    string // URL may be relative or absolute based on the base URL
	body        []byte
	contentType string
}
