package model

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/venicegeo/geojson-go/geojson"
)

// SentinelBands is a mixin holding the locations of the three
// Sentinel-2 assets the pipeline consumes: red (B04), near-infrared
// (B08) and the scene classification layer (SCL)
type SentinelBands struct {
	Red url.URL
	NIR url.URL
	SCL url.URL
}

type sentinelSuffixDestination struct {
	BandSuffix  string
	Destination *url.URL
}

// NewSentinelBands builds band locations by resolving the standard
// band filenames against a scene's asset folder
func NewSentinelBands(sceneFolderURL string, id string) (*SentinelBands, error) {
	baseURL, err := url.Parse(sceneFolderURL)
	if baseURL == nil || baseURL.String() == "" {
		err = errors.New("No base scene asset folder could be parsed")
	}
	if err != nil {
		return nil, err
	}

	bands := SentinelBands{}

	suffixes := []sentinelSuffixDestination{
		{"B04", &bands.Red},
		{"B08", &bands.NIR},
		{"SCL", &bands.SCL},
	}

	for _, dest := range suffixes {
		filename := fmt.Sprintf("%s_%s.tif", id, dest.BandSuffix)
		fileURL, _ := url.Parse("./" + filename)
		*dest.Destination = *baseURL.ResolveReference(fileURL)
	}

	return &bands, nil
}

// Apply implements the GeoJSONFeatureMixin interface
func (sb SentinelBands) Apply(feature *geojson.Feature) error {
	feature.Properties["bands"] = map[string]string{
		"red": sb.Red.String(),
		"nir": sb.NIR.String(),
		"scl": sb.SCL.String(),
	}
	return nil
}
