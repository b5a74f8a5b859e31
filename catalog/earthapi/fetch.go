package earthapi

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/greenwatch/ndvi-broker/catalog"
	"github.com/greenwatch/ndvi-broker/raster"
	"github.com/greenwatch/ndvi-broker/util"
)

// Client binds the package functions into the catalog.Catalog contract
type Client struct {
	Context *Context
}

// NewClient creates a client from the environment configuration
func NewClient() *Client {
	return &Client{Context: &Context{
		BaseURL: util.GetEarthAPIURL(),
		APIKey:  util.GetEarthAPIKey(),
	}}
}

// SearchScenes implements the catalog.Catalog interface
func (c *Client) SearchScenes(options catalog.SearchOptions) ([]catalog.Scene, error) {
	return GetScenes(options, c.Context)
}

// FetchBands implements the catalog.Catalog interface. Band rasters
// and their world files are signed, downloaded to a scratch directory
// and decoded; the scratch files are removed before returning.
func (c *Client) FetchBands(scene catalog.Scene, bands []string) (map[string]*raster.Grid, error) {
	scratchDir, err := ioutil.TempDir("", "earthapi-bands")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratchDir)

	grids := make(map[string]*raster.Grid, len(bands))
	for _, band := range bands {
		assetURL, ok := scene.Assets[band]
		if !ok {
			return nil, fmt.Errorf("scene %s has no %s asset", scene.ID, band)
		}

		localPath := filepath.Join(scratchDir, scene.ID+"_"+band+".tif")
		if err = c.downloadAsset(assetURL, localPath); err != nil {
			return nil, err
		}
		if err = c.downloadAsset(raster.WorldFilePath(assetURL), raster.WorldFilePath(localPath)); err != nil {
			return nil, err
		}

		if grids[band], err = raster.ReadBandTIFF(localPath); err != nil {
			return nil, err
		}
	}
	return grids, nil
}

func (c *Client) downloadAsset(assetURL, localPath string) error {
	signedURL, err := SignAssetURL(assetURL, c.Context)
	if err != nil {
		return err
	}

	response, err := apiRequest(apiRequestInput{method: "GET", inputURL: signedURL}, c.Context)
	if err != nil {
		return catalog.QueryError{Provider: "earthapi", Cause: err}
	}
	defer response.Body.Close()
	if response.StatusCode >= 400 {
		return catalog.QueryError{Provider: "earthapi",
			Cause: util.HTTPErr{Status: response.StatusCode, Message: "asset download failed: " + response.Status}}
	}

	file, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(file, response.Body)
	return err
}
