package raster

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "raster-test")
	assert.Nil(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestWorldFilePath(t *testing.T) {
	assert.Equal(t, "/data/scene_B04.tfw", WorldFilePath("/data/scene_B04.tif"))
	assert.Equal(t, "ndvi_2020_S1.tfw", WorldFilePath("ndvi_2020_S1.tif"))
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "band.tif")

	grid := NewGrid(3, 2, -74.1, 4.65, 0.0001, -0.0001)
	grid.Set(0, 0, 120)
	grid.Set(1, 0, 3000)
	grid.Set(2, 1, 65535)
	// (1,1) left as no-data

	err := WriteGridTIFF(grid, path, ReflectanceEncoding)
	assert.Nil(t, err)

	back, err := ReadBandTIFF(path)
	assert.Nil(t, err)

	assert.Equal(t, grid.Width, back.Width)
	assert.Equal(t, grid.Height, back.Height)
	assert.InDelta(t, grid.OriginX, back.OriginX, 1e-9)
	assert.InDelta(t, grid.OriginY, back.OriginY, 1e-9)
	assert.InDelta(t, grid.PixelWidth, back.PixelWidth, 1e-12)

	value, valid := back.At(0, 0)
	assert.True(t, valid)
	assert.Equal(t, 120.0, value)
	value, valid = back.At(2, 1)
	assert.True(t, valid)
	assert.Equal(t, 65535.0, value)
	_, valid = back.At(1, 1)
	assert.False(t, valid)
}

func TestWriteGridTIFF_Deterministic(t *testing.T) {
	dir := tempDir(t)
	first := filepath.Join(dir, "a.tif")
	second := filepath.Join(dir, "b.tif")

	grid := NewGrid(4, 4, 0, 4, 1, -1)
	for i := 0; i < 16; i += 2 {
		grid.Values[i] = float64(i * 100)
		grid.Valid[i] = true
	}

	assert.Nil(t, WriteGridTIFF(grid, first, ReflectanceEncoding))
	assert.Nil(t, WriteGridTIFF(grid, second, ReflectanceEncoding))

	firstBytes, err := ioutil.ReadFile(first)
	assert.Nil(t, err)
	secondBytes, err := ioutil.ReadFile(second)
	assert.Nil(t, err)
	assert.Equal(t, firstBytes, secondBytes)
}

func TestReadBandTIFF_MissingWorldFile(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "band.tif")

	grid := NewGrid(2, 2, 0, 2, 1, -1)
	grid.Set(0, 0, 1)
	assert.Nil(t, WriteGridTIFF(grid, path, ReflectanceEncoding))
	assert.Nil(t, os.Remove(WorldFilePath(path)))

	_, err := ReadBandTIFF(path)
	assert.Error(t, err)
}
