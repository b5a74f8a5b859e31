package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/tiff"
)

// Encoding describes how float samples map onto the 16-bit values in
// an exported TIFF: raw = (value - Offset) / Scale, with NoData for
// invalid pixels.
type Encoding struct {
	Scale  float64
	Offset float64
	NoData uint16
}

// ReflectanceEncoding stores raw reflectance digital numbers as-is,
// with 0 as no-data (the Sentinel-2 L2A convention)
var ReflectanceEncoding = Encoding{Scale: 1, Offset: 0, NoData: 0}

// WorldFilePath returns the sidecar world file path for a TIFF
func WorldFilePath(tiffPath string) string {
	ext := filepath.Ext(tiffPath)
	return strings.TrimSuffix(tiffPath, ext) + ".tfw"
}

// ReadBandTIFF reads a 16-bit band raster and its sidecar world file
// into a Grid. Raw zero values are treated as no-data.
func ReadBandTIFF(path string) (*Grid, error) {
	return ReadGridTIFF(path, ReflectanceEncoding)
}

// ReadGridTIFF reads a 16-bit raster and its sidecar world file into a
// Grid, decoding raw values through the given encoding
func ReadGridTIFF(path string, encoding Encoding) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := tiff.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %v", path, err)
	}

	pixelWidth, pixelHeight, originX, originY, err := readWorldFile(WorldFilePath(path))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	grid := NewGrid(bounds.Dx(), bounds.Dy(), originX, originY, pixelWidth, pixelHeight)
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			r, _, _, _ := img.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			if uint16(r) == encoding.NoData {
				continue
			}
			grid.Set(col, row, float64(r)*encoding.Scale+encoding.Offset)
		}
	}
	return grid, nil
}

// WriteGridTIFF writes a grid as a deflate-compressed 16-bit grayscale
// TIFF plus its world file. Output bytes depend only on the grid
// contents, keeping repeated exports identical.
func WriteGridTIFF(grid *Grid, path string, encoding Encoding) error {
	img := image.NewGray16(image.Rect(0, 0, grid.Width, grid.Height))
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			value, valid := grid.At(col, row)
			raw := encoding.NoData
			if valid {
				scaled := (value - encoding.Offset) / encoding.Scale
				if scaled < 0 {
					scaled = 0
				}
				if scaled > 65535 {
					scaled = 65535
				}
				raw = uint16(scaled + 0.5)
			}
			i := img.PixOffset(col, row)
			img.Pix[i] = uint8(raw >> 8)
			img.Pix[i+1] = uint8(raw)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return err
	}

	return writeWorldFile(WorldFilePath(path), grid)
}

// World files carry six lines: pixel x size, two rotation terms, pixel
// y size, then the world coordinate of the CENTER of the first pixel.
func readWorldFile(path string) (pixelWidth, pixelHeight, originX, originY float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("missing world file %s: %v", path, err)
	}
	fields := strings.Fields(string(data))
	if len(fields) < 6 {
		return 0, 0, 0, 0, fmt.Errorf("world file %s: expected 6 values, got %d", path, len(fields))
	}
	values := make([]float64, 6)
	for i, field := range fields[:6] {
		if values[i], err = strconv.ParseFloat(field, 64); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("world file %s: %v", path, err)
		}
	}
	pixelWidth = values[0]
	pixelHeight = values[3]
	originX = values[4] - pixelWidth/2
	originY = values[5] - pixelHeight/2
	return pixelWidth, pixelHeight, originX, originY, nil
}

func writeWorldFile(path string, grid *Grid) error {
	centerX := grid.OriginX + grid.PixelWidth/2
	centerY := grid.OriginY + grid.PixelHeight/2
	content := fmt.Sprintf("%.10f\n0.0\n0.0\n%.10f\n%.10f\n%.10f\n",
		grid.PixelWidth, grid.PixelHeight, centerX, centerY)
	return os.WriteFile(path, []byte(content), 0644)
}
