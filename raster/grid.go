// Package raster holds the in-memory grid model the compositor works
// on, plus band math and georeferenced TIFF input/output.
package raster

import (
	"fmt"
	"math"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Grid is a single-band raster in a north-up grid: OriginX/OriginY is
// the world coordinate of the top-left corner, PixelWidth is positive
// and PixelHeight negative. Validity is tracked explicitly so that
// no-data never silently propagates through band math.
type Grid struct {
	Width       int
	Height      int
	OriginX     float64
	OriginY     float64
	PixelWidth  float64
	PixelHeight float64
	Values      []float64
	Valid       []bool
}

// NewGrid allocates an all-invalid grid with the given shape
func NewGrid(width, height int, originX, originY, pixelWidth, pixelHeight float64) *Grid {
	return &Grid{
		Width:       width,
		Height:      height,
		OriginX:     originX,
		OriginY:     originY,
		PixelWidth:  pixelWidth,
		PixelHeight: pixelHeight,
		Values:      make([]float64, width*height),
		Valid:       make([]bool, width*height),
	}
}

// GridForBounds allocates a grid covering the given bounds
// (minX, minY, maxX, maxY) at the given pixel size
func GridForBounds(minX, minY, maxX, maxY, pixelSize float64) *Grid {
	width := int((maxX-minX)/pixelSize + 0.5)
	height := int((maxY-minY)/pixelSize + 0.5)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return NewGrid(width, height, minX, maxY, pixelSize, -pixelSize)
}

// At returns the sample at (col, row) and whether it is valid
func (g *Grid) At(col, row int) (float64, bool) {
	i := row*g.Width + col
	return g.Values[i], g.Valid[i]
}

// Set stores a valid sample at (col, row)
func (g *Grid) Set(col, row int, value float64) {
	i := row*g.Width + col
	g.Values[i] = value
	g.Valid[i] = true
}

// SetInvalid marks (col, row) as no-data
func (g *Grid) SetInvalid(col, row int) {
	g.Valid[row*g.Width+col] = false
}

// CellCenter returns the world coordinate of the center of (col, row)
func (g *Grid) CellCenter(col, row int) (float64, float64) {
	x := g.OriginX + (float64(col)+0.5)*g.PixelWidth
	y := g.OriginY + (float64(row)+0.5)*g.PixelHeight
	return x, y
}

// SampleAt returns the nearest sample to the world coordinate (x, y),
// or false if the coordinate falls outside the grid or on no-data
func (g *Grid) SampleAt(x, y float64) (float64, bool) {
	col := int(math.Floor((x - g.OriginX) / g.PixelWidth))
	row := int(math.Floor((y - g.OriginY) / g.PixelHeight))
	if col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return 0, false
	}
	return g.At(col, row)
}

// SameShape reports whether two grids share dimensions and geotransform
func (g *Grid) SameShape(other *Grid) bool {
	return g.Width == other.Width && g.Height == other.Height &&
		g.OriginX == other.OriginX && g.OriginY == other.OriginY &&
		g.PixelWidth == other.PixelWidth && g.PixelHeight == other.PixelHeight
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Width, g.Height, g.OriginX, g.OriginY, g.PixelWidth, g.PixelHeight)
	copy(out.Values, g.Values)
	copy(out.Valid, g.Valid)
	return out
}

// ValidFraction returns the share of pixels carrying data
func (g *Grid) ValidFraction() float64 {
	if len(g.Valid) == 0 {
		return 0
	}
	count := 0
	for _, valid := range g.Valid {
		if valid {
			count++
		}
	}
	return float64(count) / float64(len(g.Valid))
}

// ClipToRing marks every pixel whose center falls outside the ring as
// no-data. The ring is flat XY coordinates in the grid's CRS.
func (g *Grid) ClipToRing(ring []float64) *Grid {
	out := g.Clone()
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			x, y := g.CellCenter(col, row)
			if !xy.IsPointInRing(geom.XY, geom.Coord{x, y}, ring) {
				out.SetInvalid(col, row)
			}
		}
	}
	return out
}

// CoverageFraction returns the share of pixels inside the ring that
// carry valid data. Used to judge whether a composite is usable.
func (g *Grid) CoverageFraction(ring []float64) float64 {
	inside, covered := 0, 0
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			x, y := g.CellCenter(col, row)
			if !xy.IsPointInRing(geom.XY, geom.Coord{x, y}, ring) {
				continue
			}
			inside++
			if _, valid := g.At(col, row); valid {
				covered++
			}
		}
	}
	if inside == 0 {
		return 0
	}
	return float64(covered) / float64(inside)
}

func shapeMismatchError(operation string, a, b *Grid) error {
	return fmt.Errorf("%s: grid shapes differ (%dx%d vs %dx%d)", operation, a.Width, a.Height, b.Width, b.Height)
}
