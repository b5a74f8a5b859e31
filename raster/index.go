package raster

// Sentinel-2 scene classification (SCL) values excluded from
// composites: cloud shadow, cloud medium probability, cloud high
// probability, thin cirrus.
var sclInvalidClasses = map[int]bool{
	3:  true,
	8:  true,
	9:  true,
	10: true,
}

// NDVI computes (NIR - RED) / (NIR + RED) per pixel. A pixel is
// no-data in the output when either input is no-data or when the
// denominator is zero.
func NDVI(nir, red *Grid) (*Grid, error) {
	if !nir.SameShape(red) {
		return nil, shapeMismatchError("ndvi", nir, red)
	}
	out := NewGrid(nir.Width, nir.Height, nir.OriginX, nir.OriginY, nir.PixelWidth, nir.PixelHeight)
	for i := range out.Values {
		if !nir.Valid[i] || !red.Valid[i] {
			continue
		}
		denominator := nir.Values[i] + red.Values[i]
		if denominator == 0 {
			continue
		}
		out.Values[i] = (nir.Values[i] - red.Values[i]) / denominator
		out.Valid[i] = true
	}
	return out, nil
}

// ApplySCLMask returns a copy of the band with pixels flagged as cloud
// or shadow by the scene classification layer marked no-data
func ApplySCLMask(band, scl *Grid) (*Grid, error) {
	if !band.SameShape(scl) {
		return nil, shapeMismatchError("scl mask", band, scl)
	}
	out := band.Clone()
	for i := range out.Values {
		if !scl.Valid[i] {
			out.Valid[i] = false
			continue
		}
		if sclInvalidClasses[int(scl.Values[i])] {
			out.Valid[i] = false
		}
	}
	return out, nil
}
