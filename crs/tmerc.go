package crs

import (
	"fmt"
	"math"
)

// transverseMercator implements the ellipsoidal transverse Mercator
// projection using the USGS (Snyder) series expansions, which are
// accurate to well under a centimeter within a few degrees of the
// central meridian.
type transverseMercator struct {
	code          int
	a             float64 // semi-major axis
	f             float64 // flattening
	originLat     float64 // degrees
	originLon     float64 // degrees
	scale         float64
	falseEasting  float64
	falseNorthing float64
}

// EPSG:3116, MAGNA-SIRGAS / Colombia Bogota zone on the GRS80 ellipsoid
var bogotaZone = transverseMercator{
	code:          3116,
	a:             6378137.0,
	f:             1 / 298.257222101,
	originLat:     4.596200416666666,
	originLon:     -74.07750791666666,
	scale:         1.0,
	falseEasting:  1000000.0,
	falseNorthing: 1000000.0,
}

// Vertices more than ~6 degrees from the central meridian are outside
// the zone's intended domain and the series loses validity.
const tmercMaxLonDelta = 6.0

func (tm transverseMercator) e2() float64 {
	return tm.f * (2 - tm.f)
}

// meridionalArc computes the distance along the meridian from the
// equator to the given latitude (radians)
func (tm transverseMercator) meridionalArc(lat float64) float64 {
	e2 := tm.e2()
	e4 := e2 * e2
	e6 := e4 * e2
	return tm.a * ((1-e2/4-3*e4/64-5*e6/256)*lat -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*lat) +
		(15*e4/256+45*e6/1024)*math.Sin(4*lat) -
		(35*e6/3072)*math.Sin(6*lat))
}

func (tm transverseMercator) forward(lon, lat float64) (float64, float64, error) {
	if math.Abs(lat) > 90 {
		return 0, 0, ProjectionError{Code: tm.code, Message: fmt.Sprintf("latitude %v outside projection domain", lat)}
	}
	if math.Abs(lon-tm.originLon) > tmercMaxLonDelta {
		return 0, 0, ProjectionError{Code: tm.code,
			Message: fmt.Sprintf("longitude %v too far from central meridian %v", lon, tm.originLon)}
	}

	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	lambda0 := tm.originLon * math.Pi / 180
	phi0 := tm.originLat * math.Pi / 180

	e2 := tm.e2()
	ep2 := e2 / (1 - e2)

	sinPhi := math.Sin(phi)
	cosPhi := math.Cos(phi)
	n := tm.a / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := math.Tan(phi) * math.Tan(phi)
	c := ep2 * cosPhi * cosPhi
	a := (lambda - lambda0) * cosPhi

	m := tm.meridionalArc(phi)
	m0 := tm.meridionalArc(phi0)

	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	x := tm.falseEasting + tm.scale*n*(a+
		(1-t+c)*a3/6+
		(5-18*t+t*t+72*c-58*ep2)*a5/120)
	y := tm.falseNorthing + tm.scale*(m-m0+n*math.Tan(phi)*(a2/2+
		(5-t+9*c+4*c*c)*a4/24+
		(61-58*t+t*t+600*c-330*ep2)*a6/720))

	return x, y, nil
}

func (tm transverseMercator) inverse(x, y float64) (float64, float64, error) {
	e2 := tm.e2()
	ep2 := e2 / (1 - e2)
	phi0 := tm.originLat * math.Pi / 180

	m := tm.meridionalArc(phi0) + (y-tm.falseNorthing)/tm.scale
	e4 := e2 * e2
	e6 := e4 * e2
	mu := m / (tm.a * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := tm.a / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := tm.a * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (x - tm.falseEasting) / (n1 * tm.scale)

	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	phi := phi1 - (n1 * tanPhi1 / r1) * (d2/2 -
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*d4/24 +
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*d6/720)
	lambda := tm.originLon*math.Pi/180 + (d-
		(1+2*t1+c1)*d3/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*d5/120)/cosPhi1

	lon := lambda * 180 / math.Pi
	lat := phi * 180 / math.Pi
	if math.Abs(lon-tm.originLon) > tmercMaxLonDelta {
		return 0, 0, ProjectionError{Code: tm.code,
			Message: fmt.Sprintf("easting %v outside projection domain", x)}
	}
	return lon, lat, nil
}
