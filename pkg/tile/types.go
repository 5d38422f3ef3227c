package tile

import (
	"fmt"
	"math"
)

// Output format constants
const (
	OUTFMT_PNG = iota
	OUTFMT_JPEG
	OUTFMT_TIFF
)

// Hemisphere is one side of the equator or the prime meridian.
type Hemisphere byte

const (
	North Hemisphere = 'N'
	South Hemisphere = 'S'
	East  Hemisphere = 'E'
	West  Hemisphere = 'W'
)

func (h Hemisphere) String() string {
	return string(h)
}

// sign returns -1 for the southern and western hemispheres and 1 otherwise.
func (h Hemisphere) sign() int {
	if h == South || h == West {
		return -1
	}
	return 1
}

// GeoPoint is a signed latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Midpoint returns the point halfway between p and q.
func (p GeoPoint) Midpoint(q GeoPoint) GeoPoint {
	return GeoPoint{
		Lat: p.Lat + (q.Lat-p.Lat)*0.5,
		Lon: p.Lon + (q.Lon-p.Lon)*0.5,
	}
}

// Validate reports coordinates outside [-90, 90] x [-180, 180].
func (p GeoPoint) Validate() error {
	switch {
	case math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90:
		return fmt.Errorf("latitude %v must be between -90 and 90", p.Lat)
	case math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180:
		return fmt.Errorf("longitude %v must be between -180 and 180", p.Lon)
	}
	return nil
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%g, %g)", p.Lat, p.Lon)
}

// GeoRect is an axis-aligned box. Its corners are not ordered; consumers
// normalize when they need to.
type GeoRect struct {
	Lat1, Lon1, Lat2, Lon2 float64
}

// RectFromPoints returns the rect spanned by p1 and p2, keeping their order.
func RectFromPoints(p1, p2 GeoPoint) GeoRect {
	return GeoRect{Lat1: p1.Lat, Lon1: p1.Lon, Lat2: p2.Lat, Lon2: p2.Lon}
}

// Point1 returns the (Lat1, Lon1) corner.
func (r GeoRect) Point1() GeoPoint {
	return GeoPoint{Lat: r.Lat1, Lon: r.Lon1}
}

// Point2 returns the (Lat2, Lon2) corner.
func (r GeoRect) Point2() GeoPoint {
	return GeoPoint{Lat: r.Lat2, Lon: r.Lon2}
}

// Normalize returns r with Lat1 <= Lat2 and Lon1 <= Lon2.
func (r GeoRect) Normalize() GeoRect {
	return GeoRect{
		Lat1: min(r.Lat1, r.Lat2),
		Lon1: min(r.Lon1, r.Lon2),
		Lat2: max(r.Lat1, r.Lat2),
		Lon2: max(r.Lon1, r.Lon2),
	}
}

// Contains reports whether p lies inside the normalized r, edges included.
func (r GeoRect) Contains(p GeoPoint) bool {
	n := r.Normalize()
	return p.Lat >= n.Lat1 && p.Lat <= n.Lat2 && p.Lon >= n.Lon1 && p.Lon <= n.Lon2
}

func (r GeoRect) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", r.Lat1, r.Lat2, r.Lon1, r.Lon2)
}

// Region is a named block of tiles, such as the 5 degree sectors a dataset
// is distributed in.
type Region struct {
	Name   string
	MinLat int
	MinLon int
	MaxLat int
	MaxLon int
}
