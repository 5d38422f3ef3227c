package tile

import (
	"fmt"
	"math"
	"strings"
)

// AddressLen is the length of every encoded tile address.
const AddressLen = 8

// DefaultRegionSize is the sector size, in degrees, datasets are grouped by.
const DefaultRegionSize = 5

// An Address names a one degree tile by its south-west corner, for example
// "S026W049".
type Address string

func (a Address) String() string {
	return string(a)
}

// Rect returns the rect covered by a.
func (a Address) Rect() (GeoRect, error) {
	return Decode(string(a))
}

// FormatError reports a malformed tile address or region name.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid tile address %q: %s", e.Input, e.Reason)
}

// Encode returns the address of the tile containing (lat, lon).
func Encode(lat, lon float64) Address {
	ns, rlat := hemisphere(lat, North, South)
	ew, rlon := hemisphere(lon, East, West)
	return Address(fmt.Sprintf("%c%03d%c%03d", ns, rlat, ew, rlon))
}

// hemisphere returns the hemisphere of v and its floored magnitude, reduced
// to three digits.
func hemisphere(v float64, pos, neg Hemisphere) (Hemisphere, int) {
	h := pos
	if v < 0 {
		h = neg
	}
	f := math.Floor(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return h, 0
	}
	return h, int(math.Mod(math.Abs(f), 1000))
}

// Decode parses an address and returns the one degree rect it covers, with
// (Lat1, Lon1) as the south-west corner.
func Decode(s string) (GeoRect, error) {
	if len(s) != AddressLen {
		return GeoRect{}, &FormatError{Input: s, Reason: fmt.Sprintf("want %d characters, got %d", AddressLen, len(s))}
	}
	ns := Hemisphere(s[0])
	if ns != North && ns != South {
		return GeoRect{}, &FormatError{Input: s, Reason: "first character must be N or S"}
	}
	ew := Hemisphere(s[4])
	if ew != East && ew != West {
		return GeoRect{}, &FormatError{Input: s, Reason: "fifth character must be E or W"}
	}
	rlat, ok := parseDigits(s[1:4])
	if !ok {
		return GeoRect{}, &FormatError{Input: s, Reason: "latitude must be three digits"}
	}
	rlon, ok := parseDigits(s[5:8])
	if !ok {
		return GeoRect{}, &FormatError{Input: s, Reason: "longitude must be three digits"}
	}

	lat := float64(rlat * ns.sign())
	lon := float64(rlon * ew.sign())
	return GeoRect{
		Lat1: lat,
		Lon1: lon,
		Lat2: lat + 1,
		Lon2: lon + 1,
	}, nil
}

func parseDigits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// TileRect returns the rect of the tile containing (lat, lon).
func TileRect(lat, lon float64) GeoRect {
	// Encode always yields a well formed address.
	r, _ := Decode(string(Encode(lat, lon)))
	return r
}

// RegionOf returns the address of the sector of size degrees containing
// (lat, lon).
func RegionOf(lat, lon float64, size int) Address {
	if size <= 0 {
		size = DefaultRegionSize
	}
	s := float64(size)
	return Encode(math.Floor(lat/s)*s, math.Floor(lon/s)*s)
}

// ParseRegion parses a region name made of its south-west and north-east
// addresses joined by an underscore, such as "N080W030_N090E000".
func ParseRegion(name string) (Region, error) {
	sw, ne, ok := strings.Cut(name, "_")
	if !ok {
		return Region{}, &FormatError{Input: name, Reason: "region must be two addresses joined by '_'"}
	}
	lo, err := Decode(sw)
	if err != nil {
		return Region{}, err
	}
	hi, err := Decode(ne)
	if err != nil {
		return Region{}, err
	}
	return Region{
		Name:   name,
		MinLat: int(lo.Lat1),
		MinLon: int(lo.Lon1),
		MaxLat: int(hi.Lat1),
		MaxLon: int(hi.Lon1),
	}, nil
}

// Contains reports whether the tile at a belongs to r.
func (r Region) Contains(a Address) bool {
	rect, err := a.Rect()
	if err != nil {
		return false
	}
	lat, lon := int(rect.Lat1), int(rect.Lon1)
	return r.MinLat <= lat && lat < r.MaxLat && r.MinLon <= lon && lon < r.MaxLon
}
