package tile

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lon float64
		expected Address
	}{
		{name: "south west", lat: -25.7, lon: -48.5, expected: "S026W049"},
		{name: "north east", lat: 59.2, lon: 30.9, expected: "N059E030"},
		{name: "origin", lat: 0, lon: 0, expected: "N000E000"},
		{name: "just below equator", lat: -0.5, lon: -0.5, expected: "S001W001"},
		{name: "integer south", lat: -26, lon: -49, expected: "S026W049"},
		{name: "antimeridian", lat: 89.99, lon: -180, expected: "N089W180"},
		{name: "east edge", lat: -90, lon: 179.5, expected: "S090E179"},
		{name: "out of range truncates", lat: 1234.5, lon: -2001.2, expected: "N234W002"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := Encode(tc.lat, tc.lon)
			assert.Equal(t, tc.expected, actual)
			assert.Len(t, actual.String(), AddressLen)
		})
	}
}

func TestEncode_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Len(t, Encode(v, v).String(), AddressLen)
	}
}

func TestDecode(t *testing.T) {
	rect, err := Decode("S026W049")
	require.NoError(t, err)
	assert.Equal(t, GeoRect{Lat1: -26, Lon1: -49, Lat2: -25, Lon2: -48}, rect)

	rect, err = Address("N045E006").Rect()
	require.NoError(t, err)
	assert.Equal(t, GeoRect{Lat1: 45, Lon1: 6, Lat2: 46, Lon2: 7}, rect)
}

func TestDecode_FormatError(t *testing.T) {
	for _, input := range []string{
		"",
		"S026W04",
		"S026W0490",
		"X026W049",
		"S026X049",
		"S0a6W049",
		"S026W-49",
		"s026w049",
		"026W049S",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(input)
			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.Equal(t, input, formatErr.Input)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for lat := -90; lat < 90; lat++ {
		for lon := -180; lon < 180; lon++ {
			addr := Encode(float64(lat), float64(lon))
			rect, err := Decode(string(addr))
			require.NoError(t, err)
			require.Equal(t, GeoRect{
				Lat1: float64(lat),
				Lon1: float64(lon),
				Lat2: float64(lat + 1),
				Lon2: float64(lon + 1),
			}, rect, "address %s", addr)
			require.Equal(t, addr, Encode(rect.Lat1, rect.Lon1))
		}
	}
}

func TestTileRect_ContainsPoint(t *testing.T) {
	for _, p := range []GeoPoint{
		{Lat: -25.7, Lon: -48.5},
		{Lat: 0.001, Lon: -0.001},
		{Lat: -89.5, Lon: 179.99},
		{Lat: 45.83291118, Lon: 6.86487244},
	} {
		rect := TileRect(p.Lat, p.Lon)
		assert.True(t, rect.Contains(p), "%s not in %s", p, rect)
		assert.Equal(t, 1.0, rect.Lat2-rect.Lat1)
		assert.Equal(t, 1.0, rect.Lon2-rect.Lon1)
	}
}

func TestRegionOf(t *testing.T) {
	testCases := []struct {
		lat, lon float64
		expected Address
	}{
		{lat: -85, lon: -180, expected: "S085W180"},
		{lat: -81, lon: -176, expected: "S085W180"},
		{lat: 81, lon: -176, expected: "N080W180"},
		{lat: 59.5, lon: 30.2, expected: "N055E030"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RegionOf(tc.lat, tc.lon, DefaultRegionSize))
	}
	assert.Equal(t, RegionOf(12.3, 45.6, DefaultRegionSize), RegionOf(12.3, 45.6, 0))
}

func TestParseRegion(t *testing.T) {
	region, err := ParseRegion("N080W030_N090E000")
	require.NoError(t, err)
	assert.Equal(t, Region{Name: "N080W030_N090E000", MinLat: 80, MinLon: -30, MaxLat: 90, MaxLon: 0}, region)

	assert.True(t, region.Contains("N085W010"))
	assert.False(t, region.Contains("N085E000"))
	assert.False(t, region.Contains("bogus"))

	_, err = ParseRegion("N080W030")
	var formatErr *FormatError
	assert.ErrorAs(t, err, &formatErr)

	_, err = ParseRegion("N080W030_N09XE000")
	assert.ErrorAs(t, err, &formatErr)
}

func TestGeoRect_Normalize(t *testing.T) {
	r := GeoRect{Lat1: 2, Lon1: -1, Lat2: -3, Lon2: 4}.Normalize()
	assert.Equal(t, GeoRect{Lat1: -3, Lon1: -1, Lat2: 2, Lon2: 4}, r)
	assert.Equal(t, GeoPoint{Lat: -3, Lon: -1}, r.Point1())
	assert.Equal(t, GeoPoint{Lat: 2, Lon: 4}, r.Point2())
}

func TestGeoPoint_Midpoint(t *testing.T) {
	mid := GeoPoint{Lat: -25.7, Lon: -48.5}.Midpoint(GeoPoint{Lat: -25.3, Lon: -48.1})
	assert.InDelta(t, -25.5, mid.Lat, 1e-9)
	assert.InDelta(t, -48.3, mid.Lon, 1e-9)
}

func TestGeoPointValidate(t *testing.T) {
	assert.NoError(t, GeoPoint{Lat: -90, Lon: 180}.Validate())
	assert.NoError(t, GeoPoint{Lat: 45.5, Lon: -6.25}.Validate())
	assert.Error(t, GeoPoint{Lat: 90.5, Lon: 0}.Validate())
	assert.Error(t, GeoPoint{Lat: 0, Lon: -1e18}.Validate())
	assert.Error(t, GeoPoint{Lat: math.NaN(), Lon: 0}.Validate())
	assert.Error(t, GeoPoint{Lat: 0, Lon: math.Inf(1)}.Validate())
}
