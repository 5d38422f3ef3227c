package mosaic

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiesman99/mosaic/pkg/tile"
)

func TestCropWindow(t *testing.T) {
	testCases := []struct {
		name     string
		rect     tile.GeoRect
		size     image.Point
		expected image.Rectangle
	}{
		{
			name:     "inside one tile",
			rect:     tile.GeoRect{Lat1: -25.7, Lon1: -48.5, Lat2: -25.3, Lon2: -48.1},
			size:     image.Pt(200, 100),
			expected: image.Rect(60, 50, 140, 90),
		},
		{
			name:     "whole tile",
			rect:     tile.GeoRect{Lat1: 11, Lon1: 22, Lat2: 12, Lon2: 23},
			size:     image.Pt(3601, 3601),
			expected: image.Rect(0, 0, 3601, 3601),
		},
		{
			name:     "rounds outwards",
			rect:     tile.GeoRect{Lat1: 10.25, Lon1: 20.35, Lat2: 10.55, Lon2: 20.75},
			size:     image.Pt(10, 10),
			expected: image.Rect(2, 3, 6, 8),
		},
		{
			name:     "corners in either order",
			rect:     tile.GeoRect{Lat1: -25.3, Lon1: -48.1, Lat2: -25.7, Lon2: -48.5},
			size:     image.Pt(200, 100),
			expected: image.Rect(60, 50, 140, 90),
		},
		{
			name:     "thin sliver keeps one pixel",
			rect:     tile.GeoRect{Lat1: 0.5, Lon1: 0.5, Lat2: 0.5 + 1e-12, Lon2: 0.7},
			size:     image.Pt(100, 100),
			expected: image.Rect(50, 50, 51, 70),
		},
		{
			name:     "sliver against the tile edge",
			rect:     tile.GeoRect{Lat1: 11 - 1e-9, Lon1: 20.5, Lat2: 11, Lon2: 20.7},
			size:     image.Pt(10, 10),
			expected: image.Rect(9, 5, 10, 7),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := CropWindow(tc.rect, tc.size)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestCropWindow_RangeError(t *testing.T) {
	// spans two tiles of latitude
	_, err := CropWindow(tile.GeoRect{Lat1: 10.5, Lon1: 20.1, Lat2: 11.5, Lon2: 20.2}, image.Pt(10, 10))
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, image.Pt(10, 10), rangeErr.Size)
}

func TestCrop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	before := append([]uint8(nil), src.Pix...)

	crop, err := Crop(src, tile.GeoRect{Lat1: -25.7, Lon1: -48.5, Lat2: -25.3, Lon2: -48.1})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 40), crop.Bounds())
	assert.Equal(t, color.NRGBA{R: 60, G: 50, A: 255}, crop.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 139, G: 89, A: 255}, crop.NRGBAAt(79, 39))

	// source untouched, and the crop doesn't alias it
	crop.SetNRGBA(0, 0, color.NRGBA{})
	assert.Equal(t, before, src.Pix)
}

func TestCrop_OffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 15, 15))
	src.SetNRGBA(7, 8, color.NRGBA{R: 1, A: 255})

	crop, err := Crop(src, tile.GeoRect{Lat1: 0.2, Lon1: 0.3, Lat2: 0.4, Lon2: 0.5})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), crop.Bounds())
	assert.Equal(t, color.NRGBA{R: 1, A: 255}, crop.NRGBAAt(0, 0))
}
