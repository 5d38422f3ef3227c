package mosaic

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// pixelEpsilon absorbs float noise in degree to pixel conversions, so that
// 0.7*200 lands on pixel 140 rather than 141.
const pixelEpsilon = 1e-6

// CropWindow returns the pixel window covering rect inside its tile, for a
// tile raster of the given size. The x axis follows latitude and is scaled
// by the width, the y axis follows longitude and is scaled by the height.
//
// rect must fit inside the tile containing its first corner; otherwise a
// RangeError is returned.
func CropWindow(rect tile.GeoRect, size image.Point) (image.Rectangle, error) {
	r := rect.Normalize()
	t := tile.TileRect(r.Lat1, r.Lon1)

	w, h := float64(size.X), float64(size.Y)
	var window image.Rectangle
	window.Min.X, window.Max.X = pixelSpan((r.Lat1-t.Lat1)*w, (r.Lat2-t.Lat1)*w)
	window.Min.Y, window.Max.Y = pixelSpan((r.Lon1-t.Lon1)*h, (r.Lon2-t.Lon1)*h)

	bounds := image.Rectangle{Max: size}
	if window.Empty() || !window.In(bounds) {
		return image.Rectangle{}, &RangeError{Rect: rect, Window: window, Size: size}
	}
	return window, nil
}

// Crop cuts rect out of the tile raster img. img is left untouched.
func Crop(img image.Image, rect tile.GeoRect) (*image.NRGBA, error) {
	b := img.Bounds()
	window, err := CropWindow(rect, b.Size())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, window.Add(b.Min)), nil
}

// pixelSpan returns the pixels covering [lo, hi]. A positive span always
// covers at least one pixel, even when snapping would close it.
func pixelSpan(lo, hi float64) (int, int) {
	first, last := floorPixel(lo), ceilPixel(hi)
	if last <= first && hi > lo {
		return int(math.Floor(lo)), int(math.Ceil(hi))
	}
	return first, last
}

func floorPixel(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < pixelEpsilon {
		return int(r)
	}
	return int(math.Floor(v))
}

func ceilPixel(v float64) int {
	if r := math.Round(v); math.Abs(v-r) < pixelEpsilon {
		return int(r)
	}
	return int(math.Ceil(v))
}
