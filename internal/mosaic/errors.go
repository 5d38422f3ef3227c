package mosaic

import (
	"errors"
	"fmt"
	"image"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// ErrNoChunksRequired is returned for boxes that span no area.
var ErrNoChunksRequired = errors.New("amount of chunks is less than 1")

// ErrDimensionMismatch matches every DimensionMismatchError.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// DimensionMismatchError reports crops that can't be joined edge to edge.
type DimensionMismatchError struct {
	// Axis is "height" for two crops in the same row and "width" for two rows.
	Axis string
	Row  int
	Col  int
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	if e.Axis == "width" {
		return fmt.Sprintf("dimension mismatch: row %d is %d pixels wide, want %d", e.Row, e.Got, e.Want)
	}
	return fmt.Sprintf("dimension mismatch: crop %d of row %d is %d pixels high, want %d", e.Col, e.Row, e.Got, e.Want)
}

func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// RangeError reports a rect whose pixel window falls outside its tile.
type RangeError struct {
	Rect   tile.GeoRect
	Window image.Rectangle
	Size   image.Point
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("crop window %v of %s is outside a %dx%d tile", e.Window, e.Rect, e.Size.X, e.Size.Y)
}

// TooLargeError reports a mosaic over the pixel budget.
type TooLargeError struct {
	Width, Height int
	MaxPixels     int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("requested image size too large: %dx%d exceeds %d pixels", e.Width, e.Height, e.MaxPixels)
}
