package mosaic

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Assemble joins a grid of crops into one image. The crops of each row are
// placed left to right and must share a height; rows are stacked top to
// bottom and must share a width.
func Assemble(rows [][]image.Image) (*image.NRGBA, error) {
	if len(rows) == 0 {
		return nil, errors.New("nothing to assemble")
	}

	// Validate every shape before allocating the canvas.
	width := -1
	height := 0
	for i, row := range rows {
		if len(row) == 0 {
			return nil, &DimensionMismatchError{Axis: "width", Row: i, Want: max(width, 0), Got: 0}
		}
		rowWidth, rowHeight := 0, row[0].Bounds().Dy()
		for j, crop := range row {
			if dy := crop.Bounds().Dy(); dy != rowHeight {
				return nil, &DimensionMismatchError{Axis: "height", Row: i, Col: j, Want: rowHeight, Got: dy}
			}
			rowWidth += crop.Bounds().Dx()
		}
		if width == -1 {
			width = rowWidth
		} else if rowWidth != width {
			return nil, &DimensionMismatchError{Axis: "width", Row: i, Want: width, Got: rowWidth}
		}
		height += rowHeight
	}

	canvas := imaging.New(width, height, color.NRGBA{})
	y := 0
	for _, row := range rows {
		x := 0
		rowHeight := row[0].Bounds().Dy()
		for _, crop := range row {
			b := crop.Bounds()
			draw.Draw(canvas, image.Rect(x, y, x+b.Dx(), y+b.Dy()), crop, b.Min, draw.Src)
			x += b.Dx()
		}
		y += rowHeight
	}
	return canvas, nil
}
