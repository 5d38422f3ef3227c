package mosaic

import (
	"math"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// Grid is a bounding box cut at every whole degree it crosses. Rows holds
// one entry per latitude band, south to north, and each row holds its
// longitude bands west to east.
type Grid struct {
	Rows [][]tile.GeoRect
}

// NumRows returns the number of latitude bands.
func (g Grid) NumRows() int {
	return len(g.Rows)
}

// NumCols returns the number of longitude bands.
func (g Grid) NumCols() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

// Len returns the number of cells.
func (g Grid) Len() int {
	return g.NumRows() * g.NumCols()
}

// Cells returns the cells in row-major order.
func (g Grid) Cells() []tile.GeoRect {
	cells := make([]tile.GeoRect, 0, g.Len())
	for _, row := range g.Rows {
		cells = append(cells, row...)
	}
	return cells
}

// ChunkCount estimates how many tiles the box spanned by p1 and p2 touches.
// It is 0 when the box has no area.
func ChunkCount(p1, p2 tile.GeoPoint) int {
	r := tile.RectFromPoints(p1, p2).Normalize()
	dlat := r.Lat2 - r.Lat1
	dlon := r.Lon2 - r.Lon1
	// also false for NaN
	if !(dlat > 0 && dlon > 0) || math.IsInf(dlat, 0) || math.IsInf(dlon, 0) {
		return 0
	}
	return int(math.Floor(dlat)+1) * int(math.Floor(dlon)+1)
}

// Decompose cuts the box spanned by p1 and p2 into cells that each fit
// inside a single tile. The result does not depend on the order of the
// points.
func Decompose(p1, p2 tile.GeoPoint) (Grid, error) {
	if ChunkCount(p1, p2) < 1 {
		return Grid{}, ErrNoChunksRequired
	}

	r := tile.RectFromPoints(p1, p2).Normalize()
	lats := breakpoints(r.Lat1, r.Lat2)
	lons := breakpoints(r.Lon1, r.Lon2)

	rows := make([][]tile.GeoRect, 0, len(lats)-1)
	for i := 1; i < len(lats); i++ {
		row := make([]tile.GeoRect, 0, len(lons)-1)
		for j := 1; j < len(lons); j++ {
			row = append(row, tile.GeoRect{
				Lat1: lats[i-1],
				Lon1: lons[j-1],
				Lat2: lats[i],
				Lon2: lons[j],
			})
		}
		rows = append(rows, row)
	}
	return Grid{Rows: rows}, nil
}

// breakpoints returns lo, every whole degree strictly between lo and hi,
// and hi, in ascending order.
func breakpoints(lo, hi float64) []float64 {
	points := []float64{lo}
	for k := math.Floor(lo) + 1; k < hi; k++ {
		if k > lo {
			points = append(points, k)
		}
	}
	return append(points, hi)
}
