package mosaic

import (
	"context"
	"fmt"
	"image"
	"maps"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kiesman99/mosaic/pkg/tile"
)

var (
	mosaicsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_builds_total",
		Help: "The total number of mosaics built, by outcome",
	}, []string{"outcome"})
	mosaicDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mosaic_build_duration_seconds",
		Help:    "Time taken to fetch, crop and assemble a mosaic",
		Buckets: prometheus.DefBuckets,
	})
	tilesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_tiles_fetched_total",
		Help: "The total number of tiles fetched from the tile store",
	})
)

// A TileStore returns the decoded raster of a tile.
type TileStore interface {
	Fetch(ctx context.Context, addr tile.Address) (image.Image, error)
}

// Mosaic is a stitched raster together with its placement.
type Mosaic struct {
	Image *image.NRGBA

	// Origin is the corner of pixel (0, 0): the smallest latitude and
	// longitude covered.
	Origin tile.GeoPoint

	// LatPerPixel is the latitude step along x, LonPerPixel the longitude
	// step along y.
	LatPerPixel float64
	LonPerPixel float64

	Grid  Grid
	Tiles []tile.Address
}

// Engine builds mosaics from the tiles of a TileStore.
type Engine struct {
	store       TileStore
	concurrency int
	maxPixels   int64
	logger      *zap.Logger
}

// An EngineOption sets an option on an Engine.
type EngineOption func(*Engine)

// WithConcurrency limits the number of tiles fetched at once. Values below
// one fetch sequentially.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithMaxPixels refuses mosaics larger than n pixels. The size is predicted
// from the first tile, so the remaining tiles are never fetched for a
// mosaic over the budget. Zero means no limit.
func WithMaxPixels(n int64) EngineOption {
	return func(e *Engine) {
		e.maxPixels = n
	}
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine returns an Engine reading tiles from store.
func NewEngine(store TileStore, options ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		concurrency: 4,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// Mosaic returns the raster covering the box spanned by p1 and p2.
//
// Each tile is fetched once. Any fetch failure aborts the whole mosaic and
// is returned unchanged.
func (e *Engine) Mosaic(ctx context.Context, p1, p2 tile.GeoPoint) (*Mosaic, error) {
	start := time.Now()
	m, err := e.build(ctx, p1, p2)
	mosaicDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		mosaicsBuilt.WithLabelValues("error").Inc()
		return nil, err
	}
	mosaicsBuilt.WithLabelValues("ok").Inc()

	e.logger.Debug("Built mosaic",
		zap.Stringer("point1", p1),
		zap.Stringer("point2", p2),
		zap.Int("tiles", len(m.Tiles)),
		zap.Int("width", m.Image.Bounds().Dx()),
		zap.Int("height", m.Image.Bounds().Dy()),
		zap.Duration("duration", time.Since(start)))
	return m, nil
}

func (e *Engine) build(ctx context.Context, p1, p2 tile.GeoPoint) (*Mosaic, error) {
	grid, err := Decompose(p1, p2)
	if err != nil {
		return nil, err
	}

	addrs := make([][]tile.Address, grid.NumRows())
	var distinct []tile.Address
	seen := make(map[tile.Address]bool)
	for i, row := range grid.Rows {
		addrs[i] = make([]tile.Address, len(row))
		for j, cell := range row {
			addr := tile.Encode(cell.Lat1, cell.Lon1)
			addrs[i][j] = addr
			if !seen[addr] {
				seen[addr] = true
				distinct = append(distinct, addr)
			}
		}
	}

	// The first tile fixes the raster size every other tile must share.
	images, err := e.fetchAll(ctx, distinct[:1])
	if err != nil {
		return nil, err
	}
	first := grid.Rows[0][0]
	firstImg := images[addrs[0][0]]
	if err := e.checkSize(grid, firstImg.Bounds().Size()); err != nil {
		return nil, err
	}

	rest, err := e.fetchAll(ctx, distinct[1:])
	if err != nil {
		return nil, err
	}
	maps.Copy(images, rest)

	origin, err := e.origin(first, firstImg.Bounds().Size())
	if err != nil {
		return nil, err
	}
	m := &Mosaic{
		Origin:      origin,
		LatPerPixel: 1 / float64(firstImg.Bounds().Dx()),
		LonPerPixel: 1 / float64(firstImg.Bounds().Dy()),
		Grid:        grid,
		Tiles:       distinct,
	}

	if grid.Len() == 1 {
		m.Image, err = Crop(firstImg, first)
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	// Crop x runs along latitude bands and crop y along longitude bands, so
	// pixel row j holds longitude band j across every latitude band.
	pixelRows := make([][]image.Image, grid.NumCols())
	for j := range pixelRows {
		pixelRows[j] = make([]image.Image, grid.NumRows())
	}
	for i, row := range grid.Rows {
		for j, cell := range row {
			crop, err := Crop(images[addrs[i][j]], cell)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", addrs[i][j], err)
			}
			pixelRows[j][i] = crop
		}
	}

	m.Image, err = Assemble(pixelRows)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// fetchAll fetches addrs with at most e.concurrency requests in flight.
func (e *Engine) fetchAll(ctx context.Context, addrs []tile.Address) (map[tile.Address]image.Image, error) {
	results := make([]image.Image, len(addrs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, addr := range addrs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := e.store.Fetch(ctx, addr)
			if err != nil {
				e.logger.Debug("Tile fetch failed", zap.Stringer("address", addr), zap.Error(err))
				return err
			}
			tilesFetched.Inc()
			e.logger.Debug("Fetched tile", zap.Stringer("address", addr),
				zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
			results[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	images := make(map[tile.Address]image.Image, len(addrs))
	for i, addr := range addrs {
		images[addr] = results[i]
	}
	return images, nil
}

// checkSize predicts the mosaic size of grid from tiles of the given size
// and compares it with the pixel budget.
func (e *Engine) checkSize(grid Grid, size image.Point) error {
	if e.maxPixels <= 0 {
		return nil
	}
	var width, height int
	for _, row := range grid.Rows {
		window, err := CropWindow(row[0], size)
		if err != nil {
			return err
		}
		width += window.Dx()
	}
	for _, cell := range grid.Rows[0] {
		window, err := CropWindow(cell, size)
		if err != nil {
			return err
		}
		height += window.Dy()
	}
	if int64(width)*int64(height) > e.maxPixels {
		return &TooLargeError{Width: width, Height: height, MaxPixels: e.maxPixels}
	}
	return nil
}

// origin returns the corner of the first pixel of the crop of cell.
func (e *Engine) origin(cell tile.GeoRect, size image.Point) (tile.GeoPoint, error) {
	window, err := CropWindow(cell, size)
	if err != nil {
		return tile.GeoPoint{}, err
	}
	t := tile.TileRect(cell.Lat1, cell.Lon1)
	return tile.GeoPoint{
		Lat: t.Lat1 + float64(window.Min.X)/float64(size.X),
		Lon: t.Lon1 + float64(window.Min.Y)/float64(size.Y),
	}, nil
}
