package store

import (
	"context"
	"errors"
	"image"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kiesman99/mosaic/pkg/tile"
)

var (
	missingTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_missing_tile_cache_hits_total",
		Help: "The total number of hits on the missing tile cache",
	})
	missingTileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_missing_tile_cache_misses_total",
		Help: "The total number of misses on the missing tile cache",
	})
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_tile_cache_hits_total",
		Help: "The total number of hits on the tile cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_tile_cache_misses_total",
		Help: "The total number of misses on the tile cache",
	})
	tileCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mosaic_tile_cache_evictions_total",
		Help: "The total number of evictions from the tile cache",
	})
)

// Cached keeps recently used tiles of another store in memory. It also
// remembers which tiles are missing, and concurrent fetches of the same
// tile share one request to the underlying store.
type Cached struct {
	store        Store
	cache        *lru.Cache[tile.Address, image.Image]
	missingTiles sync.Map
	group        singleflight.Group
	logger       *zap.Logger
}

// NewCached returns a cache of size tiles in front of s.
func NewCached(s Store, size int, logger *zap.Logger) (*Cached, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cached{
		store:  s,
		logger: logger,
	}

	var err error
	c.cache, err = lru.NewWithEvict(size, func(addr tile.Address, _ image.Image) {
		tileCacheEvictions.Inc()
		c.logger.Debug("Evicted tile", zap.Stringer("address", addr))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Len returns the number of cached tiles.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func (c *Cached) Fetch(ctx context.Context, addr tile.Address) (image.Image, error) {
	if _, ok := c.missingTiles.Load(addr); ok {
		missingTileCacheHits.Inc()
		return nil, notFound(addr)
	}

	if img, ok := c.cache.Get(addr); ok {
		tileCacheHits.Inc()
		return img, nil
	}

	// The shared fetch outlives any one caller; each caller still gives up
	// when its own context is done.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(addr.String(), func() (any, error) {
		if img, ok := c.cache.Get(addr); ok {
			tileCacheHits.Inc()
			return img, nil
		}
		tileCacheMisses.Inc()

		img, err := c.store.Fetch(fetchCtx, addr)
		switch {
		case errors.Is(err, ErrTileNotFound):
			c.missingTiles.Store(addr, struct{}{})
			missingTileCacheMisses.Inc()
			return nil, err
		case err != nil:
			return nil, err
		}

		c.cache.Add(addr, img)
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}
