package stitch

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiesman99/mosaic/internal/mosaic"
	"github.com/kiesman99/mosaic/internal/stitcher"
	"github.com/kiesman99/mosaic/internal/store"
	"github.com/kiesman99/mosaic/pkg/tile"
)

func newTestStitcher(opts *Options) (*Stitcher, *bytes.Buffer) {
	tiles := store.StoreFunc(func(ctx context.Context, addr tile.Address) (image.Image, error) {
		return image.NewNRGBA(image.Rect(0, 0, 20, 20)), nil
	})
	s := NewStitcher(stitcher.New(mosaic.NewEngine(tiles)), opts, nil)
	var stderr bytes.Buffer
	s.SetStderr(&stderr)
	return s, &stderr
}

func TestStitchPoints(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.tif")
	s, stderr := newTestStitcher(&Options{
		Output:         output,
		Format:         tile.OUTFMT_TIFF,
		WriteWorldFile: true,
	})

	err := s.StitchPoints(context.Background(),
		tile.GeoPoint{Lat: -25.3, Lon: -48.1},
		tile.GeoPoint{Lat: -25.7, Lon: -48.5})
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := tile.DecodeImage(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 8), img.Bounds().Size())

	assert.FileExists(t, filepath.Join(dir, "out.tfw"))
	assert.Contains(t, stderr.String(), "==First Tile: S026W049")
	assert.Contains(t, stderr.String(), "==Mosaic Size: 8x8")
}

func TestStitchPoints_WorldFileNeedsOutput(t *testing.T) {
	s, _ := newTestStitcher(&Options{WriteWorldFile: true})
	err := s.StitchPoints(context.Background(),
		tile.GeoPoint{Lat: 1.1, Lon: 1.1},
		tile.GeoPoint{Lat: 1.2, Lon: 1.2})
	assert.Error(t, err)
}

func TestStitchPoints_PropagatesErrors(t *testing.T) {
	s, _ := newTestStitcher(&Options{Output: filepath.Join(t.TempDir(), "out.png")})
	p := tile.GeoPoint{Lat: 1.1, Lon: 1.1}
	err := s.StitchPoints(context.Background(), p, p)
	assert.ErrorIs(t, err, mosaic.ErrNoChunksRequired)
}
