package stitch

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/internal/stitcher"
	"github.com/kiesman99/mosaic/pkg/tile"
)

// Options controls where and how the CLI writes a mosaic.
type Options struct {
	// Output is the image file, stdout if empty.
	Output         string
	Format         int
	Width          int
	Height         int
	WriteWorldFile bool
}

// Stitcher handles the main stitching logic
type Stitcher struct {
	stitcher *stitcher.Stitcher
	options  *Options
	logger   *zap.Logger
	stderr   io.Writer
}

// NewStitcher creates a new stitcher instance
func NewStitcher(st *stitcher.Stitcher, opts *Options, logger *zap.Logger) *Stitcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stitcher{
		stitcher: st,
		options:  opts,
		logger:   logger,
		stderr:   os.Stderr,
	}
}

// SetStderr redirects the progress report.
func (s *Stitcher) SetStderr(w io.Writer) {
	s.stderr = w
}

// StitchPoints stitches the mosaic spanned by two points and writes it out.
func (s *Stitcher) StitchPoints(ctx context.Context, p1, p2 tile.GeoPoint) error {
	// Check if output is to terminal
	if s.options.Output == "" {
		if s.options.WriteWorldFile {
			return fmt.Errorf("can't write a worldfile when writing to stdout")
		}
		if stat, _ := os.Stdout.Stat(); stat != nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return fmt.Errorf("didn't specify output file and standard output is a terminal")
		}
	}

	rect := tile.RectFromPoints(p1, p2).Normalize()
	fmt.Fprintf(s.stderr, "==Geodetic Bounds: %.17g,%.17g to %.17g,%.17g\n", rect.Lat1, rect.Lon1, rect.Lat2, rect.Lon2)
	fmt.Fprintf(s.stderr, "==First Tile: %s\n", tile.Encode(rect.Lat1, rect.Lon1))
	fmt.Fprintf(s.stderr, "==Last Tile: %s\n", tile.Encode(rect.Lat2, rect.Lon2))

	result, err := s.stitcher.Stitch(ctx, &stitcher.Options{
		Point1:            p1,
		Point2:            p2,
		Width:             s.options.Width,
		Height:            s.options.Height,
		Format:            s.options.Format,
		GenerateWorldFile: s.options.WriteWorldFile,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(s.stderr, "==Tiles: %d\n", len(result.Tiles))
	fmt.Fprintf(s.stderr, "==Mosaic Size: %dx%d\n", result.SourceWidth, result.SourceHeight)
	if result.Width != result.SourceWidth || result.Height != result.SourceHeight {
		fmt.Fprintf(s.stderr, "==Raster Size: %dx%d\n", result.Width, result.Height)
	}

	if err := tile.WriteOutput(s.options.Output, result.ImageData); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	s.logger.Info("Wrote mosaic",
		zap.String("output", s.options.Output),
		zap.Int("bytes", len(result.ImageData)))

	// Write world file if requested
	if s.options.WriteWorldFile {
		worldFile, err := tile.WriteWorldFile(s.options.Output, result.WorldFileData, s.options.Format)
		if err != nil {
			return fmt.Errorf("failed to write world file: %w", err)
		}
		s.logger.Info("Wrote world file", zap.String("output", worldFile))
	}

	return nil
}
