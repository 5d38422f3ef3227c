package stitcher

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/internal/mosaic"
	"github.com/kiesman99/mosaic/pkg/tile"
)

// DefaultMaxPixels caps the size of a mosaic, before and after resizing.
const DefaultMaxPixels = 10000 * 10000

// Options contains all stitching parameters
type Options struct {
	Point1, Point2 tile.GeoPoint

	// Width and Height resize the mosaic. Zero keeps the mosaic's size, or
	// its aspect ratio when the other one is set.
	Width, Height int

	Format            int
	GenerateWorldFile bool
}

// Result contains the stitching result
type Result struct {
	ImageData     []byte
	WorldFileData []byte
	ContentType   string
	Width         int
	Height        int

	// Size of the mosaic before resizing.
	SourceWidth  int
	SourceHeight int

	Origin tile.GeoPoint
	Tiles  []tile.Address
}

// OptionsError reports invalid Options.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TooLargeError reports a mosaic or resized output over the pixel budget.
type TooLargeError = mosaic.TooLargeError

// Engine builds mosaics.
type Engine interface {
	Mosaic(ctx context.Context, p1, p2 tile.GeoPoint) (*mosaic.Mosaic, error)
}

// Stitcher turns mosaics into encoded images
type Stitcher struct {
	engine    Engine
	maxPixels int64
	logger    *zap.Logger
}

// An Option sets an option on a Stitcher.
type Option func(*Stitcher)

// WithMaxPixels sets the pixel budget. Values below one disable the check.
func WithMaxPixels(maxPixels int64) Option {
	return func(s *Stitcher) {
		s.maxPixels = maxPixels
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Stitcher) {
		s.logger = logger
	}
}

// New creates a new stitcher instance
func New(engine Engine, options ...Option) *Stitcher {
	s := &Stitcher{
		engine:    engine,
		maxPixels: DefaultMaxPixels,
		logger:    zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Validate checks opts without building anything.
func (opts *Options) Validate() error {
	if opts.Width < 0 {
		return &OptionsError{Field: "width", Message: "must not be negative"}
	}
	if opts.Height < 0 {
		return &OptionsError{Field: "height", Message: "must not be negative"}
	}
	switch opts.Format {
	case tile.OUTFMT_PNG, tile.OUTFMT_JPEG, tile.OUTFMT_TIFF:
	default:
		return &OptionsError{Field: "format", Message: fmt.Sprintf("unknown output format %d", opts.Format)}
	}
	return nil
}

// Stitch builds, resizes and encodes the mosaic described by opts.
func (s *Stitcher) Stitch(ctx context.Context, opts *Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	m, err := s.engine.Mosaic(ctx, opts.Point1, opts.Point2)
	if err != nil {
		return nil, err
	}

	var img image.Image = m.Image
	srcW, srcH := m.Image.Bounds().Dx(), m.Image.Bounds().Dy()
	if err := s.checkSize(srcW, srcH); err != nil {
		return nil, err
	}

	if opts.Width > 0 || opts.Height > 0 {
		w, h := targetSize(srcW, srcH, opts.Width, opts.Height)
		if err := s.checkSize(w, h); err != nil {
			return nil, err
		}
		img = imaging.Resize(m.Image, w, h, imaging.Lanczos)
	}
	outW, outH := img.Bounds().Dx(), img.Bounds().Dy()

	s.logger.Debug("Encoding mosaic",
		zap.Int("source_width", srcW),
		zap.Int("source_height", srcH),
		zap.Int("width", outW),
		zap.Int("height", outH),
		zap.String("content_type", tile.ContentType(opts.Format)))

	imageData, err := tile.EncodeImageBytes(img, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output image: %w", err)
	}

	result := &Result{
		ImageData:    imageData,
		ContentType:  tile.ContentType(opts.Format),
		Width:        outW,
		Height:       outH,
		SourceWidth:  srcW,
		SourceHeight: srcH,
		Origin:       m.Origin,
		Tiles:        m.Tiles,
	}

	if opts.GenerateWorldFile {
		result.WorldFileData = WorldFile(m, outW, outH).Bytes()
	}

	return result, nil
}

func (s *Stitcher) checkSize(w, h int) error {
	if s.maxPixels > 0 && int64(w)*int64(h) > s.maxPixels {
		return &TooLargeError{Width: w, Height: h, MaxPixels: s.maxPixels}
	}
	return nil
}

// targetSize resolves a zero width or height from the aspect ratio of the
// source.
func targetSize(srcW, srcH, w, h int) (int, int) {
	switch {
	case w == 0:
		w = max(1, int(float64(srcW)*float64(h)/float64(srcH)+0.5))
	case h == 0:
		h = max(1, int(float64(srcH)*float64(w)/float64(srcW)+0.5))
	}
	return w, h
}

// WorldFile returns the world file of m rendered at outW by outH pixels.
// Columns step through latitude and rows through longitude, so only the
// rotation terms are non-zero.
func WorldFile(m *mosaic.Mosaic, outW, outH int) tile.WorldFile {
	b := m.Image.Bounds()
	latPerCol := m.LatPerPixel * float64(b.Dx()) / float64(outW)
	lonPerRow := m.LonPerPixel * float64(b.Dy()) / float64(outH)
	return tile.WorldFile{
		A: 0,
		D: latPerCol,
		B: lonPerRow,
		E: 0,
		C: m.Origin.Lon + 0.5*lonPerRow,
		F: m.Origin.Lat + 0.5*latPerCol,
	}
}
