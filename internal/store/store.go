// Package store provides the tile stores mosaics are built from: a dataset
// directory, an HTTP server, an S3 bucket, and an in-memory cache in front
// of any of them.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// ErrTileNotFound is returned when a store has no tile at an address.
var ErrTileNotFound = errors.New("tile not found")

// DecodeError reports a tile whose bytes could not be decoded.
type DecodeError struct {
	Address tile.Address
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding tile %s: %v", e.Address, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// A Store returns the decoded raster of a tile.
type Store interface {
	Fetch(ctx context.Context, addr tile.Address) (image.Image, error)
}

// StoreFunc adapts an ordinary function to a Store.
type StoreFunc func(ctx context.Context, addr tile.Address) (image.Image, error)

func (f StoreFunc) Fetch(ctx context.Context, addr tile.Address) (image.Image, error) {
	return f(ctx, addr)
}

func notFound(addr tile.Address) error {
	return fmt.Errorf("%s: %w", addr, ErrTileNotFound)
}

func decode(addr tile.Address, r io.Reader) (image.Image, error) {
	img, err := tile.DecodeImage(r)
	if err != nil {
		return nil, &DecodeError{Address: addr, Err: err}
	}
	return img, nil
}

func decodeBytes(addr tile.Address, data []byte) (image.Image, error) {
	return decode(addr, bytes.NewReader(data))
}

// Source kinds.
const (
	SourceDir  = "dir"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Config selects and configures the tile store of a dataset.
type Config struct {
	Source string `mapstructure:"source"`

	// Dir is the dataset directory for SourceDir.
	Dir string `mapstructure:"dir"`
	// Ext is the tile file extension, ".png" if empty.
	Ext string `mapstructure:"ext"`

	URL       string        `mapstructure:"url"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`

	S3 S3Config `mapstructure:"s3"`

	// CacheSize is the number of decoded tiles kept in memory. Zero
	// disables caching.
	CacheSize int `mapstructure:"cache_size"`
}

// S3Config locates tiles in an S3 compatible bucket.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

func (c Config) ext() string {
	if c.Ext == "" {
		return ".png"
	}
	if !strings.HasPrefix(c.Ext, ".") {
		return "." + c.Ext
	}
	return c.Ext
}

// New returns the store described by cfg, wrapped in a cache when
// cfg.CacheSize is positive.
func New(cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Source {
	case "", SourceDir:
		if cfg.Dir == "" {
			return nil, errors.New("dataset directory is required")
		}
		if _, err := os.Stat(cfg.Dir); err != nil {
			return nil, fmt.Errorf("dataset directory: %w", err)
		}
		s = NewDir(os.DirFS(cfg.Dir), WithExt(cfg.ext()))
	case SourceHTTP:
		s, err = NewHTTP(cfg.URL,
			WithExt(cfg.ext()),
			WithBasicAuth(cfg.Username, cfg.Password),
			WithUserAgent(cfg.UserAgent),
			WithTimeout(cfg.Timeout),
		)
	case SourceS3:
		s, err = NewS3(cfg.S3, WithExt(cfg.ext()))
	default:
		return nil, fmt.Errorf("unknown dataset source: %s", cfg.Source)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Opened tile store",
		zap.String("source", orDefault(cfg.Source, SourceDir)),
		zap.String("ext", cfg.ext()),
		zap.Int("cache_size", cfg.CacheSize))

	if cfg.CacheSize > 0 {
		cached, err := NewCached(s, cfg.CacheSize, logger)
		if err != nil {
			return nil, err
		}
		return cached, nil
	}
	return s, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// An Option sets an option shared by the stores.
type Option func(*options)

type options struct {
	ext       string
	username  string
	password  string
	userAgent string
	timeout   time.Duration
}

func newOptions(opts []Option) options {
	o := options{
		ext:       ".png",
		userAgent: "mosaic/1.0",
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithExt sets the tile file extension.
func WithExt(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithBasicAuth sets HTTP basic auth credentials. An empty username
// disables auth.
func WithBasicAuth(username, password string) Option {
	return func(o *options) {
		o.username = username
		o.password = password
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}
