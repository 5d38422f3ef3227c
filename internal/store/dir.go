package store

import (
	"context"
	"errors"
	"image"
	"io/fs"

	"github.com/kiesman99/mosaic/pkg/tile"
)

// Dir reads tiles named <address><ext> from the root of a file system.
type Dir struct {
	fsys fs.FS
	ext  string
}

// NewDir returns a store reading tiles from fsys.
func NewDir(fsys fs.FS, opts ...Option) *Dir {
	o := newOptions(opts)
	return &Dir{
		fsys: fsys,
		ext:  o.ext,
	}
}

// Filename returns the name of the file holding the tile at addr.
func (d *Dir) Filename(addr tile.Address) string {
	return addr.String() + d.ext
}

func (d *Dir) Fetch(ctx context.Context, addr tile.Address) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := d.fsys.Open(d.Filename(addr))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, notFound(addr)
	case err != nil:
		return nil, err
	}
	defer f.Close()

	return decode(addr, f)
}
