package tile

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ParseFormat maps a format name or file extension to an output format.
func ParseFormat(name string) (int, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return OUTFMT_PNG, nil
	case "jpg", "jpeg":
		return OUTFMT_JPEG, nil
	case "tif", "tiff", "geotiff":
		return OUTFMT_TIFF, nil
	default:
		return 0, fmt.Errorf("unknown format: %s", name)
	}
}

// ContentType returns the MIME type of an output format.
func ContentType(outfmt int) string {
	switch outfmt {
	case OUTFMT_JPEG:
		return "image/jpeg"
	case OUTFMT_TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

func imagingFormat(outfmt int) imaging.Format {
	switch outfmt {
	case OUTFMT_JPEG:
		return imaging.JPEG
	case OUTFMT_TIFF:
		return imaging.TIFF
	default:
		return imaging.PNG
	}
}

// DecodeImage decodes a PNG, JPEG, TIFF, BMP, GIF or WebP image.
func DecodeImage(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}

// EncodeImage encodes img in the given output format.
func EncodeImage(w io.Writer, img image.Image, outfmt int) error {
	return imaging.Encode(w, img, imagingFormat(outfmt), imaging.JPEGQuality(90))
}

// EncodeImageBytes is EncodeImage into a byte slice.
func EncodeImageBytes(img image.Image, outfmt int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, img, outfmt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOutput writes encoded image data to filename, or to stdout when
// filename is empty.
func WriteOutput(filename string, data []byte) error {
	if filename == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// A WorldFile holds the six affine parameters mapping pixel (col, row) to
// (lon, lat):
//
//	lon = A*col + B*row + C
//	lat = D*col + E*row + F
//
// C and F locate the center of the upper-left pixel.
type WorldFile struct {
	A, D, B, E, C, F float64
}

// Bytes returns the world file contents.
func (wf WorldFile) Bytes() []byte {
	var buf bytes.Buffer
	for _, v := range []float64{wf.A, wf.D, wf.B, wf.E, wf.C, wf.F} {
		fmt.Fprintf(&buf, "%24.10f\n", v)
	}
	return buf.Bytes()
}

// WorldFileName returns the sidecar name for an image written in outfmt.
func WorldFileName(filename string, outfmt int) string {
	var ext string
	switch outfmt {
	case OUTFMT_JPEG:
		ext = ".jgw"
	case OUTFMT_TIFF:
		ext = ".tfw"
	default:
		ext = ".pgw"
	}

	if idx := strings.LastIndex(filename, "."); idx != -1 && !strings.ContainsAny(filename[idx:], `/\`) {
		return filename[:idx] + ext
	}
	return filename + ext
}

// WriteWorldFile writes data next to filename and returns the path written.
func WriteWorldFile(filename string, data []byte, outfmt int) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("can't write a worldfile when writing to stdout")
	}
	worldFilename := WorldFileName(filename, outfmt)
	if err := os.WriteFile(worldFilename, data, 0o644); err != nil {
		return "", err
	}
	return worldFilename, nil
}
