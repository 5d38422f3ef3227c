package tile

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	testCases := map[string]int{
		"":        OUTFMT_PNG,
		"png":     OUTFMT_PNG,
		".PNG":    OUTFMT_PNG,
		"jpg":     OUTFMT_JPEG,
		"jpeg":    OUTFMT_JPEG,
		"tiff":    OUTFMT_TIFF,
		".tif":    OUTFMT_TIFF,
		"geotiff": OUTFMT_TIFF,
	}
	for name, expected := range testCases {
		actual, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, actual, name)
	}

	_, err := ParseFormat("bmp")
	assert.Error(t, err)
}

func TestEncodeDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 2, color.NRGBA{R: 200, G: 10, B: 30, A: 255})

	for _, outfmt := range []int{OUTFMT_PNG, OUTFMT_TIFF} {
		data, err := EncodeImageBytes(src, outfmt)
		require.NoError(t, err)

		decoded, err := DecodeImage(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, src.Bounds().Size(), decoded.Bounds().Size())

		r, g, b, _ := decoded.At(1, 2).RGBA()
		assert.Equal(t, []uint32{200, 10, 30}, []uint32{r >> 8, g >> 8, b >> 8})
	}

	data, err := EncodeImageBytes(src, OUTFMT_JPEG)
	require.NoError(t, err)
	decoded, err := DecodeImage(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds().Size(), decoded.Bounds().Size())
}

func TestDecodeImage_Garbage(t *testing.T) {
	_, err := DecodeImage(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestWorldFileName(t *testing.T) {
	assert.Equal(t, "out.pgw", WorldFileName("out.png", OUTFMT_PNG))
	assert.Equal(t, "dir.v2/out.jgw", WorldFileName("dir.v2/out.jpg", OUTFMT_JPEG))
	assert.Equal(t, "dir.v2/out.tfw", WorldFileName("dir.v2/out", OUTFMT_TIFF))
}

func TestWorldFile_Bytes(t *testing.T) {
	wf := WorldFile{A: 0, D: 0.005, B: 0.01, E: 0, C: -48.495, F: -25.6975}
	lines := bytes.Split(bytes.TrimSpace(wf.Bytes()), []byte("\n"))
	require.Len(t, lines, 6)
	assert.Equal(t, "0.0050000000", string(bytes.TrimSpace(lines[1])))
	assert.Equal(t, "-48.4950000000", string(bytes.TrimSpace(lines[4])))
}

func TestWriteImageAndWorldFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "mosaic.png")

	data, err := EncodeImageBytes(image.NewNRGBA(image.Rect(0, 0, 2, 2)), OUTFMT_PNG)
	require.NoError(t, err)
	require.NoError(t, WriteOutput(filename, data))

	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := DecodeImage(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(2, 2), decoded.Bounds().Size())

	written, err := WriteWorldFile(filename, []byte("1\n"), OUTFMT_PNG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mosaic.pgw"), written)
	assert.FileExists(t, written)

	_, err = WriteWorldFile("", nil, OUTFMT_PNG)
	assert.Error(t, err)
}
