package capture

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-paint/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{".tif", FormatTIFF},
		{"tiff", FormatTIFF},
		{"bmp", FormatBMP},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("jpeg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestEncodeRoundTripsPixels(t *testing.T) {
	tex := common.NewSolidTexture("paintCapture", 3, 2, [4]uint8{10, 200, 30, 255})
	decoders := map[Format]func(*bytes.Reader) (image.Image, error){
		FormatPNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		FormatTIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
		FormatBMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
	}

	for f, decode := range decoders {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tex.Image(), f))

			img, err := decode(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, 3, img.Bounds().Dx())
			assert.Equal(t, 2, img.Bounds().Dy())

			r, g, b, a := img.At(1, 1).RGBA()
			assert.Equal(t, []uint32{10, 200, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
		})
	}

	assert.ErrorIs(t, Encode(&bytes.Buffer{}, tex.Image(), Format("gif")), ErrUnsupportedFormat)
}

func TestWriterSavesNamedFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(WithDir(filepath.Join(dir, "out")), WithWorkers(2))

	paths := make([]string, 0, 2)
	for _, name := range []string{"paintCapture", "projectCapture"} {
		p, err := w.Save(common.NewSolidTexture(name, 4, 4, [4]uint8{255, 0, 0, 255}))
		require.NoError(t, err)
		paths = append(paths, p)
	}
	require.NoError(t, w.Close())

	assert.Equal(t, filepath.Join(dir, "out", "paintCapture.png"), paths[0])
	for _, p := range paths {
		f, err := os.Open(p)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Width)
		assert.Equal(t, 4, cfg.Height)
	}

	_, err := w.Save(common.NewSolidTexture("late", 1, 1, [4]uint8{}))
	assert.Error(t, err)
	assert.NoError(t, w.Close())
}

func TestWriterPathSanitisesNames(t *testing.T) {
	w := NewWriter(WithDir("caps"), WithFormat(FormatBMP))
	defer w.Close()

	assert.Equal(t, filepath.Join("caps", "evil.bmp"), w.Path("../../evil"))
	assert.Equal(t, filepath.Join("caps", "texture.bmp"), w.Path(""))
	assert.Equal(t, FormatBMP, w.Format())
	assert.Equal(t, "caps", w.Dir())
}

func TestFlushReportsWriteErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := NewWriter(WithDir(blocker))
	_, err := w.Save(common.NewSolidTexture("tex", 1, 1, [4]uint8{}))
	require.NoError(t, err)

	assert.Error(t, w.Flush())
	assert.NoError(t, w.Flush())
	require.NoError(t, w.Close())
}

func TestWriterKeepsLatestSaveOfAName(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(WithDir(dir), WithWorkers(4))

	const saves = 60
	var path string
	for i := 1; i <= saves; i++ {
		p, err := w.Save(common.NewSolidTexture("paintCapture", 256, 256, [4]uint8{uint8(i), 0, 0, 255}))
		require.NoError(t, err)
		path = p
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	r, _, _, _ := img.At(128, 128).RGBA()
	assert.Equal(t, uint32(saves), r>>8, "file holds the last save")
	assert.Empty(t, w.(*writer).pending)
	assert.Empty(t, w.(*writer).draining)
}
