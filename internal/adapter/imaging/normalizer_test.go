package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// horizontal gradient with some mid-range values
			v := uint8((x * 255) / w)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNormalizeOutputIsBinarizedAtTargetWidth(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	writeTestPNG(t, src, 40, 20)

	n := NewNormalizer()
	require.NoError(t, n.Normalize(src, dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	out, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, defaultTargetWidth, out.Bounds().Dx())

	gray, ok := out.(*image.Gray)
	require.True(t, ok, "normalized output should be grayscale")
	for _, p := range gray.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel value %d is not binarized", p)
		}
	}
}

func TestNormalizeHandlesAlphaSources(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")

	// Scanned drawings exported as PNG sometimes carry an alpha channel.
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			v := uint8((x * 255) / 40)
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 200})
		}
	}
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	n := NewNormalizer()
	require.NoError(t, n.Normalize(src, dst))

	out, err := os.Open(dst)
	require.NoError(t, err)
	defer out.Close()
	decoded, err := png.Decode(out)
	require.NoError(t, err)

	gray, ok := decoded.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, defaultTargetWidth, gray.Bounds().Dx())
	for _, p := range gray.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel value %d is not binarized", p)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 64, 32)

	n := NewNormalizer()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, n.Normalize(src, a))
	require.NoError(t, n.Normalize(src, b))

	aBytes, err := os.ReadFile(a)
	require.NoError(t, err)
	bBytes, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, aBytes, bBytes)
}

func TestNormalizeDoesNotTouchTheSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writeTestPNG(t, src, 32, 16)

	before, err := os.ReadFile(src)
	require.NoError(t, err)

	n := NewNormalizer()
	require.NoError(t, n.Normalize(src, filepath.Join(dir, "out.png")))

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o600))

	n := NewNormalizer()
	err := n.Normalize(src, filepath.Join(dir, "out.png"))
	require.Error(t, err)
}

func TestNormalizeMissingSource(t *testing.T) {
	dir := t.TempDir()
	n := NewNormalizer()
	err := n.Normalize(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.png"))
	require.Error(t, err)
}
