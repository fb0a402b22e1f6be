package translate

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocess_UpscalesSmallImages(t *testing.T) {
	out, err := Preprocess(encodePNG(t, 100, 80))

	require.NoError(t, err)
	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, decoded.Bounds().Dx())
	assert.Equal(t, 160, decoded.Bounds().Dy())
}

func TestPreprocess_LeavesLargeImagesAlone(t *testing.T) {
	out, err := Preprocess(encodePNG(t, 800, 600))

	require.NoError(t, err)
	decoded, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 800, decoded.Bounds().Dx())
}

func TestPreprocess_RejectsGarbage(t *testing.T) {
	_, err := Preprocess([]byte("not a png"))
	assert.Error(t, err)
}
