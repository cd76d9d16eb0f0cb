package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"letrystudio/config"
	"letrystudio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImageDownscales(t *testing.T) {
	payload := pngBytes(t, 400, 100)

	out, mimeType, err := NormalizeImage(payload, config.ImagesConfig{MaxDimension: 200, JPEGQuality: 80})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestNormalizeImageKeepsSmallPNG(t *testing.T) {
	payload := pngBytes(t, 20, 20)

	out, mimeType, err := NormalizeImage(payload, config.ImagesConfig{MaxDimension: 200})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.Equal(t, payload, out)
}

func TestNormalizeImageRejectsNonImage(t *testing.T) {
	_, _, err := NormalizeImage([]byte("%PDF-1.4 not a picture"), config.ImagesConfig{MaxDimension: 200})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestNormalizeImageRejectsEmpty(t *testing.T) {
	_, _, err := NormalizeImage(nil, config.ImagesConfig{})
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}
