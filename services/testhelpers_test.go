package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"studioapi/models"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int, fill color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngAsset(t *testing.T, width, height int) *models.ImageAsset {
	t.Helper()
	asset, err := models.NewImageAsset("fixture.png", pngBytes(t, width, height, color.RGBA{R: 30, G: 60, B: 90, A: 255}))
	require.NoError(t, err)
	return asset
}
