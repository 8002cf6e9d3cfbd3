package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageAssetDataURLRoundTrip(t *testing.T) {
	asset := pngAsset(t, "a.png", 4, 3)
	decoded, err := ImageAssetFromDataURL(asset.DataURL(), "copy.png")
	require.NoError(t, err)
	assert.Equal(t, asset.Data, decoded.Data)
	assert.Equal(t, "image/png", decoded.MIMEType)
	assert.NotEqual(t, asset.ID, decoded.ID)

	size, err := decoded.Size()
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 4, Height: 3}, size)
}

func TestImageAssetFromDataURLErrors(t *testing.T) {
	_, err := ImageAssetFromDataURL("not a data url", "x")
	assert.ErrorIs(t, err, ErrInvalidDataURL)

	_, err = ImageAssetFromDataURL("data:;base64,AAAA", "x")
	assert.ErrorIs(t, err, ErrMissingMIMEType)

	_, err = ImageAssetFromDataURL("data:text/plain;base64,aGVsbG8=", "x")
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestNewImageAssetRejectsNonImage(t *testing.T) {
	_, err := NewImageAsset("notes.txt", []byte("hello world"))
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestHotspotFromDisplay(t *testing.T) {
	h := HotspotFromDisplay(Point{X: 50, Y: 25}, Size{Width: 100, Height: 50}, Size{Width: 1000, Height: 500})
	assert.Equal(t, Point{X: 500, Y: 250}, h.Point)
	assert.Equal(t, Point{X: 50, Y: 25}, h.Display)
}

func TestCropSelectionSourceRect(t *testing.T) {
	sel := CropSelection{
		Region:    Rect{X: 10, Y: 10, Width: 20, Height: 30},
		Displayed: Size{Width: 100, Height: 100},
	}
	require.True(t, sel.Valid())
	rect := sel.SourceRect(Size{Width: 200, Height: 200})
	assert.Equal(t, 20, rect.Min.X)
	assert.Equal(t, 20, rect.Min.Y)
	assert.Equal(t, 40, rect.Dx())
	assert.Equal(t, 60, rect.Dy())

	assert.False(t, CropSelection{Region: Rect{Width: 0, Height: 5}, Displayed: Size{Width: 1, Height: 1}}.Valid())
}
