package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutfitStackPushRejectsDuplicateGarment(t *testing.T) {
	var stack OutfitStack
	g := Garment{ID: "g1", Name: "Shirt"}
	require.NoError(t, stack.Push(NewOutfitLayer(g, DefaultPose(), pngAsset(t, "a", 2, 2))))
	err := stack.Push(NewOutfitLayer(g, DefaultPose(), pngAsset(t, "b", 2, 2)))
	assert.ErrorIs(t, err, ErrGarmentAlreadyApplied)
	assert.Equal(t, 1, stack.Len())
	assert.Equal(t, []string{"g1"}, stack.AppliedGarmentIDs())
}

func TestOutfitStackPopEmptyIsNoop(t *testing.T) {
	var stack OutfitStack
	assert.Nil(t, stack.Pop())
	assert.Nil(t, stack.Pop())
	assert.Equal(t, 0, stack.Len())
	assert.Nil(t, stack.Top())
}

func TestOutfitLayerCacheOnlyGrows(t *testing.T) {
	first, second, replacement := pngAsset(t, "p1", 2, 2), pngAsset(t, "p2", 2, 2), pngAsset(t, "p1b", 2, 2)
	layer := NewOutfitLayer(Garment{ID: "g"}, Poses[0], first)
	layer.CachePose(Poses[1], second)
	layer.CachePose(Poses[0], replacement)

	img, ok := layer.ImageFor(Poses[0])
	require.True(t, ok)
	assert.Same(t, first, img)
	assert.Equal(t, []string{Poses[0], Poses[1]}, layer.CachedPoses())
	assert.Same(t, first, layer.ReferenceImage())
}

func TestNewUploadedGarment(t *testing.T) {
	thumb := pngAsset(t, "thumb", 2, 2)
	a := NewUploadedGarment("summer_dress.png", thumb)
	b := NewUploadedGarment("summer_dress.png", thumb)
	assert.True(t, strings.HasPrefix(a.ID, "custom-"))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Summer Dress", a.Name)
	assert.Same(t, thumb, a.Thumbnail)
}

func TestValidatePoseRaw(t *testing.T) {
	assert.True(t, ValidatePoseRaw("Hands on hips"))
	assert.False(t, ValidatePoseRaw("Upside down"))
}
