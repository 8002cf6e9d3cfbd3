package models

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngAsset(t *testing.T, name string, width, height int) *ImageAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	asset, err := NewImageAsset(name, buf.Bytes())
	require.NoError(t, err)
	return asset
}

func TestEditHistoryEmpty(t *testing.T) {
	h := NewEditHistory()
	assert.Nil(t, h.Current())
	assert.Nil(t, h.Original())
	assert.Equal(t, -1, h.Cursor())
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	assert.False(t, h.ResetToOriginal())
	assert.ErrorIs(t, h.Commit(pngAsset(t, "a.png", 2, 2)), ErrEmptyHistory)
	assert.Equal(t, 0, h.Len())
}

func TestEditHistoryRedoBranchPruned(t *testing.T) {
	a, b, c, d := pngAsset(t, "a", 2, 2), pngAsset(t, "b", 2, 2), pngAsset(t, "c", 2, 2), pngAsset(t, "d", 2, 2)
	h := NewEditHistory()
	h.Upload(a)
	require.NoError(t, h.Commit(b))
	require.NoError(t, h.Commit(c))
	require.Equal(t, 2, h.Cursor())

	require.True(t, h.Undo())
	require.Equal(t, 1, h.Cursor())
	require.NoError(t, h.Commit(d))

	assert.Equal(t, []*ImageAsset{a, b, d}, h.Versions())
	assert.Equal(t, 2, h.Cursor())
	assert.False(t, h.CanRedo())
}

func TestEditHistoryUndoRedoRoundTrip(t *testing.T) {
	original, filtered := pngAsset(t, "x", 2, 2), pngAsset(t, "filtered", 2, 2)
	h := NewEditHistory()
	h.Upload(original)
	require.NoError(t, h.Commit(filtered))

	require.True(t, h.Undo())
	assert.Same(t, original, h.Current())
	require.True(t, h.Redo())
	assert.Same(t, filtered, h.Current())
}

func TestEditHistoryResetKeepsRedoBranch(t *testing.T) {
	a, b, c := pngAsset(t, "a", 2, 2), pngAsset(t, "b", 2, 2), pngAsset(t, "c", 2, 2)
	h := NewEditHistory()
	h.Upload(a)
	require.NoError(t, h.Commit(b))
	require.NoError(t, h.Commit(c))

	require.True(t, h.ResetToOriginal())
	assert.Same(t, a, h.Current())
	assert.Equal(t, 3, h.Len())
	assert.True(t, h.CanRedo())
	assert.False(t, h.ResetToOriginal())
}

func TestEditHistoryUploadReplacesEverything(t *testing.T) {
	h := NewEditHistory()
	h.Upload(pngAsset(t, "a", 2, 2))
	require.NoError(t, h.Commit(pngAsset(t, "b", 2, 2)))
	fresh := pngAsset(t, "fresh", 2, 2)
	h.Upload(fresh)
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 0, h.Cursor())
	assert.Same(t, fresh, h.Original())
}

func TestEditHistoryRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	original := pngAsset(t, "original", 2, 2)
	pool := make([]*ImageAsset, 8)
	for i := range pool {
		pool[i] = pngAsset(t, fmt.Sprintf("v%d", i), 2, 2)
	}
	h := NewEditHistory()
	h.Upload(original)
	for step := 0; step < 500; step++ {
		switch rng.Intn(4) {
		case 0:
			require.NoError(t, h.Commit(pool[rng.Intn(len(pool))]))
		case 1:
			h.Undo()
		case 2:
			h.Redo()
		case 3:
			h.ResetToOriginal()
		}
		require.GreaterOrEqual(t, h.Cursor(), 0)
		require.Less(t, h.Cursor(), h.Len())
		require.Same(t, original, h.Original())
	}
}
