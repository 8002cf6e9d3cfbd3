package sessions

import (
	"context"
	"sync"
	"testing"

	"studioapi/models"
	"studioapi/services"
	"studioapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedHandles holds the first Acquire until gate is closed.
type gatedHandles struct {
	*services.InlineHandles
	once    sync.Once
	entered chan struct{}
	gate    chan struct{}
}

func newGatedHandles() *gatedHandles {
	return &gatedHandles{
		InlineHandles: services.NewInlineHandles(),
		entered:       make(chan struct{}),
		gate:          make(chan struct{}),
	}
}

func (g *gatedHandles) Acquire(ctx context.Context, asset *models.ImageAsset) (string, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.gate
	})
	return g.InlineHandles.Acquire(ctx, asset)
}

func TestEditorViewReleasesImageReplacedWhileBinding(t *testing.T) {
	handles := newGatedHandles()
	editor := NewPhotoEditor(test.NewImageServiceMock(), handles)
	ctx := context.Background()
	require.NoError(t, editor.Upload(ctx, test.PNGAsset("first.png", 8, 8)))

	done := make(chan error, 1)
	go func() {
		_, err := editor.View(ctx)
		done <- err
	}()
	<-handles.entered
	next := test.PNGAsset("second.png", 8, 8)
	require.NoError(t, editor.Upload(ctx, next))
	close(handles.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 0, handles.Live())

	view, err := editor.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.ID, view.Current.ID)
	assert.Equal(t, 1, handles.Live())
}

func TestTryOnViewReleasesLayerPoppedWhileBinding(t *testing.T) {
	handles := newGatedHandles()
	tryOn := NewTryOn(test.NewImageServiceMock(), handles, false)
	ctx := context.Background()
	intake, err := tryOn.Intake()
	require.NoError(t, err)
	require.NoError(t, intake.Upload(ctx, test.PNGAsset("me.png", 8, 8)))
	require.NoError(t, tryOn.AcceptModel(ctx))
	require.NoError(t, tryOn.PushGarment(ctx, garment("shirt")))

	done := make(chan error, 1)
	go func() {
		_, err := tryOn.View(ctx)
		done <- err
	}()
	<-handles.entered
	popped, err := tryOn.PopLayer(ctx)
	require.NoError(t, err)
	require.True(t, popped)
	close(handles.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 0, handles.Live())

	view, err := tryOn.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, baseModel(t, tryOn).ID, view.Display.ID)
	assert.Equal(t, 1, handles.Live())
}
