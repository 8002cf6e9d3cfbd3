package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func (f *fakeBucket) PutObject(ctx context.Context, bucketName, fileKey, contentType string, fileContent []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[fileKey] = fileContent
	return nil
}

func (f *fakeBucket) DeleteObject(ctx context.Context, bucketName, fileKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, fileKey)
	return nil
}

func (f *fakeBucket) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return fmt.Sprintf("https://%s.example.com/%s?sig=1", bucketName, fileKey), nil
}

type fakeURLCache struct {
	bucket      *fakeBucket
	invalidated []string
}

func (f *fakeURLCache) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	return f.bucket.GetPresignedR2FileReadURL(ctx, "studio", objectKey)
}

func (f *fakeURLCache) Invalidate(ctx context.Context, objectKey string) error {
	f.invalidated = append(f.invalidated, objectKey)
	return nil
}

func TestInlineHandles(t *testing.T) {
	handles := NewInlineHandles()
	asset := pngAsset(t, 2, 2)
	url, err := handles.Acquire(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, asset.DataURL(), url)
	assert.Equal(t, 1, handles.Live())

	handles.Release(context.Background(), asset)
	assert.Equal(t, 0, handles.Live())
}

func TestR2HandlesUploadOnceAndDeleteOnRelease(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}}
	urls := &fakeURLCache{bucket: bucket}
	handles := NewR2Handles(bucket, urls, "studio", "sessions")
	asset := pngAsset(t, 2, 2)

	first, err := handles.Acquire(context.Background(), asset)
	require.NoError(t, err)
	second, err := handles.Acquire(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "sessions/"+asset.ID)
	assert.Len(t, bucket.objects, 1)
	assert.Equal(t, 1, handles.Live())

	handles.Release(context.Background(), asset)
	assert.Empty(t, bucket.objects)
	assert.Equal(t, []string{"sessions/" + asset.ID}, urls.invalidated)
	assert.Equal(t, 0, handles.Live())

	// releasing twice is harmless
	handles.Release(context.Background(), asset)
	assert.Len(t, urls.invalidated, 1)
}

func TestR2HandlesUploadFailure(t *testing.T) {
	bucket := &fakeBucket{objects: map[string][]byte{}, putErr: errors.New("boom")}
	handles := NewR2Handles(bucket, &fakeURLCache{bucket: bucket}, "studio", "sessions")
	_, err := handles.Acquire(context.Background(), pngAsset(t, 2, 2))
	assert.Error(t, err)
	assert.Equal(t, 0, handles.Live())
}
