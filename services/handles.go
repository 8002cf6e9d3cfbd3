package services

import (
	"context"
	"fmt"
	"log"
	"path"
	"sync"

	"studioapi/models"

	"github.com/getsentry/sentry-go"
)

// DisplayHandleProvider turns an asset into something a browser can show.
// Every Acquire is paired with a Release once the asset is superseded or its
// session goes away.
type DisplayHandleProvider interface {
	Acquire(ctx context.Context, asset *models.ImageAsset) (string, error)
	Release(ctx context.Context, asset *models.ImageAsset)
}

// InlineHandles serves assets as data URLs and tracks which are still bound.
type InlineHandles struct {
	mu   sync.Mutex
	live map[string]struct{}
}

func NewInlineHandles() *InlineHandles {
	return &InlineHandles{live: map[string]struct{}{}}
}

func (h *InlineHandles) Acquire(ctx context.Context, asset *models.ImageAsset) (string, error) {
	h.mu.Lock()
	h.live[asset.ID] = struct{}{}
	h.mu.Unlock()
	return asset.DataURL(), nil
}

func (h *InlineHandles) Release(ctx context.Context, asset *models.ImageAsset) {
	h.mu.Lock()
	delete(h.live, asset.ID)
	h.mu.Unlock()
}

func (h *InlineHandles) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// R2Handles uploads assets to object storage on first use and hands out
// cached presigned read URLs. Release deletes the object.
type R2Handles struct {
	aws      AWSServiceProvider
	urls     URLCacheServiceProvider
	bucket   string
	prefix   string
	mu       sync.Mutex
	uploaded map[string]string
}

func NewR2Handles(aws AWSServiceProvider, urls URLCacheServiceProvider, bucket string, prefix string) *R2Handles {
	return &R2Handles{
		aws:      aws,
		urls:     urls,
		bucket:   bucket,
		prefix:   prefix,
		uploaded: map[string]string{},
	}
}

func (h *R2Handles) objectKey(asset *models.ImageAsset) string {
	return path.Join(h.prefix, asset.ID)
}

func (h *R2Handles) Acquire(ctx context.Context, asset *models.ImageAsset) (string, error) {
	h.mu.Lock()
	key, ok := h.uploaded[asset.ID]
	h.mu.Unlock()

	if !ok {
		key = h.objectKey(asset)
		if err := h.aws.PutObject(ctx, h.bucket, key, asset.MIMEType, asset.Data); err != nil {
			return "", fmt.Errorf("failed to store display image %s: %w", asset.ID, err)
		}
		h.mu.Lock()
		h.uploaded[asset.ID] = key
		h.mu.Unlock()
	}
	return h.urls.GetReadURL(ctx, key)
}

func (h *R2Handles) Release(ctx context.Context, asset *models.ImageAsset) {
	h.mu.Lock()
	key, ok := h.uploaded[asset.ID]
	delete(h.uploaded, asset.ID)
	h.mu.Unlock()
	if !ok {
		return
	}

	if err := h.urls.Invalidate(ctx, key); err != nil {
		log.Printf("[Handles] failed to invalidate url of %s: %v", key, err)
	}
	if err := h.aws.DeleteObject(ctx, h.bucket, key); err != nil {
		log.Printf("[Handles] failed to delete %s: %v", key, err)
		sentry.CaptureException(err)
	}
}

func (h *R2Handles) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.uploaded)
}
