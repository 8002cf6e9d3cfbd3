package sessions

import (
	"context"
	"sync"

	"studioapi/models"
	"studioapi/services"
)

// handleSet tracks the display handles a screen has handed out so they can
// be released once their asset is superseded.
type handleSet struct {
	provider services.DisplayHandleProvider
	mu       sync.Mutex
	bound    map[string]*models.ImageAsset
}

func newHandleSet(provider services.DisplayHandleProvider) *handleSet {
	return &handleSet{provider: provider, bound: map[string]*models.ImageAsset{}}
}

func (h *handleSet) image(ctx context.Context, asset *models.ImageAsset) (*models.ImageOut, error) {
	if asset == nil {
		return nil, nil
	}
	url, err := h.provider.Acquire(ctx, asset)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.bound[asset.ID] = asset
	h.mu.Unlock()
	return &models.ImageOut{ID: asset.ID, Name: asset.Name, MIMEType: asset.MIMEType, URL: url}, nil
}

// retain releases every bound handle whose asset is not in keep.
func (h *handleSet) retain(ctx context.Context, keep ...*models.ImageAsset) {
	wanted := map[string]bool{}
	for _, asset := range keep {
		if asset != nil {
			wanted[asset.ID] = true
		}
	}
	var stale []*models.ImageAsset
	h.mu.Lock()
	for id, asset := range h.bound {
		if !wanted[id] {
			stale = append(stale, asset)
			delete(h.bound, id)
		}
	}
	h.mu.Unlock()
	for _, asset := range stale {
		h.provider.Release(ctx, asset)
	}
}

func (h *handleSet) releaseAll(ctx context.Context) {
	h.retain(ctx)
}
