package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"studioapi/models"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
)

//go:embed catalog.json
var defaultCatalog []byte

const thumbnailCacheExpiration = 6 * time.Hour

var ErrUnknownGarment = errors.New("garment is not in the catalog")

type CatalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

type GarmentCatalogProvider interface {
	Entries() []CatalogEntry
	URL(entry CatalogEntry) string
	Garment(ctx context.Context, id string) (models.Garment, error)
}

// GarmentCatalog is the built-in wardrobe. Thumbnails live behind a base URL
// and are fetched once, then kept in a loadable cache.
type GarmentCatalog struct {
	baseURL    string
	entries    []CatalogEntry
	thumbnails *cache.LoadableCache[*models.ImageAsset]
}

func NewGarmentCatalog(baseURL string, httpClient *http.Client) (*GarmentCatalog, error) {
	var entries []CatalogEntry
	if err := json.Unmarshal(defaultCatalog, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse garment catalog: %w", err)
	}
	return NewGarmentCatalogWithEntries(baseURL, entries, httpClient)
}

func NewGarmentCatalogWithEntries(baseURL string, entries []CatalogEntry, httpClient *http.Client) (*GarmentCatalog, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ristrettoStore, err := newRistrettoStore()
	if err != nil {
		return nil, err
	}
	catalog := &GarmentCatalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		entries: entries,
	}

	loadFunction := func(ctx context.Context, key any) (*models.ImageAsset, []store.Option, error) {
		id, ok := key.(string)
		if !ok {
			return nil, nil, fmt.Errorf("invalid key type provided to thumbnail cache: expected string, got %T", key)
		}
		entry, found := catalog.entry(id)
		if !found {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownGarment, id)
		}
		log.Printf("CACHE MISS for garment: %s. Fetching thumbnail.", id)
		data, err := ReadFileFromUrl(ctx, httpClient, catalog.URL(entry))
		if err != nil {
			return nil, nil, err
		}
		asset, err := models.NewImageAsset(entry.Name, data)
		if err != nil {
			return nil, nil, err
		}
		return asset, []store.Option{store.WithExpiration(thumbnailCacheExpiration)}, nil
	}
	catalog.thumbnails = cache.NewLoadable[*models.ImageAsset](
		loadFunction,
		cache.New[*models.ImageAsset](ristrettoStore),
	)
	return catalog, nil
}

func (c *GarmentCatalog) entry(id string) (CatalogEntry, bool) {
	for _, entry := range c.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

func (c *GarmentCatalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *GarmentCatalog) URL(entry CatalogEntry) string {
	if strings.HasPrefix(entry.Path, "http://") || strings.HasPrefix(entry.Path, "https://") {
		return entry.Path
	}
	return c.baseURL + "/" + strings.TrimPrefix(entry.Path, "/")
}

// Garment resolves a catalog id to a garment with its thumbnail loaded.
func (c *GarmentCatalog) Garment(ctx context.Context, id string) (models.Garment, error) {
	entry, found := c.entry(id)
	if !found {
		return models.Garment{}, fmt.Errorf("%w: %s", ErrUnknownGarment, id)
	}
	thumbnail, err := c.thumbnails.Get(ctx, id)
	if err != nil {
		return models.Garment{}, fmt.Errorf("failed to load garment %s: %w", id, err)
	}
	return models.Garment{ID: entry.ID, Name: entry.Name, Thumbnail: thumbnail}, nil
}

func ReadFileFromUrl(ctx context.Context, httpClient *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}
	return content, nil
}
