package test

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"studioapi/models"
	"studioapi/services"
)

// ImageServiceMock answers every call with a fresh small PNG. Failures can
// be configured per operation and Gate can hold calls until released.
type ImageServiceMock struct {
	mu      sync.Mutex
	calls   map[string]int
	inputs  map[string][]*models.ImageAsset
	Errors  map[string]error
	Gate    chan struct{}
	Started chan string
	counter int
}

func NewImageServiceMock() *ImageServiceMock {
	return &ImageServiceMock{
		calls:  map[string]int{},
		inputs: map[string][]*models.ImageAsset{},
		Errors: map[string]error{},
	}
}

func (m *ImageServiceMock) Calls(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[operation]
}

func (m *ImageServiceMock) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// LastInput is the first image argument of the latest call to operation.
func (m *ImageServiceMock) LastInput(operation string) *models.ImageAsset {
	m.mu.Lock()
	defer m.mu.Unlock()
	inputs := m.inputs[operation]
	if len(inputs) == 0 {
		return nil
	}
	return inputs[len(inputs)-1]
}

func (m *ImageServiceMock) FailWith(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

func (m *ImageServiceMock) respond(ctx context.Context, operation string, input *models.ImageAsset) (*models.ImageAsset, error) {
	m.mu.Lock()
	m.calls[operation]++
	m.inputs[operation] = append(m.inputs[operation], input)
	m.counter++
	n := m.counter
	gate, started := m.Gate, m.Started
	err := m.Errors[operation]
	m.mu.Unlock()

	if started != nil {
		started <- operation
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	data := PNGBytes(4, 4, color.RGBA{R: uint8(n * 7), G: uint8(n * 13), B: uint8(n * 29), A: 255})
	return models.NewImageAssetWithType(fmt.Sprintf("%s-%d.png", operation, n), "image/png", data)
}

func (m *ImageServiceMock) LocalizedEdit(ctx context.Context, src *models.ImageAsset, instruction string, point models.Point) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpLocalizedEdit, src)
}

func (m *ImageServiceMock) StyleFilter(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpStyleFilter, src)
}

func (m *ImageServiceMock) Adjust(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpAdjust, src)
}

func (m *ImageServiceMock) RemoveBackground(ctx context.Context, src *models.ImageAsset) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpRemoveBackground, src)
}

func (m *ImageServiceMock) GenerateModel(ctx context.Context, portrait *models.ImageAsset) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpGenerateModel, portrait)
}

func (m *ImageServiceMock) CompositeGarment(ctx context.Context, model *models.ImageAsset, garment *models.ImageAsset) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpCompositeGarment, model)
}

func (m *ImageServiceMock) RegeneratePose(ctx context.Context, model *models.ImageAsset, pose string) (*models.ImageAsset, error) {
	return m.respond(ctx, services.OpRegeneratePose, model)
}

// CatalogMock serves garments from memory.
type CatalogMock struct {
	Garments []models.Garment
}

func NewCatalogMock(ids ...string) *CatalogMock {
	catalog := &CatalogMock{}
	for _, id := range ids {
		catalog.Garments = append(catalog.Garments, models.Garment{
			ID:        id,
			Name:      id,
			Thumbnail: PNGAsset(id+".png", 4, 4),
		})
	}
	return catalog
}

func (c *CatalogMock) Entries() []services.CatalogEntry {
	var entries []services.CatalogEntry
	for _, g := range c.Garments {
		entries = append(entries, services.CatalogEntry{ID: g.ID, Name: g.Name, Path: "garments/" + g.ID + ".png"})
	}
	return entries
}

func (c *CatalogMock) URL(entry services.CatalogEntry) string {
	return "https://cdn.example.com/" + entry.Path
}

func (c *CatalogMock) Garment(ctx context.Context, id string) (models.Garment, error) {
	for _, g := range c.Garments {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Garment{}, fmt.Errorf("%w: %s", services.ErrUnknownGarment, id)
}

// AWSProviderMock keeps objects in memory.
type AWSProviderMock struct {
	MockUrl string
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewAWSProviderMock() *AWSProviderMock {
	return &AWSProviderMock{MockUrl: "https://fakebucketurl.com", Objects: map[string][]byte{}}
}

func (a *AWSProviderMock) PutObject(ctx context.Context, bucketName, fileKey, contentType string, fileContent []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Objects[fileKey] = fileContent
	return nil
}

func (a *AWSProviderMock) DeleteObject(ctx context.Context, bucketName, fileKey string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.Objects, fileKey)
	return nil
}

func (a *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return fmt.Sprintf("%s/%s/%s", a.MockUrl, bucketName, fileKey), nil
}

func (a *AWSProviderMock) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Objects)
}
