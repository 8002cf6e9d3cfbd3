package sessions

import (
	"context"
	"log"

	"studioapi/models"
	"studioapi/services"
)

// ModelIntake turns a user portrait into a base model image. Its error slot
// does not block: a new upload or a retry replaces it.
type ModelIntake struct {
	screen
	images  services.ImageServiceProvider
	whiten  bool
	handles *handleSet

	source    *models.ImageAsset
	generated *models.ImageAsset
}

func NewModelIntake(images services.ImageServiceProvider, handles services.DisplayHandleProvider, whiten bool) *ModelIntake {
	return newModelIntake(images, newHandleSet(handles), whiten)
}

func newModelIntake(images services.ImageServiceProvider, handles *handleSet, whiten bool) *ModelIntake {
	return &ModelIntake{
		screen:  screen{name: "model intake"},
		images:  images,
		whiten:  whiten,
		handles: handles,
	}
}

// Upload starts model generation for a new portrait. A second upload while a
// generation is running is rejected with ErrBusy.
func (m *ModelIntake) Upload(ctx context.Context, portrait *models.ImageAsset) error {
	m.mu.Lock()
	if err := m.ready(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.source = portrait
	m.generated = nil
	m.errMsg = nil
	return m.generate(ctx)
}

// Retry reruns generation with the photo already uploaded.
func (m *ModelIntake) Retry(ctx context.Context) error {
	m.mu.Lock()
	if err := m.ready(); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.source == nil {
		m.mu.Unlock()
		return ErrNoPortrait
	}
	m.generated = nil
	m.errMsg = nil
	return m.generate(ctx)
}

// generate is entered with mu held and releases it.
func (m *ModelIntake) generate(ctx context.Context) error {
	source := m.source
	generated, err := m.external(ctx, models.LoadingGenerateModel, func(ctx context.Context) (*models.ImageAsset, error) {
		generated, err := m.images.GenerateModel(ctx, source)
		if err != nil || !m.whiten {
			return generated, err
		}
		whitened, werr := services.WhitenModelBackground(generated)
		if werr != nil {
			log.Printf("[Session: %s] could not whiten model background: %v", services.SessionIDFrom(ctx), werr)
			return generated, nil
		}
		return whitened, nil
	})
	if err == nil {
		m.generated = generated
	}
	keep := []*models.ImageAsset{m.source, m.generated}
	m.mu.Unlock()

	m.handles.retain(ctx, keep...)
	return err
}

// Reset forgets the portrait, the generated model and any error.
func (m *ModelIntake) Reset(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.loading != models.LoadingNone {
		m.mu.Unlock()
		return ErrBusy
	}
	m.source = nil
	m.generated = nil
	m.errMsg = nil
	m.mu.Unlock()

	m.handles.releaseAll(ctx)
	return nil
}

// assets lists the images the intake still shows.
func (m *ModelIntake) assets() []*models.ImageAsset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []*models.ImageAsset{m.source, m.generated}
}

// Generated is the model ready to be accepted, nil until generation succeeds.
func (m *ModelIntake) Generated() (*models.ImageAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ready(); err != nil {
		return nil, err
	}
	if m.generated == nil {
		return nil, ErrNoModel
	}
	return m.generated, nil
}

func (m *ModelIntake) Close(ctx context.Context) {
	m.close()
	m.handles.releaseAll(ctx)
}

func (m *ModelIntake) View(ctx context.Context) (*models.IntakeOut, error) {
	m.mu.Lock()
	source, generated := m.source, m.generated
	out := &models.IntakeOut{
		Loading: m.loading,
		Error:   m.errorCopy(),
	}
	m.mu.Unlock()

	var err error
	if out.Source, err = m.handles.image(ctx, source); err != nil {
		return out, err
	}
	if out.Generated, err = m.handles.image(ctx, generated); err != nil {
		return out, err
	}
	return out, nil
}
