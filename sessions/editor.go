package sessions

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"studioapi/models"
	"studioapi/services"

	"github.com/getsentry/sentry-go"
)

// RemoveBackgroundAdjustment is the adjustment preset that routes to
// background removal instead of a prompt-driven adjustment.
const RemoveBackgroundAdjustment = "__REMOVE_BACKGROUND__"

// PhotoEditor is the state of one photo editing experience.
type PhotoEditor struct {
	screen
	images  services.ImageServiceProvider
	handles *handleSet

	history *models.EditHistory
	tab     models.EditorTab
	hotspot *models.Hotspot
	crop    *models.CropSelection
}

func NewPhotoEditor(images services.ImageServiceProvider, handles services.DisplayHandleProvider) *PhotoEditor {
	return &PhotoEditor{
		screen:  screen{name: "photo editor", blocking: true},
		images:  images,
		handles: newHandleSet(handles),
		history: models.NewEditHistory(),
		tab:     models.TabRetouch,
	}
}

// settle releases handles of assets that are neither current nor original.
// Must be called without holding mu.
func (e *PhotoEditor) settle(ctx context.Context) {
	e.mu.Lock()
	current, original := e.history.Current(), e.history.Original()
	if e.closed {
		current, original = nil, nil
	}
	e.mu.Unlock()
	e.handles.retain(ctx, current, original)
}

// Upload starts over with asset as the original. A pending error is
// cleared along with everything else.
func (e *PhotoEditor) Upload(ctx context.Context, asset *models.ImageAsset) error {
	e.mu.Lock()
	if err := e.idle(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.history.Upload(asset)
	e.hotspot = nil
	e.crop = nil
	e.errMsg = nil
	e.tab = models.TabRetouch
	e.mu.Unlock()

	e.settle(ctx)
	return nil
}

// Clear empties the history so a new image can be uploaded.
func (e *PhotoEditor) Clear(ctx context.Context) error {
	e.mu.Lock()
	if err := e.idle(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.history.Clear()
	e.hotspot = nil
	e.crop = nil
	e.errMsg = nil
	e.mu.Unlock()

	e.settle(ctx)
	return nil
}

func (e *PhotoEditor) SelectTab(tab models.EditorTab) error {
	if !models.ValidateTabRaw(string(tab)) {
		return fmt.Errorf("%w: %s", ErrWrongTab, tab)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	e.tab = tab
	return nil
}

// SetHotspot records a click on the displayed image, scaled to source pixels.
func (e *PhotoEditor) SetHotspot(display models.Point, displayed models.Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	current := e.history.Current()
	if current == nil {
		return ErrNoImage
	}
	if e.tab != models.TabRetouch {
		return ErrWrongTab
	}
	if !displayed.Positive() {
		return ErrInvalidDisplaySize
	}
	natural, err := current.Size()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	hotspot := models.HotspotFromDisplay(display, displayed, natural)
	e.hotspot = &hotspot
	return nil
}

func (e *PhotoEditor) SelectCrop(selection models.CropSelection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	if e.history.Current() == nil {
		return ErrNoImage
	}
	if !selection.Valid() {
		return ErrInvalidCrop
	}
	e.crop = &selection
	return nil
}

func (e *PhotoEditor) ApplyLocalizedEdit(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	current := e.history.Current()
	if current == nil {
		e.mu.Unlock()
		return ErrNoImage
	}
	if prompt == "" {
		e.mu.Unlock()
		return ErrEmptyPrompt
	}
	if e.hotspot == nil {
		e.mu.Unlock()
		return ErrNoHotspot
	}
	point := e.hotspot.Point

	edited, err := e.external(ctx, models.LoadingLocalizedEdit, func(ctx context.Context) (*models.ImageAsset, error) {
		return e.images.LocalizedEdit(ctx, current, prompt, point)
	})
	if err != nil {
		// the hotspot stays so the user can retry the same spot
		e.mu.Unlock()
		return err
	}
	e.commit(edited.WithName(fmt.Sprintf("edited-%d.png", time.Now().UnixNano())))
	e.hotspot = nil
	e.mu.Unlock()

	e.settle(ctx)
	return nil
}

func (e *PhotoEditor) ApplyFilter(ctx context.Context, prompt string) error {
	return e.applyGlobal(ctx, prompt, models.LoadingFilter, "filtered", e.images.StyleFilter)
}

// ApplyAdjustment runs a global adjustment. The RemoveBackgroundAdjustment
// preset is routed to background removal.
func (e *PhotoEditor) ApplyAdjustment(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == RemoveBackgroundAdjustment {
		return e.RemoveBackground(ctx)
	}
	return e.applyGlobal(ctx, prompt, models.LoadingAdjustment, "adjusted", e.images.Adjust)
}

func (e *PhotoEditor) RemoveBackground(ctx context.Context) error {
	return e.applyGlobal(ctx, RemoveBackgroundAdjustment, models.LoadingRemoveBG, "adjusted",
		func(ctx context.Context, src *models.ImageAsset, _ string) (*models.ImageAsset, error) {
			return e.images.RemoveBackground(ctx, src)
		})
}

func (e *PhotoEditor) applyGlobal(ctx context.Context, prompt string, reason models.LoadingReason, prefix string, call func(context.Context, *models.ImageAsset, string) (*models.ImageAsset, error)) error {
	prompt = strings.TrimSpace(prompt)
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	current := e.history.Current()
	if current == nil {
		e.mu.Unlock()
		return ErrNoImage
	}
	if prompt == "" {
		e.mu.Unlock()
		return ErrEmptyPrompt
	}

	result, err := e.external(ctx, reason, func(ctx context.Context) (*models.ImageAsset, error) {
		return call(ctx, current, prompt)
	})
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.commit(result.WithName(fmt.Sprintf("%s-%d.png", prefix, time.Now().UnixNano())))
	e.mu.Unlock()

	e.settle(ctx)
	return nil
}

// ApplyCrop rasterizes the pending selection locally, without the image service.
func (e *PhotoEditor) ApplyCrop(ctx context.Context) error {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	current := e.history.Current()
	if current == nil {
		e.mu.Unlock()
		return ErrNoImage
	}
	if e.crop == nil || !e.crop.Valid() {
		e.mu.Unlock()
		return ErrInvalidCrop
	}

	cropped, err := e.rasterizeCrop(current, *e.crop)
	if err != nil {
		log.Printf("[Session: %s] crop failed: %v", services.SessionIDFrom(ctx), err)
		sentry.CaptureException(err)
		e.fail("Could not process the crop.")
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}
	e.commit(cropped)
	e.mu.Unlock()

	e.settle(ctx)
	return nil
}

func (e *PhotoEditor) rasterizeCrop(current *models.ImageAsset, selection models.CropSelection) (*models.ImageAsset, error) {
	natural, err := current.Size()
	if err != nil {
		return nil, err
	}
	return services.CropImage(current, selection.SourceRect(natural))
}

// commit must be called with mu held.
func (e *PhotoEditor) commit(asset *models.ImageAsset) {
	// history is never empty here, callers checked Current
	_ = e.history.Commit(asset)
	e.crop = nil
}

func (e *PhotoEditor) Undo(ctx context.Context) (bool, error) {
	return e.navigate(ctx, e.history.Undo)
}

func (e *PhotoEditor) Redo(ctx context.Context) (bool, error) {
	return e.navigate(ctx, e.history.Redo)
}

func (e *PhotoEditor) ResetToOriginal(ctx context.Context) (bool, error) {
	return e.navigate(ctx, e.history.ResetToOriginal)
}

func (e *PhotoEditor) navigate(ctx context.Context, move func() bool) (bool, error) {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return false, err
	}
	changed := move()
	if changed {
		// the hotspot is in pixels of the version it was placed on
		e.hotspot = nil
		e.crop = nil
	}
	e.mu.Unlock()

	if changed {
		e.settle(ctx)
	}
	return changed, nil
}

func (e *PhotoEditor) Dismiss() error {
	return e.dismiss()
}

// Close tears the editor down; a result still in flight is discarded.
func (e *PhotoEditor) Close(ctx context.Context) {
	e.close()
	e.handles.releaseAll(ctx)
}

func (e *PhotoEditor) View(ctx context.Context) (models.EditorOut, error) {
	e.mu.Lock()
	current, original := e.history.Current(), e.history.Original()
	out := models.EditorOut{
		HasImage:     current != nil,
		Cursor:       e.history.Cursor(),
		VersionCount: e.history.Len(),
		CanUndo:      e.history.CanUndo(),
		CanRedo:      e.history.CanRedo(),
		Tab:          e.tab,
		Loading:      e.loading,
		Message:      e.loading.Message(),
		Error:        e.errorCopy(),
	}
	if e.hotspot != nil {
		hotspot := *e.hotspot
		out.Hotspot = &hotspot
	}
	if e.crop != nil {
		crop := *e.crop
		out.Crop = &crop
	}
	e.mu.Unlock()

	var err error
	if out.Current, err = e.handles.image(ctx, current); err != nil {
		return out, err
	}
	if out.Original, err = e.handles.image(ctx, original); err != nil {
		return out, err
	}
	// a commit racing this view may have superseded what was just bound
	e.settle(ctx)
	return out, nil
}
