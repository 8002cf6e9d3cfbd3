package sessions

import (
	"context"
	"fmt"

	"studioapi/models"
	"studioapi/services"
)

// TryOn is one virtual try-on experience. It starts on the intake screen
// and moves to the main screen once a generated model is accepted.
type TryOn struct {
	screen
	images  services.ImageServiceProvider
	whiten  bool
	handles *handleSet

	view   models.TryOnScreen
	intake *ModelIntake
	base   *models.ImageAsset
	stack  models.OutfitStack
	pose   string
}

func NewTryOn(images services.ImageServiceProvider, handles services.DisplayHandleProvider, whiten bool) *TryOn {
	set := newHandleSet(handles)
	return &TryOn{
		screen:  screen{name: "virtual try-on", blocking: true},
		images:  images,
		whiten:  whiten,
		handles: set,
		view:    models.TryOnScreenStart,
		intake:  newModelIntake(images, set, whiten),
		pose:    models.DefaultPose(),
	}
}

// Intake returns the model intake while the start screen is shown.
func (t *TryOn) Intake() (*ModelIntake, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrClosed
	}
	if t.view != models.TryOnScreenStart {
		return nil, ErrWrongScreen
	}
	return t.intake, nil
}

// AcceptModel moves the generated model to the main screen with an empty
// outfit and the default pose.
func (t *TryOn) AcceptModel(ctx context.Context) error {
	t.mu.Lock()
	if err := t.ready(); err != nil {
		t.mu.Unlock()
		return err
	}
	if t.view != models.TryOnScreenStart {
		t.mu.Unlock()
		return ErrWrongScreen
	}
	generated, err := t.intake.Generated()
	if err != nil {
		t.mu.Unlock()
		return err
	}
	t.intake.close()
	t.intake = nil
	t.base = generated
	t.stack = models.OutfitStack{}
	t.pose = models.DefaultPose()
	t.view = models.TryOnScreenMain
	t.mu.Unlock()

	t.handles.retain(ctx, generated)
	return nil
}

// mainReady must be called with mu held.
func (t *TryOn) mainReady() error {
	if err := t.ready(); err != nil {
		return err
	}
	if t.view != models.TryOnScreenMain {
		return ErrWrongScreen
	}
	return nil
}

// display picks the top layer's image for the current pose, falling back to
// the base model. stale reports that the top layer lacks the current pose.
func (t *TryOn) display() (image *models.ImageAsset, stale bool) {
	top := t.stack.Top()
	if top == nil {
		return t.base, false
	}
	if img, ok := top.ImageFor(t.pose); ok {
		return img, false
	}
	return t.base, true
}

// settle keeps handles for every image still reachable from the screen
// shown. Must be called without holding mu.
func (t *TryOn) settle(ctx context.Context) {
	t.mu.Lock()
	var keep []*models.ImageAsset
	switch {
	case t.closed:
	case t.view == models.TryOnScreenStart:
		keep = t.intake.assets()
	default:
		keep = append(keep, t.base)
		for _, layer := range t.stack.Layers() {
			for _, img := range layer.PoseImages {
				keep = append(keep, img)
			}
		}
	}
	t.mu.Unlock()
	t.handles.retain(ctx, keep...)
}

// PushGarment composites garment onto the displayed image and pushes the
// result as a new layer cached under the current pose.
func (t *TryOn) PushGarment(ctx context.Context, garment models.Garment) error {
	t.mu.Lock()
	if err := t.mainReady(); err != nil {
		t.mu.Unlock()
		return err
	}
	if garment.Thumbnail == nil {
		t.mu.Unlock()
		return ErrNoGarmentImage
	}
	if t.stack.Has(garment.ID) {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGarmentApplied, garment.ID)
	}
	// after a pop the display may be the base model, the new layer then
	// starts from it in the current pose
	input, _ := t.display()
	pose := t.pose

	result, err := t.external(ctx, models.LoadingAddGarment, func(ctx context.Context) (*models.ImageAsset, error) {
		return t.images.CompositeGarment(ctx, input, garment.Thumbnail)
	})
	if err != nil {
		t.mu.Unlock()
		return err
	}
	err = t.stack.Push(models.NewOutfitLayer(garment, pose, result))
	t.mu.Unlock()
	if err != nil {
		return err
	}

	t.settle(ctx)
	return nil
}

// PopLayer removes the top layer together with its pose cache. Popping an
// empty outfit does nothing.
func (t *TryOn) PopLayer(ctx context.Context) (bool, error) {
	t.mu.Lock()
	if err := t.mainReady(); err != nil {
		t.mu.Unlock()
		return false, err
	}
	popped := t.stack.Pop()
	t.mu.Unlock()

	if popped != nil {
		t.settle(ctx)
	}
	return popped != nil, nil
}

// ChangePose switches the current pose. Without layers or on a cache hit no
// external call is made; otherwise the new pose is generated and cached on
// the top layer.
func (t *TryOn) ChangePose(ctx context.Context, pose string) error {
	if !models.ValidatePoseRaw(pose) {
		return fmt.Errorf("%w: %s", ErrUnknownPose, pose)
	}
	t.mu.Lock()
	if err := t.mainReady(); err != nil {
		t.mu.Unlock()
		return err
	}
	if pose == t.pose {
		t.mu.Unlock()
		return nil
	}
	top := t.stack.Top()
	if top == nil {
		t.pose = pose
		t.mu.Unlock()
		return nil
	}
	if _, ok := top.ImageFor(pose); ok {
		t.pose = pose
		t.mu.Unlock()
		return nil
	}
	input, stale := t.display()
	if stale {
		input = top.ReferenceImage()
	}

	result, err := t.external(ctx, models.LoadingChangePose, func(ctx context.Context) (*models.ImageAsset, error) {
		return t.images.RegeneratePose(ctx, input, pose)
	})
	if err != nil {
		t.mu.Unlock()
		return err
	}
	top.CachePose(pose, result)
	t.pose = pose
	t.mu.Unlock()

	t.settle(ctx)
	return nil
}

// RefreshPose regenerates the current pose for a top layer that was created
// in another pose, using the layer's own reference image.
func (t *TryOn) RefreshPose(ctx context.Context) error {
	t.mu.Lock()
	if err := t.mainReady(); err != nil {
		t.mu.Unlock()
		return err
	}
	top := t.stack.Top()
	if _, stale := t.display(); top == nil || !stale {
		t.mu.Unlock()
		return ErrPoseNotStale
	}
	input, pose := top.ReferenceImage(), t.pose

	result, err := t.external(ctx, models.LoadingRefreshPose, func(ctx context.Context) (*models.ImageAsset, error) {
		return t.images.RegeneratePose(ctx, input, pose)
	})
	if err != nil {
		t.mu.Unlock()
		return err
	}
	top.CachePose(pose, result)
	t.mu.Unlock()

	t.settle(ctx)
	return nil
}

func (t *TryOn) Dismiss() error {
	return t.dismiss()
}

// StartOver drops the model and outfit and shows a fresh intake.
func (t *TryOn) StartOver(ctx context.Context) error {
	t.mu.Lock()
	if err := t.ready(); err != nil {
		t.mu.Unlock()
		return err
	}
	if t.view == models.TryOnScreenStart {
		intake := t.intake
		t.mu.Unlock()
		return intake.Reset(ctx)
	}
	t.base = nil
	t.stack = models.OutfitStack{}
	t.pose = models.DefaultPose()
	t.view = models.TryOnScreenStart
	t.intake = newModelIntake(t.images, t.handles, t.whiten)
	t.mu.Unlock()

	t.handles.releaseAll(ctx)
	return nil
}

// Close tears the experience down; results still in flight are discarded.
func (t *TryOn) Close(ctx context.Context) {
	t.mu.Lock()
	t.closed = true
	intake := t.intake
	t.mu.Unlock()
	if intake != nil {
		intake.close()
	}
	t.handles.releaseAll(ctx)
}

func (t *TryOn) View(ctx context.Context) (models.TryOnOut, error) {
	t.mu.Lock()
	out := models.TryOnOut{
		Screen:            t.view,
		CurrentPose:       t.pose,
		Poses:             models.Poses,
		AppliedGarmentIDs: t.stack.AppliedGarmentIDs(),
		Layers:            []models.LayerOut{},
		Loading:           t.loading,
		Message:           t.loading.Message(),
		Error:             t.errorCopy(),
	}
	for _, layer := range t.stack.Layers() {
		out.Layers = append(out.Layers, models.LayerOut{
			GarmentID:   layer.Garment.ID,
			GarmentName: layer.Garment.Name,
			CachedPoses: layer.CachedPoses(),
		})
	}
	display, stale := t.display()
	out.PoseStale = stale
	intake := t.intake
	view := t.view
	t.mu.Unlock()

	if view == models.TryOnScreenStart {
		intakeOut, err := intake.View(ctx)
		out.Intake = intakeOut
		if intakeOut != nil && intakeOut.Loading != models.LoadingNone {
			out.Loading = intakeOut.Loading
			out.Message = intakeOut.Loading.Message()
		}
		// a transition may have superseded what was just bound
		t.settle(ctx)
		return out, err
	}

	var err error
	out.Display, err = t.handles.image(ctx, display)
	t.settle(ctx)
	return out, err
}

func (t *TryOn) AppliedGarmentIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stack.AppliedGarmentIDs()
}
