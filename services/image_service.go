package services

import (
	"context"
	"errors"
	"fmt"

	"studioapi/models"
)

// Operation names, also stored in the usage ledger.
const (
	OpLocalizedEdit    = "localized-edit"
	OpStyleFilter      = "style-filter"
	OpAdjust           = "adjust"
	OpRemoveBackground = "remove-background"
	OpGenerateModel    = "generate-model"
	OpCompositeGarment = "composite-garment"
	OpRegeneratePose   = "regenerate-pose"
)

// ImageServiceProvider is the generative image backend. Every call either
// returns a new asset or a descriptive error, never both.
type ImageServiceProvider interface {
	LocalizedEdit(ctx context.Context, src *models.ImageAsset, instruction string, point models.Point) (*models.ImageAsset, error)
	StyleFilter(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error)
	Adjust(ctx context.Context, src *models.ImageAsset, instruction string) (*models.ImageAsset, error)
	RemoveBackground(ctx context.Context, src *models.ImageAsset) (*models.ImageAsset, error)
	GenerateModel(ctx context.Context, portrait *models.ImageAsset) (*models.ImageAsset, error)
	CompositeGarment(ctx context.Context, model *models.ImageAsset, garment *models.ImageAsset) (*models.ImageAsset, error)
	RegeneratePose(ctx context.Context, model *models.ImageAsset, pose string) (*models.ImageAsset, error)
}

var (
	ErrContentBlocked = errors.New("request was blocked")
	ErrNoImage        = errors.New("the model did not return an image")
	ErrQuotaExceeded  = errors.New("image service quota exceeded")
)

// ImageServiceError carries the operation and a message fit for showing to
// the user.
type ImageServiceError struct {
	Operation string
	Reason    string
	Err       error
}

func (e *ImageServiceError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Reason)
}

func (e *ImageServiceError) Unwrap() error {
	return e.Err
}

// UserMessage is the text placed in a screen's error slot.
func UserMessage(err error) string {
	var serviceErr *ImageServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Reason
	}
	return err.Error()
}
