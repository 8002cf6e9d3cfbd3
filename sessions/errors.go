package sessions

import (
	"errors"

	"studioapi/models"
)

var (
	ErrBusy                = errors.New("another operation is still running")
	ErrClosed              = errors.New("this experience was closed")
	ErrUnacknowledgedError = errors.New("dismiss the current error first")
	ErrExternal            = errors.New("image service failed")
	ErrProcessing          = errors.New("image processing failed")

	ErrNoImage     = errors.New("no image loaded")
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	ErrWrongTab    = errors.New("action is not available on this tab")
	ErrNoHotspot   = errors.New("select an area of the image first")
	ErrInvalidCrop = errors.New("crop selection must have a positive width and height")

	ErrInvalidDisplaySize = errors.New("displayed image size must be positive")

	ErrNoPortrait     = errors.New("upload a photo first")
	ErrNoModel        = errors.New("no model has been generated yet")
	ErrNoGarmentImage = errors.New("garment has no image")
	ErrGarmentApplied = models.ErrGarmentAlreadyApplied
	ErrPoseNotStale   = errors.New("current pose is already available")
	ErrUnknownPose    = errors.New("unknown pose")

	ErrWrongScreen       = errors.New("action is not available on this screen")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("session not found")
)
