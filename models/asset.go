package models

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidDataURL  = errors.New("invalid data URL")
	ErrMissingMIMEType = errors.New("could not parse MIME type from data URL")
	ErrNotAnImage      = errors.New("content is not an image")
)

// ImageAsset is an immutable piece of image content. Every upload and every
// decoded service result becomes a new asset with its own ID.
type ImageAsset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

func NewImageAsset(name string, data []byte) (*ImageAsset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", name)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, mimeType)
	}
	return newAsset(name, mimeType, data), nil
}

// NewImageAssetWithType trusts the MIME type reported by the producer,
// e.g. an inline blob returned by the image service.
func NewImageAssetWithType(name string, mimeType string, data []byte) (*ImageAsset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", name)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, mimeType)
	}
	return newAsset(name, mimeType, data), nil
}

// ImageAssetFromDataURL decodes "data:<mime>;base64,<payload>".
func ImageAssetFromDataURL(dataURL string, name string) (*ImageAsset, error) {
	header, payload, found := strings.Cut(dataURL, ",")
	if !found || !strings.HasPrefix(header, "data:") {
		return nil, ErrInvalidDataURL
	}
	mimeType, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if mimeType == "" {
		return nil, ErrMissingMIMEType
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return NewImageAssetWithType(name, mimeType, data)
}

func newAsset(name string, mimeType string, data []byte) *ImageAsset {
	// own copy so callers can't mutate the asset afterwards
	owned := make([]byte, len(data))
	copy(owned, data)
	return &ImageAsset{
		ID:       uuid.New().String(),
		Name:     name,
		MIMEType: mimeType,
		Data:     owned,
	}
}

func (a *ImageAsset) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MIMEType, base64.StdEncoding.EncodeToString(a.Data))
}

// Size returns the natural pixel dimensions of the asset.
func (a *ImageAsset) Size() (Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return Size{}, fmt.Errorf("failed to read image dimensions of %s: %w", a.Name, err)
	}
	return Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}, nil
}

// WithName returns the same content under another file name.
func (a *ImageAsset) WithName(name string) *ImageAsset {
	renamed := *a
	renamed.Name = name
	return &renamed
}
