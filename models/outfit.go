package models

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrGarmentAlreadyApplied = errors.New("garment is already part of the outfit")

var garmentNameCaser = cases.Title(language.English)

type Garment struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Thumbnail *ImageAsset `json:"-"`
}

// NewUploadedGarment builds a user garment. The id carries a timestamp plus a
// random suffix so two uploads in the same instant never collide.
func NewUploadedGarment(fileName string, thumbnail *ImageAsset) Garment {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	if base == "" {
		base = "custom garment"
	}
	return Garment{
		ID:        fmt.Sprintf("custom-%d-%s", time.Now().UnixNano(), uuid.New().String()[:8]),
		Name:      garmentNameCaser.String(base),
		Thumbnail: thumbnail,
	}
}

// OutfitLayer binds one garment to the images generated for it, keyed by pose.
// The pose cache lives and dies with the layer.
type OutfitLayer struct {
	Garment     Garment                `json:"garment"`
	PoseImages  map[string]*ImageAsset `json:"-"`
	CreatedPose string                 `json:"created_pose"`
}

func NewOutfitLayer(garment Garment, pose string, image *ImageAsset) *OutfitLayer {
	return &OutfitLayer{
		Garment:     garment,
		PoseImages:  map[string]*ImageAsset{pose: image},
		CreatedPose: pose,
	}
}

func (l *OutfitLayer) ImageFor(pose string) (*ImageAsset, bool) {
	img, ok := l.PoseImages[pose]
	return img, ok
}

// CachePose only adds; existing entries are never replaced or evicted.
func (l *OutfitLayer) CachePose(pose string, image *ImageAsset) {
	if _, exists := l.PoseImages[pose]; exists {
		return
	}
	l.PoseImages[pose] = image
}

// ReferenceImage is the image the layer was created with.
func (l *OutfitLayer) ReferenceImage() *ImageAsset {
	return l.PoseImages[l.CreatedPose]
}

func (l *OutfitLayer) CachedPoses() []string {
	poses := make([]string, 0, len(l.PoseImages))
	for _, pose := range Poses {
		if _, ok := l.PoseImages[pose]; ok {
			poses = append(poses, pose)
		}
	}
	return poses
}

// OutfitStack only supports push and pop of the last layer.
type OutfitStack struct {
	layers []*OutfitLayer
}

func (s *OutfitStack) Push(layer *OutfitLayer) error {
	if s.Has(layer.Garment.ID) {
		return fmt.Errorf("%w: %s", ErrGarmentAlreadyApplied, layer.Garment.ID)
	}
	s.layers = append(s.layers, layer)
	return nil
}

// Pop removes and returns the last layer, nil when empty.
func (s *OutfitStack) Pop() *OutfitLayer {
	if len(s.layers) == 0 {
		return nil
	}
	last := s.layers[len(s.layers)-1]
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
	return last
}

func (s *OutfitStack) Top() *OutfitLayer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

func (s *OutfitStack) Len() int {
	return len(s.layers)
}

func (s *OutfitStack) Has(garmentID string) bool {
	for _, layer := range s.layers {
		if layer.Garment.ID == garmentID {
			return true
		}
	}
	return false
}

func (s *OutfitStack) AppliedGarmentIDs() []string {
	ids := make([]string, 0, len(s.layers))
	for _, layer := range s.layers {
		ids = append(ids, layer.Garment.ID)
	}
	return ids
}

func (s *OutfitStack) Layers() []*OutfitLayer {
	out := make([]*OutfitLayer, len(s.layers))
	copy(out, s.layers)
	return out
}
