package models

type ImageUploadIn struct {
	Name    string `json:"name" validate:"omitempty,max=200"`
	DataURL string `json:"data_url" validate:"required"`
}

type PromptIn struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type SelectTabIn struct {
	Tab string `json:"tab" validate:"required,tab"`
}

type HotspotIn struct {
	X             float64 `json:"x" validate:"gte=0"`
	Y             float64 `json:"y" validate:"gte=0"`
	DisplayWidth  float64 `json:"display_width" validate:"gt=0"`
	DisplayHeight float64 `json:"display_height" validate:"gt=0"`
}

type CropSelectIn struct {
	X             float64 `json:"x" validate:"gte=0"`
	Y             float64 `json:"y" validate:"gte=0"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	DisplayWidth  float64 `json:"display_width" validate:"gt=0"`
	DisplayHeight float64 `json:"display_height" validate:"gt=0"`
}

type SelectAppIn struct {
	App string `json:"app" validate:"required,app"`
}

// AddGarmentIn references a catalog garment or carries a user upload.
type AddGarmentIn struct {
	GarmentID string `json:"garment_id" validate:"omitempty,max=200"`
	Name      string `json:"name" validate:"omitempty,max=200"`
	DataURL   string `json:"data_url"`
}

type ChangePoseIn struct {
	Pose string `json:"pose" validate:"required,pose"`
}

type SessionCreatedOut struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ActiveApp App    `json:"active_app"`
}

type StudioOut struct {
	SessionID string `json:"session_id"`
	ActiveApp App    `json:"active_app"`
}

type ImageOut struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	URL      string `json:"url"`
}

type EditorOut struct {
	HasImage     bool           `json:"has_image"`
	Current      *ImageOut      `json:"current,omitempty"`
	Original     *ImageOut      `json:"original,omitempty"`
	Cursor       int            `json:"cursor"`
	VersionCount int            `json:"version_count"`
	CanUndo      bool           `json:"can_undo"`
	CanRedo      bool           `json:"can_redo"`
	Tab          EditorTab      `json:"tab"`
	Hotspot      *Hotspot       `json:"hotspot,omitempty"`
	Crop         *CropSelection `json:"crop,omitempty"`
	Loading      LoadingReason  `json:"loading,omitempty"`
	Message      string         `json:"loading_message,omitempty"`
	Error        *string        `json:"error"`
}

type LayerOut struct {
	GarmentID   string   `json:"garment_id"`
	GarmentName string   `json:"garment_name"`
	CachedPoses []string `json:"cached_poses"`
}

type IntakeOut struct {
	Source    *ImageOut     `json:"source,omitempty"`
	Generated *ImageOut     `json:"generated,omitempty"`
	Loading   LoadingReason `json:"loading,omitempty"`
	Error     *string       `json:"error"`
}

type TryOnOut struct {
	Screen            TryOnScreen   `json:"screen"`
	Intake            *IntakeOut    `json:"intake,omitempty"`
	Display           *ImageOut     `json:"display,omitempty"`
	CurrentPose       string        `json:"current_pose"`
	Poses             []string      `json:"poses"`
	PoseStale         bool          `json:"pose_stale"`
	Layers            []LayerOut    `json:"layers"`
	AppliedGarmentIDs []string      `json:"applied_garment_ids"`
	Loading           LoadingReason `json:"loading,omitempty"`
	Message           string        `json:"loading_message,omitempty"`
	Error             *string       `json:"error"`
}

type CatalogGarmentOut struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Disabled bool   `json:"disabled"`
}
