package models

import "errors"

var ErrEmptyHistory = errors.New("history is empty, upload an image first")

// EditHistory is a strictly linear list of image versions with a cursor.
// versions[0] is the original upload and never changes until the next upload.
type EditHistory struct {
	versions []*ImageAsset
	cursor   int
}

func NewEditHistory() *EditHistory {
	return &EditHistory{cursor: -1}
}

// Upload replaces the whole history with a single original.
func (h *EditHistory) Upload(asset *ImageAsset) {
	h.versions = []*ImageAsset{asset}
	h.cursor = 0
}

// Clear empties the history, as when the user picks "upload new".
func (h *EditHistory) Clear() {
	h.versions = nil
	h.cursor = -1
}

// Commit drops the redo branch and appends asset as the new current version.
func (h *EditHistory) Commit(asset *ImageAsset) error {
	if len(h.versions) == 0 {
		return ErrEmptyHistory
	}
	kept := make([]*ImageAsset, h.cursor+1, h.cursor+2)
	copy(kept, h.versions[:h.cursor+1])
	h.versions = append(kept, asset)
	h.cursor = len(h.versions) - 1
	return nil
}

func (h *EditHistory) CanUndo() bool {
	return len(h.versions) > 0 && h.cursor > 0
}

func (h *EditHistory) CanRedo() bool {
	return len(h.versions) > 0 && h.cursor < len(h.versions)-1
}

func (h *EditHistory) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

func (h *EditHistory) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

// ResetToOriginal jumps straight to versions[0]; later versions stay redoable.
func (h *EditHistory) ResetToOriginal() bool {
	if len(h.versions) == 0 || h.cursor == 0 {
		return false
	}
	h.cursor = 0
	return true
}

func (h *EditHistory) Current() *ImageAsset {
	if len(h.versions) == 0 {
		return nil
	}
	return h.versions[h.cursor]
}

func (h *EditHistory) Original() *ImageAsset {
	if len(h.versions) == 0 {
		return nil
	}
	return h.versions[0]
}

// Cursor is -1 for an empty history.
func (h *EditHistory) Cursor() int {
	if len(h.versions) == 0 {
		return -1
	}
	return h.cursor
}

func (h *EditHistory) Len() int {
	return len(h.versions)
}

func (h *EditHistory) Versions() []*ImageAsset {
	out := make([]*ImageAsset, len(h.versions))
	copy(out, h.versions)
	return out
}
