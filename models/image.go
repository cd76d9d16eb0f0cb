package models

import (
	"time"

	"github.com/google/uuid"
)

// ImageRef is an uploaded or captured image. Immutable once created.
type ImageRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Payload  []byte `json:"-"`
}

func NewImageRef(name, mimeType string, payload []byte) ImageRef {
	return ImageRef{
		ID:       uuid.NewString(),
		Name:     name,
		MIMEType: mimeType,
		Payload:  payload,
	}
}

// WardrobeItem is an ImageRef plus its enrichment state.
type WardrobeItem struct {
	ImageRef
	Metadata  *ClothingMetadata `json:"metadata"`
	Enriching bool              `json:"enriching"`
	AddedAt   time.Time         `json:"added_at"`
}

func NewPendingItem(ref ImageRef) WardrobeItem {
	return WardrobeItem{ImageRef: ref, Enriching: true, AddedAt: time.Now().UTC()}
}

// RenderedImage is one frame returned by the rendering or refinement capability.
type RenderedImage struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}
