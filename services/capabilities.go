package services

import (
	"context"

	"letrystudio/models"
)

// Classifier turns one clothing photo into metadata.
type Classifier interface {
	Classify(ctx context.Context, image models.ImageRef) (models.ClothingMetadata, error)
}

// Stylist picks wardrobe item names for an occasion.
type Stylist interface {
	SelectOutfit(ctx context.Context, req models.OutfitSelectionRequest) (*models.OutfitSelection, error)
}

// Renderer composites the avatar with clothing, and edits a rendered frame.
// Both calls return at least one image or an error.
type Renderer interface {
	RenderOutfit(ctx context.Context, req models.RenderRequest) ([]models.RenderedImage, error)
	RefineImage(ctx context.Context, base models.RenderedImage, instruction string) ([]models.RenderedImage, error)
}

// Exporter publishes a rendered frame and returns a time-limited read URL.
type Exporter interface {
	Export(ctx context.Context, image models.RenderedImage) (string, error)
}
