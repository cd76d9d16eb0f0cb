package store

import (
	"context"

	"letrystudio/models"
)

// Store is the durable copy of the avatar slot and the wardrobe collection.
// Writes are replace-all.
type Store interface {
	// LoadAvatar returns nil, nil when no avatar was saved.
	LoadAvatar(ctx context.Context) (*models.ImageRef, error)
	SaveAvatar(ctx context.Context, avatar models.ImageRef) error
	// LoadWardrobe makes no promise about ordering.
	LoadWardrobe(ctx context.Context) ([]models.WardrobeItem, error)
	SaveWardrobe(ctx context.Context, items []models.WardrobeItem) error
}
