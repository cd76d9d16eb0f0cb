package wardrobe

import (
	"context"
	"errors"
	"slices"
	"sync"

	"letrystudio/models"
	"letrystudio/services"
	"letrystudio/store"

	"github.com/rs/zerolog"
)

// Studio owns the in-memory avatar and wardrobe and mirrors every change to
// the store. All wardrobe writes go through it.
type Studio struct {
	store store.Store
	log   zerolog.Logger

	mu     sync.RWMutex
	avatar *models.ImageRef
	items  []models.WardrobeItem

	// persistMu orders store writes; each write snapshots state after taking it.
	persistMu sync.Mutex
	degraded  bool
}

func NewStudio(s store.Store, log zerolog.Logger) *Studio {
	return &Studio{store: s, log: log}
}

// Load replaces in-memory state with the stored one and returns the items
// whose enrichment was interrupted. A load failure leaves the studio empty
// and in-memory only.
func (s *Studio) Load(ctx context.Context) ([]models.ImageRef, error) {
	avatar, err := s.store.LoadAvatar(ctx)
	if err != nil {
		return nil, s.degrade("load avatar", err)
	}
	items, err := s.store.LoadWardrobe(ctx)
	if err != nil {
		return nil, s.degrade("load wardrobe", err)
	}

	var pending []models.ImageRef
	for _, item := range items {
		if item.Enriching {
			pending = append(pending, item.ImageRef)
		}
	}

	s.mu.Lock()
	s.avatar = avatar
	s.items = items
	s.mu.Unlock()

	s.log.Info().Int("items", len(items)).Int("pending", len(pending)).Bool("avatar", avatar != nil).Msg("[Store] session loaded")
	return pending, nil
}

func (s *Studio) Avatar() *models.ImageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.avatar == nil {
		return nil
	}
	avatar := *s.avatar
	return &avatar
}

// SetAvatar replaces the avatar. The returned error is only ever a
// *models.PersistenceFailure; the new avatar is in effect either way.
func (s *Studio) SetAvatar(ctx context.Context, avatar models.ImageRef) error {
	s.mu.Lock()
	s.avatar = &avatar
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.degraded {
		return nil
	}
	current := s.Avatar()
	if current == nil {
		return nil
	}
	if err := s.store.SaveAvatar(context.WithoutCancel(ctx), *current); err != nil {
		return s.degradeLocked("save avatar", err)
	}
	return nil
}

// Items returns a copy of the wardrobe in insertion order.
func (s *Studio) Items() []models.WardrobeItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Studio) Item(id string) (models.WardrobeItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.WardrobeItem{}, false
}

func (s *Studio) Degraded() bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.degraded
}

// addPending inserts refs as enriching items and persists.
func (s *Studio) addPending(ctx context.Context, refs []models.ImageRef) ([]models.WardrobeItem, error) {
	added := make([]models.WardrobeItem, 0, len(refs))
	s.mu.Lock()
	for _, ref := range refs {
		item := models.NewPendingItem(ref)
		s.items = append(s.items, item)
		added = append(added, item)
	}
	s.mu.Unlock()

	return added, s.persistWardrobe(ctx, "save wardrobe")
}

// completeEnrichment applies metadata to the item with the given identity in
// the current state. It reports false when the item is gone.
func (s *Studio) completeEnrichment(ctx context.Context, id string, metadata models.ClothingMetadata) (bool, error) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(item models.WardrobeItem) bool { return item.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.items[idx].Metadata = &metadata
	s.items[idx].Enriching = false
	s.mu.Unlock()

	return true, s.persistWardrobe(ctx, "save enrichment")
}

// Remove deletes the item by identity.
func (s *Studio) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.items, func(item models.WardrobeItem) bool { return item.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return models.ErrItemNotFound
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	s.mu.Unlock()

	return s.persistWardrobe(ctx, "remove item")
}

func (s *Studio) persistWardrobe(ctx context.Context, operation string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.degraded {
		return nil
	}
	// snapshot after the lock so the latest state always wins; a write
	// outlives the request that caused it
	if err := s.store.SaveWardrobe(context.WithoutCancel(ctx), s.Items()); err != nil {
		return s.degradeLocked(operation, err)
	}
	return nil
}

func (s *Studio) degrade(operation string, err error) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.degradeLocked(operation, err)
}

func (s *Studio) degradeLocked(operation string, err error) error {
	var failure *models.PersistenceFailure
	if !errors.As(err, &failure) {
		failure = &models.PersistenceFailure{Operation: operation, Err: err}
	}
	if !s.degraded {
		s.degraded = true
		s.log.Error().Err(err).Str("operation", operation).Msg("[Store] persistence unavailable, continuing in memory only")
		services.ReportError(failure, map[string]string{"component": "store", "operation": operation})
	}
	return failure
}
