package test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"letrystudio/models"
)

var ErrStoreUnavailable = errors.New("storage quota exceeded")

// MemoryStore keeps the avatar and wardrobe keyed by identity, like the real store.
type MemoryStore struct {
	mu         sync.Mutex
	avatar     *models.ImageRef
	items      map[string]models.WardrobeItem
	order      []string
	failWrites bool
	failLoads  bool
	Saves      int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]models.WardrobeItem{}}
}

func (m *MemoryStore) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

func (m *MemoryStore) FailLoads(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoads = fail
}

func (m *MemoryStore) LoadAvatar(ctx context.Context) (*models.ImageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads {
		return nil, ErrStoreUnavailable
	}
	if m.avatar == nil {
		return nil, nil
	}
	avatar := *m.avatar
	return &avatar, nil
}

func (m *MemoryStore) SaveAvatar(ctx context.Context, avatar models.ImageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		m.avatar = nil
		return &models.PersistenceFailure{Operation: "save avatar", Err: ErrStoreUnavailable}
	}
	m.avatar = &avatar
	return nil
}

func (m *MemoryStore) LoadWardrobe(ctx context.Context) ([]models.WardrobeItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoads {
		return nil, ErrStoreUnavailable
	}
	items := make([]models.WardrobeItem, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return items, nil
}

func (m *MemoryStore) SaveWardrobe(ctx context.Context, items []models.WardrobeItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return &models.PersistenceFailure{Operation: "save wardrobe", Err: ErrStoreUnavailable}
	}
	m.Saves++
	m.items = map[string]models.WardrobeItem{}
	m.order = m.order[:0]
	for _, item := range items {
		if item.Metadata != nil {
			metadata := *item.Metadata
			item.Metadata = &metadata
		}
		m.items[item.ID] = item
		m.order = append(m.order, item.ID)
	}
	return nil
}

// Stored returns the persisted item with the given identity.
func (m *MemoryStore) Stored(id string) (models.WardrobeItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	return item, ok
}

// ClassifierMock answers by item name. Names listed in Gates block until the
// gate channel is closed.
type ClassifierMock struct {
	mu       sync.Mutex
	Results  map[string]models.ClothingMetadata
	Failures map[string]error
	Panics   map[string]bool
	Gates    map[string]chan struct{}
	calls    []string
}

func NewClassifierMock() *ClassifierMock {
	return &ClassifierMock{
		Results:  map[string]models.ClothingMetadata{},
		Failures: map[string]error{},
		Panics:   map[string]bool{},
		Gates:    map[string]chan struct{}{},
	}
}

func (c *ClassifierMock) Classify(ctx context.Context, image models.ImageRef) (models.ClothingMetadata, error) {
	c.mu.Lock()
	c.calls = append(c.calls, image.Name)
	gate := c.Gates[image.Name]
	result, hasResult := c.Results[image.Name]
	failure := c.Failures[image.Name]
	panics := c.Panics[image.Name]
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.ClothingMetadata{}, ctx.Err()
		}
	}
	if panics {
		panic("classifier exploded")
	}
	if failure != nil {
		return models.ClothingMetadata{}, failure
	}
	if !hasResult {
		return models.ClothingMetadata{}, fmt.Errorf("no classification for %s", image.Name)
	}
	return result, nil
}

func (c *ClassifierMock) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type StylistMock struct {
	mu        sync.Mutex
	Selection *models.OutfitSelection
	Err       error
	Requests  []models.OutfitSelectionRequest
}

func (s *StylistMock) SelectOutfit(ctx context.Context, req models.OutfitSelectionRequest) (*models.OutfitSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	selection := *s.Selection
	return &selection, nil
}

// RendererMock returns Renders for every render call and Refines for every
// refine call. A non-nil Block holds calls until it is closed.
type RendererMock struct {
	mu        sync.Mutex
	Renders   []models.RenderedImage
	Refines   []models.RenderedImage
	RenderErr error
	RefineErr error
	Block     chan struct{}
	Started   chan struct{}

	RenderRequests []models.RenderRequest
	RefineBases    []models.RenderedImage
	Instructions   []string
}

func (r *RendererMock) wait(ctx context.Context) error {
	if r.Started != nil {
		r.Started <- struct{}{}
	}
	if r.Block == nil {
		return nil
	}
	select {
	case <-r.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RendererMock) RenderOutfit(ctx context.Context, req models.RenderRequest) ([]models.RenderedImage, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RenderRequests = append(r.RenderRequests, req)
	if r.RenderErr != nil {
		return nil, r.RenderErr
	}
	return append([]models.RenderedImage(nil), r.Renders...), nil
}

func (r *RendererMock) RefineImage(ctx context.Context, base models.RenderedImage, instruction string) ([]models.RenderedImage, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RefineBases = append(r.RefineBases, base)
	r.Instructions = append(r.Instructions, instruction)
	if r.RefineErr != nil {
		return nil, r.RefineErr
	}
	return append([]models.RenderedImage(nil), r.Refines...), nil
}

func (r *RendererMock) RenderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.RenderRequests)
}

type ExporterMock struct {
	URL      string
	Err      error
	Exported []models.RenderedImage
}

func (e *ExporterMock) Export(ctx context.Context, image models.RenderedImage) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	e.Exported = append(e.Exported, image)
	return e.URL, nil
}

// Frame builds a rendered image whose payload is its label.
func Frame(label string) models.RenderedImage {
	return models.RenderedImage{MIMEType: "image/png", Data: []byte(label)}
}
