package composer

import (
	"context"
	"errors"
	"strings"
	"sync"

	"letrystudio/models"
	"letrystudio/services"

	"github.com/rs/zerolog"
)

type State string

const (
	Idle       State = "idle"
	Composing  State = "composing"
	Generating State = "generating"
	Rendered   State = "rendered"
	Refining   State = "refining"
)

// ErrDiscarded is returned by a request whose session was reset by StartOver
// while it was in flight.
var ErrDiscarded = errors.New("the studio was reset while the request was in flight")

// Wardrobe is the read side of the studio state the composer works from.
type Wardrobe interface {
	Avatar() *models.ImageRef
	Items() []models.WardrobeItem
}

// Snapshot is a read-only copy of the composition state.
type Snapshot struct {
	State       State                   `json:"state"`
	Outfit      []models.WardrobeItem   `json:"outfit"`
	ResultCount int                     `json:"result_count"`
	Cursor      int                     `json:"cursor"`
	LastError   string                  `json:"last_error,omitempty"`
	Suggestion  *models.OutfitSelection `json:"suggestion,omitempty"`
}

// Composer drives outfit selection, rendering and refinement for one session.
// Only one generate/refine/stylist request runs at a time; a second one gets
// models.ErrBusy.
type Composer struct {
	wardrobe Wardrobe
	renderer services.Renderer
	stylist  services.Stylist
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	busy       bool
	epoch      uint64
	outfit     []models.WardrobeItem
	results    []models.RenderedImage
	cursor     int
	lastErr    error
	suggestion *models.OutfitSelection
}

func New(wardrobe Wardrobe, renderer services.Renderer, stylist services.Stylist, log zerolog.Logger) *Composer {
	return &Composer{
		wardrobe: wardrobe,
		renderer: renderer,
		stylist:  stylist,
		log:      log,
		state:    Idle,
	}
}

func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := Snapshot{
		State:       c.state,
		Outfit:      append([]models.WardrobeItem(nil), c.outfit...),
		ResultCount: len(c.results),
		Cursor:      c.cursor,
	}
	if c.lastErr != nil {
		snapshot.LastError = c.lastErr.Error()
	}
	if c.suggestion != nil {
		suggestion := *c.suggestion
		snapshot.Suggestion = &suggestion
	}
	return snapshot
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Composer) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Results returns the current result sequence and cursor.
func (c *Composer) Results() ([]models.RenderedImage, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.RenderedImage(nil), c.results...), c.cursor
}

// Current returns the frame at the cursor.
func (c *Composer) Current() (models.RenderedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) == 0 {
		return models.RenderedImage{}, false
	}
	return c.results[c.cursor], true
}

// AddToOutfit appends item unless an item with the same identity is present.
func (c *Composer) AddToOutfit(item models.WardrobeItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.outfit {
		if existing.ID == item.ID {
			return
		}
	}
	c.outfit = append(c.outfit, item)
	if c.state == Idle {
		c.state = Composing
	}
}

func (c *Composer) RemoveFromOutfit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.outfit {
		if existing.ID == id {
			c.outfit = append(c.outfit[:i], c.outfit[i+1:]...)
			break
		}
	}
	if len(c.outfit) == 0 && c.state == Composing {
		c.state = Idle
	}
}

// CycleResult moves the cursor by one in direction, wrapping at both ends.
func (c *Composer) CycleResult(direction int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.results)
	if n <= 1 || direction == 0 {
		return c.cursor
	}
	if direction > 0 {
		c.cursor = (c.cursor + 1) % n
	} else {
		c.cursor = (c.cursor - 1 + n) % n
	}
	return c.cursor
}

// StartOver drops the outfit and results. Wardrobe and avatar are untouched.
func (c *Composer) StartOver() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.busy = false
	c.state = Idle
	c.outfit = nil
	c.results = nil
	c.cursor = 0
	c.lastErr = nil
	c.suggestion = nil
	c.log.Info().Msg("[Compose] started over")
}

// Generate renders the avatar wearing the current outfit.
func (c *Composer) Generate(ctx context.Context, mood, steering string) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return models.ErrBusy
	}
	avatar := c.wardrobe.Avatar()
	if avatar == nil {
		return c.failLocked(models.NewValidationError("Please upload an avatar first."))
	}
	outfit := c.liveOutfitLocked()
	if len(outfit) == 0 {
		return c.failLocked(models.NewValidationError("Please add at least one clothing item to the outfit."))
	}
	prev := c.state
	epoch := c.beginLocked(Generating)
	c.mu.Unlock()

	_, err := c.render(ctx, epoch, prev, *avatar, outfit, mood, steering)
	return err
}

// Refine edits the frame at the cursor and replaces the whole result
// sequence with the refined frames.
func (c *Composer) Refine(ctx context.Context, steering string) error {
	steering = strings.TrimSpace(steering)
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return models.ErrBusy
	}
	if len(c.results) == 0 {
		return c.failLocked(models.NewValidationError("Generate a look before refining it."))
	}
	if steering == "" {
		return c.failLocked(models.NewValidationError("Please describe the change you want to make."))
	}
	base := c.results[c.cursor]
	epoch := c.beginLocked(Refining)
	c.mu.Unlock()

	c.log.Info().Str("operation", "refine").Msg("[Compose] refining current frame")
	images, err := c.renderer.RefineImage(ctx, base, steering)
	if err == nil && len(images) == 0 {
		err = &models.CapabilityFailure{Operation: "refine image", Reason: "No reason provided.", Refused: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrDiscarded
	}
	c.busy = false
	if err != nil {
		c.state = Rendered
		c.lastErr = err
		c.report(err, "refine")
		return err
	}
	c.results = images
	c.cursor = 0
	c.state = Rendered
	c.lastErr = nil
	return nil
}

// SelectOutfitForOccasion asks the stylist for an outfit, resolves the chosen
// names against the wardrobe and renders it with the stylist's reasoning as
// steering. The render stage is skipped when the first stage fails.
func (c *Composer) SelectOutfitForOccasion(ctx context.Context, occasion, styleNotes string, preferredIDs []string, mood string) (*models.OutfitSelection, error) {
	occasion = strings.TrimSpace(occasion)
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, models.ErrBusy
	}
	if occasion == "" {
		return nil, c.failLocked(models.NewValidationError("Please describe the occasion."))
	}
	avatar := c.wardrobe.Avatar()
	if avatar == nil {
		return nil, c.failLocked(models.NewValidationError("Please upload an avatar first."))
	}
	items := c.wardrobe.Items()
	if len(items) < 2 {
		return nil, c.failLocked(models.NewValidationError("Add at least two clothing items to use the AI stylist."))
	}
	prev := c.state
	epoch := c.beginLocked(Generating)
	c.mu.Unlock()

	req := models.OutfitSelectionRequest{
		Occasion:       occasion,
		CandidateNames: candidateNames(items),
		StyleNotes:     strings.TrimSpace(styleNotes),
		PreferredNames: preferredNames(items, preferredIDs),
	}
	selection, err := c.stylist.SelectOutfit(ctx, req)
	if err == nil && selection == nil {
		err = &models.CapabilityFailure{Operation: "select an outfit", Reason: "empty response"}
	}
	if err != nil {
		return nil, c.abort(epoch, prev, err, "stylist")
	}

	resolved := resolveSelection(items, selection.Selection)
	if len(resolved) == 0 {
		return nil, c.abort(epoch, prev, &models.NameResolutionFailure{Names: selection.Selection}, "stylist")
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, ErrDiscarded
	}
	c.outfit = resolved
	c.suggestion = selection
	c.mu.Unlock()
	c.log.Info().Strs("selection", selection.Selection).Int("resolved", len(resolved)).Msg("[Compose] stylist picked an outfit")

	return c.render(ctx, epoch, prev, *avatar, resolved, mood, selection.Reasoning)
}

func (c *Composer) render(ctx context.Context, epoch uint64, prev State, avatar models.ImageRef, outfit []models.WardrobeItem, mood, steering string) (*models.OutfitSelection, error) {
	if strings.TrimSpace(mood) == "" {
		mood = services.DefaultMood()
	}
	clothing := make([]models.ImageRef, 0, len(outfit))
	for _, item := range outfit {
		clothing = append(clothing, item.ImageRef)
	}

	c.log.Info().Int("items", len(clothing)).Str("mood", mood).Msg("[Compose] rendering outfit")
	images, err := c.renderer.RenderOutfit(ctx, models.RenderRequest{
		Avatar:   avatar,
		Clothing: clothing,
		Mood:     mood,
		Steering: strings.TrimSpace(steering),
	})
	if err == nil && len(images) == 0 {
		err = &models.CapabilityFailure{Operation: "generate image", Reason: "No reason provided.", Refused: true}
	}
	if err != nil {
		return nil, c.abort(epoch, prev, err, "generate")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrDiscarded
	}
	c.busy = false
	c.results = images
	c.cursor = 0
	c.state = Rendered
	c.lastErr = nil
	return c.suggestion, nil
}

// abort rolls back to the state preceding the request and records err.
func (c *Composer) abort(epoch uint64, prev State, err error, operation string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrDiscarded
	}
	c.busy = false
	c.state = prev
	if c.state == Idle && len(c.outfit) > 0 {
		c.state = Composing
	}
	c.lastErr = err
	c.report(err, operation)
	return err
}

func (c *Composer) beginLocked(state State) uint64 {
	c.busy = true
	c.state = state
	return c.epoch
}

// failLocked records a validation error and releases the lock.
func (c *Composer) failLocked(err error) error {
	c.lastErr = err
	c.mu.Unlock()
	return err
}

func (c *Composer) report(err error, operation string) {
	c.log.Warn().Err(err).Str("operation", operation).Msg("[Compose] request failed")
	if models.IsCapabilityFailure(err) {
		services.ReportError(err, map[string]string{"component": "compose", "operation": operation})
	}
}

// liveOutfitLocked drops outfit entries that left the wardrobe.
func (c *Composer) liveOutfitLocked() []models.WardrobeItem {
	current := make(map[string]models.WardrobeItem)
	for _, item := range c.wardrobe.Items() {
		current[item.ID] = item
	}
	live := c.outfit[:0]
	for _, item := range c.outfit {
		if fresh, ok := current[item.ID]; ok {
			live = append(live, fresh)
		}
	}
	c.outfit = live
	if len(c.outfit) == 0 && c.state == Composing {
		c.state = Idle
	}
	return append([]models.WardrobeItem(nil), live...)
}
