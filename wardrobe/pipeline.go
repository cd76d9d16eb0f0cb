package wardrobe

import (
	"context"
	"sync"

	"letrystudio/models"
	"letrystudio/services"

	"github.com/rs/zerolog"
)

// Pipeline accepts uploads into the studio and enriches them in the background.
type Pipeline struct {
	studio     *Studio
	dispatcher Dispatcher
	// ctx outlives the request that accepted the upload.
	ctx context.Context
	log zerolog.Logger
	wg  sync.WaitGroup
}

func NewPipeline(ctx context.Context, studio *Studio, dispatcher Dispatcher, log zerolog.Logger) *Pipeline {
	return &Pipeline{studio: studio, dispatcher: dispatcher, ctx: ctx, log: log}
}

// Accept inserts refs as enriching items, persists them and starts their
// classification. It returns the inserted items; the error is only ever a
// *models.PersistenceFailure.
func (p *Pipeline) Accept(ctx context.Context, refs ...models.ImageRef) ([]models.WardrobeItem, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	items, warn := p.studio.addPending(ctx, refs)
	for _, ref := range refs {
		p.dispatch(ref)
	}
	return items, warn
}

// Resume restarts classification of items loaded with enriching=true.
func (p *Pipeline) Resume(refs []models.ImageRef) {
	for _, ref := range refs {
		p.log.Info().Str("item_id", ref.ID).Msg("[Enrich] resuming interrupted enrichment")
		p.dispatch(ref)
	}
}

// Wait blocks until every dispatched item has completed.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) dispatch(ref models.ImageRef) {
	p.wg.Add(1)
	p.dispatcher.Dispatch(p.ctx, ref, func(metadata models.ClothingMetadata, err error) {
		defer p.wg.Done()
		p.complete(ref, metadata, err)
	})
}

func (p *Pipeline) complete(ref models.ImageRef, metadata models.ClothingMetadata, err error) {
	log := p.log.With().Str("item_id", ref.ID).Str("name", ref.Name).Logger()
	if p.ctx.Err() != nil {
		// shutting down: the item stays enriching and is resumed on next load
		log.Info().Msg("[Enrich] pipeline stopped before enrichment finished")
		return
	}

	resolved := models.DefaultMetadata()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("[Enrich] classification failed, using defaults")
		services.ReportError(err, map[string]string{"component": "enrich", "item_id": ref.ID})
	default:
		normalized, ok := metadata.Normalize()
		if ok {
			resolved = normalized
		} else {
			log.Warn().Interface("metadata", metadata).Msg("[Enrich] unusable classification, using defaults")
		}
	}

	applied, warn := p.studio.completeEnrichment(p.ctx, ref.ID, resolved)
	if !applied {
		log.Debug().Msg("[Enrich] item removed before enrichment finished, dropping result")
		return
	}
	if warn != nil {
		log.Warn().Err(warn).Msg("[Enrich] enrichment kept in memory only")
	}
	log.Debug().Str("category", string(resolved.Category)).Msg("[Enrich] item enriched")
}
