package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"letrystudio/config"
	"letrystudio/models"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog"
)

// CachedClassifier remembers successful classifications by image digest,
// so re-adding the same photo does not call the model again.
type CachedClassifier struct {
	next      Classifier
	cache     *cache.Cache[models.ClothingMetadata]
	ristretto *ristretto.Cache
	ttl       time.Duration
	log       zerolog.Logger
}

func NewCachedClassifier(next Classifier, cfg config.CacheConfig, log zerolog.Logger) (*CachedClassifier, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	log.Info().Int64("max_cost", cfg.MaxCost).Msg("Initialized classification cache with Ristretto")
	return &CachedClassifier{
		next:      next,
		cache:     cache.New[models.ClothingMetadata](ristrettoStore),
		ristretto: ristrettoCache,
		ttl:       cfg.TTL,
		log:       log,
	}, nil
}

func digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (c *CachedClassifier) Classify(ctx context.Context, image models.ImageRef) (models.ClothingMetadata, error) {
	key := digest(image.Payload)
	if metadata, err := c.cache.Get(ctx, key); err == nil {
		c.log.Debug().Str("item_id", image.ID).Msg("[Enrich] classification cache hit")
		return metadata, nil
	}

	metadata, err := c.next.Classify(ctx, image)
	if err != nil {
		return metadata, err
	}
	if err := c.cache.Set(ctx, key, metadata, store.WithCost(1), store.WithExpiration(c.ttl)); err != nil {
		c.log.Warn().Err(err).Str("item_id", image.ID).Msg("[Enrich] could not cache classification")
	}
	return metadata, nil
}

// Wait blocks until pending cache writes are visible.
func (c *CachedClassifier) Wait() {
	c.ristretto.Wait()
}
