package wardrobe

import (
	"context"
	"fmt"
	"time"

	"letrystudio/models"
	"letrystudio/services"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// CompletionFunc receives the outcome of one classification.
type CompletionFunc func(metadata models.ClothingMetadata, err error)

// Dispatcher starts classification of one item without blocking the caller.
// Implementations call done exactly once per Dispatch.
type Dispatcher interface {
	Dispatch(ctx context.Context, item models.ImageRef, done CompletionFunc)
}

// LocalDispatcher classifies each item on its own goroutine.
type LocalDispatcher struct {
	classifier services.Classifier
	sem        *semaphore.Weighted
	timeout    time.Duration
	log        zerolog.Logger
}

// NewLocalDispatcher bounds in-flight classifications by concurrency; zero
// or less means no bound.
func NewLocalDispatcher(classifier services.Classifier, concurrency int, timeout time.Duration, log zerolog.Logger) *LocalDispatcher {
	d := &LocalDispatcher{classifier: classifier, timeout: timeout, log: log}
	if concurrency > 0 {
		d.sem = semaphore.NewWeighted(int64(concurrency))
	}
	return d
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, item models.ImageRef, done CompletionFunc) {
	go func() {
		var (
			metadata models.ClothingMetadata
			err      error
		)
		defer func() {
			if r := recover(); r != nil {
				metadata = models.ClothingMetadata{}
				err = fmt.Errorf("classifier panic: %v", r)
				d.log.Error().Str("item_id", item.ID).Interface("panic", r).Msg("[Enrich] recovered classifier panic")
			}
			done(metadata, err)
		}()

		if d.sem != nil {
			if err = d.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer d.sem.Release(1)
		}

		callCtx := ctx
		if d.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		metadata, err = d.classifier.Classify(callCtx, item)
	}()
}
