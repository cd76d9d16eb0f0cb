package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"letrystudio/config"
	"letrystudio/models"
	"letrystudio/wardrobe"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqDispatcher hands classification to the worker process and waits for
// the task result. The studio process stays the only writer of wardrobe state.
type AsynqDispatcher struct {
	client       taskEnqueuer
	inspector    taskInspector
	queue        string
	maxRetry     int
	retention    time.Duration
	pollInterval time.Duration
	timeout      time.Duration
	log          zerolog.Logger
}

func NewAsynqDispatcher(cfg config.EnrichmentConfig, log zerolog.Logger) *AsynqDispatcher {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	return newAsynqDispatcher(asynq.NewClient(redisOpt), asynq.NewInspector(redisOpt), cfg, log)
}

func newAsynqDispatcher(client taskEnqueuer, inspector taskInspector, cfg config.EnrichmentConfig, log zerolog.Logger) *AsynqDispatcher {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &AsynqDispatcher{
		client:       client,
		inspector:    inspector,
		queue:        cfg.Queue,
		maxRetry:     cfg.MaxRetry,
		retention:    cfg.Retention,
		pollInterval: pollInterval,
		timeout:      cfg.Timeout,
		log:          log,
	}
}

func (d *AsynqDispatcher) Close() error {
	return errors.Join(d.client.Close(), d.inspector.Close())
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, item models.ImageRef, done wardrobe.CompletionFunc) {
	go func() {
		var (
			metadata models.ClothingMetadata
			err      error
		)
		defer func() {
			if r := recover(); r != nil {
				metadata = models.ClothingMetadata{}
				err = fmt.Errorf("enrichment dispatch panic: %v", r)
			}
			done(metadata, err)
		}()
		metadata, err = d.run(ctx, item)
	}()
}

func (d *AsynqDispatcher) run(ctx context.Context, item models.ImageRef) (models.ClothingMetadata, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	task, err := NewEnrichClothingTask(item)
	if err != nil {
		return models.ClothingMetadata{}, err
	}
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.TaskID(item.ID),
		asynq.Queue(d.queue),
		asynq.MaxRetry(d.maxRetry),
		asynq.Retention(d.retention),
	)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		// resumed item whose task is still known to the broker
		d.log.Info().Str("item_id", item.ID).Msg("[Enrich] task already queued, waiting for it")
	case err != nil:
		return models.ClothingMetadata{}, fmt.Errorf("enqueue enrichment: %w", err)
	default:
		d.log.Debug().Str("item_id", item.ID).Str("task_id", info.ID).Str("queue", info.Queue).Msg("[Enrich] task enqueued")
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return models.ClothingMetadata{}, fmt.Errorf("waiting for enrichment of %s: %w", item.ID, ctx.Err())
		case <-ticker.C:
		}

		info, err := d.inspector.GetTaskInfo(d.queue, item.ID)
		if err != nil {
			return models.ClothingMetadata{}, fmt.Errorf("inspect enrichment task: %w", err)
		}
		switch info.State {
		case asynq.TaskStateCompleted:
			var metadata models.ClothingMetadata
			if err := json.Unmarshal(info.Result, &metadata); err != nil {
				return models.ClothingMetadata{}, fmt.Errorf("decode enrichment result: %w", err)
			}
			return metadata, nil
		case asynq.TaskStateArchived:
			return models.ClothingMetadata{}, fmt.Errorf("enrichment failed: %s", info.LastErr)
		}
	}
}
