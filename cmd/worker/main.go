package main

import (
	"context"
	"time"

	"letrystudio/config"
	"letrystudio/logger"
	"letrystudio/services"
	"letrystudio/tasks"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
)

// The worker only classifies. Results go back through the task result and
// the studio process applies them to its own state.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	services.ApplyEnvFallbacks(cfg)
	log := logger.New(cfg.Environment)

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Environment,
			Release:     cfg.Sentry.Release,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("sentry.Init")
		}
		defer sentry.Flush(2 * time.Second)
	}

	stylist, err := services.NewGoogleStylist(context.Background(), cfg.Google, log)
	if err != nil {
		log.Fatal().Err(err).Msg("[Queue] failed to create Gemini client")
	}
	var classifier services.Classifier = stylist
	if cfg.Cache.Enabled {
		cached, err := services.NewCachedClassifier(stylist, cfg.Cache, log)
		if err != nil {
			log.Fatal().Err(err).Msg("[Queue] failed to create classification cache")
		}
		classifier = cached
	}

	concurrency := cfg.Enrichment.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Enrichment.RedisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Queues:      map[string]int{cfg.Enrichment.Queue: 1},
			LogLevel:    asynq.InfoLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeEnrichClothing, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleEnrichClothingTask(ctx, t, classifier, log)
	})

	log.Info().Str("queue", cfg.Enrichment.Queue).Int("concurrency", concurrency).Msg("[Queue] enrichment worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("[Queue] worker stopped")
	}
}
