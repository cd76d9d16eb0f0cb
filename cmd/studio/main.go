package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"letrystudio/composer"
	"letrystudio/config"
	"letrystudio/controllers"
	"letrystudio/dbhelper"
	"letrystudio/logger"
	"letrystudio/services"
	"letrystudio/store"
	"letrystudio/tasks"
	"letrystudio/wardrobe"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	services.ApplyEnvFallbacks(cfg)
	log := logger.New(cfg.Environment)

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Environment,
			Release:          cfg.Sentry.Release,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("sentry.Init")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := dbhelper.SetupDB(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("[Store] failed to open database")
	}
	studio := wardrobe.NewStudio(store.NewGormStore(db, log), log)
	pending, err := studio.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[Store] starting with an empty in-memory studio")
	}

	stylist, err := services.NewGoogleStylist(ctx, cfg.Google, log)
	if err != nil {
		log.Fatal().Err(err).Msg("[Gemini] failed to create client")
	}

	var dispatcher wardrobe.Dispatcher
	switch cfg.Enrichment.Backend {
	case "asynq":
		asynqDispatcher := tasks.NewAsynqDispatcher(cfg.Enrichment, log)
		defer asynqDispatcher.Close()
		dispatcher = asynqDispatcher
	default:
		var classifier services.Classifier = stylist
		if cfg.Cache.Enabled {
			cached, err := services.NewCachedClassifier(stylist, cfg.Cache, log)
			if err != nil {
				log.Fatal().Err(err).Msg("[Enrich] failed to create classification cache")
			}
			classifier = cached
		}
		dispatcher = wardrobe.NewLocalDispatcher(classifier, cfg.Enrichment.Concurrency, cfg.Enrichment.Timeout, log)
	}
	pipeline := wardrobe.NewPipeline(ctx, studio, dispatcher, log)
	pipeline.Resume(pending)

	var exporter services.Exporter
	if cfg.Export.Bucket != "" {
		s3Exporter, err := services.NewS3Exporter(ctx, cfg.Export, log)
		if err != nil {
			log.Fatal().Err(err).Msg("[Export] failed to initialize object storage")
		}
		exporter = s3Exporter
	}

	e := controllers.SetupServer(controllers.Dependencies{
		Studio:   studio,
		Pipeline: pipeline,
		Composer: composer.New(studio, stylist, stylist, log),
		Exporter: exporter,
		Images:   cfg.Images,
		Security: cfg.Security,
		Log:      log,
	})
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	if cfg.Security.JWTSecret != "" {
		token, err := controllers.GenerateSessionToken(cfg.Security)
		if err != nil {
			log.Fatal().Err(err).Msg("[Auth] failed to sign session token")
		}
		log.Info().Str("token", token).Msg("[Auth] session token for the studio UI")
	}

	go func() {
		log.Info().Str("address", cfg.HTTP.Address()).Str("backend", cfg.Enrichment.Backend).Msg("studio listening")
		if err := e.Start(cfg.HTTP.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	pipeline.Wait()
}
