package services

import (
	"os"

	"letrystudio/config"

	"github.com/getsentry/sentry-go"
)

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// ApplyEnvFallbacks fills settings left empty by the LETRY_* configuration
// from the plain variables the deployment already exports.
func ApplyEnvFallbacks(cfg *config.AppConfig) {
	if cfg.Google.APIKey == "" {
		cfg.Google.APIKey = GetEnv("GEMINI_API_KEY", GetEnv("GOOGLE_API_KEY", ""))
	}
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = GetEnv("JWT_SECRET", "")
	}
	if cfg.Export.Bucket == "" {
		cfg.Export.Bucket = GetEnv("R2_BUCKET_NAME", "")
	}
	if cfg.Sentry.DSN == "" {
		cfg.Sentry.DSN = GetEnv("SENTRY_DSN", "")
	}
}

// ReportError sends err to Sentry with the given tags. A no-op when Sentry
// was never initialised.
func ReportError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}
