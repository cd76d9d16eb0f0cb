package controllers

import (
	"time"

	"letrystudio/config"

	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
)

const sessionSubject = "studio"

// SessionGuard requires a bearer token signed with the configured secret.
// It returns nil when no secret is set and the API is left open to localhost.
func SessionGuard(cfg config.SecurityConfig) echo.MiddlewareFunc {
	if cfg.JWTSecret == "" {
		return nil
	}
	return echojwt.JWT([]byte(cfg.JWTSecret))
}

// GenerateSessionToken signs a token accepted by SessionGuard.
func GenerateSessionToken(cfg config.SecurityConfig) (string, error) {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString([]byte(cfg.JWTSecret))
}
