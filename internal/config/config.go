package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MajesticSpiral/safety-app/internal/records"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	CORSOrigins []string
	Visibility  records.Visibility

	RateBurst    int
	RatePerSec   int
	MaxBodyBytes int64
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "4000"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "safety-app"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	hours := fallback(os.Getenv("JWT_TTL_HOURS"), "12")
	if ttlHours, err := strconv.Atoi(hours); err == nil && ttlHours > 0 {
		cfg.JWTTTL = time.Duration(ttlHours) * time.Hour
	} else {
		cfg.JWTTTL = 12 * time.Hour
	}

	visibility, err := records.ParseVisibility(os.Getenv("RECORD_VISIBILITY"))
	if err != nil {
		return Config{}, err
	}
	cfg.Visibility = visibility

	cfg.RateBurst = parsePositive(os.Getenv("RATE_BURST"), 20)
	cfg.RatePerSec = parsePositive(os.Getenv("RATE_PER_SEC"), 10)

	// Photo payloads are hex-encoded, so the cap is generous.
	maxBody := parsePositive(os.Getenv("MAX_BODY_MB"), 20)
	cfg.MaxBodyBytes = int64(maxBody) << 20

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parsePositive(value string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
