package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/quire/internal/media"
	"github.com/JaimeStill/quire/pkg/auth"
	"github.com/JaimeStill/quire/pkg/middleware"
	"github.com/JaimeStill/quire/pkg/pagination"
)

const EnvAPIBasePath = "QUIRE_API_BASE_PATH"

var corsEnv = &middleware.CORSEnv{
	Enabled:          "QUIRE_CORS_ENABLED",
	Origins:          "QUIRE_CORS_ORIGINS",
	AllowedMethods:   "QUIRE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "QUIRE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "QUIRE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "QUIRE_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:    "QUIRE_RATE_LIMIT_ENABLED",
	Window:     "QUIRE_RATE_LIMIT_WINDOW",
	Max:        "QUIRE_RATE_LIMIT_MAX",
	TrustProxy: "QUIRE_RATE_LIMIT_TRUST_PROXY",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "QUIRE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "QUIRE_PAGINATION_MAX_PAGE_SIZE",
}

var authEnv = &auth.Env{
	Secret: "QUIRE_AUTH_SECRET",
	Issuer: "QUIRE_AUTH_ISSUER",
}

var mediaEnv = &media.Env{
	Folder:       "QUIRE_MEDIA_FOLDER",
	MaxFileSize:  "QUIRE_MEDIA_MAX_FILE_SIZE",
	SignatureTTL: "QUIRE_MEDIA_SIGNATURE_TTL",
}

// APIConfig holds API routing, access control, upload policy, and pagination settings.
type APIConfig struct {
	BasePath   string                     `toml:"base_path"`
	CORS       middleware.CORSConfig      `toml:"cors"`
	RateLimit  middleware.RateLimitConfig `toml:"rate_limit"`
	Pagination pagination.Config          `toml:"pagination"`
	Auth       auth.Config                `toml:"auth"`
	Media      media.Config               `toml:"media"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Media.Finalize(mediaEnv); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Pagination.Merge(&overlay.Pagination)
	c.Auth.Merge(&overlay.Auth)
	c.Media.Merge(&overlay.Media)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
}
