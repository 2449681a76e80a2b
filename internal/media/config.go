package media

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/JaimeStill/quire/pkg/formatting"
)

// Config holds remote file store policy.
type Config struct {
	Folder       string `toml:"folder"`
	MaxFileSize  string `toml:"max_file_size"`
	SignatureTTL string `toml:"signature_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Folder       string
	MaxFileSize  string
	SignatureTTL string
}

// MaxFileSizeBytes returns MaxFileSize parsed to bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	n, _ := formatting.ParseBytes(c.MaxFileSize)
	return n
}

// SignatureTTLDuration returns SignatureTTL as a time.Duration.
func (c *Config) SignatureTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SignatureTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Folder != "" {
		c.Folder = overlay.Folder
	}
	if overlay.MaxFileSize != "" {
		c.MaxFileSize = overlay.MaxFileSize
	}
	if overlay.SignatureTTL != "" {
		c.SignatureTTL = overlay.SignatureTTL
	}
}

func (c *Config) loadDefaults() {
	if c.Folder == "" {
		c.Folder = "publications"
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = "10MB"
	}
	if c.SignatureTTL == "" {
		c.SignatureTTL = "15m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Folder != "" {
		if v := os.Getenv(env.Folder); v != "" {
			c.Folder = v
		}
	}
	if env.MaxFileSize != "" {
		if v := os.Getenv(env.MaxFileSize); v != "" {
			c.MaxFileSize = v
		}
	}
	if env.SignatureTTL != "" {
		if v := os.Getenv(env.SignatureTTL); v != "" {
			c.SignatureTTL = v
		}
	}
}

func (c *Config) validate() error {
	c.Folder = strings.Trim(c.Folder, "/")
	if c.Folder == "" || strings.Contains(c.Folder, "..") {
		return fmt.Errorf("invalid folder: %q", c.Folder)
	}
	n, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	d, err := time.ParseDuration(c.SignatureTTL)
	if err != nil {
		return fmt.Errorf("invalid signature_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("signature_ttl must be positive")
	}
	return nil
}
