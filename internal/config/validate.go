package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"oceaneye/internal/digest"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateDigest(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	parsed, err := url.Parse(c.Catalog.URL)
	if err != nil {
		return fmt.Errorf("catalog.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("catalog.url must use http or https, got %q", c.Catalog.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("catalog.url must include a host, got %q", c.Catalog.URL)
	}
	if err := ensurePositiveMap(map[string]int64{
		"catalog.timeout_seconds": int64(c.Catalog.TimeoutSeconds),
		"catalog.max_body_bytes":  c.Catalog.MaxBodyBytes,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDigest() error {
	if _, err := digest.ParseAlgorithm(c.Digest.Algorithm); err != nil {
		return fmt.Errorf("digest.algorithm: %w", err)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.MaxImageBytes <= 0 {
		return errors.New("api.max_image_bytes must be positive")
	}
	if !strings.Contains(c.API.Bind, ":") {
		return fmt.Errorf("api.bind must be host:port, got %q", c.API.Bind)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
