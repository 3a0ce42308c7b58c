package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.CatalogDB, err = expandPath(c.Paths.CatalogDB); err != nil {
		return fmt.Errorf("paths.catalog_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	if len(c.Extraction.Extensions) == 0 {
		c.Extraction.Extensions = defaultExtensions()
	}
	cleaned := make([]string, 0, len(c.Extraction.Extensions))
	for _, ext := range c.Extraction.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cleaned = append(cleaned, ext)
	}
	c.Extraction.Extensions = cleaned
	if c.Extraction.MinFreeMiB <= 0 {
		c.Extraction.MinFreeMiB = defaultMinFreeMiB
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
