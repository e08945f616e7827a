// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"aluquote/services"
)

// Config holds the quote document settings. PocketBase keeps its own flags
// (--dir, --http) for the server itself.
type Config struct {
	CompanyLines    []string
	TaxPercent      string
	FontPath        string
	FontBoldPath    string
	SignaturePath   string
	ResourceTimeout time.Duration
	TotalsSide      services.TotalsSide
}

// Load reads configuration from environment variables.
// QUOTE_COMPANY_LINES separates letterhead lines with "|".
func Load() *Config {
	return &Config{
		CompanyLines:    getEnvList("QUOTE_COMPANY_LINES", services.DefaultCompanyLines),
		TaxPercent:      getEnv("QUOTE_TAX_PERCENT", services.DefaultTaxPercent),
		FontPath:        getEnv("QUOTE_FONT_PATH", ""),
		FontBoldPath:    getEnv("QUOTE_FONT_BOLD_PATH", ""),
		SignaturePath:   getEnv("QUOTE_SIGNATURE_PATH", ""),
		ResourceTimeout: getEnvDuration("QUOTE_RESOURCE_TIMEOUT", services.DefaultResourceTimeout),
		TotalsSide:      services.ParseTotalsSide(getEnv("QUOTE_TOTALS_SIDE", "left")),
	}
}

// Layout returns the document layout with the configured letterhead and
// totals box side.
func (c *Config) Layout() services.LayoutConfig {
	layout := services.DefaultLayoutConfig()
	layout.CompanyLines = c.CompanyLines
	layout.TotalsSide = c.TotalsSide
	return layout
}

// FontLoader returns a loader for the configured fonts. The loader caches
// the fonts, so callers should keep a single instance.
func (c *Config) FontLoader() *services.FontLoader {
	return services.NewFontLoader(c.FontPath, c.FontBoldPath, c.ResourceTimeout)
}

// ExportConfig wires a quote exporter to the configured resources.
func (c *Config) ExportConfig(fonts *services.FontLoader) services.ExportConfig {
	return services.ExportConfig{
		Layout:        c.Layout(),
		Fonts:         fonts,
		SignaturePath: c.SignaturePath,
		Timeout:       c.ResourceTimeout,
	}
}

// getEnv returns the trimmed value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvDuration accepts Go durations ("5s", "1m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs := services.ParseLooseNumber(value); secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
