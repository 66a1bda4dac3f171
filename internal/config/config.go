// Package config resolves spraydex settings from defaults, SPRAYDEX_*
// environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/spraydex/internal/catalog"
)

// Environment variables read by WithEnvConfig.
const (
	EnvCatalog   = "SPRAYDEX_CATALOG"
	EnvAnalyzer  = "SPRAYDEX_ANALYZER"
	EnvLanguage  = "SPRAYDEX_LANG"
	EnvTopK      = "SPRAYDEX_TOP_K"
	EnvPreview   = "SPRAYDEX_PREVIEW"
	EnvIntegrity = "SPRAYDEX_INTEGRITY"
)

// Preview modes for colour swatches in terminal output.
const (
	PreviewAuto   = "auto"
	PreviewAlways = "always"
	PreviewNever  = "never"
)

// Config holds resolved settings.
type Config struct {
	// CatalogDir is a catalog directory or a single bundle file.
	CatalogDir string

	// AnalyzerPath is an external analyzer binary. Empty means the built-in
	// sample analyzer runs in-process.
	AnalyzerPath string

	// Language selects localized names and descriptions.
	Language string

	// TopK is the number of candidates shown per query colour.
	TopK int

	// Preview is one of PreviewAuto, PreviewAlways, PreviewNever.
	Preview string

	// Integrity is the catalog integrity policy name ("strict" or "exclude").
	Integrity string
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		CatalogDir: DefaultCatalogDir(),
		Language:   "en",
		TopK:       3,
		Preview:    PreviewAuto,
		Integrity:  catalog.PolicyStrict.String(),
	}
}

// DefaultCatalogDir returns $XDG_DATA_HOME/spraydex/catalog, falling back to
// ~/.local/share/spraydex/catalog and finally ./catalog.
func DefaultCatalogDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "spraydex", "catalog")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "spraydex", "catalog")
	}
	return "catalog"
}

// Builder provides a fluent interface for constructing a Config.
type Builder struct {
	config Config
	useEnv bool
	lookup func(string) (string, bool)
}

// NewBuilder creates a new Config builder with default settings.
func NewBuilder() *Builder {
	return &Builder{
		config: Default(),
		lookup: os.LookupEnv,
	}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig loads configuration from SPRAYDEX_* environment variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithLookup replaces the environment lookup (useful for testing).
func (b *Builder) WithLookup(lookup func(string) (string, bool)) *Builder {
	b.lookup = lookup
	return b
}

// Build constructs the Config. Malformed environment values are reported
// rather than ignored.
func (b *Builder) Build() (*Config, error) {
	config := b.config
	if !b.useEnv {
		return &config, nil
	}

	env := func(key string) (string, bool) {
		v, ok := b.lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := env(EnvCatalog); ok {
		config.CatalogDir = v
	}
	if v, ok := env(EnvAnalyzer); ok {
		config.AnalyzerPath = v
	}
	if v, ok := env(EnvLanguage); ok {
		config.Language = v
	}
	if v, ok := env(EnvPreview); ok {
		config.Preview = strings.ToLower(v)
	}
	if v, ok := env(EnvIntegrity); ok {
		config.Integrity = strings.ToLower(v)
	}
	if v, ok := env(EnvTopK); ok {
		k, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTopK, v, err)
		}
		config.TopK = k
	}

	return &config, nil
}

// BindFlags registers flags on fs that write into c. Current field values
// become the flag defaults, so flags override whatever Build resolved.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.CatalogDir, "catalog", c.CatalogDir, "catalog directory or bundle file (env "+EnvCatalog+")")
	fs.StringVar(&c.AnalyzerPath, "analyzer", c.AnalyzerPath, "external analyzer plugin binary (env "+EnvAnalyzer+")")
	fs.StringVar(&c.Language, "lang", c.Language, "language for localized names (env "+EnvLanguage+")")
	fs.IntVarP(&c.TopK, "top", "k", c.TopK, "candidates per query colour (env "+EnvTopK+")")
	fs.StringVar(&c.Preview, "preview", c.Preview, "colour previews: auto, always, never (env "+EnvPreview+")")
	fs.StringVar(&c.Integrity, "integrity", c.Integrity, "catalog integrity policy: strict, exclude (env "+EnvIntegrity+")")
}

// Validate checks field values after flags have been parsed.
func (c *Config) Validate() error {
	var errs []error
	if c.CatalogDir == "" {
		errs = append(errs, errors.New("catalog path cannot be empty"))
	}
	if c.TopK < 0 {
		errs = append(errs, fmt.Errorf("top must not be negative, got %d", c.TopK))
	}
	if !slices.Contains([]string{PreviewAuto, PreviewAlways, PreviewNever}, c.Preview) {
		errs = append(errs, fmt.Errorf("invalid preview mode %q (valid: auto, always, never)", c.Preview))
	}
	if _, err := c.IntegrityPolicy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IntegrityPolicy parses the configured integrity policy.
func (c *Config) IntegrityPolicy() (catalog.IntegrityPolicy, error) {
	return catalog.ParseIntegrityPolicy(c.Integrity)
}

// PreviewEnabled reports whether swatches should be drawn, given whether the
// output supports ANSI colours.
func (c *Config) PreviewEnabled(ansi bool) bool {
	switch c.Preview {
	case PreviewAlways:
		return true
	case PreviewNever:
		return false
	default:
		return ansi
	}
}
