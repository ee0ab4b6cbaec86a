// Package config loads shadebridge settings from TOML.
//
// A config file is optional. Without an explicit path, [Load] looks for
// shadebridge.toml in the working directory and then in the user config
// directory ($XDG_CONFIG_HOME/shadebridge/). Unknown keys are rejected so
// typos do not silently fall back to defaults.
//
//	renderer = "arnold"
//	host_version = "3.3.0"
//
//	[texture]
//	rewrite_tx = true
//
//	[cache]
//	redis_url = "redis://render-cache:6379/2"
//	ttl = "72h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/shadebridge/pkg/cache"
	"github.com/matzehuels/shadebridge/pkg/errors"
)

// FileName is the config file looked up by [Load].
const FileName = "shadebridge.toml"

var validate = validator.New()

// Config holds every setting a conversion reads from the environment.
// Command-line flags override it field by field.
type Config struct {
	Renderer    string  `toml:"renderer" validate:"omitempty,oneof=auto arnold prman"`
	HostVersion string  `toml:"host_version" validate:"omitempty,max=32"`
	Texture     Texture `toml:"texture"`
	Output      Output  `toml:"output"`
	Cache       Cache   `toml:"cache"`
	Metrics     Metrics `toml:"metrics"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Texture holds file-node conversion switches.
type Texture struct {
	RewriteTx bool `toml:"rewrite_tx"`
	UDIM      bool `toml:"udim"`
}

// Output selects the emitted format.
type Output struct {
	Format string `toml:"format" validate:"omitempty,oneof=xml json dot svg png pdf"`
}

// Cache configures the conversion cache. A RedisURL takes precedence over
// Dir.
type Cache struct {
	Enabled  bool          `toml:"enabled"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url" validate:"omitempty,url"`
	TTL      time.Duration `toml:"ttl" validate:"gte=0"`
}

// Metrics configures the Prometheus textfile export. Nothing is written
// when Textfile is empty.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Renderer: "auto",
		Output:   Output{Format: "xml"},
		Cache:    Cache{Enabled: true, TTL: cache.TTLGraph},
	}
}

// Load reads the config at path, or searches the default locations when
// path is empty. A missing explicit file is an error; finding nothing in
// the default locations yields [Default].
func Load(path string) (*Config, error) {
	if path == "" {
		path = find()
		if path == "" {
			return Default(), nil
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	return LoadFile(path)
}

// LoadFile reads and validates one config file over the defaults.
func LoadFile(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return c, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	e := verrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "oneof":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: %q is not one of %s", field, e.Value(), e.Param())
	case "url":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: %q is not a valid URL", field, e.Value())
	case "gte":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must not be negative", field)
	case "max":
		return errors.New(errors.ErrCodeInvalidConfig, "%s: must not exceed %s characters", field, e.Param())
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "%s: validation failed (%s)", field, e.Tag())
	}
}

// Dirs returns the directories searched for [FileName], in order.
func Dirs() []string {
	dirs := []string{"."}
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		dirs = append(dirs, filepath.Join(base, "shadebridge"))
	} else if base, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(base, "shadebridge"))
	}
	return dirs
}

func find() string {
	for _, dir := range Dirs() {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// String renders the effective settings as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
