// Package config reads janitor settings from loosely-typed key/value data,
// typically a YAML or JSON file.
//
// Accessors never fail: a missing key, or a value of the wrong type, yields
// the caller's fallback. A partial file therefore configures what it names
// and leaves everything else at defaults. Nested sections are reached with
// Sub:
//
//	cfg, err := config.FromFile("janitor.yaml")
//	if err != nil {
//		return err
//	}
//	warn := cfg.Bool("warn_on_opaque", true)
//	driver := cfg.Sub("journal").String("driver", "")
//
// The keys the janitor recognizes are documented on its FromConfig function.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a read-only view over decoded configuration data.
type Config struct {
	data map[string]any
}

// New wraps already-decoded data. A nil map is a valid empty configuration;
// every accessor returns its fallback.
func New(data map[string]any) Config {
	return Config{data: data}
}

// FromFile reads a configuration file, picking the decoder by extension:
// .yaml and .yml for YAML, .json for JSON.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	default:
		return Config{}, fmt.Errorf("config %s: unrecognized extension %q (want .yaml, .yml, or .json)", path, ext)
	}
}

// FromYAML decodes YAML configuration data.
func FromYAML(raw []byte) (Config, error) {
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Config{}, fmt.Errorf("decode yaml config: %w", err)
	}
	return Config{data: data}, nil
}

// FromJSON decodes JSON configuration data.
func FromJSON(raw []byte) (Config, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Config{}, fmt.Errorf("decode json config: %w", err)
	}
	return Config{data: data}, nil
}

// String returns the string under key, or fallback when the key is absent or
// holds another type.
func (c Config) String(key, fallback string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return fallback
}

// Bool returns the bool under key, or fallback.
func (c Config) Bool(key string, fallback bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return fallback
}

// Int returns the integer under key, or fallback. JSON decodes every number
// as float64, so a whole float is accepted; a fractional one is not an
// integer and yields the fallback.
func (c Config) Int(key string, fallback int) int {
	switch n := c.data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	return fallback
}

// Sub returns the nested section under key. Absent keys and non-map values
// yield an empty section, so chained lookups never panic.
func (c Config) Sub(key string) Config {
	switch section := c.data[key].(type) {
	case map[string]any:
		return Config{data: section}
	case map[any]any:
		// Older YAML decoders produce any-keyed maps.
		normalized := make(map[string]any, len(section))
		for k, v := range section {
			if name, ok := k.(string); ok {
				normalized[name] = v
			}
		}
		return Config{data: normalized}
	}
	return Config{}
}

// Has reports whether key is present, regardless of its value.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}
