package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/config"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":    "cleanup",
		"enabled": true,
		"limit":   64,
		"big":     int64(128),
		"whole":   float64(32),
		"frac":    1.5,
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "cleanup", cfg.String("name", "fallback"))
		assert.Equal(t, "fallback", cfg.String("missing", "fallback"))
		assert.Equal(t, "fallback", cfg.String("limit", "fallback"), "wrong type falls back")
	})

	t.Run("bool", func(t *testing.T) {
		assert.True(t, cfg.Bool("enabled", false))
		assert.True(t, cfg.Bool("missing", true))
		assert.False(t, cfg.Bool("name", false))
	})

	t.Run("int", func(t *testing.T) {
		assert.Equal(t, 64, cfg.Int("limit", 0))
		assert.Equal(t, 128, cfg.Int("big", 0))
		assert.Equal(t, 32, cfg.Int("whole", 0))
		assert.Equal(t, 7, cfg.Int("frac", 7), "fractional float falls back")
		assert.Equal(t, 7, cfg.Int("missing", 7))
	})
}

func TestSub(t *testing.T) {
	cfg := config.New(map[string]any{
		"journal": map[string]any{
			"driver": "sqlite",
			"path":   "./janitor.db",
		},
		"flat": "value",
	})

	sub := cfg.Sub("journal")
	assert.Equal(t, "sqlite", sub.String("driver", ""))
	assert.Equal(t, "./janitor.db", sub.String("path", ""))

	assert.Equal(t, "", cfg.Sub("missing").String("driver", ""))
	assert.Equal(t, "", cfg.Sub("flat").String("driver", ""), "non-map value yields empty section")
}

func TestHas(t *testing.T) {
	cfg := config.New(map[string]any{"key": nil})
	assert.True(t, cfg.Has("key"))
	assert.False(t, cfg.Has("other"))
}

func TestNewNil(t *testing.T) {
	cfg := config.New(nil)
	assert.Equal(t, "d", cfg.String("anything", "d"))
}

func TestFromYAML(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
warn_on_opaque: false
compact_threshold: 32
journal:
  driver: memory
`))
	require.NoError(t, err)

	assert.False(t, cfg.Bool("warn_on_opaque", true))
	assert.Equal(t, 32, cfg.Int("compact_threshold", 0))
	assert.Equal(t, "memory", cfg.Sub("journal").String("driver", ""))
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"metrics": true, "compact_threshold": 16}`))
	require.NoError(t, err)

	assert.True(t, cfg.Bool("metrics", false))
	assert.Equal(t, 16, cfg.Int("compact_threshold", 0))
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "janitor.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tracing: true\n"), 0o644))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.Bool("tracing", false))
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "janitor.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"tracing": false}`), 0o644))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.False(t, cfg.Bool("tracing", true))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "janitor.toml")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

		_, err := config.FromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
