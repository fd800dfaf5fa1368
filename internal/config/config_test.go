package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapstyle.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, tileurl.DefaultPrefix, cfg.Tile.Prefix)
	assert.Equal(t, "m", cfg.Tile.DefaultLayer)
	assert.Equal(t, uint32(16515), cfg.Preview.X)
	assert.Equal(t, uint32(11970), cfg.Preview.Y)
	assert.Equal(t, uint32(15), cfg.Preview.Z)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "mapstyle", cfg.History.DBName)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[tile]
prefix = "https://mt1.google.com/vt/"
default_layer = "p"

[preview]
x = 5241
y = 12663
z = 15

[history]
enabled = false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "https://mt1.google.com/vt/", cfg.Tile.Prefix)
	assert.Equal(t, "p", cfg.Tile.DefaultLayer)
	assert.Equal(t, uint32(5241), cfg.Preview.X)
	assert.False(t, cfg.History.Enabled)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[tile]\ndefault_layer = \"p\"\n")
	t.Setenv("MAPSTYLE_TILE_DEFAULT_LAYER", "y")
	t.Setenv("MAPSTYLE_HISTORY_DB_NAME", "other")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "y", cfg.Tile.DefaultLayer)
	assert.Equal(t, "other", cfg.History.DBName)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown layer", "[tile]\ndefault_layer = \"zz\"\n"},
		{"zoom out of range", "[preview]\nz = 40\n"},
		{"prefix without slash", "[tile]\nprefix = \"https://example.com/vt\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "tile.default_layer", envKey("MAPSTYLE_TILE_DEFAULT_LAYER"))
	assert.Equal(t, "preview.z", envKey("MAPSTYLE_PREVIEW_Z"))
}
