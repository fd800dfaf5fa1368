// Package config loads the domain settings of the style editor.
//
// Sources are layered: built-in defaults, then a TOML file (given
// explicitly or found as mapstyle/mapstyle.toml in the XDG config dirs),
// then MAPSTYLE_* environment variables. MAPSTYLE_TILE_DEFAULT_LAYER sets
// tile.default_layer: the first underscore after the prefix separates the
// section from the key.
package config

import (
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

const (
	envPrefix  = "MAPSTYLE_"
	searchPath = "mapstyle/mapstyle.toml"
)

// Config holds the editor settings.
type Config struct {
	Tile    TileConfig    `koanf:"tile"`
	Preview PreviewConfig `koanf:"preview"`
	History HistoryConfig `koanf:"history"`
	Presets PresetsConfig `koanf:"presets"`

	// Source is the config file that was loaded, if any.
	Source string `koanf:"-"`
}

// TileConfig controls tile URL construction.
type TileConfig struct {
	Prefix       string `koanf:"prefix"`
	DefaultLayer string `koanf:"default_layer"`
}

// PreviewConfig is the example tile used for debug URLs.
type PreviewConfig struct {
	X uint32 `koanf:"x"`
	Y uint32 `koanf:"y"`
	Z uint32 `koanf:"z"`
}

// HistoryConfig controls the DuckDB history log.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	DBName  string `koanf:"db_name"`
}

// PresetsConfig points at an optional YAML file of extra presets.
type PresetsConfig struct {
	File string `koanf:"file"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"tile.prefix":        tileurl.DefaultPrefix,
		"tile.default_layer": style.DefaultLayer,
		"preview.x":          tileurl.DefaultPreviewTile.X,
		"preview.y":          tileurl.DefaultPreviewTile.Y,
		"preview.z":          uint32(tileurl.DefaultPreviewTile.Z),
		"history.enabled":    true,
		"history.db_name":    "mapstyle",
		"presets.file":       "",
	}
}

// Load reads the configuration. An empty path searches the XDG config dirs
// and silently skips the file if none exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load defaults")
	}

	if path == "" {
		if found, err := xdg.SearchConfigFile(searchPath); err == nil {
			path = found
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfig, "failed to load config from %s", path)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to decode config")
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings without reading a file or the
// environment.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if !style.IsLayer(c.Tile.DefaultLayer) {
		return errors.Newf(errors.ErrConfig, "unknown default layer %q", c.Tile.DefaultLayer)
	}
	if c.Preview.Z > 22 {
		return errors.Newf(errors.ErrConfig, "preview zoom %d out of range", c.Preview.Z)
	}
	if !strings.HasSuffix(c.Tile.Prefix, "/") {
		return errors.Newf(errors.ErrConfig, "tile prefix %q must end with '/'", c.Tile.Prefix)
	}
	return nil
}

// envKey maps MAPSTYLE_TILE_DEFAULT_LAYER to tile.default_layer.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
