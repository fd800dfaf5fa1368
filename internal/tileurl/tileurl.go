// Package tileurl builds tile-template URLs for a base layer and style.
package tileurl

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"
)

// DefaultPrefix is the tile endpoint every URL starts with.
const DefaultPrefix = "https://mt0.google.com/vt/"

// DefaultPreviewTile is the example tile substituted by Preview.
var DefaultPreviewTile = maptile.New(16515, 11970, 15)

var tsParam = regexp.MustCompile(`&ts=\d+`)

// Builder builds tile-template URLs.
type Builder struct {
	Prefix string
	Now    func() time.Time
	Logger zerolog.Logger
}

// New creates a builder for prefix. An empty prefix uses DefaultPrefix.
func New(prefix string, logger zerolog.Logger) *Builder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Builder{Prefix: prefix, Now: time.Now, Logger: logger}
}

// Build returns <prefix>lyrs=<layer>&x={x}&y={y}&z={z}, followed by the
// percent-encoded style (if any) and a cache-busting ts parameter.
func (b *Builder) Build(layer, style string) string {
	var sb strings.Builder
	sb.WriteString(b.Prefix)
	sb.WriteString("lyrs=")
	sb.WriteString(layer)
	sb.WriteString("&x={x}&y={y}&z={z}")

	if clean := b.Clean(style); clean != "" {
		sb.WriteString("&apistyle=")
		sb.WriteString(EscapeComponent(clean))
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	sb.WriteString("&ts=")
	sb.WriteString(strconv.FormatInt(now().UnixMilli(), 10))
	return sb.String()
}

// Clean trims style and, when it looks percent-encoded, decodes it so it is
// not encoded twice. A failed decode falls back to the trimmed input.
func (b *Builder) Clean(style string) string {
	clean, err := Unescape(style)
	if err != nil {
		b.Logger.Warn().Err(err).Str("style", clean).Msg("style string is not valid percent-encoding, using it as is")
	}
	return clean
}

// Unescape trims style and decodes it if it contains a '%'. On a decode
// error, including escapes that do not form UTF-8, the trimmed input is
// returned together with the error.
func Unescape(style string) (string, error) {
	clean := strings.TrimSpace(style)
	if !strings.Contains(clean, "%") {
		return clean, nil
	}
	decoded, err := url.PathUnescape(clean)
	if err != nil {
		return clean, err
	}
	if !utf8.ValidString(decoded) {
		return clean, fmt.Errorf("invalid UTF-8 in decoded style %q", clean)
	}
	return decoded, nil
}

// componentSafe restores the marks QueryEscape encodes but a URI component
// leaves alone, and writes spaces as %20 rather than '+'.
var componentSafe = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EscapeComponent percent-encodes s for use as a query value. Letters,
// digits and -_.!~*'() are kept as is.
func EscapeComponent(s string) string {
	return componentSafe.Replace(url.QueryEscape(s))
}

// Preview substitutes tile coordinates into a template URL and strips the
// ts parameter, for display.
func Preview(template string, tile maptile.Tile) string {
	r := strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
		"{z}", strconv.FormatUint(uint64(tile.Z), 10),
	)
	return tsParam.ReplaceAllString(r.Replace(template), "")
}

// TileAt returns the tile containing lon/lat at zoom.
func TileAt(lon, lat float64, zoom int) maptile.Tile {
	return maptile.At(orb.Point{lon, lat}, maptile.Zoom(zoom))
}
