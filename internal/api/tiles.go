package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

// TileURLInput builds a tile URL. The preview tile is, in order: the
// explicit tile, the tile at lon/lat/zoom, or the configured default.
type TileURLInput struct {
	Body struct {
		Layer string     `json:"layer,omitempty" doc:"Base layer, defaults to the configured layer" example:"m"`
		Style string     `json:"style,omitempty" doc:"Style string, raw or percent-encoded" example:"s.t:poi|s.e:labels|p.v:off"`
		Tile  *TileCoord `json:"tile,omitempty" doc:"Preview tile"`
		At    *LonLatZ   `json:"at,omitempty" doc:"Preview the tile containing this point"`
	}
}

type LonLatZ struct {
	Lon  float64 `json:"lon" minimum:"-180" maximum:"180" example:"1.4442"`
	Lat  float64 `json:"lat" minimum:"-85.0511" maximum:"85.0511" example:"43.6047"`
	Zoom int     `json:"zoom" minimum:"0" maximum:"22" example:"15"`
}

// RegisterTiles registers the tile URL builder route.
func (h *APIHandler) RegisterTiles(api huma.API) {
	huma.Post(api, "/api/v1/tiles/url", h.BuildTileURL, huma.OperationTags("tiles"))
}

func (h *APIHandler) BuildTileURL(ctx context.Context, input *TileURLInput) (*struct{ Body TileURLBody }, error) {
	b := input.Body
	layer := b.Layer
	if layer == "" {
		layer = h.svc.DefaultLayer
	}
	if !style.IsLayer(layer) {
		return nil, huma.Error400BadRequest("unknown layer " + layer)
	}

	tile := h.svc.PreviewTile
	switch {
	case b.Tile != nil:
		tile = maptile.New(b.Tile.X, b.Tile.Y, maptile.Zoom(b.Tile.Z))
	case b.At != nil:
		tile = tileurl.TileAt(b.At.Lon, b.At.Lat, b.At.Zoom)
	}
	return &struct{ Body TileURLBody }{Body: h.tileURL(layer, b.Style, tile)}, nil
}
