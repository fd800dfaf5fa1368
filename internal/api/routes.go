// Package api defines the Huma API routes and handlers.
package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/maptile"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/logging"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

// Version is the API version reported by /health and /api/v1/info.
const Version = "0.1.0"

// Services holds the service dependencies for API handlers.
type Services struct {
	Styles       *service.StyleService
	Presets      *service.PresetService
	URLs         *tileurl.Builder
	PreviewTile  maptile.Tile
	DefaultLayer string
}

// RegisterRoutes registers every REST route backed by svc.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// Types

type IDInput struct {
	ID string `path:"id" doc:"Saved style ID" example:"night_mode"`
}

// StyleResource is a saved style with its hypermedia actions.
type StyleResource struct {
	service.SavedStyle
}

var styleActions = []humastar.ActionDef{
	{Rel: "apply-rule", Pattern: "/api/v1/styles/%s/rules", Method: http.MethodPost, Title: "Merge a rule into the style"},
	{Rel: "tile-url", Pattern: "/api/v1/styles/%s/tile-url", Method: http.MethodGet, Title: "Tile URL for the style"},
	{Rel: "edit", Pattern: "/api/v1/styles/%s", Method: http.MethodPut, Title: "Replace the style"},
	{Rel: "delete", Pattern: "/api/v1/styles/%s", Method: http.MethodDelete, Title: "Delete the style"},
}

// Actions implements humastar.Actor.
func (s StyleResource) Actions() []humastar.Action {
	return humastar.ActionsFor(s.ID, styleActions)
}

type StyleOutput struct {
	Body StyleResource
}

type CreatedStyleOutput struct {
	Status int
	Body   StyleResource
}

type StylesOutput struct {
	Body humastar.PageBody[service.SavedStyle]
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"0.1.0"`
}

type CatalogBody struct {
	Features     []style.Option `json:"features" doc:"Known features (s.t values)"`
	Elements     []style.Option `json:"elements" doc:"Known elements (s.e values)"`
	Layers       []style.Option `json:"layers" doc:"Base layers (lyrs values)"`
	Visibilities []string       `json:"visibilities" doc:"Accepted p.v values"`
	DefaultLayer string         `json:"defaultLayer" doc:"Layer used when none is given" example:"m"`
}

// RuleInput merges one rule into a saved style.
type RuleInput struct {
	IDInput
	Body struct {
		Feature    string           `json:"feature" doc:"Feature to style" example:"water"`
		Element    string           `json:"element" doc:"Element to style" example:"geometry"`
		Properties style.Properties `json:"properties,omitempty" doc:"Styler values"`
	}
}

type TileURLBody struct {
	URL     string    `json:"url" doc:"Tile template URL with {x}, {y} and {z}"`
	Preview string    `json:"preview" doc:"URL of one example tile, without the ts parameter"`
	Tile    TileCoord `json:"tile" doc:"Tile used for the preview URL"`
}

type TileCoord struct {
	X uint32 `json:"x" example:"16515"`
	Y uint32 `json:"y" example:"11970"`
	Z uint32 `json:"z" example:"15"`
}

// APIHandler holds the REST handlers. Methods named Register* are
// discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	if svc == nil {
		svc = &Services{}
	}
	if svc.DefaultLayer == "" {
		svc.DefaultLayer = style.DefaultLayer
	}
	if svc.PreviewTile == (maptile.Tile{}) {
		svc.PreviewTile = tileurl.DefaultPreviewTile
	}
	if svc.URLs == nil {
		svc.URLs = tileurl.New("", logging.GetLogger("tileurl"))
	}
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterCatalog registers the catalog and preset routes.
func (h *APIHandler) RegisterCatalog(api huma.API) {
	huma.Get(api, "/api/v1/catalog", h.GetCatalog, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/presets", h.GetPresets, huma.OperationTags("catalog"))
	huma.Get(api, "/api/v1/presets/{id}", h.GetPreset, huma.OperationTags("catalog"))
}

// RegisterStyles registers saved style routes.
func (h *APIHandler) RegisterStyles(api huma.API) {
	huma.Get(api, "/api/v1/styles", h.GetStyles, huma.OperationTags("styles"))
	huma.Register(api, huma.Operation{
		OperationID:   "create-style",
		Method:        http.MethodPost,
		Path:          "/api/v1/styles",
		Summary:       "Create style",
		Tags:          []string{"styles"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateStyle)
	huma.Get(api, "/api/v1/styles/{id}", h.GetStyle, huma.OperationTags("styles"))
	huma.Put(api, "/api/v1/styles/{id}", h.PutStyle, huma.OperationTags("styles"))
	huma.Delete(api, "/api/v1/styles/{id}", h.DeleteStyle, huma.OperationTags("styles"))
	huma.Post(api, "/api/v1/styles/{id}/rules", h.ApplyRule, huma.OperationTags("styles"))
	huma.Get(api, "/api/v1/styles/{id}/tile-url", h.GetStyleTileURL, huma.OperationTags("styles"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: Version}}, nil
}

func (h *APIHandler) GetCatalog(ctx context.Context, input *struct{}) (*struct{ Body CatalogBody }, error) {
	return &struct{ Body CatalogBody }{Body: CatalogBody{
		Features:     style.Features,
		Elements:     style.Elements,
		Layers:       style.Layers,
		Visibilities: style.Visibilities,
		DefaultLayer: h.svc.DefaultLayer,
	}}, nil
}

func (h *APIHandler) GetPresets(ctx context.Context, input *struct{}) (*struct{ Body []service.Preset }, error) {
	if h.svc.Presets == nil {
		return &struct{ Body []service.Preset }{Body: []service.Preset{}}, nil
	}
	return &struct{ Body []service.Preset }{Body: h.svc.Presets.List()}, nil
}

func (h *APIHandler) GetPreset(ctx context.Context, input *struct {
	ID string `path:"id" doc:"Preset ID" example:"dark"`
}) (*struct{ Body service.Preset }, error) {
	if h.svc.Presets == nil {
		return nil, huma.Error404NotFound("preset not found")
	}
	p, ok := h.svc.Presets.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("preset not found")
	}
	return &struct{ Body service.Preset }{Body: p}, nil
}

func (h *APIHandler) GetStyles(ctx context.Context, input *humastar.PageInput) (*StylesOutput, error) {
	if h.svc.Styles == nil {
		return &StylesOutput{Body: humastar.Paginate([]service.SavedStyle{}, *input)}, nil
	}
	return &StylesOutput{Body: humastar.Paginate(h.svc.Styles.List(), *input)}, nil
}

func (h *APIHandler) CreateStyle(ctx context.Context, input *struct{ Body service.SavedStyle }) (*CreatedStyleOutput, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	created, err := h.svc.Styles.Create(ctx, input.Body)
	if err != nil {
		return nil, humaError(err)
	}
	return &CreatedStyleOutput{Status: http.StatusCreated, Body: StyleResource{created}}, nil
}

func (h *APIHandler) GetStyle(ctx context.Context, input *IDInput) (*StyleOutput, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	st, ok := h.svc.Styles.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("style not found")
	}
	return &StyleOutput{Body: StyleResource{st}}, nil
}

func (h *APIHandler) PutStyle(ctx context.Context, input *struct {
	IDInput
	Body service.SavedStyle
}) (*StyleOutput, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	updated, err := h.svc.Styles.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, humaError(err)
	}
	return &StyleOutput{Body: StyleResource{updated}}, nil
}

func (h *APIHandler) DeleteStyle(ctx context.Context, input *IDInput) (*struct{ Body MessageBody }, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	if err := h.svc.Styles.Delete(ctx, input.ID); err != nil {
		return nil, humaError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Style deleted"}}, nil
}

func (h *APIHandler) ApplyRule(ctx context.Context, input *RuleInput) (*StyleOutput, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error503ServiceUnavailable("service not available")
	}
	updated, err := h.svc.Styles.ApplyRule(ctx, input.ID, input.Body.Feature, input.Body.Element, input.Body.Properties)
	if err != nil {
		return nil, humaError(err)
	}
	return &StyleOutput{Body: StyleResource{updated}}, nil
}

func (h *APIHandler) GetStyleTileURL(ctx context.Context, input *IDInput) (*struct{ Body TileURLBody }, error) {
	if h.svc.Styles == nil {
		return nil, huma.Error404NotFound("service not available")
	}
	st, ok := h.svc.Styles.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("style not found")
	}
	return &struct{ Body TileURLBody }{Body: h.tileURL(st.Layer, st.Style, h.svc.PreviewTile)}, nil
}

func (h *APIHandler) tileURL(layer, styleStr string, tile maptile.Tile) TileURLBody {
	u := h.svc.URLs.Build(layer, styleStr)
	return TileURLBody{
		URL:     u,
		Preview: tileurl.Preview(u, tile),
		Tile:    TileCoord{X: tile.X, Y: tile.Y, Z: uint32(tile.Z)},
	}
}
