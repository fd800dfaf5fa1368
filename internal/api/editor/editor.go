package editor

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"

	"github.com/joeblew999/plat-mapstyle/internal/db"
	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/logging"
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
	"github.com/joeblew999/plat-mapstyle/internal/tileurl"
)

const tag = "editor"

// Deps are the collaborators of the editor handlers. History may be nil.
type Deps struct {
	Renderer     *humastar.Renderer
	URLs         *tileurl.Builder
	PreviewTile  maptile.Tile
	DefaultLayer string
	Presets      *service.PresetService
	Styles       *service.StyleService
	Bus          *service.EventBus
	History      service.Recorder
}

// Handler serves the editor's Datastar endpoints.
type Handler struct {
	humastar.Handler
	urls         *tileurl.Builder
	preview      maptile.Tile
	defaultLayer string
	presets      *service.PresetService
	styles       *service.StyleService
	bus          *service.EventBus
	history      service.Recorder
	log          zerolog.Logger
}

// New creates the editor handler.
func New(d Deps) *Handler {
	if d.DefaultLayer == "" {
		d.DefaultLayer = style.DefaultLayer
	}
	if d.URLs == nil {
		d.URLs = tileurl.New("", logging.GetLogger("tileurl"))
	}
	if d.PreviewTile == (maptile.Tile{}) {
		d.PreviewTile = tileurl.DefaultPreviewTile
	}
	return &Handler{
		Handler:      humastar.Handler{Renderer: d.Renderer},
		urls:         d.URLs,
		preview:      d.PreviewTile,
		defaultLayer: d.DefaultLayer,
		presets:      d.Presets,
		styles:       d.Styles,
		bus:          d.Bus,
		history:      d.History,
		log:          logging.GetLogger("editor"),
	}
}

// RegisterRoutes registers the editor routes.
func (h *Handler) RegisterRoutes(api huma.API) {
	op := huma.OperationTags(tag)
	huma.Post(api, "/api/v1/editor/init", h.Init, op)
	huma.Post(api, "/api/v1/editor/feature", h.SelectFeature, op)
	huma.Post(api, "/api/v1/editor/element", h.SelectElement, op)
	huma.Post(api, "/api/v1/editor/apply", h.Apply, op)
	huma.Post(api, "/api/v1/editor/remove", h.RemoveRule, op)
	huma.Post(api, "/api/v1/editor/preview", h.Preview, op)
	huma.Post(api, "/api/v1/editor/reset", h.Reset, op)
	huma.Post(api, "/api/v1/editor/features", h.AddFeature, op)
	huma.Post(api, "/api/v1/editor/features/rename", h.RenameFeature, op)

	huma.Get(api, "/api/v1/editor/presets", h.ListPresets, op)
	huma.Post(api, "/api/v1/editor/presets/{id}", h.ApplyPreset, op)

	huma.Get(api, "/api/v1/editor/styles", h.ListStyles, op)
	huma.Post(api, "/api/v1/editor/styles", h.SaveStyle, op)
	huma.Post(api, "/api/v1/editor/styles/{id}/load", h.LoadStyle, op)
	huma.Delete(api, "/api/v1/editor/styles/{id}", h.DeleteStyle, op)

	huma.Get(api, "/api/v1/editor/events", h.Events, op)
}

func (h *Handler) state(in *humastar.SignalsInput) (State, error) {
	signals, err := in.MustParse()
	if err != nil {
		return State{}, err
	}
	st := StateFromSignals(signals, h.defaultLayer)
	st.Style = h.urls.Clean(st.Style)
	return st, nil
}

// Init renders the feature list, presets and saved styles and computes the
// URLs for the state the page was loaded with.
func (h *Handler) Init(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		h.refresh(sse, st)
		if h.presets != nil {
			sse.Patch(h.renderPresets(h.presets.List()), "#preset-list")
		}
		if h.styles != nil {
			sse.Patch(h.renderStyles(h.styles.List()), "#style-list")
		}
	}), nil
}

// SelectFeature selects a feature and clears the element and styler form.
func (h *Handler) SelectFeature(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	st.Element = ""
	st.Stylers = style.Properties{}
	return h.Stream(func(sse humastar.SSE) {
		signals := stylerSignals(st.Stylers)
		signals[sigElement] = ""
		signals[sigHighlight] = highlightSignals(nil)
		sse.Signals(signals)
		sse.Patch(h.renderFeatures(st), "#feature-list")
		sse.Patch(h.renderElements(st), "#element-list")
	}), nil
}

// SelectElement selects an element and fills the styler form from the
// rule that applies to the selection.
func (h *Handler) SelectElement(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		if st.Feature == "" {
			sse.Error("Select a feature first")
			return
		}
		var props style.Properties
		if rule, ok := style.FindRule(st.Style, st.Feature, st.Element); ok {
			props = style.Decode(rule)
		}
		hl := style.Highlight(st.Style, st.Feature, st.Element, nil, nil)

		signals := stylerSignals(props)
		signals[sigHighlight] = highlightSignals(hl.Inputs)
		sse.Signals(signals)
		sse.Patch(h.renderElements(st), "#element-list")
	}), nil
}

// Apply encodes the styler form for the selection and merges it into the
// style.
func (h *Handler) Apply(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		merged, err := style.Apply(st.Style, st.Feature, st.Element, st.Stylers)
		if err != nil {
			if errors.IsCode(err, errors.ErrIncompleteSelection) {
				sse.Error("Select a feature and an element before applying")
				return
			}
			sse.Error(err.Error())
			return
		}
		st.Style = merged
		h.record(ctx, service.ActionApplied, st)
		h.refresh(sse, st)
		sse.Success("Rule applied")
	}), nil
}

// RemoveRule drops the rule of the selection from the style.
func (h *Handler) RemoveRule(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		if st.Feature == "" || st.Element == "" {
			sse.Error("Select a feature and an element first")
			return
		}
		if _, ok := style.Parse(st.Style).Remove(st.Feature, st.Element); !ok {
			sse.Error("The selection has no rule of its own")
			return
		}
		st.Style = style.Remove(st.Style, st.Feature, st.Element)
		st.Stylers = style.Properties{}
		sse.Signals(stylerSignals(st.Stylers))
		h.refresh(sse, st)
		sse.Success("Rule removed")
	}), nil
}

// Preview rebuilds the tile and debug URLs after the style text or layer
// changed. The style signal is not sent back, so the text stays as typed.
func (h *Handler) Preview(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	return h.Stream(func(sse humastar.SSE) {
		if !style.IsLayer(st.Layer) {
			sse.Error("Unknown layer " + st.Layer)
			return
		}
		h.refreshURLs(sse, st, false)
		sse.Patch(h.renderFeatures(st), "#feature-list")
		sse.Patch(h.renderElements(st), "#element-list")
	}), nil
}

// Reset clears the style, the selection and the styler form.
func (h *Handler) Reset(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input)
	if err != nil {
		return nil, err
	}
	st = State{Layer: h.defaultLayer, Customs: st.Customs}
	return h.Stream(func(sse humastar.SSE) {
		signals := stylerSignals(st.Stylers)
		signals[sigFeature] = ""
		signals[sigElement] = ""
		signals[sigHighlight] = highlightSignals(nil)
		sse.Signals(signals)
		h.refresh(sse, st)
		sse.Success("Style reset")
	}), nil
}

// AddFeature appends a hand-typed feature id to the feature list.
func (h *Handler) AddFeature(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	st := StateFromSignals(signals, h.defaultLayer)
	st.Style = h.urls.Clean(st.Style)
	id := strings.TrimSpace(signals.String(sigNewFeature))
	label := strings.TrimSpace(signals.String(sigNewLabel))

	return h.Stream(func(sse humastar.SSE) {
		if id == "" {
			sse.Error("Enter a feature id")
			return
		}
		if strings.ContainsAny(id, "|,: ") {
			sse.Error("Feature ids cannot contain '|', ',', ':' or spaces")
			return
		}
		for _, o := range featureOptions(st) {
			if o.ID == id {
				sse.Error("Feature " + id + " is already listed")
				return
			}
		}
		st.Customs = append(st.Customs, id)
		patch := map[string]any{
			sigCustom:     strings.Join(st.Customs, ","),
			sigNewFeature: "",
			sigNewLabel:   "",
		}
		item := FeatureItem{ID: id, Label: id, Group: "custom", Custom: true}
		if label != "" {
			patch[sigLabels] = map[string]any{id: label}
			item.Label = label
		}
		sse.Signals(patch)
		sse.Append(h.Render("feature-item", item), "#feature-list")
		sse.Success("Added feature " + id)
	}), nil
}

// RenameFeature sets the display label of the selected custom feature. An
// empty label restores the id.
func (h *Handler) RenameFeature(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	st := StateFromSignals(signals, h.defaultLayer)
	st.Style = h.urls.Clean(st.Style)
	label := strings.TrimSpace(signals.String(sigNewLabel))

	return h.Stream(func(sse humastar.SSE) {
		if st.Feature == "" {
			sse.Error("Select a feature first")
			return
		}
		if !isCustomFeature(st, st.Feature) {
			sse.Error("Only custom features can be renamed")
			return
		}
		var value any
		if label != "" {
			st.Labels[st.Feature] = label
			value = label
		} else {
			delete(st.Labels, st.Feature)
		}
		sse.Signals(map[string]any{
			sigLabels:   map[string]any{st.Feature: value},
			sigNewLabel: "",
		})
		sse.Patch(h.renderFeatures(st), "#feature-list")
		sse.Success("Renamed feature " + st.Feature)
	}), nil
}

// isCustomFeature reports whether id is listed outside the catalog.
func isCustomFeature(st State, id string) bool {
	for _, o := range featureOptions(st) {
		if o.ID == id {
			return o.Group == "custom"
		}
	}
	return false
}

// refresh sends the style, URLs and highlight lists for st.
func (h *Handler) refresh(sse humastar.SSE, st State) {
	h.refreshURLs(sse, st, true)
	sse.Patch(h.renderFeatures(st), "#feature-list")
	sse.Patch(h.renderElements(st), "#element-list")
}

func (h *Handler) refreshURLs(sse humastar.SSE, st State, withStyle bool) {
	tileURL := h.urls.Build(st.Layer, st.Style)
	signals := map[string]any{
		sigTileURL:    tileURL,
		sigPreviewURL: tileurl.Preview(tileURL, h.preview),
		sigLayer:      st.Layer,
	}
	if withStyle {
		signals[sigStyle] = st.Style
	}
	sse.Signals(signals)
}

func (h *Handler) record(ctx context.Context, action string, st State) {
	if h.history == nil {
		return
	}
	err := h.history.Record(ctx, db.HistoryEntry{
		Action:  action,
		Layer:   st.Layer,
		Feature: st.Feature,
		Element: st.Element,
		Style:   st.Style,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to record history")
	}
}
