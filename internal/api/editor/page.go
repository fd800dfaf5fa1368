package editor

import (
	"encoding/json"
	"net/http"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// PageData is the view model of editor.html.
type PageData struct {
	Title        string
	Signals      string
	Layers       []humastar.SelectOptionData
	Visibilities []humastar.SelectOptionData
	Center       MapCenter
}

// MapCenter is where the map opens.
type MapCenter struct {
	Lat  float64
	Lon  float64
	Zoom uint32
}

// PageData builds the initial page state. The map opens on the preview
// tile so the debug URL shows what the map shows.
func (h *Handler) PageData() PageData {
	signals := stylerSignals(style.Properties{})
	for k, v := range map[string]any{
		sigStyle:      "",
		sigLayer:      h.defaultLayer,
		sigFeature:    "",
		sigElement:    "",
		sigTileURL:    "",
		sigPreviewURL: "",
		sigHighlight:  highlightSignals(nil),
		sigCustom:     "",
		sigNewFeature: "",
		sigLabels:     map[string]any{},
		sigNewLabel:   "",
		sigSaveName:   "",
		"error":       "",
		"success":     "",
	} {
		signals[k] = v
	}
	raw, _ := json.Marshal(signals)

	layers := make([]humastar.SelectOptionData, len(style.Layers))
	for i, l := range style.Layers {
		layers[i] = humastar.SelectOptionData{Value: l.ID, Label: l.Label, Selected: l.ID == h.defaultLayer}
	}
	vis := make([]humastar.SelectOptionData, len(style.Visibilities))
	for i, v := range style.Visibilities {
		vis[i] = humastar.SelectOptionData{Value: v, Label: v}
	}

	c := h.preview.Center()
	return PageData{
		Title:        "Map style editor",
		Signals:      string(raw),
		Layers:       layers,
		Visibilities: vis,
		Center:       MapCenter{Lat: c.Lat(), Lon: c.Lon(), Zoom: uint32(h.preview.Z)},
	}
}

// ServePage renders the editor page.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	html, err := h.Renderer.Render("editor-page", h.PageData())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to render editor page")
		http.Error(w, "failed to render editor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
