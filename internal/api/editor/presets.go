package editor

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// IDSignalsInput carries a path id plus the Datastar signals.
type IDSignalsInput struct {
	ID      string `path:"id" doc:"Preset or saved style ID" example:"dark"`
	RawBody []byte
}

func (in *IDSignalsInput) signals() *humastar.SignalsInput {
	return &humastar.SignalsInput{RawBody: in.RawBody}
}

// ListPresets renders the preset cards.
func (h *Handler) ListPresets(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		if h.presets == nil {
			sse.Patch(h.renderPresets(nil), "#preset-list")
			return
		}
		sse.Patch(h.renderPresets(h.presets.List()), "#preset-list")
	}), nil
}

// ApplyPreset replaces the style and layer with a preset's.
func (h *Handler) ApplyPreset(ctx context.Context, input *IDSignalsInput) (*huma.StreamResponse, error) {
	st, err := h.state(input.signals())
	if err != nil {
		return nil, err
	}
	if h.presets == nil {
		return nil, huma.Error503ServiceUnavailable("Presets not available")
	}
	p, ok := h.presets.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("Preset not found: " + input.ID)
	}

	st.Style = p.Style
	st.Layer = p.Layer
	return h.Stream(func(sse humastar.SSE) {
		h.selectionFromStyle(sse, &st)
		h.refresh(sse, st)
		sse.Success("Applied preset " + p.Name)
	}), nil
}

// selectionFromStyle re-hydrates the styler form after the whole style was
// replaced, keeping the current selection.
func (h *Handler) selectionFromStyle(sse humastar.SSE, st *State) {
	var props style.Properties
	if st.Feature != "" && st.Element != "" {
		if rule, ok := style.FindRule(st.Style, st.Feature, st.Element); ok {
			props = style.Decode(rule)
		}
	}
	st.Stylers = props
	hl := style.Highlight(st.Style, st.Feature, st.Element, nil, nil)
	signals := stylerSignals(props)
	signals[sigHighlight] = highlightSignals(hl.Inputs)
	sse.Signals(signals)
}
