package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/service"
)

// DeleteStyleInput identifies a saved style.
type DeleteStyleInput struct {
	ID string `path:"id" doc:"Saved style ID to delete" example:"night_mode"`
}

// ListStyles renders the saved style cards.
func (h *Handler) ListStyles(ctx context.Context, input *humastar.EmptyInput) (*huma.StreamResponse, error) {
	if h.styles == nil {
		return nil, huma.Error503ServiceUnavailable("Saved styles not available")
	}
	return h.Stream(func(sse humastar.SSE) {
		sse.Patch(h.renderStyles(h.styles.List()), "#style-list")
	}), nil
}

// SaveStyle stores the current style under the name in the savename
// signal. An existing style with the same name is overwritten.
func (h *Handler) SaveStyle(ctx context.Context, input *humastar.SignalsInput) (*huma.StreamResponse, error) {
	if h.styles == nil {
		return nil, huma.Error503ServiceUnavailable("Saved styles not available")
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	st := StateFromSignals(signals, h.defaultLayer)
	name := strings.TrimSpace(signals.String(sigSaveName))

	return h.Stream(func(sse humastar.SSE) {
		if name == "" {
			sse.Error("Enter a name to save the style")
			return
		}
		saved := service.SavedStyle{Name: name, Layer: st.Layer, Style: st.Style}
		out, err := h.styles.Create(ctx, saved)
		action := "Saved"
		if errors.IsCode(err, errors.ErrAlreadyExists) {
			id := errorDetail(err, "id")
			if prev, ok := h.styles.Get(id); ok {
				saved.Description = prev.Description
			}
			out, err = h.styles.Update(ctx, id, saved)
			action = "Updated"
		}
		if err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Signals(map[string]any{sigSaveName: ""})
		sse.Patch(h.renderStyles(h.styles.List()), "#style-list")
		sse.Success(fmt.Sprintf("%s style '%s'", action, out.Name))
	}), nil
}

// LoadStyle replaces the editor style and layer with a saved style's.
func (h *Handler) LoadStyle(ctx context.Context, input *IDSignalsInput) (*huma.StreamResponse, error) {
	if h.styles == nil {
		return nil, huma.Error503ServiceUnavailable("Saved styles not available")
	}
	st, err := h.state(input.signals())
	if err != nil {
		return nil, err
	}
	saved, ok := h.styles.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("Saved style not found: " + input.ID)
	}

	st.Style = saved.Style
	st.Layer = saved.Layer
	return h.Stream(func(sse humastar.SSE) {
		h.selectionFromStyle(sse, &st)
		sse.Signals(map[string]any{sigSaveName: saved.Name})
		h.refresh(sse, st)
		sse.Success("Loaded style " + saved.Name)
	}), nil
}

// DeleteStyle removes a saved style and its card.
func (h *Handler) DeleteStyle(ctx context.Context, input *DeleteStyleInput) (*huma.StreamResponse, error) {
	if h.styles == nil {
		return nil, huma.Error503ServiceUnavailable("Saved styles not available")
	}
	return h.Stream(func(sse humastar.SSE) {
		if err := h.styles.Delete(ctx, input.ID); err != nil {
			sse.Error(err.Error())
			return
		}
		sse.Remove("style-" + input.ID)
		sse.Success("Style deleted")
	}), nil
}

// errorDetail returns a string detail of a coded error.
func errorDetail(err error, key string) string {
	v, _ := errors.GetDetail(err, key)
	s, _ := v.(string)
	return s
}
