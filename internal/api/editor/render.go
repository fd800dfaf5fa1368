package editor

import (
	"github.com/joeblew999/plat-mapstyle/internal/service"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// FeatureItem is the view model of feature-item.html.
type FeatureItem struct {
	ID       string
	Label    string
	Group    string
	Active   bool // a rule targets the feature
	Selected bool
	Custom   bool
}

// ElementItem is the view model of element-item.html.
type ElementItem struct {
	ID       string
	Label    string
	Group    string
	Active   bool // the selected feature has a rule for the element
	Selected bool
}

// PresetCard is the view model of preset-card.html.
type PresetCard struct {
	ID       string
	Name     string
	Layer    string
	Accent   string
	Swatches []string
}

// StyleCard is the view model of style-card.html.
type StyleCard struct {
	ID          string
	Name        string
	Description string
	Layer       string
	Rules       int
	Swatches    []string
}

const maxSwatches = 5

// featureOptions returns the catalog features followed by custom ids and
// any feature the style targets that the catalog does not know.
func featureOptions(st State) []style.Option {
	opts := append([]style.Option(nil), style.Features...)
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		seen[o.ID] = true
	}
	extra := append(append([]string(nil), st.Customs...), style.Parse(st.Style).Features()...)
	for _, id := range extra {
		if seen[id] {
			continue
		}
		seen[id] = true
		label := id
		if l := st.Labels[id]; l != "" {
			label = l
		}
		opts = append(opts, style.Option{ID: id, Label: label, Group: "custom"})
	}
	return opts
}

func (h *Handler) renderFeatures(st State) string {
	opts := featureOptions(st)
	hl := style.Highlight(st.Style, st.Feature, "", style.IDs(opts), nil)

	items := make([]any, len(opts))
	for i, o := range opts {
		items[i] = FeatureItem{
			ID:       o.ID,
			Label:    o.Label,
			Group:    o.Group,
			Active:   hl.Features[o.ID],
			Selected: o.ID == st.Feature,
			Custom:   o.Group == "custom",
		}
	}
	return h.RenderList("feature-item", items, "No features", "")
}

func (h *Handler) renderElements(st State) string {
	if st.Feature == "" {
		return h.Render("empty-state", map[string]string{
			"Title": "Select a feature", "Message": "Elements appear once a feature is selected",
		})
	}
	hl := style.Highlight(st.Style, st.Feature, "", nil, style.IDs(style.Elements))

	items := make([]any, len(style.Elements))
	for i, o := range style.Elements {
		items[i] = ElementItem{
			ID:       o.ID,
			Label:    o.Label,
			Group:    o.Group,
			Active:   hl.Elements[o.ID],
			Selected: o.ID == st.Element,
		}
	}
	return h.RenderList("element-item", items, "No elements", "")
}

func (h *Handler) renderPresets(presets []service.Preset) string {
	items := make([]any, len(presets))
	for i, p := range presets {
		items[i] = PresetCard{
			ID:       p.ID,
			Name:     p.Name,
			Layer:    p.Layer,
			Accent:   p.Accent,
			Swatches: swatches(p.Style),
		}
	}
	return h.RenderList("preset-card", items, "No presets", "Add presets to the presets file")
}

func (h *Handler) renderStyles(styles []service.SavedStyle) string {
	items := make([]any, len(styles))
	for i, s := range styles {
		items[i] = StyleCard{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Layer:       s.Layer,
			Rules:       style.Parse(s.Style).Len(),
			Swatches:    swatches(s.Style),
		}
	}
	return h.RenderList("style-card", items, "No saved styles", "Save the current style to keep it")
}

// swatches returns the distinct valid colors of a style, in rule order.
func swatches(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range style.Parse(s).Rules {
		c := r.Properties().Color
		if c == "" || seen[c] || !style.IsHexColor(c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == maxSwatches {
			break
		}
	}
	return out
}
