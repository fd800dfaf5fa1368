// Package editor contains the Datastar SSE handlers behind the style editor
// page. The browser owns the editor state as signals; every request carries
// it and every handler works on an explicit State value.
package editor

import (
	"strings"

	"github.com/joeblew999/plat-mapstyle/internal/humastar"
	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// Signal names bound in editor.html. Datastar lowercases bound names, so
// they are kept single-word.
const (
	sigStyle      = "style"
	sigLayer      = "layer"
	sigFeature    = "feature"
	sigElement    = "element"
	sigVisibility = "visibility"
	sigColor      = "color"
	sigWeight     = "weight"
	sigSaturation = "saturation"
	sigLightness  = "lightness"
	sigTileURL    = "tileurl"
	sigPreviewURL = "previewurl"
	sigHighlight  = "hl"
	sigCustom     = "customs"
	sigNewFeature = "newfeature"
	sigLabels     = "labels"
	sigNewLabel   = "newlabel"
	sigSaveName   = "savename"
)

// State is the editor state carried by one request.
type State struct {
	Style   string
	Layer   string
	Feature string
	Element string
	Stylers style.Properties
	// Customs are feature ids added by hand that are not in the catalog.
	Customs []string
	// Labels are display names of custom features, keyed by id.
	Labels map[string]string
}

// StateFromSignals reads the editor state from Datastar signals.
// defaultLayer fills an empty layer.
func StateFromSignals(s humastar.Signals, defaultLayer string) State {
	st := State{
		Style:   s.String(sigStyle),
		Layer:   strings.TrimSpace(s.String(sigLayer)),
		Feature: strings.TrimSpace(s.String(sigFeature)),
		Element: strings.TrimSpace(s.String(sigElement)),
		Stylers: style.Properties{
			Visibility: s.String(sigVisibility),
			Color:      s.String(sigColor),
			Weight:     s.String(sigWeight),
			Saturation: s.Int(sigSaturation),
			Lightness:  s.Int(sigLightness),
		},
		Customs: splitList(s.String(sigCustom)),
		Labels:  s.Map(sigLabels),
	}
	if st.Layer == "" {
		st.Layer = defaultLayer
	}
	return st
}

// stylerSignals returns the styler form signals for p. Unset values are
// sent as empty strings or zero so stale values are cleared.
func stylerSignals(p style.Properties) map[string]any {
	return map[string]any{
		sigVisibility: p.Visibility,
		sigColor:      p.Color,
		sigWeight:     p.Weight,
		sigSaturation: p.Saturation,
		sigLightness:  p.Lightness,
	}
}

// highlightSignals maps the input highlights onto the hl signal object.
func highlightSignals(inputs map[string]bool) map[string]any {
	hl := make(map[string]any, len(style.StylerKinds))
	for _, k := range style.StylerKinds {
		hl[k.String()] = inputs[k.String()]
	}
	return hl
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
