package style

// Highlights describes which editor controls an existing style touches.
type Highlights struct {
	// Features maps each candidate feature to whether any rule targets it.
	Features map[string]bool `json:"features" doc:"Feature id to whether a rule targets it"`
	// Elements maps each candidate element to whether the selected feature
	// has a rule for it.
	Elements map[string]bool `json:"elements" doc:"Element id to whether the selected feature has a rule for it"`
	// Inputs maps styler names to whether the rule of the selected pair
	// sets them.
	Inputs map[string]bool `json:"inputs" doc:"Styler name to whether the selected rule sets it"`
}

// Highlight computes highlight state for the editor. Element and input
// highlights are only computed once a feature (and element) is selected.
// Only a pair's own rule highlights its inputs; inherited wildcard values
// do not.
func Highlight(style, feature, element string, features, elements []string) Highlights {
	st := Parse(style)
	h := Highlights{
		Features: make(map[string]bool, len(features)),
		Elements: make(map[string]bool, len(elements)),
		Inputs:   make(map[string]bool, len(StylerKinds)),
	}

	targeted := map[string]bool{}
	for _, f := range st.Features() {
		targeted[f] = true
	}
	for _, f := range features {
		h.Features[f] = targeted[normalizeSelector(f)]
	}

	if feature == "" {
		return h
	}
	for _, e := range elements {
		h.Elements[e] = st.Index(feature, e) >= 0
	}

	if element == "" {
		return h
	}
	for _, k := range StylerKinds {
		h.Inputs[k.String()] = false
	}
	if i := st.Index(feature, element); i >= 0 {
		for _, t := range st.Rules[i].Tokens {
			if _, ok := h.Inputs[t.Kind.String()]; ok {
				h.Inputs[t.Kind.String()] = true
			}
		}
	}
	return h
}
