package style

import "strings"

// Style is an ordered list of rules.
type Style struct {
	Rules []Rule
}

// Parse reads a comma separated style string. Surrounding whitespace and
// empty segments (a trailing comma, say) are dropped.
func Parse(s string) Style {
	var st Style
	for _, seg := range strings.Split(strings.TrimSpace(s), ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if r := ParseRule(seg); !r.IsEmpty() {
			st.Rules = append(st.Rules, r)
		}
	}
	return st
}

func (s Style) String() string {
	parts := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Len returns the number of rules.
func (s Style) Len() int {
	return len(s.Rules)
}

// Index returns the position of the rule matching (feature, element), or -1.
func (s Style) Index(feature, element string) int {
	for i, r := range s.Rules {
		if r.Matches(feature, element) {
			return i
		}
	}
	return -1
}

// Merge replaces the rule matching (feature, element) with rule, keeping
// its position, or appends rule. s is not modified.
func (s Style) Merge(rule Rule, feature, element string) Style {
	out := Style{Rules: make([]Rule, len(s.Rules), len(s.Rules)+1)}
	copy(out.Rules, s.Rules)
	if i := out.Index(feature, element); i >= 0 {
		out.Rules[i] = rule
		return out
	}
	out.Rules = append(out.Rules, rule)
	return out
}

// Find returns the rule for (feature, element). An exact match wins over a
// wildcard rule of the same feature.
func (s Style) Find(feature, element string) (Rule, bool) {
	if i := s.Index(feature, element); i >= 0 {
		return s.Rules[i], true
	}
	for _, r := range s.Rules {
		if r.Covers(feature, element) {
			return r, true
		}
	}
	return Rule{}, false
}

// Remove drops the rule matching (feature, element). s is not modified.
func (s Style) Remove(feature, element string) (Style, bool) {
	i := s.Index(feature, element)
	if i < 0 {
		return s, false
	}
	out := Style{Rules: make([]Rule, 0, len(s.Rules)-1)}
	out.Rules = append(out.Rules, s.Rules[:i]...)
	out.Rules = append(out.Rules, s.Rules[i+1:]...)
	return out, true
}

// Features returns the distinct features that carry a rule, in order.
func (s Style) Features() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range s.Rules {
		f, _ := r.Feature()
		f = normalizeSelector(f)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

// Merge parses style, merges newRule for (feature, element) and returns the
// re-serialised string. With an empty feature, element or rule the style is
// returned unchanged.
func Merge(style, newRule, feature, element string) string {
	st := Parse(style)
	r := ParseRule(strings.TrimSpace(newRule))
	if strings.TrimSpace(feature) == "" || strings.TrimSpace(element) == "" || r.IsEmpty() {
		return st.String()
	}
	return st.Merge(r, feature, element).String()
}

// FindRule returns the rule token that applies to (feature, element).
func FindRule(style, feature, element string) (string, bool) {
	r, ok := Parse(style).Find(feature, element)
	if !ok {
		return "", false
	}
	return r.String(), true
}

// Remove drops the rule for (feature, element) from style.
func Remove(style, feature, element string) string {
	st, _ := Parse(style).Remove(feature, element)
	return st.String()
}

// Apply encodes the selection and merges it into style.
func Apply(style, feature, element string, p Properties) (string, error) {
	r, err := NewRule(feature, element, p)
	if err != nil {
		return "", err
	}
	feature, _ = r.Feature()
	element, _ = r.Element()
	return Parse(style).Merge(r, feature, element).String(), nil
}
