package style

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-mapstyle/internal/errors"
)

// Properties are the styler values of a rule. Empty strings and zero
// saturation/lightness mean unset.
type Properties struct {
	Visibility string `json:"visibility,omitempty" doc:"on, off or simplified" example:"off"`
	Color      string `json:"color,omitempty" doc:"Hex color, '#' or '0x' prefixed" example:"#2196f3"`
	Weight     string `json:"weight,omitempty" doc:"Stroke weight in pixels" example:"1.5"`
	Saturation int    `json:"saturation,omitempty" minimum:"-100" maximum:"100" doc:"Saturation shift" example:"-40"`
	Lightness  int    `json:"lightness,omitempty" minimum:"-100" maximum:"100" doc:"Lightness shift" example:"20"`
}

// IsZero reports whether no styler is set.
func (p Properties) IsZero() bool {
	return p == Properties{}
}

// Has reports whether the styler of the given kind is set.
func (p Properties) Has(k Kind) bool {
	switch k {
	case KindVisibility:
		return p.Visibility != ""
	case KindColor:
		return p.Color != ""
	case KindWeight:
		return p.Weight != ""
	case KindSaturation:
		return p.Saturation != 0
	case KindLightness:
		return p.Lightness != 0
	}
	return false
}

func (p Properties) tokens() []Token {
	var out []Token
	if v := strings.TrimSpace(p.Visibility); v != "" {
		out = append(out, NewToken(KindVisibility, v))
	}
	if c := NormalizeColor(p.Color); c != "" {
		out = append(out, NewToken(KindColor, c))
	}
	if w := strings.TrimSpace(p.Weight); w != "" {
		out = append(out, NewToken(KindWeight, w))
	}
	if p.Saturation != 0 {
		out = append(out, NewToken(KindSaturation, strconv.Itoa(p.Saturation)))
	}
	if p.Lightness != 0 {
		out = append(out, NewToken(KindLightness, strconv.Itoa(p.Lightness)))
	}
	return out
}

// Rule is an ordered list of tokens.
type Rule struct {
	Tokens []Token
}

// NewRule builds a rule for feature and element with the given stylers.
// Both selectors are required.
func NewRule(feature, element string, p Properties) (Rule, error) {
	feature = strings.TrimSpace(feature)
	element = strings.TrimSpace(element)
	if feature == "" || element == "" {
		return Rule{}, errors.New(errors.ErrIncompleteSelection, "feature and element must both be selected").
			WithDetail("feature", feature).
			WithDetail("element", element)
	}
	if err := checkValue(KindFeature, feature, selectorDelims); err != nil {
		return Rule{}, err
	}
	if err := checkValue(KindElement, element, selectorDelims); err != nil {
		return Rule{}, err
	}
	tokens := append([]Token{NewToken(KindFeature, feature), NewToken(KindElement, element)}, p.tokens()...)
	for _, t := range tokens[2:] {
		if err := checkValue(t.Kind, t.Value, stylerDelims); err != nil {
			return Rule{}, err
		}
	}
	if v := strings.TrimSpace(p.Visibility); v != "" && !slices.Contains(Visibilities, v) {
		return Rule{}, errors.Newf(errors.ErrInvalidInput, "visibility must be one of %s", strings.Join(Visibilities, ", ")).
			WithDetail("visibility", v)
	}
	return Rule{Tokens: tokens}, nil
}

// Characters that would split a value into extra tokens or rules.
const (
	stylerDelims   = "|,"
	selectorDelims = "|,:"
)

func checkValue(k Kind, v, delims string) error {
	if strings.ContainsAny(v, delims) {
		return errors.Newf(errors.ErrInvalidInput, "%s %q cannot contain any of %q", k, v, delims).
			WithDetail(k.String(), v)
	}
	return nil
}

// ParseRule splits a rule on '|'. Empty segments are dropped.
func ParseRule(s string) Rule {
	var r Rule
	for _, part := range strings.Split(s, "|") {
		if part == "" {
			continue
		}
		r.Tokens = append(r.Tokens, ParseToken(part))
	}
	return r
}

func (r Rule) String() string {
	parts := make([]string, len(r.Tokens))
	for i, t := range r.Tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, "|")
}

// IsEmpty reports whether the rule has no tokens.
func (r Rule) IsEmpty() bool {
	return len(r.Tokens) == 0
}

// Lookup returns the value of the first token of kind k.
func (r Rule) Lookup(k Kind) (string, bool) {
	for _, t := range r.Tokens {
		if t.Kind == k {
			return t.Value, true
		}
	}
	return "", false
}

// Feature returns the feature value, if tagged.
func (r Rule) Feature() (string, bool) {
	return r.Lookup(KindFeature)
}

// Element returns the element value, if tagged.
func (r Rule) Element() (string, bool) {
	return r.Lookup(KindElement)
}

// Unknown returns the tokens the codec does not recognise.
func (r Rule) Unknown() []Token {
	var out []Token
	for _, t := range r.Tokens {
		if t.Kind == KindUnknown {
			out = append(out, t)
		}
	}
	return out
}

// Properties extracts the styler values. Unparseable numbers are ignored.
func (r Rule) Properties() Properties {
	var p Properties
	for _, t := range r.Tokens {
		switch t.Kind {
		case KindVisibility:
			p.Visibility = t.Value
		case KindColor:
			p.Color = NormalizeColor(t.Value)
		case KindWeight:
			p.Weight = t.Value
		case KindSaturation:
			p.Saturation = parseShift(t.Value)
		case KindLightness:
			p.Lightness = parseShift(t.Value)
		}
	}
	return p
}

// IsWildcard reports whether the rule targets every element of its feature.
func (r Rule) IsWildcard() bool {
	e, _ := r.Element()
	return normalizeSelector(e) == Wildcard
}

// Matches is the strict policy used by Merge: same feature and the same
// element, where an untagged element and the "a" alias both mean "all".
func (r Rule) Matches(feature, element string) bool {
	f, _ := r.Feature()
	if normalizeSelector(f) != normalizeSelector(feature) {
		return false
	}
	e, _ := r.Element()
	return normalizeSelector(e) == normalizeSelector(element)
}

// Covers reports whether the rule applies to the lookup: either it Matches,
// or it is a wildcard rule for the same feature.
func (r Rule) Covers(feature, element string) bool {
	if r.Matches(feature, element) {
		return true
	}
	f, _ := r.Feature()
	return normalizeSelector(f) == normalizeSelector(feature) && r.IsWildcard()
}

// Encode builds the token string for a selection.
func Encode(feature, element string, p Properties) (string, error) {
	r, err := NewRule(feature, element, p)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Decode extracts the styler values of a token string.
func Decode(token string) Properties {
	return ParseRule(token).Properties()
}

// Matches reports whether token is the rule for (feature, element).
func Matches(token, feature, element string) bool {
	return ParseRule(token).Matches(feature, element)
}

// Covers reports whether token applies to a (feature, element) lookup.
func Covers(token, feature, element string) bool {
	return ParseRule(token).Covers(feature, element)
}

func parseShift(v string) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(math.Round(f))
	}
	return 0
}
