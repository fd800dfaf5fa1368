// Package style implements the map-tile style rule language.
//
// A style string is a comma separated list of rules. A rule is a pipe
// separated list of key:value tokens:
//
//	s.t:water|s.e:geometry|p.c:#2196f3,s.t:poi|s.e:labels|p.v:off
//
// The package holds no state. Every function takes the current style
// string (or a parsed [Style]) by value and returns a new one, so any front
// end can drive it.
package style

import "strings"

// Kind identifies what a token configures.
type Kind int

const (
	KindUnknown Kind = iota
	KindFeature
	KindElement
	KindVisibility
	KindColor
	KindWeight
	KindSaturation
	KindLightness
)

// Wildcard is the element (and implicit feature) value matching everything.
const Wildcard = "all"

// wildcardAlias is the short form accepted by the tile provider.
const wildcardAlias = "a"

var kindKeys = map[Kind]string{
	KindFeature:    "s.t",
	KindElement:    "s.e",
	KindVisibility: "p.v",
	KindColor:      "p.c",
	KindWeight:     "p.w",
	KindSaturation: "p.s",
	KindLightness:  "p.l",
}

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindFeature:    "feature",
	KindElement:    "element",
	KindVisibility: "visibility",
	KindColor:      "color",
	KindWeight:     "weight",
	KindSaturation: "saturation",
	KindLightness:  "lightness",
}

var keyKinds = func() map[string]Kind {
	m := make(map[string]Kind, len(kindKeys))
	for k, key := range kindKeys {
		m[key] = k
	}
	return m
}()

// StylerKinds lists styler kinds in encoding order.
var StylerKinds = []Kind{KindVisibility, KindColor, KindWeight, KindSaturation, KindLightness}

// Key returns the wire prefix of the kind, e.g. "p.c". Unknown has none.
func (k Kind) Key() string {
	return kindKeys[k]
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Token is one key:value pair of a rule.
type Token struct {
	Kind  Kind
	Key   string
	Value string

	// raw is the source text for parsed tokens, so untouched rules
	// serialise exactly as they were read.
	raw string
}

// NewToken builds a token of a known kind.
func NewToken(kind Kind, value string) Token {
	return Token{Kind: kind, Key: kind.Key(), Value: value}
}

// ParseToken reads a single key:value token. Tokens with an unrecognised
// key (or no colon at all) are kept as KindUnknown.
func ParseToken(s string) Token {
	key, value, ok := strings.Cut(s, ":")
	if !ok {
		return Token{Kind: KindUnknown, Key: s, raw: s}
	}
	kind, known := keyKinds[key]
	if !known {
		kind = KindUnknown
	}
	return Token{Kind: kind, Key: key, Value: value, raw: s}
}

func (t Token) String() string {
	if t.raw != "" {
		return t.raw
	}
	return t.Key + ":" + t.Value
}

// IsWildcard reports whether v selects every element.
func IsWildcard(v string) bool {
	return v == Wildcard || v == wildcardAlias
}

// normalizeSelector maps the wildcard alias and an absent value to Wildcard.
func normalizeSelector(v string) string {
	if v == "" || IsWildcard(v) {
		return Wildcard
	}
	return v
}
