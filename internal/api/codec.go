package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-mapstyle/internal/style"
)

// Codec routes expose the rule language without any saved state.

type SelectionBody struct {
	Feature string `json:"feature" doc:"Feature selector (s.t)" example:"water"`
	Element string `json:"element" doc:"Element selector (s.e)" example:"geometry"`
}

type EncodeInput struct {
	Body struct {
		SelectionBody
		Properties style.Properties `json:"properties,omitempty" doc:"Styler values"`
	}
}

type RuleBody struct {
	Rule string `json:"rule" doc:"Rule token" example:"s.t:water|s.e:geometry|p.c:#2196f3"`
}

type DecodeInput struct {
	Body RuleBody
}

type DecodeBody struct {
	Feature    string           `json:"feature,omitempty" doc:"Feature selector, empty when the rule has none"`
	Element    string           `json:"element,omitempty" doc:"Element selector, empty when the rule has none"`
	Properties style.Properties `json:"properties" doc:"Recognised styler values"`
	Unknown    []string         `json:"unknown,omitempty" doc:"Tokens with an unrecognised key"`
}

type StyleBody struct {
	Style string `json:"style" doc:"Comma separated style string, raw or percent-encoded" example:"s.t:water|s.e:geometry|p.c:#2196f3"`
}

type ParseInput struct {
	Body StyleBody
}

type ParsedRule struct {
	DecodeBody
	Rule     string `json:"rule" doc:"The rule as written"`
	Wildcard bool   `json:"wildcard" doc:"Whether the rule covers every element of its feature"`
}

type ParseBody struct {
	Style string       `json:"style" doc:"Canonical style string"`
	Rules []ParsedRule `json:"rules" doc:"Rules in order"`
}

type MergeInput struct {
	Body struct {
		StyleBody
		SelectionBody
		Rule string `json:"rule" doc:"Rule to merge" example:"s.t:water|s.e:geometry|p.c:#ff0000"`
	}
}

type SelectionInput struct {
	Body struct {
		StyleBody
		SelectionBody
	}
}

type FindBody struct {
	Found bool   `json:"found" doc:"Whether a rule applies"`
	Rule  string `json:"rule,omitempty" doc:"The applying rule"`
	DecodeBody
}

type HighlightInput struct {
	Body struct {
		StyleBody
		SelectionBody
		Features []string `json:"features,omitempty" doc:"Candidate features, defaults to the catalog"`
		Elements []string `json:"elements,omitempty" doc:"Candidate elements, defaults to the catalog"`
	}
}

// RegisterCodec registers the stateless rule language routes.
func (h *APIHandler) RegisterCodec(api huma.API) {
	huma.Post(api, "/api/v1/codec/encode", h.Encode, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/decode", h.Decode, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/parse", h.ParseStyle, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/merge", h.Merge, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/find", h.Find, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/highlight", h.Highlight, huma.OperationTags("codec"))
	huma.Post(api, "/api/v1/codec/remove", h.Remove, huma.OperationTags("codec"))
}

func (h *APIHandler) Encode(ctx context.Context, input *EncodeInput) (*struct{ Body RuleBody }, error) {
	token, err := style.Encode(input.Body.Feature, input.Body.Element, input.Body.Properties)
	if err != nil {
		return nil, humaError(err)
	}
	return &struct{ Body RuleBody }{Body: RuleBody{Rule: token}}, nil
}

func (h *APIHandler) Decode(ctx context.Context, input *DecodeInput) (*struct{ Body DecodeBody }, error) {
	return &struct{ Body DecodeBody }{Body: decodeRule(style.ParseRule(input.Body.Rule))}, nil
}

func (h *APIHandler) ParseStyle(ctx context.Context, input *ParseInput) (*struct{ Body ParseBody }, error) {
	st := style.Parse(h.clean(input.Body.Style))
	rules := make([]ParsedRule, len(st.Rules))
	for i, r := range st.Rules {
		rules[i] = ParsedRule{DecodeBody: decodeRule(r), Rule: r.String(), Wildcard: r.IsWildcard()}
	}
	return &struct{ Body ParseBody }{Body: ParseBody{Style: st.String(), Rules: rules}}, nil
}

func (h *APIHandler) Merge(ctx context.Context, input *MergeInput) (*struct{ Body StyleBody }, error) {
	b := input.Body
	if b.Feature == "" || b.Element == "" {
		return nil, huma.Error400BadRequest("feature and element must both be selected")
	}
	if style.ParseRule(b.Rule).IsEmpty() {
		return nil, huma.Error400BadRequest("rule is empty")
	}
	if strings.Contains(b.Rule, ",") {
		return nil, huma.Error400BadRequest("rule must be a single rule without ','")
	}
	merged := style.Merge(h.clean(b.Style), b.Rule, b.Feature, b.Element)
	return &struct{ Body StyleBody }{Body: StyleBody{Style: merged}}, nil
}

func (h *APIHandler) Find(ctx context.Context, input *SelectionInput) (*struct{ Body FindBody }, error) {
	b := input.Body
	r, ok := style.Parse(h.clean(b.Style)).Find(b.Feature, b.Element)
	if !ok {
		return &struct{ Body FindBody }{Body: FindBody{}}, nil
	}
	return &struct{ Body FindBody }{Body: FindBody{Found: true, Rule: r.String(), DecodeBody: decodeRule(r)}}, nil
}

func (h *APIHandler) Highlight(ctx context.Context, input *HighlightInput) (*struct{ Body style.Highlights }, error) {
	b := input.Body
	features, elements := b.Features, b.Elements
	if len(features) == 0 {
		features = style.IDs(style.Features)
	}
	if len(elements) == 0 {
		elements = style.IDs(style.Elements)
	}
	hl := style.Highlight(h.clean(b.Style), b.Feature, b.Element, features, elements)
	return &struct{ Body style.Highlights }{Body: hl}, nil
}

func (h *APIHandler) Remove(ctx context.Context, input *SelectionInput) (*struct{ Body StyleBody }, error) {
	b := input.Body
	st, removed := style.Parse(h.clean(b.Style)).Remove(b.Feature, b.Element)
	if !removed {
		return nil, huma.Error404NotFound("no rule for " + b.Feature + "/" + b.Element)
	}
	return &struct{ Body StyleBody }{Body: StyleBody{Style: st.String()}}, nil
}

func (h *APIHandler) clean(s string) string {
	return h.svc.URLs.Clean(s)
}

func decodeRule(r style.Rule) DecodeBody {
	out := DecodeBody{Properties: r.Properties()}
	out.Feature, _ = r.Feature()
	out.Element, _ = r.Element()
	for _, t := range r.Unknown() {
		out.Unknown = append(out.Unknown, t.String())
	}
	return out
}
