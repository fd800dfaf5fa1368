package humastar

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignals(t *testing.T) {
	s, err := ParseSignals([]byte(`{"feature":"water","saturation":"-40","lightness":20,"weight":1.5,"dirty":true}`))
	require.NoError(t, err)

	assert.Equal(t, "water", s.String("feature"))
	assert.Equal(t, -40, s.Int("saturation"))
	assert.Equal(t, 20, s.Int("lightness"))
	assert.Equal(t, "1.5", s.String("weight"))
	assert.True(t, s.Bool("dirty"))
	assert.True(t, s.Has("dirty"))
	assert.False(t, s.Has("color"))
	assert.Equal(t, "", s.String("color"))
	assert.Equal(t, 0, s.Int("feature"))

	empty, err := ParseSignals(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseSignals([]byte("{"))
	assert.Error(t, err)

	in := &SignalsInput{RawBody: []byte("nope")}
	_, err = in.MustParse()
	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.GetStatus())
}

func TestSignalsMap(t *testing.T) {
	s, err := ParseSignals([]byte(`{"labels":{"poi.custom":"Spot","n":2,"z":null},"flat":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"poi.custom": "Spot"}, s.Map("labels"))
	assert.Empty(t, s.Map("flat"))
	assert.Empty(t, s.Map("missing"))
}

func TestRenderer(t *testing.T) {
	fsys := fstest.MapFS{
		"empty-state.html":   {Data: []byte(`{{define "empty-state"}}<p>{{.Title}}: {{.Message}}</p>{{end}}`)},
		"select-option.html": {Data: []byte(`{{define "select-option"}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}`)},
		"item.html":          {Data: []byte(`{{define "item"}}<li>{{.}}</li>{{end}}`)},
	}
	r, err := NewRenderer(fsys)
	require.NoError(t, err)
	assert.True(t, r.Has("item"))
	assert.False(t, r.Has("missing"))

	assert.Equal(t, "<li>a</li><li>&lt;b&gt;</li>", RenderList(r, "item", []any{"a", "<b>"}, "x", "y"))
	assert.Equal(t, "<p>None: Add one</p>", RenderList(r, "item", nil, "None", "Add one"))

	got := RenderSelect(r, "Pick", []SelectOptionData{{Value: "m", Label: "Roadmap", Selected: true}})
	assert.Equal(t, `<option value="">Pick</option><option value="m" selected>Roadmap</option>`, got)

	h := Handler{Renderer: r}
	assert.Equal(t, "", h.Render("missing", nil))

	fsys["item.html"] = &fstest.MapFile{Data: []byte(`{{define "item"}}<b>{{.}}</b>{{end}}`)}
	require.NoError(t, r.Reload())
	assert.Equal(t, "<b>x</b>", h.Render("item", "x"))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name  string
		in    PageInput
		data  []int
		links []string
	}{
		{
			name: "first page",
			in:   PageInput{Offset: 0, Limit: 2},
			data: []int{1, 2},
			links: []string{
				`</s?offset=0&limit=2>; rel="first"`,
				`</s?offset=2&limit=2>; rel="next"`,
				`</s?offset=4&limit=2>; rel="last"`,
			},
		},
		{
			name: "middle page",
			in:   PageInput{Offset: 2, Limit: 2},
			data: []int{3, 4},
			links: []string{
				`</s?offset=0&limit=2>; rel="first"`,
				`</s?offset=0&limit=2>; rel="prev"`,
				`</s?offset=4&limit=2>; rel="next"`,
				`</s?offset=4&limit=2>; rel="last"`,
			},
		},
		{
			name: "past the end",
			in:   PageInput{Offset: 9, Limit: 2},
			data: []int{},
			links: []string{
				`</s?offset=0&limit=2>; rel="first"`,
				`</s?offset=3&limit=2>; rel="prev"`,
				`</s?offset=4&limit=2>; rel="last"`,
			},
		},
		{
			name: "default limit",
			in:   PageInput{},
			data: []int{1, 2, 3, 4, 5},
			links: []string{
				`</s?offset=0&limit=20>; rel="first"`,
				`</s?offset=0&limit=20>; rel="last"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(items, tt.in)
			assert.Equal(t, 5, page.Total)
			assert.Equal(t, tt.data, page.Data)
			assert.Equal(t, tt.links, page.PaginationLinks("/s"))
		})
	}
}

func TestActionLinkHeader(t *testing.T) {
	actions := ActionsFor("dark", []ActionDef{
		{Rel: "apply-rule", Pattern: "/api/v1/styles/%s/rules", Method: "POST", Title: "Apply a rule"},
		{Rel: "tile-url", Pattern: "/api/v1/styles/%s/tile-url"},
	})
	require.Len(t, actions, 2)
	assert.Equal(t, `</api/v1/styles/dark/rules>; rel="apply-rule"; method="POST"; title="Apply a rule"`, actions[0].LinkHeader())
	assert.Equal(t, `</api/v1/styles/dark/tile-url>; rel="tile-url"`, actions[1].LinkHeader())
}

type thing struct {
	ID string `json:"id"`
}

type thingOutput struct {
	Body thing
}

type thingsOutput struct {
	Body PageBody[thing]
}

func TestLinks(t *testing.T) {
	links := NewLinks()
	_, api := humatest.New(t, func() huma.Config {
		cfg := huma.DefaultConfig("test", "1.0.0")
		cfg.Transformers = append(cfg.Transformers, links.Transformer())
		return cfg
	}())

	huma.Get(api, "/health", func(ctx context.Context, _ *EmptyInput) (*struct{}, error) {
		return &struct{}{}, nil
	})
	huma.Get(api, "/api/v1/things", func(ctx context.Context, in *PageInput) (*thingsOutput, error) {
		return &thingsOutput{Body: Paginate([]thing{{ID: "a"}, {ID: "b"}}, *in)}, nil
	})
	huma.Post(api, "/api/v1/things", func(ctx context.Context, _ *struct{ Body thing }) (*thingOutput, error) {
		return &thingOutput{}, nil
	})
	huma.Get(api, "/api/v1/things/{id}", func(ctx context.Context, in *struct {
		ID string `path:"id"`
	}) (*thingOutput, error) {
		return &thingOutput{Body: thing{ID: in.ID}}, nil
	})
	huma.Get(api, "/api/v1/editor/stream", func(ctx context.Context, _ *EmptyInput) (*struct{}, error) {
		return &struct{}{}, nil
	}, huma.OperationTags("editor"))
	links.Build(api)

	root := links.Root()
	assert.Contains(t, root, `</api/v1/things>; rel="things"`)
	assert.Contains(t, root, `</openapi.json>; rel="service-desc"`)
	for _, l := range root {
		assert.NotContains(t, l, "editor")
	}

	assert.Contains(t, links.For("/api/v1/things"), `</api/v1/things/{id}>; rel="item"`)
	assert.Contains(t, links.For("/api/v1/things"), `</api/v1/things>; rel="create-form"`)

	resp := api.Get("/api/v1/things/a")
	require.Equal(t, http.StatusOK, resp.Code)
	got := resp.Header().Values("Link")
	assert.Contains(t, got, `</api/v1/things>; rel="collection"`)
	assert.Contains(t, got, `</api/v1/things/a>; rel="self"`)

	resp = api.Get("/api/v1/things?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Values("Link"), `</api/v1/things?offset=1&limit=1>; rel="next"`)
}
