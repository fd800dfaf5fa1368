package api

import "github.com/joeblew999/plat-mapstyle/internal/humastar"

// curatedLinks are the relations the OpenAPI walk cannot infer. Enables
// restish hypermedia navigation via `restish links <url>`.
var curatedLinks = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/catalog>; rel="catalog"`,
		`</editor>; rel="editor"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/history>; rel="history"`,
	},
	"/api/v1/catalog": {
		`</api/v1/presets>; rel="presets"`,
		`</api/v1/codec/encode>; rel="encode"`,
		`</api/v1/tiles/url>; rel="tile-url"`,
	},
	"/api/v1/presets": {
		`</api/v1/catalog>; rel="catalog"`,
		`</api/v1/styles>; rel="styles"`,
	},
	"/api/v1/styles": {
		`</api/v1/presets>; rel="presets"`,
		`</api/v1/history>; rel="history"`,
	},
	"/api/v1/codec/parse": {
		`</api/v1/codec/merge>; rel="merge"`,
		`</api/v1/codec/find>; rel="find"`,
		`</api/v1/codec/highlight>; rel="highlight"`,
	},
	"/api/v1/tables": {
		`</api/v1/query>; rel="query"`,
	},
}

// RegisterLinks adds the curated links to l. Call it before l.Build.
func RegisterLinks(l *humastar.Links) {
	for p, links := range curatedLinks {
		l.Add(p, links...)
	}
}
