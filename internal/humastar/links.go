package humastar

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// EntryPoint is the path that links to every collection.
const EntryPoint = "/health"

// Links holds RFC 8288 Link headers derived from the OpenAPI document,
// keyed by operation path. Create it before the API so its Transformer can
// be installed in the Huma config, then call Build once routes exist.
type Links struct {
	mu    sync.RWMutex
	paths map[string][]string
	extra map[string][]string
}

// NewLinks returns an empty link set.
func NewLinks() *Links {
	return &Links{paths: map[string][]string{}, extra: map[string][]string{}}
}

// Add registers hand-written Link header values for an operation path.
// They survive Build and come before the derived links.
func (l *Links) Add(opPath string, links ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.extra[opPath] = append(l.extra[opPath], links...)
	l.paths[opPath] = append(l.paths[opPath], links...)
}

// Build walks the OpenAPI paths and derives links. Operations tagged
// "editor" are Datastar endpoints and are skipped.
func (l *Links) Build(api huma.API) {
	oapi := api.OpenAPI()
	m := map[string][]string{}
	l.mu.RLock()
	for p, links := range l.extra {
		m[p] = append([]string(nil), links...)
	}
	l.mu.RUnlock()
	add := func(from, to, rel string) {
		val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
		for _, existing := range m[from] {
			if existing == val {
				return
			}
		}
		m[from] = append(m[from], val)
	}

	var collections, items []string
	for p, pi := range oapi.Paths {
		if hasTag(primaryTags(pi), "editor") {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, p)
		} else {
			collections = append(collections, p)
		}
	}
	sort.Strings(collections)
	sort.Strings(items)

	for _, item := range items {
		parent := path.Dir(item)
		if _, ok := oapi.Paths[parent]; ok {
			add(item, parent, "collection")
			add(item, parent, "up")
			add(parent, item, "item")
		}
	}

	// POST-only paths are commands, not collections.
	for _, coll := range collections {
		pi := oapi.Paths[coll]
		if pi.Get == nil {
			continue
		}
		if coll != EntryPoint {
			add(coll, EntryPoint, "up")
			add(EntryPoint, coll, lastSegment(coll))
		}
		if pi.Post != nil {
			add(coll, coll, "create-form")
		}
	}
	for _, item := range items {
		if pi := oapi.Paths[item]; pi.Put != nil || pi.Patch != nil {
			add(item, item, "edit")
		}
	}

	add(EntryPoint, "/openapi.json", "describedby")
	add(EntryPoint, "/openapi.json", "service-desc")
	add(EntryPoint, "/docs", "service-doc")

	for _, p := range append(collections, items...) {
		if ref := responseSchemaRef(oapi.Paths[p]); ref != "" {
			add(p, "/openapi.json#/components/schemas/"+ref, "describedby")
		}
	}

	l.mu.Lock()
	l.paths = m
	l.mu.Unlock()
}

// For returns the links of an operation path.
func (l *Links) For(opPath string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.paths[opPath]...)
}

// Root returns the entry point links, for non-Huma handlers such as "/".
func (l *Links) Root() []string {
	return l.For(EntryPoint)
}

// Transformer returns a Huma transformer that writes the derived links plus
// self, pagination and action links from the response body.
func (l *Links) Transformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range l.For(op.Path) {
			ctx.AppendHeader("Link", link)
		}
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}
		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}
		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}
		return v, nil
	}
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete} {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}

func responseSchemaRef(pi *huma.PathItem) string {
	if pi == nil || pi.Get == nil {
		return ""
	}
	for code, resp := range pi.Get.Responses {
		if !strings.HasPrefix(code, "2") || resp.Content == nil {
			continue
		}
		for _, mt := range resp.Content {
			if mt.Schema != nil && mt.Schema.Ref != "" {
				return path.Base(mt.Schema.Ref)
			}
		}
	}
	return ""
}
