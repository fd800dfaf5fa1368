package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDropsEmptySegments(t *testing.T) {
	st := Parse("  s.t:water|s.e:geometry|p.c:#2196f3,,s.t:poi|p.v:off, ")
	require.Equal(t, 2, st.Len())
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#2196f3,s.t:poi|p.v:off", st.String())
	assert.Equal(t, 0, Parse("").Len())
	assert.Equal(t, 0, Parse(" , ").Len())
}

func TestMergeReplacesInPlace(t *testing.T) {
	got := Merge("s.t:water|s.e:geometry|p.c:#2196f3", "s.t:water|s.e:geometry|p.c:#ff0000", "water", "geometry")
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#ff0000", got)
}

func TestMergeIdempotentReplace(t *testing.T) {
	style := "s.t:road|s.e:labels|p.v:off,s.t:water|s.e:geometry|p.c:#2196f3"

	first, err := Apply(style, "poi", "labels", Properties{Visibility: "off"})
	require.NoError(t, err)
	second, err := Apply(first, "poi", "labels", Properties{Color: "#00ff00", Lightness: 10})
	require.NoError(t, err)

	st := Parse(second)
	count := 0
	for _, r := range st.Rules {
		if r.Matches("poi", "labels") {
			count++
			assert.Equal(t, Properties{Color: "#00ff00", Lightness: 10}, r.Properties())
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 3, st.Len())
}

func TestMergeAppendPreservesOrder(t *testing.T) {
	style := "s.t:road|s.e:labels|p.v:off|p.x:keep,s.t:water|s.e:geometry|p.c:0x2196F3"
	got := Merge(style, "s.t:poi|s.e:geometry|p.v:off", "poi", "geometry")
	assert.Equal(t, style+",s.t:poi|s.e:geometry|p.v:off", got)
}

func TestMergeTrailingComma(t *testing.T) {
	got := Merge("s.t:water|s.e:geometry|p.c:#2196f3,", "s.t:poi|s.e:all|p.v:off", "poi", "all")
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#2196f3,s.t:poi|s.e:all|p.v:off", got)
}

func TestMergeWildcardReplacesUntaggedRule(t *testing.T) {
	got := Merge("s.t:poi|p.v:off,s.t:water|p.v:on", "s.t:poi|s.e:all|p.v:simplified", "poi", "all")
	assert.Equal(t, "s.t:poi|s.e:all|p.v:simplified,s.t:water|p.v:on", got)
}

func TestMergeSpecificDoesNotReplaceWildcard(t *testing.T) {
	got := Merge("s.t:poi|p.v:off", "s.t:poi|s.e:labels|p.v:on", "poi", "labels")
	assert.Equal(t, "s.t:poi|p.v:off,s.t:poi|s.e:labels|p.v:on", got)
}

func TestMergeEmptySelectionIsNoop(t *testing.T) {
	style := "s.t:water|s.e:geometry|p.c:#2196f3"
	assert.Equal(t, style, Merge(style, "s.t:poi|s.e:labels", "", "labels"))
	assert.Equal(t, style, Merge(style, "s.t:poi|s.e:labels", "poi", ""))
	assert.Equal(t, style, Merge(style, "", "poi", "labels"))

	_, err := Apply(style, "poi", "", Properties{Visibility: "off"})
	assert.Error(t, err)
}

func TestFindRule(t *testing.T) {
	style := "s.t:poi|p.v:off,s.t:poi|s.e:labels|p.c:#ff0000,s.t:water|s.e:geometry|p.c:#2196f3"

	tests := []struct {
		name    string
		feature string
		element string
		want    string
		found   bool
	}{
		{"exact wins over wildcard", "poi", "labels", "s.t:poi|s.e:labels|p.c:#ff0000", true},
		{"wildcard fallback", "poi", "geometry", "s.t:poi|p.v:off", true},
		{"wildcard lookup", "poi", "all", "s.t:poi|p.v:off", true},
		{"no rule", "water", "labels", "", false},
		{"unknown feature", "road", "all", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindRule(style, tt.feature, tt.element)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindDoesNotMutate(t *testing.T) {
	st := Parse("s.t:poi|p.v:off")
	_, _ = st.Find("poi", "labels")
	merged := st.Merge(ParseRule("s.t:road|s.e:all"), "road", "all")
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 2, merged.Len())
}

func TestRemove(t *testing.T) {
	style := "s.t:poi|s.e:labels|p.v:off,s.t:water|s.e:geometry|p.c:#2196f3"
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#2196f3", Remove(style, "poi", "labels"))
	assert.Equal(t, style, Remove(style, "poi", "geometry"))
}

func TestApplyNormalizesColor(t *testing.T) {
	got, err := Apply("", "water", "geometry", Properties{Color: "ff0000"})
	require.NoError(t, err)
	assert.Equal(t, "s.t:water|s.e:geometry|p.c:#ff0000", got)
}

func TestHighlight(t *testing.T) {
	style := "s.t:poi|p.v:off,s.t:water|s.e:geometry|p.c:#2196f3|p.l:10,s.t:road|s.e:labels|p.v:off"
	features := []string{"poi", "water", "road", "transit"}
	elements := []string{"all", "geometry", "labels"}

	h := Highlight(style, "", "", features, elements)
	assert.Equal(t, map[string]bool{"poi": true, "water": true, "road": true, "transit": false}, h.Features)
	assert.Empty(t, h.Elements)
	assert.Empty(t, h.Inputs)

	h = Highlight(style, "poi", "", features, elements)
	assert.Equal(t, map[string]bool{"all": true, "geometry": false, "labels": false}, h.Elements)

	h = Highlight(style, "water", "geometry", features, elements)
	assert.Equal(t, map[string]bool{"all": false, "geometry": true, "labels": false}, h.Elements)
	assert.Equal(t, map[string]bool{
		"visibility": false, "color": true, "weight": false, "saturation": false, "lightness": true,
	}, h.Inputs)

	h = Highlight(style, "poi", "labels", features, elements)
	assert.False(t, h.Inputs["visibility"], "inherited wildcard values do not highlight inputs")
}

func TestCatalog(t *testing.T) {
	assert.True(t, IsLayer("m"))
	assert.True(t, IsLayer("p"))
	assert.False(t, IsLayer("zz"))
	assert.Contains(t, IDs(Elements), Wildcard)
	assert.Contains(t, IDs(Features), "water")
}
