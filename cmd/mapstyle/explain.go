package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/xlab/treeprint"

	"github.com/joeblew999/plat-mapstyle/internal/style"
)

var (
	ruleStyle    = lipgloss.NewStyle().Bold(true)
	unknownStyle = lipgloss.NewStyle().Faint(true)
)

// explain renders a style string as a tree: one branch per rule, one leaf
// per styler. Colors get a swatch.
func explain(styleStr string) string {
	st := style.Parse(styleStr)
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("style (%d rules)", st.Len()))

	for _, r := range st.Rules {
		feature, ok := r.Feature()
		if !ok {
			feature = style.Wildcard
		}
		element, ok := r.Element()
		if !ok {
			element = style.Wildcard
		}
		label := feature + " / " + element
		if r.IsWildcard() {
			label += " (every element)"
		}
		branch := tree.AddBranch(ruleStyle.Render(label))

		p := r.Properties()
		for _, k := range style.StylerKinds {
			if !p.Has(k) {
				continue
			}
			branch.AddNode(k.String() + ": " + stylerValue(k, p))
		}
		for _, t := range r.Unknown() {
			branch.AddNode(unknownStyle.Render("ignored: " + t.String()))
		}
	}
	return tree.String()
}

func stylerValue(k style.Kind, p style.Properties) string {
	switch k {
	case style.KindVisibility:
		return p.Visibility
	case style.KindColor:
		return swatch(p.Color) + p.Color
	case style.KindWeight:
		return p.Weight
	case style.KindSaturation:
		return strconv.Itoa(p.Saturation)
	case style.KindLightness:
		return strconv.Itoa(p.Lightness)
	}
	return ""
}

// swatch is a two cell block in c, empty for invalid colors.
func swatch(c string) string {
	col, ok := style.ParseColor(c)
	if !ok {
		return ""
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(col.Hex())).Render("  ") + " "
}
