package sheet

import "github.com/pankaj139/pixelforge/pkg/types"

// layouts is the fixed catalog of supported grid shapes.
var layouts = []types.GridLayout{
	{Rows: 1, Columns: 1, Name: "1x1"},
	{Rows: 1, Columns: 2, Name: "1x2"},
	{Rows: 1, Columns: 3, Name: "1x3"},
	{Rows: 1, Columns: 4, Name: "1x4"},
	{Rows: 2, Columns: 2, Name: "2x2"},
	{Rows: 2, Columns: 3, Name: "2x3"},
	{Rows: 3, Columns: 2, Name: "3x2"},
	{Rows: 3, Columns: 3, Name: "3x3"},
}

// Layouts returns the supported grid layouts in catalog order.
func Layouts() []types.GridLayout {
	out := make([]types.GridLayout, len(layouts))
	copy(out, layouts)
	return out
}

// LayoutByName looks up a grid layout from the catalog. The second
// return value reports whether the name matched a known layout.
func LayoutByName(name string) (types.GridLayout, bool) {
	for _, l := range layouts {
		if l.Name == name {
			return l, true
		}
	}
	return types.GridLayout{}, false
}
