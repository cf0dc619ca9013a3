package planet

import (
	"github.com/paulmach/orb/geojson"
)

// Feature is one matched imagery item as returned by quick-search. The
// property set varies by item type, so properties stay a map; the CSV
// exporter picks the columns it needs.
type Feature struct {
	ID          string            `json:"id"`
	Geometry    *geojson.Geometry `json:"geometry"`
	Properties  map[string]any    `json:"properties"`
	Permissions []string          `json:"_permissions,omitempty"`
}

// Property returns a named property value, or nil when absent.
func (f *Feature) Property(name string) any {
	if f == nil || f.Properties == nil {
		return nil
	}
	return f.Properties[name]
}

// searchPage is one page of quick-search results.
type searchPage struct {
	Features []*Feature `json:"features"`
	Links    pageLinks  `json:"_links"`
}

type pageLinks struct {
	First string `json:"_first"`
	Next  string `json:"_next"`
	Self  string `json:"_self"`
}
