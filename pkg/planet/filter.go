package planet

import (
	"time"

	"github.com/paulmach/orb/geojson"
)

// Filter is one clause of the Planet data API filter language. Config
// varies by filter type, so it stays loosely typed.
type Filter struct {
	Type      string `json:"type"`
	FieldName string `json:"field_name,omitempty"`
	Config    any    `json:"config"`
}

type dateRangeConfig struct {
	GTE string `json:"gte,omitempty"`
	LTE string `json:"lte,omitempty"`
}

type rangeConfig struct {
	LTE float64 `json:"lte"`
}

// planetTime is the timestamp layout the data API expects.
const planetTime = "2006-01-02T15:04:05.000Z"

// GeometryFilter matches items whose footprint intersects the geometry.
func GeometryFilter(geom *geojson.Geometry) Filter {
	return Filter{Type: "GeometryFilter", FieldName: "geometry", Config: geom}
}

// DateRangeFilter matches items acquired within [start, end], bounds
// included.
func DateRangeFilter(start, end time.Time) Filter {
	cfg := dateRangeConfig{}
	if !start.IsZero() {
		cfg.GTE = start.UTC().Format(planetTime)
	}
	if !end.IsZero() {
		cfg.LTE = end.UTC().Format(planetTime)
	}
	return Filter{Type: "DateRangeFilter", FieldName: "acquired", Config: cfg}
}

// CloudCoverFilter matches items with cloud cover at or below the given
// fraction (0 to 1).
func CloudCoverFilter(lte float64) Filter {
	return Filter{Type: "RangeFilter", FieldName: "cloud_cover", Config: rangeConfig{LTE: lte}}
}

// AssetFilter matches items that have all of the given asset types
// available.
func AssetFilter(assetTypes ...string) Filter {
	if len(assetTypes) == 1 {
		return Filter{Type: "AssetFilter", Config: []string{assetTypes[0]}}
	}
	clauses := make([]Filter, 0, len(assetTypes))
	for _, at := range assetTypes {
		clauses = append(clauses, Filter{Type: "AssetFilter", Config: []string{at}})
	}
	return And(clauses...)
}

// And combines filter clauses so that all must match.
func And(filters ...Filter) Filter {
	cfg := make([]any, 0, len(filters))
	for _, f := range filters {
		cfg = append(cfg, f)
	}
	return Filter{Type: "AndFilter", Config: cfg}
}

// searchRequest is the POST body for /quick-search.
type searchRequest struct {
	Name      string   `json:"name,omitempty"`
	ItemTypes []string `json:"item_types"`
	Filter    Filter   `json:"filter"`
}
