package planet

import (
	"context"
	"fmt"
	"iter"
	"math"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
)

// DefaultAssetTypes are the asset types requested when SearchParams leaves
// AssetTypes empty: surface-reflectance analytic with plain analytic as
// fallback.
var DefaultAssetTypes = []string{"analytic_sr", "analytic"}

// SearchService executes quick-search requests against the data API.
type SearchService struct {
	client *Client
}

// SearchParams describes one catalog search.
type SearchParams struct {
	// ItemType is the Planet product, e.g. "PSScene4Band", "PSOrthoTile",
	// "REOrthoTile".
	ItemType string
	// Start and End bound the acquisition time, inclusive.
	Start, End time.Time
	// CloudCover is the maximum cloud-cover fraction, 0 to 1. Zero means
	// only cloud-free items.
	CloudCover float64
	// AOI is the polygon items must intersect.
	AOI *geojson.Geometry
	// Name identifies the search on the provider side and in output file
	// names.
	Name string
	// AssetTypes overrides DefaultAssetTypes when non-empty.
	AssetTypes []string
}

// Validate ensures the provided search parameters are usable.
func (p SearchParams) Validate() error {
	if p.ItemType == "" {
		return fmt.Errorf("%w: item type is required", ErrInvalidParams)
	}
	if p.AOI == nil {
		return fmt.Errorf("%w: AOI geometry is required", ErrInvalidParams)
	}
	if p.CloudCover < 0 || p.CloudCover > 1 || math.IsNaN(p.CloudCover) {
		return fmt.Errorf("%w: cloud cover must be within [0, 1]", ErrInvalidParams)
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidParams)
	}
	return nil
}

func (p SearchParams) request() searchRequest {
	assets := p.AssetTypes
	if len(assets) == 0 {
		assets = DefaultAssetTypes
	}
	combined := And(
		GeometryFilter(p.AOI),
		DateRangeFilter(p.Start, p.End),
		CloudCoverFilter(p.CloudCover),
		AssetFilter(assets...),
	)
	return searchRequest{
		Name:      p.Name,
		ItemTypes: []string{p.ItemType},
		Filter:    combined,
	}
}

// Query streams search results lazily, following `_links._next` until the
// catalog is exhausted. Items arrive in page order, then within-page
// order. The first error ends the stream.
func (s *SearchService) Query(ctx context.Context, params SearchParams) iter.Seq2[*Feature, error] {
	return func(yield func(*Feature, error) bool) {
		if err := params.Validate(); err != nil {
			yield(nil, err)
			return
		}

		var page searchPage
		err := s.client.doJSON(ctx, http.MethodPost, endpoint(s.client.dataURL, "quick-search"), params.request(), &page)
		for {
			if err != nil {
				yield(nil, err)
				return
			}
			for _, f := range page.Features {
				if f == nil {
					continue
				}
				if !yield(f, nil) {
					return
				}
			}
			if page.Links.Next == "" {
				return
			}
			next, resolveErr := s.client.resolve(page.Links.Next)
			if resolveErr != nil {
				yield(nil, resolveErr)
				return
			}
			page = searchPage{}
			err = s.client.doJSON(ctx, http.MethodGet, next, nil, &page)
		}
	}
}

// All collects the full result stream into one slice.
func (s *SearchService) All(ctx context.Context, params SearchParams) ([]*Feature, error) {
	var features []*Feature
	for f, err := range s.Query(ctx, params) {
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

// SaveCSV runs the search to completion and writes the aggregated results
// to `<save_dir>/<item_type>_<name>.csv`. Nothing is written unless every
// page was fetched. The directory is created if absent.
func (s *SearchService) SaveCSV(ctx context.Context, params SearchParams, saveDir string) ([]*Feature, error) {
	features, err := s.All(ctx, params)
	if err != nil {
		return nil, err
	}
	path, err := writeResultsCSV(saveDir, params.ItemType, params.Name, features)
	if err != nil {
		return nil, err
	}
	if s.client.logger != nil {
		s.client.logger.Debugf("planet: saved %d results to %s", len(features), path)
	}
	return features, nil
}
