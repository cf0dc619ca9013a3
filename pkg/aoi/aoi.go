// Package aoi builds the area-of-interest polygons fed into search and
// clip requests.
package aoi

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	// ErrInvalidInput is returned for malformed geometry parameters.
	ErrInvalidInput = errors.New("aoi: invalid input")
	// ErrFileNotFound is returned when the vector file path does not resolve.
	ErrFileNotFound = errors.New("aoi: file not found")
	// ErrIndexOutOfRange is returned when the feature index exceeds the
	// feature count.
	ErrIndexOutOfRange = errors.New("aoi: feature index out of range")
	// ErrUnsupportedGeometry is returned when a feature's geometry cannot
	// be represented as a single-ring polygon.
	ErrUnsupportedGeometry = errors.New("aoi: unsupported geometry")
)

// DefaultSquareSize is the side length, in decimal degrees, used by
// callers that want a roughly 30 m square at mid latitudes.
const DefaultSquareSize = 0.0004

// Square returns a closed square polygon centered on (lat, lon) with the
// given side length. Size is a flat offset in the same angular units as
// the coordinates; no geodesic correction is applied, so the ground
// footprint shrinks east-west with latitude.
func Square(lat, lon, size float64) (*geojson.Geometry, error) {
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return nil, fmt.Errorf("%w: size must be a positive finite number, got %v", ErrInvalidInput, size)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return nil, fmt.Errorf("%w: center coordinates must be finite", ErrInvalidInput)
	}

	half := size / 2
	ring := orb.Ring{
		{lon - half, lat + half},
		{lon + half, lat + half},
		{lon + half, lat - half},
		{lon - half, lat - half},
		{lon - half, lat + half},
	}
	return geojson.NewGeometry(orb.Polygon{ring}), nil
}

// FeatureGeometry extracts the geometry of the index-th feature (file
// order, zero-based) from a GeoJSON feature collection. Coordinates are
// returned in the file's native CRS. Only single-part polygons are
// representable; the outer ring is kept and holes are dropped.
func FeatureGeometry(path string, index int) (*geojson.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("aoi: parse %s: %w", path, err)
	}

	if index < 0 || index >= len(fc.Features) {
		return nil, fmt.Errorf("%w: index %d, file has %d features", ErrIndexOutOfRange, index, len(fc.Features))
	}

	switch geom := fc.Features[index].Geometry.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil, fmt.Errorf("%w: empty polygon at index %d", ErrUnsupportedGeometry, index)
		}
		return geojson.NewGeometry(orb.Polygon{geom[0]}), nil
	default:
		return nil, fmt.Errorf("%w: feature %d has geometry type %T", ErrUnsupportedGeometry, index, geom)
	}
}
