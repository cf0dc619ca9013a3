package planet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// Per-item-type metadata columns written after the leading id column. The
// property sets differ between products.
var resultColumns = map[string][]string{
	"PSScene4Band": {"acquired", "cloud_cover", "origin_x", "origin_y", "view_angle", "sun_azimuth", "sun_elevation", "anomalous_pixels"},
	"PSOrthoTile":  {"acquired", "cloud_cover", "origin_x", "origin_y", "view_angle", "sun_azimuth", "sun_elevation", "anomalous_pixels", "usable_data"},
	"REOrthoTile":  {"acquired", "cloud_cover", "origin_x", "origin_y", "view_angle", "sun_azimuth", "sun_elevation", "anomalous_pixels", "usable_data"},
}

// commonColumns is the fallback for item types without a preset.
var commonColumns = []string{"acquired", "cloud_cover"}

func columnsFor(itemType string) []string {
	if cols, ok := resultColumns[itemType]; ok {
		return cols
	}
	return commonColumns
}

// writeResultsCSV writes one row per feature under saveDir, creating the
// directory when needed, and returns the written file path.
func writeResultsCSV(saveDir, itemType, name string, features []*Feature) (string, error) {
	if name == "" {
		name = "search"
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", fmt.Errorf("create save dir: %w", err)
	}

	path := filepath.Join(saveDir, fmt.Sprintf("%s_%s.csv", itemType, name))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	cols := columnsFor(itemType)
	w := csv.NewWriter(f)

	header := append([]string{"id"}, cols...)
	if err := w.Write(header); err != nil {
		f.Close()
		return "", err
	}
	for _, feat := range features {
		row := make([]string, 0, len(header))
		row = append(row, feat.ID)
		for _, col := range cols {
			row = append(row, formatValue(feat.Property(col)))
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
