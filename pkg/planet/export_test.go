package planet

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsFor(t *testing.T) {
	assert.NotContains(t, columnsFor("PSScene4Band"), "usable_data")
	assert.Contains(t, columnsFor("REOrthoTile"), "usable_data")
	assert.Equal(t, commonColumns, columnsFor("SkySatCollect"), "unknown types use the common set")
}

func TestWriteResultsCSVDefaultsName(t *testing.T) {
	dir := t.TempDir()
	path, err := writeResultsCSV(dir, "PSScene4Band", "", []*Feature{{ID: "a"}})
	require.NoError(t, err)
	assert.Contains(t, path, "PSScene4Band_search.csv")
}

func TestWriteResultsCSVMissingProperties(t *testing.T) {
	dir := t.TempDir()
	path, err := writeResultsCSV(dir, "PSScene4Band", "sparse", []*Feature{{ID: "a"}})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[1][0])
	for _, cell := range records[1][1:] {
		assert.Empty(t, cell, "absent properties render as empty cells")
	}
}
