package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeRosterWorkbook(t *testing.T, sheets map[string][]string, order []string) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, name := range order {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, v := range sheets[name] {
			sheet.AddRow().AddCell().Value = v
		}
	}
	path := filepath.Join(t.TempDir(), "rosters.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadRosters(t *testing.T) {
	path := writeRosterWorkbook(t, map[string][]string{
		"Taylar": {"Customer ID", "100", "101"},
		"Nika":   {"Customer ID", "200"},
		"House":  {"300", "301"},
	}, []string{"Taylar", "Nika", "House"})

	rosters, catchAll, err := LoadRosters(path)
	require.NoError(t, err)

	require.Len(t, rosters, 2)
	assert.Equal(t, "Taylar", rosters[0].Owner)
	assert.Equal(t, []int{100, 101}, rosters[0].CustomerIDs)
	assert.Equal(t, "Nika", rosters[1].Owner)
	assert.Equal(t, []int{200}, rosters[1].CustomerIDs)
	assert.Equal(t, []int{300, 301}, catchAll)
}

func TestLoadRostersSheetOrderIsRank(t *testing.T) {
	path := writeRosterWorkbook(t, map[string][]string{
		"Nika":   {"200"},
		"Taylar": {"100"},
	}, []string{"Nika", "Taylar"})

	rosters, _, err := LoadRosters(path)
	require.NoError(t, err)
	require.Len(t, rosters, 2)
	assert.Equal(t, "Nika", rosters[0].Owner)
}

func TestLoadRostersCatchAllCaseInsensitive(t *testing.T) {
	path := writeRosterWorkbook(t, map[string][]string{
		"house": {"300"},
	}, []string{"house"})

	rosters, catchAll, err := LoadRosters(path)
	require.NoError(t, err)
	assert.Empty(t, rosters)
	assert.Equal(t, []int{300}, catchAll)
}

func TestLoadRostersMissingFile(t *testing.T) {
	_, _, err := LoadRosters("/nonexistent/rosters.xlsx")
	assert.Error(t, err)
}
