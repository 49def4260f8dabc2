package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"amlaw/internal"
	"amlaw/internal/config"
	"amlaw/internal/storage"
)

func sheetRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	return rows
}

func TestExportXLSXFromStore(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(tmp, "amlaw.db"), TableName: "amlaw200"}

	db, err := storage.OpenConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, db.ReplaceTable(cfg.TableName, internal.UnifiedTable{
		Schema: []string{"Firm Name", "Gross Revenue"},
		Records: []internal.UnifiedRecord{
			{Year: 2023, Values: []string{"Kirkland", "7,220"}},
			{Year: 2024, Values: []string{"Latham", "5740.5"}},
		},
	}))
	require.NoError(t, db.Close())

	out := filepath.Join(tmp, "out", "combined.xlsx")
	n, err := exportXLSX(cfg, "", out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := sheetRows(t, out)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"firm_name", "gross_revenue", "year"}, rows[0])
	assert.Equal(t, []string{"Kirkland", "7220", "2023"}, rows[1])
	assert.Equal(t, []string{"Latham", "5740.5", "2024"}, rows[2])
}

func TestExportXLSXFromCSV(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "combined_amlaw.csv")
	require.NoError(t, os.WriteFile(input, []byte("firm_name,year\nKirkland,2021\n"), 0o644))

	out := filepath.Join(tmp, "combined.xlsx")
	n, err := exportXLSX(config.Config{}, input, out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"firm_name", "year"}, sheetRows(t, out)[0])
}

func TestExportXLSXMissingTable(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(tmp, "amlaw.db"), TableName: "amlaw200"}
	_, err := exportXLSX(cfg, "", filepath.Join(tmp, "x.xlsx"))
	assert.ErrorIs(t, err, storage.ErrTableNotFound)
}
