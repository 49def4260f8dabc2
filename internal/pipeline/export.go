package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"amlaw/internal"
	"amlaw/internal/util"
)

// ExportHeader is the combined file layout: storage keys of the schema, then year.
func ExportHeader(table internal.UnifiedTable) []string {
	return append(util.ColumnKeys(table.Schema), internal.YearColumn)
}

func ExportTableToCSV(table internal.UnifiedTable, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	_ = w.Write(ExportHeader(table))
	for _, rec := range table.Records {
		row := make([]string, 0, len(rec.Values)+1)
		row = append(row, rec.Values...)
		row = append(row, strconv.Itoa(rec.Year))
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ExportTableToXLSX(table internal.UnifiedTable, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range ExportHeader(table) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range table.Records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		for j, v := range rec.Values {
			if n, ok := util.ParseNumber(v); ok {
				set(j+1, n)
				continue
			}
			set(j+1, v)
		}
		set(len(rec.Values)+1, rec.Year)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ReadCombinedCSV loads a file written by ExportTableToCSV. The year column
// may sit anywhere in the header; every other column becomes a schema label.
func ReadCombinedCSV(path string) (internal.UnifiedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return internal.UnifiedTable{}, err
	}
	defer f.Close()

	header, rows, err := readCSV(f)
	if err != nil {
		return internal.UnifiedTable{}, fmt.Errorf("read %s: %w", path, err)
	}

	yearIdx := -1
	schema := []string{}
	for i, h := range header {
		if strings.TrimSpace(h) == internal.YearColumn && yearIdx < 0 {
			yearIdx = i
			continue
		}
		schema = append(schema, h)
	}
	if yearIdx < 0 {
		return internal.UnifiedTable{}, fmt.Errorf("%s: no %q column", path, internal.YearColumn)
	}

	table := internal.UnifiedTable{Schema: schema, Records: make([]internal.UnifiedRecord, 0, len(rows))}
	for n, row := range rows {
		if yearIdx >= len(row) {
			return internal.UnifiedTable{}, fmt.Errorf("%s: row %d has no year", path, n+2)
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearIdx]))
		if err != nil {
			return internal.UnifiedTable{}, fmt.Errorf("%s: row %d: invalid year %q", path, n+2, row[yearIdx])
		}
		values := make([]string, 0, len(schema))
		for i := range header {
			if i == yearIdx {
				continue
			}
			if i < len(row) {
				values = append(values, row[i])
			} else {
				values = append(values, "")
			}
		}
		table.Records = append(table.Records, internal.UnifiedRecord{Year: year, Values: values})
	}
	return table, nil
}
