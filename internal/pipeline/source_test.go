package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestFileSourceCSV(t *testing.T) {
	dir := t.TempDir()
	content := "\ufeffFirm Name,\"Gross Revenue\n(millions)\",Total Partners\nKirkland,\"7,220\",600\nLatham,5740\n"
	if err := os.WriteFile(filepath.Join(dir, "Amlaw 2023.csv"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(dir, "Amlaw %d.csv", "")
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := src.Read(2023)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Year != 2023 || !reflect.DeepEqual(tbl.Columns, []string{"Firm Name", "Gross Revenue\n(millions)", "Total Partners"}) {
		t.Fatalf("unexpected table %+v", tbl)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][1] != "7,220" || len(tbl.Rows[1]) != 2 {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestFileSourceXLSX(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "Amlaw 2024.xlsx"), [][]any{
		{},
		{"Firm Name", "Revenue per Lawyer (RPL)", "Lawyers"},
		{"Kirkland", 2500000, 3500},
		{"Latham", 2100000, 3300},
	})

	src, err := NewFileSource(dir, "Amlaw %d.xlsx", "")
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := src.Read(2024)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"Firm Name", "Revenue per Lawyer (RPL)", "Lawyers"}) {
		t.Fatalf("columns=%v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[1][0] != "Latham" || tbl.Rows[1][2] != "3300" {
		t.Fatalf("rows=%v", tbl.Rows)
	}
}

func TestFileSourceMissingYear(t *testing.T) {
	src, err := NewFileSource(t.TempDir(), "Amlaw %d.csv", "")
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Read(2019)
	if !errors.Is(err, ErrSourceUnavailable) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v", err)
	}
	var se *SourceError
	if !errors.As(err, &se) || se.Year != 2019 {
		t.Fatalf("err=%v", err)
	}
}

func TestFileSourceEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Amlaw 2020.csv"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	src, _ := NewFileSource(dir, "Amlaw %d.csv", "")
	if _, err := src.Read(2020); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err=%v", err)
	}
}

func TestNewFileSourcePattern(t *testing.T) {
	if _, err := NewFileSource(".", "Amlaw.csv", ""); err == nil {
		t.Fatal("expected pattern error")
	}
	src, err := NewFileSource("data", "Amlaw %d.tsv", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Read(2019); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err=%v", err)
	}
}
