package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"amlaw/internal"
)

// Source returns the raw table for one year.
type Source interface {
	Read(year int) (internal.RawTable, error)
}

// FileSource reads "<Dir>/<Pattern>" with the year substituted for %d.
// The extension selects the parser: .csv, or .xlsx/.xlsm through excelize.
type FileSource struct {
	Dir     string
	Pattern string
	Sheet   string
}

func NewFileSource(dir, pattern, sheet string) (*FileSource, error) {
	if strings.Count(pattern, "%d") != 1 {
		return nil, fmt.Errorf("source pattern must contain exactly one %%d: %q", pattern)
	}
	return &FileSource{Dir: dir, Pattern: pattern, Sheet: sheet}, nil
}

func (s *FileSource) Path(year int) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, year))
}

func (s *FileSource) Read(year int) (internal.RawTable, error) {
	path := s.Path(year)
	var (
		header []string
		rows   [][]string
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		header, rows, err = readCSVFile(path)
	case ".xlsx", ".xlsm":
		header, rows, err = readXLSXFile(path, s.Sheet)
	default:
		err = fmt.Errorf("unsupported source extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return internal.RawTable{}, &SourceError{Year: year, Path: path, Err: err}
	}
	return internal.RawTable{Year: year, Path: path, Columns: header, Rows: rows}, nil
}

func readCSVFile(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return splitHeader(records)
}

func readXLSXFile(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	return splitHeader(rows)
}

// splitHeader takes the first row with any content as the header. A source
// without one is unreadable.
func splitHeader(records [][]string) ([]string, [][]string, error) {
	for i, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		header := make([]string, len(rec))
		copy(header, rec)
		header[0] = strings.TrimPrefix(header[0], "\ufeff")

		rows := make([][]string, 0, len(records)-i-1)
		for _, r := range records[i+1:] {
			if len(r) == 0 {
				continue
			}
			rows = append(rows, r)
		}
		return header, rows, nil
	}
	return nil, nil, errors.New("no header row")
}

func isBlankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
