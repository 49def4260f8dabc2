package report

import (
	"errors"
	"fmt"
	"sort"

	"amlaw/internal"
	"amlaw/internal/storage"
	"amlaw/internal/util"
)

var (
	ErrUnknownYear  = errors.New("year not present in table")
	ErrInvalidLimit = errors.New("result count must be a positive integer")
	ErrUnknownField = errors.New("ranking field not present in table")
)

type Query struct {
	Year  int
	N     int
	Field string
	// Columns limits the fields of each row. Unknown names are skipped and an
	// empty list means every stored column.
	Columns []string
}

type Result struct {
	Year    int                  `json:"year"`
	Field   string               `json:"field"`
	Columns []string             `json:"columns"`
	Rows    []internal.RankedRow `json:"rows"`
}

// Years returns the distinct years of the table, newest first.
func Years(table storage.StoredTable) []int {
	seen := map[int]struct{}{}
	out := []int{}
	for _, r := range table.Rows {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// TopN keeps the rows of q.Year, orders them by q.Field descending and ranks
// the first q.N from 1. Equal scores keep stored order; rows without a numeric
// score sort last.
func TopN(table storage.StoredTable, q Query) (Result, error) {
	if q.N < 1 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidLimit, q.N)
	}
	// A table without data columns still lists its rows, unscored.
	field := table.ColumnIndex(q.Field)
	if field < 0 && len(table.Columns) > 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownField, q.Field)
	}

	type scored struct {
		row   storage.StoredRow
		score *float64
	}
	candidates := []scored{}
	for _, r := range table.Rows {
		if r.Year != q.Year {
			continue
		}
		c := scored{row: r}
		if field >= 0 {
			c.score = scoreOf(r.Values[field])
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrUnknownYear, q.Year)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].score, candidates[j].score
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	if len(candidates) > q.N {
		candidates = candidates[:q.N]
	}

	cols := displayColumns(table, q.Columns)
	out := Result{Year: q.Year, Field: q.Field, Columns: cols, Rows: make([]internal.RankedRow, 0, len(candidates))}
	for i, c := range candidates {
		fields := make(map[string]any, len(cols))
		for _, key := range cols {
			fields[key] = c.row.Values[table.ColumnIndex(key)]
		}
		out.Rows = append(out.Rows, internal.RankedRow{Rank: i + 1, Year: c.row.Year, Score: c.score, Fields: fields})
	}
	return out, nil
}

func scoreOf(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		if n, ok := util.ParseNumber(x); ok {
			return &n
		}
	}
	return nil
}

func displayColumns(table storage.StoredTable, wanted []string) []string {
	out := []string{}
	if len(wanted) == 0 {
		for _, c := range table.Columns {
			out = append(out, c.Key)
		}
		return out
	}
	for _, key := range wanted {
		if table.ColumnIndex(key) >= 0 {
			out = append(out, key)
		}
	}
	return out
}
