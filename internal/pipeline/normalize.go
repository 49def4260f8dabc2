package pipeline

import (
	"amlaw/internal"
	"amlaw/internal/util"
)

// NormalizeColumns cleans every header of t. When two headers clean to the
// same label the later column wins.
func NormalizeColumns(t internal.RawTable) internal.NormalizedTable {
	out := internal.NormalizedTable{
		Year:    t.Year,
		Cleaned: make([]string, 0, len(t.Columns)),
		Index:   make(map[string]int, len(t.Columns)),
	}
	for i, raw := range t.Columns {
		label := util.CleanColumnName(raw)
		out.Cleaned = append(out.Cleaned, label)
		out.Index[label] = i
	}
	return out
}
