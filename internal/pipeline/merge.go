package pipeline

import (
	"fmt"
	"sort"

	"amlaw/internal"
)

// MergeYear projects every row of t onto schema, keeping row order, and
// stamps the year. Cells missing from short rows come back as "".
func MergeYear(t internal.RawTable, schema []string) ([]internal.UnifiedRecord, error) {
	return mergeNormalized(t, NormalizeColumns(t), schema)
}

func mergeNormalized(t internal.RawTable, norm internal.NormalizedTable, schema []string) ([]internal.UnifiedRecord, error) {
	positions := make([]int, len(schema))
	for i, label := range schema {
		pos, ok := norm.Index[label]
		if !ok {
			return nil, fmt.Errorf("%w: year=%d label=%q", ErrSchemaInvariant, t.Year, label)
		}
		positions[i] = pos
	}

	out := make([]internal.UnifiedRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		values := make([]string, len(positions))
		for i, pos := range positions {
			if pos < len(row) {
				values[i] = row[pos]
			}
		}
		out = append(out, internal.UnifiedRecord{Year: t.Year, Values: values})
	}
	return out, nil
}

// MergeAll reconciles headers across every table, keeps the labels common to
// all of them and concatenates the rows in ascending year order.
func MergeAll(tables []internal.RawTable) (internal.UnifiedTable, error) {
	ordered := make([]internal.RawTable, len(tables))
	copy(ordered, tables)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Year < ordered[j].Year })

	normalized := make([]internal.NormalizedTable, 0, len(ordered))
	labelSets := make(map[int]map[string]struct{}, len(ordered))
	for _, t := range ordered {
		if _, dup := labelSets[t.Year]; dup {
			return internal.UnifiedTable{}, fmt.Errorf("%w: %d", ErrDuplicateYear, t.Year)
		}
		norm := NormalizeColumns(t)
		normalized = append(normalized, norm)
		labelSets[t.Year] = norm.Labels()
	}

	schema := IntersectSchema(labelSets)
	unified := internal.UnifiedTable{Schema: schema, Records: []internal.UnifiedRecord{}}
	for i, t := range ordered {
		records, err := mergeNormalized(t, normalized[i], schema)
		if err != nil {
			return internal.UnifiedTable{}, err
		}
		unified.Records = append(unified.Records, records...)
	}
	return unified, nil
}
