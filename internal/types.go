package internal

// YearColumn is the provenance column appended to every merged record.
const YearColumn = "year"

// RawTable is one source year as authored: header labels in file order and
// positional rows. Labels may repeat and rows may be shorter than Columns.
type RawTable struct {
	Year    int
	Path    string
	Columns []string
	Rows    [][]string
}

// NormalizedTable is a RawTable with its headers cleaned. Index maps each
// canonical label to the last column position that produced it.
type NormalizedTable struct {
	Year    int
	Cleaned []string
	Index   map[string]int
}

// Labels returns the set of canonical labels present in the table.
func (t NormalizedTable) Labels() map[string]struct{} {
	out := make(map[string]struct{}, len(t.Index))
	for label := range t.Index {
		out[label] = struct{}{}
	}
	return out
}

type UnifiedRecord struct {
	Year   int
	Values []string
}

// UnifiedTable holds one Values slot per Schema label for every record.
type UnifiedTable struct {
	Schema  []string
	Records []UnifiedRecord
}

// Years returns the distinct years of the table in record order.
func (t UnifiedTable) Years() []int {
	seen := map[int]struct{}{}
	out := []int{}
	for _, r := range t.Records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	return out
}

// CountByYear returns the number of records contributed by each year.
func (t UnifiedTable) CountByYear() map[int]int {
	out := map[int]int{}
	for _, r := range t.Records {
		out[r.Year]++
	}
	return out
}

type RankedRow struct {
	Rank   int            `json:"rank"`
	Year   int            `json:"year"`
	Score  *float64       `json:"score"`
	Fields map[string]any `json:"fields"`
}
