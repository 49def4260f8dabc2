package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amlaw/internal/storage"
)

func sampleTable() storage.StoredTable {
	return storage.StoredTable{
		Name: "amlaw200",
		Hash: "h1",
		Columns: []storage.Column{
			{Key: "firm_name", Label: "Firm Name"},
			{Key: "gross_revenue", Label: "Gross Revenue", Numeric: true},
			{Key: "leverage", Label: "Leverage"},
		},
		Rows: []storage.StoredRow{
			{Year: 2023, Values: []any{"Latham", 5740.0, "1.9"}},
			{Year: 2023, Values: []any{"Kirkland", 7220.0, "2.4"}},
			{Year: 2023, Values: []any{"Unknown LLP", nil, nil}},
			{Year: 2023, Values: []any{"DLA Piper", 5740.0, "n/a"}},
			{Year: 2024, Values: []any{"Kirkland", 8800.0, "2.5"}},
			{Year: 2019, Values: []any{"Baker", 3000.0, "1.0"}},
		},
	}
}

func TestTopN(t *testing.T) {
	res, err := TopN(sampleTable(), Query{Year: 2023, N: 3, Field: "gross_revenue", Columns: []string{"firm_name", "gross_revenue", "profit_margin"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"firm_name", "gross_revenue"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Kirkland", res.Rows[0].Fields["firm_name"])
	assert.Equal(t, "Latham", res.Rows[1].Fields["firm_name"], "ties keep stored order")
	assert.Equal(t, "DLA Piper", res.Rows[2].Fields["firm_name"])
	for i, r := range res.Rows {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, 2023, r.Year)
	}
}

func TestTopNUnscoredLast(t *testing.T) {
	res, err := TopN(sampleTable(), Query{Year: 2023, N: 10, Field: "gross_revenue"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, "Unknown LLP", res.Rows[3].Fields["firm_name"])
	assert.Nil(t, res.Rows[3].Score)
	assert.Len(t, res.Columns, 3, "empty column list means all columns")
}

func TestTopNTextFieldParsed(t *testing.T) {
	res, err := TopN(sampleTable(), Query{Year: 2023, N: 2, Field: "leverage"})
	require.NoError(t, err)
	assert.Equal(t, "Kirkland", res.Rows[0].Fields["firm_name"])
	require.NotNil(t, res.Rows[0].Score)
	assert.Equal(t, 2.4, *res.Rows[0].Score)
}

func TestTopNErrors(t *testing.T) {
	_, err := TopN(sampleTable(), Query{Year: 2000, N: 5, Field: "gross_revenue"})
	assert.True(t, errors.Is(err, ErrUnknownYear))

	_, err = TopN(sampleTable(), Query{Year: 2023, N: 0, Field: "gross_revenue"})
	assert.True(t, errors.Is(err, ErrInvalidLimit))

	_, err = TopN(sampleTable(), Query{Year: 2023, N: 5, Field: "profit_margin"})
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestTopNNoDataColumns(t *testing.T) {
	table := storage.StoredTable{Rows: []storage.StoredRow{{Year: 2020, Values: []any{}}, {Year: 2020, Values: []any{}}, {Year: 2021, Values: []any{}}}}
	res, err := TopN(table, Query{Year: 2020, N: 5, Field: "gross_revenue", Columns: []string{"firm_name"}})
	require.NoError(t, err)
	assert.Empty(t, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 2, res.Rows[1].Rank)
}

func TestYears(t *testing.T) {
	assert.Equal(t, []int{2024, 2023, 2019}, Years(sampleTable()))
}

func TestRenderTable(t *testing.T) {
	res, err := TopN(sampleTable(), Query{Year: 2024, N: 1, Field: "gross_revenue", Columns: []string{"firm_name", "gross_revenue"}})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	RenderTable(buf, res)
	out := buf.String()
	assert.Contains(t, out, "rank")
	assert.Contains(t, out, "gross_revenue")
	assert.Contains(t, out, "Kirkland")
	assert.Contains(t, out, "8800")
}
