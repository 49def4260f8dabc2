package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes the ranked rows as a console table: rank, the display
// columns, then year.
func RenderTable(w io.Writer, res Result) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	header := append([]string{"rank"}, res.Columns...)
	header = append(header, "year")
	tw.SetHeader(header)

	for _, row := range res.Rows {
		line := make([]string, 0, len(header))
		line = append(line, strconv.Itoa(row.Rank))
		for _, key := range res.Columns {
			line = append(line, formatValue(row.Fields[key]))
		}
		line = append(line, strconv.Itoa(row.Year))
		tw.Append(line)
	}
	tw.Render()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
