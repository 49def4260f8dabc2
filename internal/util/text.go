package util

import (
	"regexp"
	"strings"
)

var (
	reLineBreaks  = regexp.MustCompile(`[\r\n\v\f\x{85}\x{2028}\x{2029}]`)
	reSpaces      = regexp.MustCompile(`[\s\v\x1c-\x1f\p{Z}\x{85}]+`)
	reParenthesis = regexp.MustCompile(`\([^)]*\)`)
	reTotalPrefix = regexp.MustCompile(`^Total[\s\v\x1c-\x1f\p{Z}\x{85}]+`)
)

type labelOverride struct {
	match    func(string) bool
	replaced string
}

// Checked in order; the first match replaces the whole label.
var labelOverrides = []labelOverride{
	{match: func(s string) bool { return strings.Contains(s, "CAP divided by number of Lawyers") }, replaced: "Value per Lawyer"},
	{match: equals("Compensation of Non-Equity Partners"), replaced: "Compensation Non-Equity Partners"},
	{match: equals("Partners"), replaced: "Number of Partners"},
	{match: equals("Lawyers"), replaced: "Number of Lawyers"},
	{match: equals("Offices"), replaced: "Number of Offices"},
}

func equals(want string) func(string) bool {
	return func(s string) bool { return s == want }
}

// CleanColumnName maps an as-authored header to its canonical label:
//
//	"Revenue (millions)"                      -> "Revenue"
//	"Total Partners"                          -> "Number of Partners"
//	"Net Operating\nIncome"                   -> "Net Operating Income"
//	"CAP divided by number of Lawyers (VPL)"  -> "Value per Lawyer"
//
// It never fails; labels that clean to "" are returned as "".
func CleanColumnName(raw string) string {
	s := reLineBreaks.ReplaceAllString(raw, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reParenthesis.ReplaceAllString(s, "")
	s = reTotalPrefix.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	for _, o := range labelOverrides {
		if o.match(s) {
			s = o.replaced
			break
		}
	}
	return strings.TrimSpace(s)
}

// ColumnKey is the storage name of a canonical label: "Gross Revenue" -> "gross_revenue".
func ColumnKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// ColumnKeys applies ColumnKey to every label.
func ColumnKeys(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, ColumnKey(l))
	}
	return out
}
