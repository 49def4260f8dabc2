package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	reThousandsSpace = regexp.MustCompile(`^\d{1,3}(?: \d{3})+(?:\.\d+)?$`)
	reDecimalComma   = regexp.MustCompile(`^\d+,\d{1,2}$`)
	reDecimal        = regexp.MustCompile(`^(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// ParseNumber reads a metric cell such as "$2,345.6", "35%", "1 234" or the
// accounting negative "(12.5)". Empty and non-numeric cells report false.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(cell, "\u00A0", " "))
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)

	token := normalizeNumericToken(s)
	if !reDecimal.MatchString(token) {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func normalizeNumericToken(token string) string {
	switch {
	case reThousandsComma.MatchString(token):
		return strings.ReplaceAll(token, ",", "")
	case reThousandsSpace.MatchString(token):
		return strings.ReplaceAll(token, " ", "")
	case reDecimalComma.MatchString(token):
		return strings.ReplaceAll(token, ",", ".")
	}
	return token
}
