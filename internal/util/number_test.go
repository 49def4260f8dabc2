package util

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "1234", want: 1234},
		{name: "dollars with thousands", input: "$2,345.6", want: 2345.6},
		{name: "percent", input: "35%", want: 35},
		{name: "thousand with space", input: "1 000", want: 1000},
		{name: "thousand with nbsp", input: "1\u00a0000", want: 1000},
		{name: "decimal comma", input: "1,5", want: 1.5},
		{name: "accounting negative", input: "(12.5)", want: -12.5},
		{name: "minus dollars", input: "-$3", want: -3},
		{name: "exponent", input: "1.5e3", want: 1500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseNumber(tc.input)
			if !ok {
				t.Fatalf("not parsed")
			}
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestParseNumberRejects(t *testing.T) {
	for _, in := range []string{"", "  ", "n/a", "Kirkland & Ellis", "NaN", "Inf", "0x10", "1,2,3"} {
		if _, ok := ParseNumber(in); ok {
			t.Fatalf("%q should not parse", in)
		}
	}
}
