package reducer

import "testing"

func TestParseGroupSize(t *testing.T) {
	cases := []struct {
		input string
		want  int
		ok    bool
	}{
		{"7", 7, true},
		{" 12 ", 12, true},
		{"seven", 7, true},
		{"twenty", 20, true},
		{"twenty five", 25, true},
		{"twenty-five", 25, true},
		{"300", 300, true},
		{"301", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"7 people", 7, true},
		{"about ten of us", 10, true},
		{"maybe fifteen guys", 15, true},
		{"a dozen", 12, true},
		{"one hundred", 100, true},
		{"we are seven hungry people", 0, false},
		{"next friday", 0, false},
		{"", 0, false},
		{"7 or 8", 0, false},
		{"yes", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseGroupSize(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseGroupSize(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
