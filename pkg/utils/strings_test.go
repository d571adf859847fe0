package utils

import "testing"

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Women's Korean Top!", "womens-korean-top"},
		{"  Oversized   Tee  ", "oversized-tee"},
		{"Café-Knit Sweater", "caf-knit-sweater"},
		{"---", ""},
		{"Drop 02 / Monsoon", "drop-02-monsoon"},
	}
	for _, tc := range cases {
		if got := GenerateSlug(tc.in); got != tc.want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseInt(t *testing.T) {
	if got := ParseInt("", 7); got != 7 {
		t.Errorf("empty string: got %d, want fallback 7", got)
	}
	if got := ParseInt("42", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if got := ParseInt("abc", 7); got != 7 {
		t.Errorf("invalid: got %d, want fallback 7", got)
	}
}
