package textutil_test

import (
	"testing"

	"lorestream/internal/textutil"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Early Hominins", "earlyhominins"},
		{"  The Bronze Age  ", "thebronzeage"},
		{"early-hominins", "earlyhominins"},
		{"EARLY_HOMININS!", "earlyhominins"},
		{"Holocène", "holocene"},
		{"", ""},
		{"   ", ""},
		{"4.5M - 3M", "45m3m"},
	}
	for _, tc := range cases {
		if got := textutil.NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripDateRange(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Early Hominins (4.5M - 3M)", "Early Hominins"},
		{"Early Hominins", "Early Hominins"},
		{"  Iron Age (1200 BC)  ", "Iron Age"},
		{"No Range Here", "No Range Here"},
	}
	for _, tc := range cases {
		if got := textutil.StripDateRange(tc.in); got != tc.want {
			t.Errorf("StripDateRange(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
