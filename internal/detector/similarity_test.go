package detector

import (
	"math"
	"testing"
)

func TestTitleSimilarityJaccard(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want float64
	}{
		{"alpha beta gamma", "alpha beta gamma", 1.0},
		{"alpha beta", "gamma delta", 0.0},
		{"alpha beta gamma delta", "alpha beta gamma epsilon", 3.0 / 5.0},
		{"Alpha, Beta!", "alpha beta", 1.0},
		{"", "alpha", 0.0},
		{"", "", 0.0},
	}
	for _, tc := range cases {
		got := titleSimilarity(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("similarity(%q, %q) = %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTitleSimilarityIgnoresTokenOrder(t *testing.T) {
	t.Parallel()

	if got := titleSimilarity("how to build a parser", "a parser to build how"); got != 1.0 {
		t.Fatalf("similarity = %f, want 1.0 for reordered tokens", got)
	}
}

func TestCleanTitleSuffixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"Scaling Postgres - by Jane Doe", "Scaling Postgres"},
		{"Scaling Postgres — by Jane Doe", "Scaling Postgres"},
		{"Weekly Roundup - The Pragmatic Newsletter", "Weekly Roundup"},
		{"Interview with the CTO | TechSite", "Interview with the CTO"},
		{"No Suffix Here", "No Suffix Here"},
		{"Self-hosting 101", "Self-hosting 101"},
	}
	for _, tc := range cases {
		if got := cleanTitle(tc.in); got != tc.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanTitleKeepsAllStrippedTitle(t *testing.T) {
	t.Parallel()

	if got := cleanTitle(" | OnlySite"); got != "| OnlySite" {
		t.Fatalf("cleanTitle collapsed the whole title to %q", got)
	}
}
