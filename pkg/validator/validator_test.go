package validator

import "testing"

func TestValidateAnalyzeRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		url   string
		days  int
		valid bool
	}{
		{
			name:  "Valid request",
			url:   "https://github.com/apache/spark",
			days:  7,
			valid: true,
		},
		{
			name:  "Missing url fails",
			url:   "",
			days:  7,
			valid: false,
		},
		{
			name:  "Non github url fails",
			url:   "https://example.org/apache/spark",
			days:  7,
			valid: false,
		},
		{
			name:  "Zero days fails",
			url:   "https://github.com/apache/spark",
			days:  0,
			valid: false,
		},
		{
			name:  "Negative days fails",
			url:   "https://github.com/apache/spark",
			days:  -1,
			valid: false,
		},
		{
			name:  "Window over a year fails",
			url:   "https://github.com/apache/spark",
			days:  MaxWindowDays + 1,
			valid: false,
		},
		{
			name:  "Window of exactly a year passes",
			url:   "https://github.com/apache/spark",
			days:  MaxWindowDays,
			valid: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := New()
			ValidateAnalyzeRequest(v, tt.url, tt.days)
			if v.Valid() != tt.valid {
				t.Fatalf("Valid() = %t, expected %t, errors: %v", v.Valid(), tt.valid, v.Errors)
			}
		})
	}
}

func TestMatchesGithubURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{
			name:     "Repository url matches",
			url:      "https://github.com/apache/spark",
			expected: true,
		},
		{
			name:     "Hyphenated repository matches",
			url:      "https://github.com/apache/spark-website",
			expected: true,
		},
		{
			name:     "Trailing path does not match",
			url:      "https://github.com/apache/spark/tree/master",
			expected: false,
		},
		{
			name:     "Organization url does not match",
			url:      "https://github.com/apache",
			expected: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MatchesGithubURL(tt.url); got != tt.expected {
				t.Fatalf("MatchesGithubURL(%q) = %t, expected %t", tt.url, got, tt.expected)
			}
		})
	}
}
