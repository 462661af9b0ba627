package textfilter

import (
	"testing"
)

func TestFilterClean(t *testing.T) {
	filter := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "multiple words",
			input:    "This is damn crap!",
			expected: "This is dang crud!",
		},
		{
			name:     "uppercase preserved",
			input:    "DAMN that bell!",
			expected: "DANG that bell!",
		},
		{
			name:     "title case preserved",
			input:    "Hell no, not the crypt",
			expected: "Heck no, not the crypt",
		},
		{
			name:     "partial words untouched",
			input:    "I love classical music",
			expected: "I love classical music",
		},
		{
			name:     "mixed case matched rune by rune",
			input:    "HeLl yeah",
			expected: "HeCk yeah",
		},
		{
			name:     "punctuation boundaries",
			input:    "What the hell?! That's damn eerie.",
			expected: "What the heck?! That's dang eerie.",
		},
		{
			name:     "clean text unchanged",
			input:    "The candle gutters in the draft.",
			expected: "The candle gutters in the draft.",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilterContains(t *testing.T) {
	filter := New()

	if !filter.Contains("what the hell") {
		t.Error("expected profanity to be detected")
	}
	if filter.Contains("a perfectly clean sentence") {
		t.Error("clean text flagged as profane")
	}
	if filter.Contains("classical assessment") {
		t.Error("substring match should not count")
	}
}

func TestRatingFiltered(t *testing.T) {
	tests := []struct {
		rating string
		want   bool
	}{
		{"G", true},
		{"PG", true},
		{"PG13", true},
		{"PG-13", true},
		{"pg-13", true},
		{" pg ", true},
		{"R", false},
		{"M", false},
		{"", false},
		{"unrated", false},
	}

	for _, tt := range tests {
		if got := RatingFiltered(tt.rating); got != tt.want {
			t.Errorf("RatingFiltered(%q) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}
