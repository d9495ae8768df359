package cli

import "testing"

func TestSuggest(t *testing.T) {
	commands := []string{"log", "cat-file", "diff", "status", "version", "branch"}

	tests := []struct {
		input string
		want  string
	}{
		{"dif", "diff"},        // missing trailing char, still a subsequence
		{"stat", "status"},     // prefix
		{"sttus", "status"},    // missing char, subsequence preserved
		{"brnch", "branch"},    // missing char
		{"version", "version"}, // exact match
		{"zzzzzzzzzz", ""},     // no match at all
		{"", ""},               // empty input
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Suggest(tt.input, commands)
			if got != tt.want {
				t.Errorf("Suggest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSuggestEmptyCandidates(t *testing.T) {
	if got := Suggest("log", nil); got != "" {
		t.Errorf("Suggest with no candidates = %q, want empty", got)
	}
}
