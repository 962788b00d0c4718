package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  `{"error":"invalid_grant"}`,
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  `{"error":"invalid_grant"}`,
			limit:  100,
			expect: `{"error":"invalid_grant"}`,
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "bad_authorization",
			limit:  3,
			expect: "bad...",
		},
		{
			name:   "flattens multiline bodies",
			input:  "{\n  \"errors\": [\n    {\"type\": \"oauth\"}\n  ]\n}\n",
			limit:  100,
			expect: `{ "errors": [ {"type": "oauth"} ] }`,
		},
		{
			name:   "counts runes not bytes",
			input:  "  Вакансия закрыта  ",
			limit:  8,
			expect: "Вакансия...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
