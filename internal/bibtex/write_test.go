// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"testing"
)

func TestFormat(t *testing.T) {
	entry := &Entry{
		Type: "article",
		Key:  "Smith2020",
		Fields: map[string]string{
			"author":  "Smith, John",
			"title":   "A Study",
			"year":    "2020",
			"doi":     "10.1/xyz",
			"journal": "Journal of Studies",
		},
	}

	tests := []struct {
		name      string
		allowlist []string
		want      string
	}{
		{
			name:      "allowlist order is preserved",
			allowlist: []string{"title", "author", "year"},
			want: `@article{Smith2020,
  title = {A Study},
  author = {Smith, John},
  year = {2020},
}
`,
		},
		{
			name:      "missing fields are skipped",
			allowlist: []string{"editor", "title", "isbn"},
			want: `@article{Smith2020,
  title = {A Study},
}
`,
		},
		{
			name:      "empty allowlist yields a bare entry",
			allowlist: nil,
			want: `@article{Smith2020,
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(entry, tt.allowlist)
			if got != tt.want {
				t.Errorf("Format() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}
