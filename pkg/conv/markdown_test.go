package conv

import (
	"strings"
	"testing"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		md       string
		contains []string
		excludes []string
	}{
		{
			name:     "bold survives",
			md:       "take **two tablets** daily",
			contains: []string{"<strong>two tablets</strong>"},
		},
		{
			name:     "code survives",
			md:       "dosage `10mg`",
			contains: []string{"<code>10mg</code>"},
		},
		{
			name:     "headings are stripped to text",
			md:       "# Medications",
			contains: []string{"Medications"},
			excludes: []string{"<h1>"},
		},
		{
			name:     "script is removed",
			md:       "<script>alert(1)</script>hello",
			contains: []string{"hello"},
			excludes: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.md))
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("output %q must not contain %q", got, bad)
				}
			}
		})
	}
}
