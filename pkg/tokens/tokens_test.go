package tokens

import "testing"

func TestHeuristicCounter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single rune", "a", 1},
		{"exactly four runes", "abcd", 1},
		{"five runes rounds up", "abcde", 2},
		{"multibyte runes counted as runes", "日本語です", 1},
	}

	c := HeuristicCounter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeuristicCounter_NeverZeroForNonEmpty(t *testing.T) {
	c := HeuristicCounter{}
	if c.Count("x") == 0 {
		t.Fatal("non-empty text must cost at least one token")
	}
}
