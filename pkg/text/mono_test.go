package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMonoMeasurer_Lines(t *testing.T) {
	m := MonoMeasurer{CellWidth: 1, LineHeight: 1}
	tests := []struct {
		name    string
		content string
		width   float64
		want    []string
	}{
		{"single line", "ab cd", 5, []string{"ab cd"}},
		{"wrap on token", "ab cd ef", 5, []string{"ab cd", "ef"}},
		{"hard break", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"wide runes", "日本語 x", 4, []string{"日本", "語 x"}},
		{"empty", "", 4, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Lines(tt.content, tt.width)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMonoMeasurer_Height(t *testing.T) {
	m := MonoMeasurer{CellWidth: 2, LineHeight: 10}
	if h := m.Height("aaaa bbbb cccc", 10); h != 30 {
		t.Errorf("expected 3 lines of 10, got %f", h)
	}
	if h := m.Height("", 10); h != 0 {
		t.Errorf("expected empty content to have no height, got %f", h)
	}
}

func TestTokenizeJoin(t *testing.T) {
	got := Tokenize("  alpha\tbeta\n gamma ")
	want := []string{"alpha", "beta", "gamma"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
	if JoinTokens(got) != "alpha beta gamma" {
		t.Errorf("unexpected join %q", JoinTokens(got))
	}
}
