package ui

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncate_UTF8Safe(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "zero max", input: "hello", maxLen: 0, want: ""},
		{name: "fits", input: "hello", maxLen: 10, want: "hello"},
		{name: "ellipsis", input: "components/", maxLen: 6, want: "compo…"},
		{name: "wide runes", input: "日本語のファイル.js", maxLen: 7, want: "日本語…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q; want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate output is not valid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.maxLen {
				t.Fatalf("truncate output is %d cells wide; max %d", w, tt.maxLen)
			}
		})
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"src/components/", 20, "src/components/"},
		{"src/components/", 8, "…onents/"},
		{"src/components/", 1, "…"},
		{"src/components/", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateLeft(tt.input, tt.max); got != tt.want {
			t.Errorf("truncateLeft(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("日本", 5); got != "日本 " {
		t.Errorf("padRight with wide runes = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight must not cut, got %q", got)
	}
}
