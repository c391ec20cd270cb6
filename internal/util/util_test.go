// internal/util/util_test.go
package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sample.txt")
	data := []byte("test payload")

	if err := WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("unexpected file contents: got %q want %q", got, data)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 5, want: "hell…"},
		{name: "multibyte truncation", in: "こんにちは世界", max: 4, want: "こんに…"},
		{name: "zero width", in: "hello", max: 0, want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestPadding(t *testing.T) {
	t.Parallel()

	if got := PadRight("ab", 4); got != "ab  " {
		t.Fatalf("PadRight=%q", got)
	}
	if got := PadLeft("ab", 4); got != "  ab" {
		t.Fatalf("PadLeft=%q", got)
	}
	if got := PadLeft("abcdef", 4); got != "abcdef" {
		t.Fatalf("PadLeft must not truncate, got %q", got)
	}
	if got := Center("7", 3); got != " 7 " {
		t.Fatalf("Center=%q", got)
	}
	if got := Center("1250", 3); got != "12…" {
		t.Fatalf("Center truncation=%q", got)
	}
	if got := PadRight("日本", 6); got != "日本  " {
		t.Fatalf("PadRight should count cells for wide runes, got %q", got)
	}
	if got := PadLeft("\x1b[31mab\x1b[0m", 4); got != "  \x1b[31mab\x1b[0m" {
		t.Fatalf("PadLeft should ignore escape codes, got %q", got)
	}
	if RuneLen("×") != 1 {
		t.Fatalf("RuneLen counts runes, got %d", RuneLen("×"))
	}
}

func TestWrapToWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			name:  "wrap words",
			text:  "one two three four",
			width: 10,
			want:  "one two\nthree four",
		},
		{
			name:  "long word split",
			text:  "supercalifragilisticexpialidocious",
			width: 5,
			want: strings.Join([]string{
				"super",
				"calif",
				"ragil",
				"istic",
				"expia",
				"lidoc",
				"ious",
			}, "\n"),
		},
		{
			name:  "preserve blank lines",
			text:  "para one\n\npara two",
			width: 20,
			want:  "para one\n\npara two",
		},
		{
			name:  "non-positive width no-op",
			text:  "no wrap",
			width: 0,
			want:  "no wrap",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapToWidth(tt.text, tt.width); got != tt.want {
				t.Fatalf("WrapToWidth(%q,%d)=%q want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
