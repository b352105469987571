package htmlsanitize_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dalemusser/pipapal/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Pickup at 9?", "Pickup at 9?"},
		{"tags stripped", "<b>bring</b> gloves", "bring gloves"},
		{"script removed with content", "<script>alert('xss')</script>ok", "ok"},
		{"whitespace trimmed", "  hello  ", "hello"},
		{"only markup", "<p></p>", ""},
		{"ampersand kept", "A & B", "A & B"},
		{"apostrophe kept", "Jerry's bin", "Jerry's bin"},
		{"mixed punctuation kept", "Tom & Jerry's bin: 5 < 10kg", "Tom & Jerry's bin: 5 < 10kg"},
		{"quotes kept", `the "blue" bag`, `the "blue" bag`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlainText_LengthUnchangedByEscaping(t *testing.T) {
	in := strings.Repeat("&", 1500)
	got := htmlsanitize.PlainText(in)
	if n := utf8.RuneCountInString(got); n != 1500 {
		t.Errorf("rune count = %d, want 1500", n)
	}
}
