package credentials

import (
	"strings"
	"testing"
)

func TestGenerateConnectionCode(t *testing.T) {
	codes := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateConnectionCode()
		if err != nil {
			t.Fatalf("GenerateConnectionCode() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Errorf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Errorf("code %q contains unexpected character %q", code, c)
			}
		}
		if codes[code] {
			t.Errorf("duplicate code generated: %s", code)
		}
		codes[code] = true
	}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abcd-efgh", "ABCDEFGH"},
		{" ab cd ef gh ", "ABCDEFGH"},
		{"ABCDEFGH", "ABCDEFGH"},
	}
	for _, tt := range tests {
		if got := NormalizeCode(tt.input); got != tt.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
