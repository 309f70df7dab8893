package utils

import (
	"strings"
	"testing"
)

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"", false},
		{"Asha", false},
		{"Room 204 🛏️", false},
		{strings.Repeat("x", 40), false},
		{strings.Repeat("x", 41), true},
		{"tab\tname", true},
	}
	for _, tt := range tests {
		err := ValidateDisplayName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDisplayName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	tests := map[string]string{
		"":                "Anonymous",
		"   ":             "Anonymous",
		"  Asha  ":        "Asha",
		"Night   Owl  42": "Night Owl 42",
	}
	for in, want := range tests {
		if got := NormalizeDisplayName(in); got != want {
			t.Errorf("NormalizeDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
