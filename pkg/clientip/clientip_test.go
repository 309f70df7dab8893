package clientip

import (
	"net/http/httptest"
	"testing"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		remote, want string
	}{
		{"10.0.0.7:52311", "10.0.0.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.9", "203.0.113.9"},
		{" 203.0.113.9 ", "203.0.113.9"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = tt.remote
		if got := RealClientIP(r); got != tt.want {
			t.Errorf("RealClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
