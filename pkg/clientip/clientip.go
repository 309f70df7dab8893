// Package clientip resolves the address used to key per-client limits.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr without the port.
// The router runs chi's RealIP first, so RemoteAddr already reflects
// X-Real-IP / X-Forwarded-For when the app sits behind a proxy.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
