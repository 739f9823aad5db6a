package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP determines the client address for request logs, preferring the
// proxy headers the store network sets.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		if first := strings.TrimSpace(strings.Split(ip, ",")[0]); first != "" {
			return first
		}
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
