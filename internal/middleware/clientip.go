package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP resolves the caller address: first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote host. Returns "unknown" when none is set.
func ClientIP(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(remote)
	if err == nil && host != "" {
		return host
	}

	if remote == "" {
		return "unknown"
	}

	return remote
}
