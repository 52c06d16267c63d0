// Package clientip resolves the address of the client behind a request.
//
// Without proxy trust only the connection's remote address is used, so a
// client cannot spoof its address with headers. With proxy trust the first
// valid address in X-Forwarded-For wins, then X-Real-IP, then the remote
// address.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the normalized client IP, or "" if none is valid.
func FromRequest(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			for ip := range strings.SplitSeq(forwarded, ",") {
				if parsed := parseIP(ip); parsed != "" {
					return parsed
				}
			}
		}
		if parsed := parseIP(r.Header.Get("X-Real-IP")); parsed != "" {
			return parsed
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}
