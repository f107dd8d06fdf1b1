// Package netutil provides network utility functions for the API layer.
package netutil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address. X-Forwarded-For (first valid entry) wins
// over X-Real-IP, which wins over RemoteAddr with its port stripped. A nil request
// or an unparseable address yields "".
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := parseIP(candidate); ip != "" {
			return ip
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return hostFromRemoteAddr(r.RemoteAddr)
}

func parseIP(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || net.ParseIP(value) == nil {
		return ""
	}
	return value
}

func hostFromRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr without a port.
		return parseIP(strings.Trim(remoteAddr, "[]"))
	}
	return parseIP(host)
}
