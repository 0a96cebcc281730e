package middleware

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP extracts the client IP address from the request. Proxy and
// load-balancer headers are consulted before the remote address, since the
// device-location path geolocates this value and the socket peer is usually
// the ingress, not the user.
func GetClientIP(r *http.Request) string {
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		ip := strings.TrimSpace(candidate)

		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if ip := r.Header.Get("X-Real-IP"); net.ParseIP(ip) != nil {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		return r.RemoteAddr
	}

	return host
}
