package shared

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the host part of RemoteAddr. Forwarded headers are
// resolved earlier by the RealIP middleware.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	return addr
}
