package netutil

import (
	"net"
	"net/http"
	"strings"
)

const mappedPrefix = "::ffff:"

// ClientAddress returns the address the request came from as a raw string.
// The first X-Forwarded-For entry wins over the socket peer; it is taken
// verbatim and not validated. The IPv4-mapped prefix is stripped either way.
func ClientAddress(r *http.Request) string {
	addr := "Unknown"
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		addr = strings.TrimSpace(first)
	} else if peer := peerHost(r.RemoteAddr); peer != "" {
		addr = peer
	}
	return strings.Replace(addr, mappedPrefix, "", 1)
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// RemoteAddr without a port, as set by some test harnesses and proxies.
		return remoteAddr
	}
	return host
}
