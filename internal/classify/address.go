// Package classify holds the address and User-Agent classification shared by
// the local endpoint and the external lookup client. Every function here is a
// pure function of its input.
package classify

import "strings"

type AddressType string

const (
	IPv4      AddressType = "IPv4"
	IPv6      AddressType = "IPv6"
	Localhost AddressType = "localhost"
	Unknown   AddressType = "Unknown"
)

// Address labels a raw address string. It looks only at separators and a few
// loopback literals; malformed input containing ':' or '.' is labelled as if
// it were well formed.
func Address(addr string) AddressType {
	switch {
	case strings.Contains(addr, ":"):
		if addr == "::1" || addr == "::ffff:127.0.0.1" {
			return Localhost
		}
		return IPv6
	case strings.Contains(addr, "."):
		if addr == "127.0.0.1" || strings.HasPrefix(addr, "::ffff:127.0.0.1") {
			return Localhost
		}
		return IPv4
	default:
		return Unknown
	}
}
