package lookup

import (
	"encoding/json"
	"fmt"
	"os"
)

// Vendor names the response shape a service returns.
type Vendor string

const (
	VendorIpify   Vendor = "ipify"
	VendorIpapiIs Vendor = "ipapi.is"
	VendorIpapiCo Vendor = "ipapi.co"
)

// Service describes one IP-echo endpoint.
type Service struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Vendor       Vendor `json:"vendor"`
	SupportsIPv6 bool   `json:"supportsIPv6"`
	CORSEnabled  bool   `json:"corsEnabled"`
}

// DefaultServices is tried in order; IPv6-capable entries come first.
var DefaultServices = []Service{
	{Name: "ipify-v6", URL: "https://api64.ipify.org?format=json", Vendor: VendorIpify, SupportsIPv6: true, CORSEnabled: true},
	{Name: "ipify-v4", URL: "https://api.ipify.org?format=json", Vendor: VendorIpify, SupportsIPv6: false, CORSEnabled: true},
	{Name: "ipapi.is", URL: "https://api.ipapi.is?format=json", Vendor: VendorIpapiIs, SupportsIPv6: true, CORSEnabled: true},
	{Name: "ipapi.co", URL: "https://ipapi.co/json/", Vendor: VendorIpapiCo, SupportsIPv6: true, CORSEnabled: false},
}

// LoadServices reads a JSON array of Service descriptors from path.
func LoadServices(path string) ([]Service, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var services []Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("%s: no services defined", path)
	}
	for i, s := range services {
		if s.URL == "" {
			return nil, fmt.Errorf("%s: service %d has no url", path, i)
		}
		if _, ok := parsers[s.Vendor]; !ok {
			return nil, fmt.Errorf("%s: service %d: unknown vendor %q", path, i, s.Vendor)
		}
		if s.Name == "" {
			services[i].Name = s.URL
		}
	}
	return services, nil
}
