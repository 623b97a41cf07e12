// Package geotest writes small GeoLite2 City databases for tests.
package geotest

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
)

// City is one network's record in a fixture database.
type City struct {
	Network   string
	Country   string
	Region    string
	City      string
	Latitude  float64
	Longitude float64
	// Empty inserts a record with no fields at all.
	Empty bool
}

// Known networks used across packages.
var (
	London = City{
		Network: "81.2.69.0/24", Country: "GB", Region: "England", City: "London",
		Latitude: 51.5142, Longitude: -0.0931,
	}
	MountainView = City{
		Network: "2001:4860::/32", Country: "US", Region: "California", City: "Mountain View",
		Latitude: 37.386, Longitude: -122.0838,
	}
	Blank    = City{Network: "89.160.20.0/24", Empty: true}
	Loopback = City{
		Network: "127.0.0.0/8", Country: "ZZ", City: "Loopback",
		Latitude: 1, Longitude: 1,
	}
)

// WriteCityDB writes records (or the known networks when none are given) to
// a database under t.TempDir and returns its path.
func WriteCityDB(t testing.TB, records ...City) string {
	t.Helper()
	if len(records) == 0 {
		records = []City{London, MountainView, Blank, Loopback}
	}

	w, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType:            "GeoLite2-City",
		RecordSize:              24,
		IncludeReservedNetworks: true,
	})
	if err != nil {
		t.Fatalf("mmdbwriter: %v", err)
	}
	for _, rec := range records {
		_, network, err := net.ParseCIDR(rec.Network)
		if err != nil {
			t.Fatalf("parse %q: %v", rec.Network, err)
		}
		if err := w.Insert(network, rec.value()); err != nil {
			t.Fatalf("insert %s: %v", rec.Network, err)
		}
	}

	path := filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := w.WriteTo(f); err != nil {
		t.Fatalf("write db: %v", err)
	}
	return path
}

func (c City) value() mmdbtype.Map {
	if c.Empty {
		return mmdbtype.Map{}
	}
	names := func(s string) mmdbtype.Map {
		return mmdbtype.Map{"en": mmdbtype.String(s)}
	}
	m := mmdbtype.Map{
		"country": mmdbtype.Map{"iso_code": mmdbtype.String(c.Country)},
		"city":    mmdbtype.Map{"names": names(c.City)},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(c.Latitude),
			"longitude": mmdbtype.Float64(c.Longitude),
		},
	}
	if c.Region != "" {
		m["subdivisions"] = mmdbtype.Slice{mmdbtype.Map{"names": names(c.Region)}}
	}
	return m
}
