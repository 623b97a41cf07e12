package geo

import (
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// Location is the subset of a GeoLite2 City record reported to clients.
type Location struct {
	Country   string  `json:"country,omitempty"`
	Region    string  `json:"region,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Resolver struct {
	db *geoip2.Reader
	ok bool
}

// NewResolver opens the City database at dbPath. A disabled resolver, or one
// whose database failed to open, answers every Lookup with false.
func NewResolver(dbPath string, enabled bool, logger *slog.Logger) *Resolver {
	r := &Resolver{}
	if !enabled {
		return r
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		logger.Warn("geoip: failed opening db, continuing without geo", "path", dbPath, "err", err)
		return r
	}
	r.db = db
	r.ok = true
	return r
}

func (r *Resolver) Enabled() bool {
	return r != nil && r.ok
}

func (r *Resolver) Close() {
	if r != nil && r.db != nil {
		r.db.Close()
	}
}

// Lookup resolves addr, which must parse as an IP literal.
func (r *Resolver) Lookup(addr string) (*Location, bool) {
	if !r.Enabled() {
		return nil, false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, false
	}
	city, err := r.db.City(ip)
	if err != nil {
		return nil, false
	}

	loc := &Location{
		Country:   city.Country.IsoCode,
		City:      city.City.Names["en"],
		Latitude:  round2(city.Location.Latitude),
		Longitude: round2(city.Location.Longitude),
	}
	if len(city.Subdivisions) > 0 {
		loc.Region = city.Subdivisions[0].Names["en"]
	}
	if loc.Country == "" && loc.City == "" && loc.Latitude == 0 && loc.Longitude == 0 {
		// Reserved and private ranges resolve to an empty record.
		return nil, false
	}
	return loc, true
}

func round2(f float64) float64 {
	if f < 0 {
		return -round2(-f)
	}
	return float64(int64(f*100+0.5)) / 100
}
