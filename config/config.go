package config

import (
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenHost string
	Port       int

	LogLevel  string
	LogFormat string

	// Geo enrichment
	GeoIPDBPath string
	EnableGeoIP bool

	// External lookups
	LookupTimeout      time.Duration
	LookupProxy        string
	LookupServicesFile string
	LookupRequireCORS  bool

	ShutdownTimeout time.Duration
}

// ListenAddr is the host:port the endpoint binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

func LoadConfig() *Config {
	get := func(key, dfault string) string {
		v := os.Getenv(key)
		if v == "" {
			return dfault
		}
		return v
	}

	cfg := &Config{
		ListenHost:         get("LISTEN_HOST", ""),
		Port:               intEnv("PORT", 5000),
		LogLevel:           get("LOG_LEVEL", "info"),
		LogFormat:          get("LOG_FORMAT", "text"),
		GeoIPDBPath:        get("GEOIP_DB_PATH", "./GeoLite2-City.mmdb"),
		EnableGeoIP:        get("ENABLE_GEOIP", "0") == "1",
		LookupTimeout:      durationEnv("LOOKUP_TIMEOUT", 5*time.Second),
		LookupProxy:        get("LOOKUP_PROXY", ""), // e.g. socks5://127.0.0.1:1080
		LookupServicesFile: get("LOOKUP_SERVICES_FILE", ""),
		LookupRequireCORS:  get("LOOKUP_REQUIRE_CORS", "1") == "1",
		ShutdownTimeout:    durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
		slog.Warn("config: invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
		slog.Warn("config: invalid integer, using default", "key", key, "value", v, "default", def)
	}
	return def
}
