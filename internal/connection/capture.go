package connection

import (
	"net/http"
	"time"

	"github.com/ivugurura/iplens/internal/classify"
	"github.com/ivugurura/iplens/internal/netutil"
)

// Capture classifies the request's address and User-Agent at instant now.
func Capture(r *http.Request, now time.Time) Info {
	addr := netutil.ClientAddress(r)
	ua := r.Header.Get("User-Agent")

	return Info{
		IP:        addr,
		IPType:    classify.Address(addr),
		Timestamp: FormatTimestamp(now),
		Headers: Headers{
			UserAgent: nonEmpty(ua),
			Language:  header(r.Header, "Accept-Language"),
			Encoding:  header(r.Header, "Accept-Encoding"),
			Host:      nonEmpty(r.Host),
		},
		Browser: classify.Profile(ua),
	}
}

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func header(h http.Header, key string) *string {
	if _, ok := h[http.CanonicalHeaderKey(key)]; !ok {
		return nil
	}
	v := h.Get(key)
	return &v
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
