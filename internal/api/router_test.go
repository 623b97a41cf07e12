package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ivugurura/iplens/internal/connection"
	"github.com/ivugurura/iplens/internal/geo"
	"github.com/ivugurura/iplens/internal/geo/geotest"
	"github.com/ivugurura/iplens/internal/logging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 10, 14, 9, 30, 0, 123_000_000, time.UTC)

func newTestRouter(t *testing.T, logBuf *bytes.Buffer) *gin.Engine {
	t.Helper()
	logger := logging.Discard()
	if logBuf != nil {
		logger = logging.New(logBuf, "info", "text")
	}
	return NewRouter(Options{Logger: logger, Now: func() time.Time { return fixedNow }})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for k, want := range map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	} {
		if got := rec.Header().Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(t, nil), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertCORS(t, rec)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("status field = %q", body["status"])
	}
	ts, err := time.Parse(time.RFC3339Nano, body["timestamp"])
	if err != nil {
		t.Fatalf("timestamp %q: %v", body["timestamp"], err)
	}
	if !ts.Equal(fixedNow) {
		t.Fatalf("timestamp = %v, want %v", ts, fixedNow)
	}
}

func TestIPInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:5000/api/ip-info", nil)
	req.RemoteAddr = "10.0.0.2:40000"
	req.Header.Set("X-Forwarded-For", "2001:db8::abcd, 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	rec := serve(newTestRouter(t, nil), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertCORS(t, rec)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content-type = %q", ct)
	}

	var info connection.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.IP != "2001:db8::abcd" || info.IPType != "IPv6" {
		t.Fatalf("address = %q (%s)", info.IP, info.IPType)
	}
	if info.Timestamp != "2026-10-14T09:30:00.123Z" {
		t.Fatalf("timestamp = %q", info.Timestamp)
	}
	if info.Browser.Name != "Chrome" || info.Browser.Version != "119.0" || info.Browser.OS != "Windows 10" || !info.Browser.IsDesktop {
		t.Fatalf("browser = %+v", info.Browser)
	}
	h := info.Headers
	if h.Host == nil || *h.Host != "localhost:5000" || h.Encoding == nil || *h.Encoding != "gzip, deflate, br" || h.Language == nil {
		t.Fatalf("headers = %+v", h)
	}
	if info.Location != nil {
		t.Fatalf("location without geo resolver: %+v", info.Location)
	}
}

func TestIPInfo_WireFormat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/ip-info", nil)
	req.RemoteAddr = "[::ffff:127.0.0.1]:5173"

	rec := serve(newTestRouter(t, nil), req)

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"ip", "ipType", "timestamp", "headers", "browser"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("missing key %q in %s", k, rec.Body.String())
		}
	}
	if _, ok := raw["location"]; ok {
		t.Errorf("location should be omitted")
	}
	if raw["ip"] != "127.0.0.1" || raw["ipType"] != "localhost" {
		t.Fatalf("ip = %v ipType = %v", raw["ip"], raw["ipType"])
	}
	headers := raw["headers"].(map[string]any)
	if headers["userAgent"] != nil {
		t.Fatalf("userAgent = %v, want null", headers["userAgent"])
	}
	browser := raw["browser"].(map[string]any)
	for _, k := range []string{"name", "version", "platform", "os", "isMobile", "isDesktop", "isBot"} {
		if _, ok := browser[k]; !ok {
			t.Errorf("missing browser.%s", k)
		}
	}
}

func TestIPInfo_Location(t *testing.T) {
	resolver := geo.NewResolver(geotest.WriteCityDB(t), true, logging.Discard())
	defer resolver.Close()
	r := NewRouter(Options{Logger: logging.Discard(), Geo: resolver, Now: func() time.Time { return fixedNow }})

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       *geo.Location
	}{
		{
			name:       "public ipv4",
			remoteAddr: "10.0.0.2:40000",
			forwarded:  "81.2.69.160",
			want:       &geo.Location{Country: "GB", Region: "England", City: "London", Latitude: 51.51, Longitude: -0.09},
		},
		{
			name:       "public ipv6",
			remoteAddr: "[2001:4860:4860::8844]:443",
			want:       &geo.Location{Country: "US", Region: "California", City: "Mountain View", Latitude: 37.39, Longitude: -122.08},
		},
		{
			// The database has a loopback record; localhost is never enriched.
			name:       "localhost",
			remoteAddr: "127.0.0.1:5173",
		},
		{
			name: "unknown",
		},
		{
			name:       "empty record",
			remoteAddr: "89.160.20.112:80",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ip-info", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			rec := serve(r, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}

			var raw map[string]json.RawMessage
			if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			body, present := raw["location"]
			if tt.want == nil {
				if present {
					t.Fatalf("unexpected location %s", body)
				}
				return
			}
			if !present {
				t.Fatalf("location missing in %s", rec.Body.String())
			}
			var got geo.Location
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("decode location: %v", err)
			}
			if got != *tt.want {
				t.Fatalf("location = %+v, want %+v", got, *tt.want)
			}
		})
	}
}

func TestIPInfo_AnyMethod(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := serve(r, httptest.NewRequest(m, "/api/ip-info", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", m, rec.Code)
		}
	}
}

func TestOptionsPreflight(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{"/api/ip-info", "/api/health", "/totally/unknown", "/"} {
		rec := serve(r, httptest.NewRequest(http.MethodOptions, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("OPTIONS %s: status = %d", path, rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Errorf("OPTIONS %s: body = %q", path, rec.Body.String())
		}
		assertCORS(t, rec)
	}
}

func TestNotFound(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/api"},
		{http.MethodGet, "/api/health/"},
		{http.MethodGet, "/api/ip-info/extra"},
		{http.MethodPost, "/api/health"},
	} {
		rec := serve(r, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d", tc.method, tc.path, rec.Code)
			continue
		}
		if rec.Body.String() != "Not Found" {
			t.Errorf("%s %s: body = %q", tc.method, tc.path, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("%s %s: content-type = %q", tc.method, tc.path, ct)
		}
		assertCORS(t, rec)
	}
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Fatalf("generated id %q: %v", rec.Header().Get(RequestIDHeader), err)
	}

	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, want)
	if got := serve(r, req).Header().Get(RequestIDHeader); got != want {
		t.Fatalf("id = %q, want echoed %q", got, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	if got := serve(r, req).Header().Get(RequestIDHeader); got == "<script>" {
		t.Fatalf("invalid id echoed")
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	serve(newTestRouter(t, &buf), httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	for _, want := range []string{"msg=request", "path=/missing", "status=404", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
