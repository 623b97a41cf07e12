// Package api serves the local endpoint: a health check and the caller's
// connection info, with permissive CORS on every response.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivugurura/iplens/internal/geo"
)

type Options struct {
	Logger *slog.Logger
	// Geo is optional; a nil or disabled resolver adds no location.
	Geo *geo.Resolver
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := gin.New()
	// Unknown paths are plain 404s, never redirects.
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.Use(requestID(), accessLog(opts.Logger), gin.Recovery(), cors())

	h := &handlers{geo: opts.Geo, now: opts.Now}
	r.GET("/api/health", h.health)
	r.Any("/api/ip-info", h.ipInfo)
	r.NoRoute(notFound)

	return r
}
