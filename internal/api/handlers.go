package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivugurura/iplens/internal/classify"
	"github.com/ivugurura/iplens/internal/connection"
	"github.com/ivugurura/iplens/internal/geo"
)

type handlers struct {
	geo *geo.Resolver
	now func() time.Time
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:    "OK",
		Timestamp: connection.FormatTimestamp(h.now()),
	})
}

func (h *handlers) ipInfo(c *gin.Context) {
	info := connection.Capture(c.Request, h.now())
	if info.IPType == classify.IPv4 || info.IPType == classify.IPv6 {
		if loc, ok := h.geo.Lookup(info.IP); ok {
			info.Location = loc
		}
	}
	c.JSON(http.StatusOK, info)
}

func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "Not Found")
}
