package connection

import (
	"github.com/ivugurura/iplens/internal/classify"
	"github.com/ivugurura/iplens/internal/geo"
)

// TimestampLayout renders UTC instants the way browsers print toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Info describes one request as seen by the endpoint. It is built per
// request and never stored.
type Info struct {
	IP        string                  `json:"ip"`
	IPType    classify.AddressType    `json:"ipType"`
	Timestamp string                  `json:"timestamp"`
	Headers   Headers                 `json:"headers"`
	Browser   classify.BrowserProfile `json:"browser"`
	Location  *geo.Location           `json:"location,omitempty"`
}

// Headers is a snapshot of the request headers; absent values encode as null.
type Headers struct {
	UserAgent *string `json:"userAgent"`
	Language  *string `json:"language"`
	Encoding  *string `json:"encoding"`
	Host      *string `json:"host"`
}
