package lookup

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ivugurura/iplens/internal/classify"
)

var errEmptyIP = errors.New("empty ip field")

// Info is a public address as reported by a lookup service. Geolocation
// fields are filled only when the vendor provides them.
type Info struct {
	IP        string               `json:"ip"`
	IPType    classify.AddressType `json:"ipType"`
	City      string               `json:"city,omitempty"`
	Region    string               `json:"region,omitempty"`
	Country   string               `json:"country,omitempty"`
	ISP       string               `json:"isp,omitempty"`
	Timezone  string               `json:"timezone,omitempty"`
	Latitude  *float64             `json:"latitude,omitempty"`
	Longitude *float64             `json:"longitude,omitempty"`
	Source    string               `json:"source,omitempty"`
}

type parser func(body []byte) (Info, error)

var parsers = map[Vendor]parser{
	VendorIpify:   parseIpify,
	VendorIpapiIs: parseIpapiIs,
	VendorIpapiCo: parseIpapiCo,
}

func parseIpify(body []byte) (Info, error) {
	var v struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return Info{}, err
	}
	return Info{IP: v.IP}, nil
}

func parseIpapiIs(body []byte) (Info, error) {
	var v struct {
		IP       string `json:"ip"`
		Location *struct {
			City      string   `json:"city"`
			State     string   `json:"state"`
			Country   string   `json:"country"`
			Timezone  string   `json:"timezone"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		} `json:"location"`
		ASN *struct {
			Org string `json:"org"`
		} `json:"asn"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return Info{}, err
	}
	info := Info{IP: v.IP}
	if l := v.Location; l != nil {
		info.City = l.City
		info.Region = l.State
		info.Country = l.Country
		info.Timezone = l.Timezone
		info.Latitude = l.Latitude
		info.Longitude = l.Longitude
	}
	if v.ASN != nil {
		info.ISP = v.ASN.Org
	}
	return info, nil
}

func parseIpapiCo(body []byte) (Info, error) {
	var v struct {
		IP        string   `json:"ip"`
		City      string   `json:"city"`
		Region    string   `json:"region"`
		Country   string   `json:"country_name"`
		Org       string   `json:"org"`
		Timezone  string   `json:"timezone"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return Info{}, err
	}
	return Info{
		IP:        v.IP,
		City:      v.City,
		Region:    v.Region,
		Country:   v.Country,
		ISP:       v.Org,
		Timezone:  v.Timezone,
		Latitude:  v.Latitude,
		Longitude: v.Longitude,
	}, nil
}

// normalize trims the address and derives its family from the address text
// alone; whatever the vendor claims about the version is ignored.
func normalize(info Info, source string) (Info, error) {
	info.IP = strings.TrimSpace(info.IP)
	if info.IP == "" {
		return Info{}, errEmptyIP
	}
	info.IPType = family(info.IP)
	info.Source = source
	return info, nil
}

func family(ip string) classify.AddressType {
	if strings.Contains(ip, ":") {
		return classify.IPv6
	}
	return classify.IPv4
}
