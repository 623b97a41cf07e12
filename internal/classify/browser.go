package classify

import (
	"regexp"
	"strings"
)

// BrowserProfile is what a User-Agent string says about the client.
// IsMobile and IsBot are evaluated independently, so both may be true.
type BrowserProfile struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Platform  string `json:"platform"`
	OS        string `json:"os"`
	IsMobile  bool   `json:"isMobile"`
	IsDesktop bool   `json:"isDesktop"`
	IsBot     bool   `json:"isBot"`
}

const unknown = "Unknown"

var (
	chromeVersion  = regexp.MustCompile(`chrome/(\d+\.\d+)`)
	safariVersion  = regexp.MustCompile(`version/(\d+\.\d+)`)
	firefoxVersion = regexp.MustCompile(`firefox/(\d+\.\d+)`)
	edgeVersion    = regexp.MustCompile(`edg/(\d+\.\d+)`)

	mobilePattern = regexp.MustCompile(`mobile|android|iphone|ipad|phone`)
	botPattern    = regexp.MustCompile(`bot|crawler|spider|crawling`)
)

// Profile classifies a User-Agent. Matching is case-insensitive and each
// dimension takes the first rule that matches.
func Profile(userAgent string) BrowserProfile {
	ua := strings.ToLower(userAgent)

	p := BrowserProfile{}
	p.Name, p.Version = browser(ua)
	p.Platform, p.OS = platform(ua)
	p.IsMobile = mobilePattern.MatchString(ua)
	p.IsBot = botPattern.MatchString(ua)
	p.IsDesktop = !p.IsMobile && !p.IsBot
	return p
}

func browser(ua string) (name, version string) {
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		return "Chrome", versionOf(chromeVersion, ua)
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		return "Safari", versionOf(safariVersion, ua)
	case strings.Contains(ua, "firefox"):
		return "Firefox", versionOf(firefoxVersion, ua)
	case strings.Contains(ua, "edg"):
		return "Edge", versionOf(edgeVersion, ua)
	default:
		return unknown, unknown
	}
}

func versionOf(re *regexp.Regexp, ua string) string {
	if m := re.FindStringSubmatch(ua); m != nil {
		return m[1]
	}
	return unknown
}

func platform(ua string) (name, os string) {
	switch {
	case strings.Contains(ua, "mac"):
		return "Apple Mac", "OS X"
	case strings.Contains(ua, "windows"):
		switch {
		case strings.Contains(ua, "windows nt 10"):
			return "Windows", "Windows 10"
		case strings.Contains(ua, "windows nt 11"):
			return "Windows", "Windows 11"
		default:
			return "Windows", "Windows"
		}
	case strings.Contains(ua, "linux"):
		return "Linux", "Linux"
	case strings.Contains(ua, "android"):
		return "Android", "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		return "iOS", "iOS"
	default:
		return unknown, unknown
	}
}
