// Package useragent extracts the coarse device metadata the session
// dashboard displays from a raw User-Agent header.
package useragent

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

// Info is the parsed device metadata stored on a session.
type Info struct {
	Device  string
	Browser string
	OS      string
}

// Parse derives device/browser/OS from a User-Agent string. Unknown values
// come back as "unknown" rather than empty so the dashboard always has
// something to render.
func Parse(raw string) Info {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Info{Device: "unknown", Browser: "unknown", OS: "unknown"}
	}

	parsed := ua.Parse(raw)
	info := Info{
		Browser: orUnknown(parsed.Name),
		OS:      orUnknown(parsed.OS),
	}
	switch {
	case parsed.Mobile:
		info.Device = "mobile"
	case parsed.Tablet:
		info.Device = "tablet"
	case parsed.Desktop:
		info.Device = "desktop"
	case parsed.Bot:
		info.Device = "bot"
	default:
		info.Device = "unknown"
	}
	return info
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
