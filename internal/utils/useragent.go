package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

var tabletIndicators = []string{"ipad", "tablet", "kindle", "playbook", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// ParseUserAgent parses a User-Agent string for request logging
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" || userAgent == "Unknown" {
		return DeviceInfo{DeviceType: "unknown", OS: "Unknown", Browser: "Unknown"}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		DeviceType: "desktop",
		OS:         "Unknown",
		Browser:    "Unknown",
		IsBot:      parser.Bot(),
	}

	if os := parser.OSInfo(); os.Name != "" {
		info.OS = strings.TrimSpace(os.Name + " " + os.Version)
	}
	if name, _ := parser.Browser(); name != "" {
		info.Browser = name
	}

	if parser.Mobile() {
		info.DeviceType = "mobile"
		lower := strings.ToLower(userAgent)
		for _, indicator := range tabletIndicators {
			if strings.Contains(lower, indicator) {
				info.DeviceType = "tablet"
				break
			}
		}
	}

	return info
}
