package security

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/abhishekprajapati1/clavel-assignment/internal/models"
)

const unknown = "Unknown"

// ParseDeviceInfo extracts coarse browser/os/device labels from a User-Agent
// for session listings.
func ParseDeviceInfo(userAgent string) models.DeviceInfo {
	info := models.DeviceInfo{
		UserAgent: userAgent,
		Browser:   unknown,
		OS:        unknown,
		Device:    unknown,
	}
	if strings.TrimSpace(userAgent) == "" {
		return info
	}

	ua := useragent.New(userAgent)
	if name, _ := ua.Browser(); name != "" {
		info.Browser = name
	}
	info.OS = osLabel(ua)
	info.Device = deviceLabel(ua)
	return info
}

func osLabel(ua *useragent.UserAgent) string {
	switch ua.Platform() {
	case "iPhone", "iPad", "iPod", "iPod touch":
		return "iOS"
	}

	name := ua.OSInfo().Name
	switch {
	case name == "":
		return unknown
	case name == "Android":
		return "Android"
	case strings.HasPrefix(name, "Windows"):
		return "Windows"
	case strings.HasPrefix(name, "Mac OS"):
		return "macOS"
	case strings.Contains(name, "Linux"):
		return "Linux"
	}
	return name
}

func deviceLabel(ua *useragent.UserAgent) string {
	switch {
	case ua.Bot():
		return "Bot"
	case ua.Platform() == "iPad":
		return "Tablet"
	case ua.Mobile():
		return "Mobile"
	}
	return "Desktop"
}
