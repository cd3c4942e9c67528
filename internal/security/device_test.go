package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDeviceInfo(t *testing.T) {
	tests := []struct {
		name    string
		ua      string
		browser string
		os      string
		device  string
	}{
		{
			name:    "chrome_windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
			browser: "Chrome", os: "Windows", device: "Desktop",
		},
		{
			name:    "edge_windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 Edg/124.0",
			browser: "Edge", os: "Windows", device: "Desktop",
		},
		{
			name:    "safari_iphone",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
			browser: "Safari", os: "iOS", device: "Mobile",
		},
		{
			name:    "firefox_linux",
			ua:      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
			browser: "Firefox", os: "Linux", device: "Desktop",
		},
		{
			name:    "chrome_android",
			ua:      "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36",
			browser: "Chrome", os: "Android", device: "Mobile",
		},
		{
			name:    "ipad",
			ua:      "Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/604.1",
			browser: "Safari", os: "iOS", device: "Tablet",
		},
		{
			name:    "chrome_ios",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/124.0.6367.88 Mobile/15E148 Safari/604.1",
			browser: "Chrome", os: "iOS", device: "Mobile",
		},
		{
			name:    "firefox_ios",
			ua:      "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) FxiOS/125.0 Mobile/15E148 Safari/605.1.15",
			browser: "Firefox", os: "iOS", device: "Mobile",
		},
		{
			name:    "opera_windows",
			ua:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 OPR/110.0.0.0",
			browser: "Opera", os: "Windows", device: "Desktop",
		},
		{
			name:    "safari_macos",
			ua:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
			browser: "Safari", os: "macOS", device: "Desktop",
		},
		{
			name:    "empty",
			ua:      "",
			browser: "Unknown", os: "Unknown", device: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseDeviceInfo(tt.ua)
			assert.Equal(t, tt.browser, info.Browser)
			assert.Equal(t, tt.os, info.OS)
			assert.Equal(t, tt.device, info.Device)
			assert.Equal(t, tt.ua, info.UserAgent)
		})
	}
}
