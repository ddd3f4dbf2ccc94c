package whatsapp

import "testing"

func TestClassifyDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want DeviceKind
	}{
		{
			"iphone is mobile",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
			DeviceMobile,
		},
		{
			"android phone is mobile",
			"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			DeviceMobile,
		},
		{
			"android without mobile token is tablet",
			"Mozilla/5.0 (Linux; Android 14; SM-X910) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			DeviceTablet,
		},
		{
			"ipad is tablet",
			"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
			DeviceTablet,
		},
		{
			"explicit tablet token wins over mobile",
			"Mozilla/5.0 (Linux; Android 13; Tablet) AppleWebKit/537.36 Mobile Safari/537.36",
			DeviceTablet,
		},
		{
			"windows desktop",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36",
			DeviceDesktop,
		},
		{
			"mac desktop",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15",
			DeviceDesktop,
		},
		{
			"windows phone is mobile",
			"Mozilla/5.0 (Windows Phone 10.0; Android 6.0.1) AppleWebKit/537.36 Edge/15.15254",
			DeviceMobile,
		},
		{"empty user agent is desktop", "", DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyDevice(tt.ua); got != tt.want {
				t.Errorf("ClassifyDevice(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}
