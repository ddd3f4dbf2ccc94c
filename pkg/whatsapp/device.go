package whatsapp

import (
	"regexp"
)

// DeviceKind is the closed device classification every other component
// consumes. Raw user-agent strings are matched here and nowhere else.
type DeviceKind string

const (
	DeviceMobile  DeviceKind = "mobile"
	DeviceTablet  DeviceKind = "tablet"
	DeviceDesktop DeviceKind = "desktop"
)

var (
	reIPad        = regexp.MustCompile(`(?i)iPad`)
	reAndroid     = regexp.MustCompile(`(?i)Android`)
	reTabletToken = regexp.MustCompile(`(?i)Tablet`)
	rePhoneToken  = regexp.MustCompile(`(?i)iPhone|iPod|BlackBerry|Windows Phone`)
	reMobileToken = regexp.MustCompile(`(?i)Mobile`)
)

// ClassifyDevice maps a user-agent string onto a DeviceKind. Tablet patterns
// take precedence: an Android UA without the "Mobile" token is a tablet, with
// it a phone. Anything matching neither family is desktop.
//
// Classification is stateless on purpose - tablets can report a different UA
// after an orientation change, so callers re-classify on viewport changes
// instead of caching the result.
func ClassifyDevice(userAgent string) DeviceKind {
	if userAgent == "" {
		return DeviceDesktop
	}

	if reIPad.MatchString(userAgent) || reTabletToken.MatchString(userAgent) {
		return DeviceTablet
	}
	if reAndroid.MatchString(userAgent) && !reMobileToken.MatchString(userAgent) {
		return DeviceTablet
	}

	if rePhoneToken.MatchString(userAgent) || reMobileToken.MatchString(userAgent) {
		return DeviceMobile
	}

	return DeviceDesktop
}
