package utils

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"
)

type UserAgentInfo struct {
	Device  string
	OS      string
	Browser string
	Locale  string
}

// ParseUserAgent returns nil for agents that are not a recognised device.
func ParseUserAgent(uaString string, acceptLanguage string) *UserAgentInfo {
	ua := uasurfer.Parse(uaString)

	var device string
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		device = "computer"
	case uasurfer.DeviceTablet:
		device = "tablet"
	case uasurfer.DevicePhone:
		device = "phone"
	default:
		return nil
	}

	locale, _, _ := strings.Cut(acceptLanguage, ",")
	locale, _, _ = strings.Cut(locale, ";")

	return &UserAgentInfo{
		Device:  device,
		OS:      fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor),
		Browser: fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor),
		Locale:  strings.TrimSpace(locale),
	}
}

// Metadata renders the info as message metadata.
func (u *UserAgentInfo) Metadata() map[string]any {
	if u == nil {
		return nil
	}
	md := map[string]any{
		"device":  u.Device,
		"os":      u.OS,
		"browser": u.Browser,
	}
	if u.Locale != "" {
		md["locale"] = u.Locale
	}
	return md
}
