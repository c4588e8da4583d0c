// Package useragent infers the operating system family and version from a
// raw User-Agent string.
package useragent

import (
	"regexp"
	"strings"
)

var (
	windowsRe = regexp.MustCompile(`Windows`)
	macRe     = regexp.MustCompile(`Macintosh|Mac OS X`)
	androidRe = regexp.MustCompile(`Android`)
	iosRe     = regexp.MustCompile(`iOS|iPhone|iPad|iPod`)
	linuxRe   = regexp.MustCompile(`Linux`)

	macVersionRe     = regexp.MustCompile(`Mac OS X ([0-9_]+)`)
	androidVersionRe = regexp.MustCompile(`Android ([0-9.]+)`)
	iosVersionRe     = regexp.MustCompile(`OS ([0-9_]+)`)
)

// Detect returns the OS family and version for a user-agent string.
// Families are matched in priority order: Windows, macOS, Android, iOS,
// Linux. Unrecognized agents yield ("unknown", "").
func Detect(ua string) (os, version string) {
	switch {
	case windowsRe.MatchString(ua):
		return "Windows", windowsVersion(ua)
	case macRe.MatchString(ua):
		return "macOS", underscored(macVersionRe, ua)
	case androidRe.MatchString(ua):
		if m := androidVersionRe.FindStringSubmatch(ua); m != nil {
			return "Android", m[1]
		}
		return "Android", ""
	case iosRe.MatchString(ua):
		return "iOS", underscored(iosVersionRe, ua)
	case linuxRe.MatchString(ua):
		return "Linux", ""
	default:
		return "unknown", ""
	}
}

func windowsVersion(ua string) string {
	switch {
	case strings.Contains(ua, "Windows NT 10.0"):
		return "10"
	case strings.Contains(ua, "Windows NT 6.3"):
		return "8.1"
	case strings.Contains(ua, "Windows NT 6.2"):
		return "8"
	case strings.Contains(ua, "Windows NT 6.1"):
		return "7"
	}
	return ""
}

// underscored extracts the first capture group and normalizes 10_15_7 style
// versions to dotted form.
func underscored(re *regexp.Regexp, ua string) string {
	m := re.FindStringSubmatch(ua)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", ".")
}
