package checker

import "strings"

// Normalize strips trailing slashes from url so that "/page/" and "/page" compare equal.
// A slash is kept when removing it would reduce the URL to a bare scheme
// ("http:", "http:/") or drop the root path of an absolute URL ("http://a.com/").
func Normalize(url string) string {
	for len(url) > 1 && strings.HasSuffix(url, "/") {
		trimmed := url[:len(url)-1]
		if !canTrim(url, trimmed) {
			break
		}
		url = trimmed
	}
	return url
}

func canTrim(url, trimmed string) bool {
	if strings.HasSuffix(trimmed, ":") || strings.HasSuffix(trimmed, ":/") {
		return false
	}
	if i := strings.Index(url, "://"); i >= 0 {
		hostStart := i + len("://")
		if hostStart > len(trimmed) {
			return false
		}
		// Only the root path is left after the authority
		if !strings.Contains(trimmed[hostStart:], "/") {
			return false
		}
	}
	return true
}

// Matches reports whether actual contains expectedFragment, ignoring case and trailing slashes.
func Matches(actual, expectedFragment string) bool {
	return strings.Contains(
		strings.ToLower(Normalize(actual)),
		strings.ToLower(Normalize(expectedFragment)),
	)
}
