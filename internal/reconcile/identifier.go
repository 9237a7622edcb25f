package reconcile

import "strings"

// normalizeIdentifier trims an article number; missing markers become ""
func normalizeIdentifier(v string) string {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return ""
	}
	return v
}
