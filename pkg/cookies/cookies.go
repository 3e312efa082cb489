// Package cookies translates between the raw Set-Cookie representation the
// upstream ERP responds with and the single Cookie request header the relay
// replays on its behalf. Cookie attributes (Path, HttpOnly, Max-Age, ...)
// are discarded: the relay is the cookie jar, so only name/value identity
// matters for replay.
package cookies

import "strings"

// Parse extracts name=value pairs from raw Set-Cookie header values, one
// value per element. Later occurrences of a name overwrite earlier ones.
// Malformed entries (no "=", empty name or value) are skipped. Never fails:
// nil or empty input yields an empty map.
func Parse(setCookies []string) map[string]string {
	out := make(map[string]string, len(setCookies))
	for _, raw := range setCookies {
		pair, _, _ := strings.Cut(raw, ";")
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}

// Serialize joins a cookie map into a single Cookie header value of the
// form "name1=value1; name2=value2". Returns "" for an empty or nil map.
func Serialize(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for name, value := range cookies {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, "; ")
}
