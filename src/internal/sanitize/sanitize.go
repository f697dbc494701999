package sanitize

import (
	"net/url"
	"strings"
)

// CleanString trims and removes ASCII control characters except tab/newline/carriage
// return up to max runes (if max <= 0, no truncation).
func CleanString(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || (r >= 0x20 && r != 0x7f) {
			b.WriteRune(r)
			n++
			if max > 0 && n >= max {
				break
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// CleanURL returns a validated http/https URL without a trailing slash, or empty string.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Path = strings.TrimRight(strings.ReplaceAll(u.Path, " ", "%20"), "/")
	return u.String()
}

// CleanFields trims, dedupes and drops empty names from a field list,
// splitting any comma-joined items. Order is preserved.
func CleanFields(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	const maxLen = 128
	seen := map[string]bool{}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		for _, part := range strings.Split(f, ",") {
			part = CleanString(part, maxLen)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CleanHeaders drops headers with empty names and strips control characters from values.
func CleanHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		k = CleanString(k, 256)
		if k == "" || strings.ContainsAny(k, " :\t") {
			continue
		}
		out[k] = strings.Map(func(r rune) rune {
			if r < 0x20 || r == 0x7f {
				return -1
			}
			return r
		}, strings.TrimSpace(v))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
