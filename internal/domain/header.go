package domain

import (
	"bufio"
	"strings"
)

// ManagedBy marks configuration files written by sitectl.
const ManagedBy = "sitectl"

// SiteHeader returns the comment block that opens every rendered
// configuration. ParseSiteHeader reads it back.
func SiteHeader(req SiteRequest) string {
	var b strings.Builder
	b.WriteString("# managed-by: " + ManagedBy + "\n")
	b.WriteString("# domain: " + req.Domain + "\n")
	b.WriteString("# backend: " + req.Backend + "\n")
	b.WriteString("# mode: " + string(req.Mode) + "\n")
	return b.String()
}

// ParseSiteHeader extracts backend and mode from a rendered configuration.
// Files not written by sitectl yield an empty backend and ModeUnknown.
func ParseSiteHeader(config string) (backend string, mode Mode) {
	mode = ModeUnknown
	managed := false

	sc := bufio.NewScanner(strings.NewReader(config))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "managed-by":
			managed = value == ManagedBy
		case "backend":
			backend = value
		case "mode":
			if m, err := ParseMode(value); err == nil {
				mode = m
			}
		}
	}

	if !managed {
		return "", ModeUnknown
	}
	return backend, mode
}
