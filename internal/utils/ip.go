package utils

import (
	"regexp"
	"strings"
)

var ipTokenPattern = regexp.MustCompile(`^[\d./\-,\s]+$`)

// IsValidIPToken reports whether s looks like an IPv4 address, CIDR, range or a
// comma separated list of those. Hostnames and blank values are rejected.
func IsValidIPToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return ipTokenPattern.MatchString(s)
}

// SplitPorts splits a raw port column on commas and trims every token.
func SplitPorts(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
