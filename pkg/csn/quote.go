package csn

import (
	"regexp"
	"strings"
)

var numberRe = regexp.MustCompile(`^-?\d+\.?\d*$`)

// needsQuoting decides whether a field value must be quoted in a row.
// Plain numbers never are. Empty strings and values with edge whitespace
// are, so a reader can distinguish them from missing fields.
func needsQuoting(v string) bool {
	if v == "" {
		return true
	}
	if numberRe.MatchString(v) {
		return false
	}
	if strings.ContainsAny(v, ",\"\\") {
		return true
	}
	switch strings.ToLower(v) {
	case "true", "false", "null":
		return true
	}
	return strings.TrimSpace(v) != v
}

func quoteValue(v string) string {
	if !needsQuoting(v) {
		return v
	}
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
