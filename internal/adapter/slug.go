package adapter

import (
	"strconv"
	"strings"
)

// slugParts splits a pipe-delimited slug, trimming each field and dropping
// empty ones. Positions shift when a field is left blank.
func slugParts(slug string) []string {
	var out []string
	for _, p := range strings.Split(slug, "|") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// slugFields splits a slug into at most n trimmed fields, keeping positions.
func slugFields(slug string, n int) []string {
	fields := strings.SplitN(slug, "|", n)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// at returns parts[i] or "" when out of range.
func at(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// positiveInt parses s, returning def unless it is a positive integer.
func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// bareHost strips a scheme and trailing slashes.
func bareHost(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimRight(s, "/")
}
