package utils

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe identifier from a post title: lower-case,
// every run of characters outside [a-z0-9] collapses to a single hyphen,
// and leading/trailing hyphens are stripped.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
