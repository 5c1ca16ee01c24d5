package httputilz

import "regexp"

var (
	normalizeSpacesRegex = regexp.MustCompile(`\s+`)
)

// NormalizeSpaces collapses every whitespace run into a single space
func NormalizeSpaces(data string) string {
	return normalizeSpacesRegex.ReplaceAllString(data, " ")
}
