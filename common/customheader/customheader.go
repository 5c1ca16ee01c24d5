package customheader

import (
	"strings"

	stringsutil "github.com/projectdiscovery/utils/strings"
)

// CustomHeaders valid for all requests
type CustomHeaders []string

// String returns just a label
func (c *CustomHeaders) String() string {
	return "Custom Global Headers"
}

// Set a new global header
func (c *CustomHeaders) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// Has checks if the list contains a header name
func (c *CustomHeaders) Has(header string) bool {
	for _, customHeader := range *c {
		if stringsutil.HasPrefixAny(strings.ToLower(customHeader), strings.ToLower(header)) {
			return true
		}
	}

	return false
}

// Map splits every "Name: Value" entry; entries without a colon are dropped
func (c *CustomHeaders) Map() map[string]string {
	headers := make(map[string]string, len(*c))
	for _, customHeader := range *c {
		tokens := strings.SplitN(customHeader, ":", 2)
		if len(tokens) < 2 {
			continue
		}
		headers[strings.TrimSpace(tokens[0])] = strings.TrimSpace(tokens[1])
	}
	return headers
}
