package stringz

import (
	"net"
	"strings"
)

// TrimProtocol removes a leading http:// or https:// from the input
func TrimProtocol(URL string) string {
	URL = strings.TrimSpace(URL)
	if strings.HasPrefix(strings.ToLower(URL), "http://") || strings.HasPrefix(strings.ToLower(URL), "https://") {
		URL = URL[strings.Index(URL, "//")+2:]
	}

	return URL
}

// ExtractHost reduces an input line to its bare host: scheme, path, query
// and port are dropped. IPv6 literals are returned without brackets.
func ExtractHost(line string) string {
	host := TrimProtocol(line)
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	// bare IPv6 literal, possibly bracketed
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if strings.Count(host, ":") == 1 {
		host = host[:strings.Index(host, ":")]
	}
	return host
}
