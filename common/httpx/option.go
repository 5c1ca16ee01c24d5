package httpx

import (
	"time"
)

// DefaultUserAgent is sent when no random agent is requested
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:95.0) Gecko/20100101 Firefox/95.0"

// Options contains configuration options for the client
type Options struct {
	// Timeout bounds each request hop, from dial to the end of the body
	Timeout time.Duration
	// FollowRedirects enables manual following of 3xx Location headers
	FollowRedirects bool
	// MaxRedirects is the hop cap when following redirects
	MaxRedirects int
	// MaxResponseBodySize caps the bytes read from a response body
	MaxResponseBodySize int64
	// ExtractTitle parses the <title> of the final response
	ExtractTitle bool
	// NoFallbackScheme disables the retry with the other scheme
	NoFallbackScheme bool

	DefaultUserAgent string
	RandomAgent      bool
	CustomHeaders    map[string]string
	HTTPProxy        string
	Resolvers        []string
}

// DefaultOptions contains the default options
var DefaultOptions = Options{
	Timeout:             3 * time.Second,
	MaxRedirects:        10,
	MaxResponseBodySize: 4 * 1024 * 1024,
	DefaultUserAgent:    DefaultUserAgent,
}
