package targets

import (
	"net"
	"strconv"
	"strings"
)

// Scheme of a probe target
type Scheme string

const (
	// HTTP plain text scheme
	HTTP Scheme = "http"
	// HTTPS TLS scheme
	HTTPS Scheme = "https"
)

// Other returns the opposite scheme, used for scheme fallback
func (s Scheme) Other() Scheme {
	if s == HTTPS {
		return HTTP
	}
	return HTTPS
}

// Target is one concrete host/port/scheme/path combination to probe
type Target struct {
	Host   string
	Port   uint16
	Scheme Scheme
	Path   string
	// Forced is true when the scheme was pinned by the caller
	Forced bool
}

// URL renders the target as scheme://host:port/path
func (t Target) URL() string {
	return t.URLWithScheme(t.Scheme)
}

// URLWithScheme renders the target with a different scheme
func (t Target) URLWithScheme(scheme Scheme) string {
	var builder strings.Builder
	builder.WriteString(string(scheme))
	builder.WriteString("://")
	builder.WriteString(net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port))))
	builder.WriteString(normalizePath(t.Path))
	return builder.String()
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
