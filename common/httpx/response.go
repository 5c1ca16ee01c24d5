package httpx

import (
	"net/http"
	"sort"
	"strings"
)

// ChainItem is one hop of a followed redirect chain
type ChainItem struct {
	RequestURL string `json:"request-url,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Location   string `json:"location,omitempty"`
}

// GetHeader value
func (s *Success) GetHeader(name string) string {
	v, ok := s.Headers[http.CanonicalHeaderKey(name)]
	if ok {
		return strings.Join(v, " ")
	}

	return ""
}

// GetHeaderPart with offset
func (s *Success) GetHeaderPart(name, sep string) string {
	v, ok := s.Headers[http.CanonicalHeaderKey(name)]
	if ok && len(v) > 0 {
		tokens := strings.Split(strings.Join(v, " "), sep)
		return tokens[0]
	}

	return ""
}

// GetChainStatusCodes from redirects
func (s *Success) GetChainStatusCodes() []int {
	var statusCodes []int
	for _, chainItem := range s.Chain {
		statusCodes = append(statusCodes, chainItem.StatusCode)
	}
	return statusCodes
}

// HasChain redirects
func (s *Success) HasChain() bool {
	return len(s.Chain) > 1
}

// HeadersString renders headers as "Name: Value" lines, one per value,
// with names sorted so the output is stable across runs.
func HeadersString(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		for _, value := range headers[name] {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(value)
		}
	}
	return b.String()
}
