package runner

import (
	"encoding/json"
	"time"

	"github.com/hrekt/hrekt/common/httpx"
)

// Result of a scan
type Result struct {
	Timestamp     time.Time         `json:"timestamp,omitempty"`
	Input         string            `json:"input,omitempty"`
	URL           string            `json:"url,omitempty"`
	FinalURL      string            `json:"final_url,omitempty"`
	Scheme        string            `json:"scheme,omitempty"`
	Host          string            `json:"host,omitempty"`
	Port          string            `json:"port,omitempty"`
	Path          string            `json:"path,omitempty"`
	Title         string            `json:"title,omitempty"`
	Technologies  string            `json:"tech,omitempty"`
	BodyMatch     string            `json:"body_match,omitempty"`
	HeaderMatch   string            `json:"header_match,omitempty"`
	BodyMMH3      string            `json:"body_mmh3,omitempty"`
	WebServer     string            `json:"webserver,omitempty"`
	ContentType   string            `json:"content_type,omitempty"`
	RedirectStop  string            `json:"redirect_stop,omitempty"`
	ResponseTime  string            `json:"time,omitempty"`
	Chain         []httpx.ChainItem `json:"chain,omitempty"`
	StatusCode    int               `json:"status_code,omitempty"`
	ContentLength int               `json:"content_length,omitempty"`
	Redirects     int               `json:"redirects,omitempty"`
	Truncated     bool              `json:"truncated,omitempty"`
	str           string
	colored       string
}

// String is the plain output line
func (r Result) String() string {
	return r.str
}

// JSON the result
func (r Result) JSON() string {
	if js, err := json.Marshal(r); err == nil {
		return string(js)
	}

	return ""
}

