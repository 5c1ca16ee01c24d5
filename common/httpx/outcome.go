package httpx

import (
	"fmt"
	"net/http"
	"time"
)

// Outcome is the result of probing one target. It is one of
// *Success, *Failure or *Skipped.
type Outcome interface {
	isOutcome()
}

// Success is a target that answered with an HTTP response
type Success struct {
	// URL is the probed URL, with the scheme that actually answered
	URL string
	// FinalURL is the URL of the last hop when redirects are followed
	FinalURL      string
	StatusCode    int
	Headers       http.Header
	Body          []byte
	Title         string
	ContentLength int
	// Truncated is set when the body exceeded the configured cap
	Truncated bool
	// Chain holds every hop, the final one included
	Chain     []ChainItem
	Redirects int
	// RedirectStop is "loop" or "max-hops" when following stopped early
	RedirectStop string
	IP           string
	Duration     time.Duration
}

// Failure is a target that produced no usable response
type Failure struct {
	Kind    FailureKind
	Message string
	URL     string
}

// Skipped is a target that was never probed
type Skipped struct {
	Reason string
}

func (*Success) isOutcome() {}
func (*Failure) isOutcome() {}
func (*Skipped) isOutcome() {}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.URL, f.Kind, f.Message)
}

