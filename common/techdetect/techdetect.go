// Package techdetect labels a response with the technologies it exposes.
package techdetect

import (
	"context"
	"sort"
	"strings"

	"github.com/hrekt/hrekt/common/httpx"
	"github.com/hrekt/hrekt/common/slice"
	"github.com/pkg/errors"
	wappalyzer "github.com/projectdiscovery/wappalyzergo"
)

// Detector produces a technology label for a successful probe.
// An empty label with a nil error means nothing was recognized.
type Detector interface {
	Detect(ctx context.Context, response *httpx.Success) (string, error)
}

// Wappalyzer fingerprints headers and body against the wappalyzer database
type Wappalyzer struct {
	wappalyzer *wappalyzer.Wappalyze
}

// New creates a fingerprinting detector
func New() (*Wappalyzer, error) {
	client, err := wappalyzer.New()
	if err != nil {
		return nil, errors.Wrap(err, "could not create wappalyzer client")
	}
	return &Wappalyzer{wappalyzer: client}, nil
}

// Detect returns the recognized technologies, sorted and comma joined
func (w *Wappalyzer) Detect(ctx context.Context, response *httpx.Success) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if response == nil {
		return "", errors.New("no response to fingerprint")
	}
	technologies := Technologies(w.wappalyzer.Fingerprint(response.Headers, response.Body))
	return strings.Join(technologies, ","), nil
}

// Technologies flattens a fingerprint set into a sorted slice
func Technologies(matches map[string]struct{}) []string {
	technologies := slice.ToSlice(matches)
	sort.Strings(technologies)
	return technologies
}
