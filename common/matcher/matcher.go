// Package matcher evaluates the configured filters against a probe outcome.
package matcher

import (
	"net/http"
	"regexp"

	"github.com/hrekt/hrekt/common/httpx"
)

// MatchState is the state of one optional predicate
type MatchState int

const (
	// NotEvaluated means the predicate was not configured
	NotEvaluated MatchState = iota
	Matched
	NotMatched
)

func (s MatchState) String() string {
	switch s {
	case Matched:
		return "matched"
	case NotMatched:
		return "not-matched"
	}
	return "not-evaluated"
}

// Exclusion reasons
const (
	ReasonNoResponse   = "no-response"
	ReasonPathNotFound = "path-not-found"
	ReasonBody         = "body-regex"
	ReasonHeader       = "header-regex"
)

// Config holds the predicates of a run
type Config struct {
	BodyRegex   *regexp.Regexp
	HeaderRegex *regexp.Regexp
	// Path set means 404 and 400 answers count as "path not found"
	Path       string
	StatusCode bool
	Title      bool
}

// MatchResult is the immutable verdict for one outcome
type MatchResult struct {
	Body        MatchState
	Header      MatchState
	BodyMatch   string
	HeaderMatch string
	StatusCode  int
	HasStatus   bool
	Title       string
	HasTitle    bool
	TechLabel   string
	Excluded    bool
	Reason      string
}

// WithTech returns a copy of the result carrying the technology label
func (m MatchResult) WithTech(label string) MatchResult {
	m.TechLabel = label
	return m
}

// Match evaluates cfg against outcome. Only successes can match; a
// configured regex that does not match excludes the target.
func Match(outcome httpx.Outcome, cfg Config) MatchResult {
	success, ok := outcome.(*httpx.Success)
	if !ok {
		return MatchResult{Excluded: true, Reason: ReasonNoResponse}
	}

	result := MatchResult{}
	if cfg.StatusCode {
		result.StatusCode = success.StatusCode
		result.HasStatus = true
	}
	if cfg.Title {
		result.Title = success.Title
		result.HasTitle = true
	}

	if cfg.Path != "" && (success.StatusCode == http.StatusNotFound || success.StatusCode == http.StatusBadRequest) {
		result.Excluded = true
		result.Reason = ReasonPathNotFound
		return result
	}

	if cfg.BodyRegex != nil {
		result.Body, result.BodyMatch = evaluate(cfg.BodyRegex, string(success.Body))
		if result.Body == NotMatched {
			result.Excluded = true
			result.Reason = ReasonBody
			return result
		}
	}
	if cfg.HeaderRegex != nil {
		result.Header, result.HeaderMatch = evaluate(cfg.HeaderRegex, httpx.HeadersString(success.Headers))
		if result.Header == NotMatched {
			result.Excluded = true
			result.Reason = ReasonHeader
		}
	}
	return result
}

// evaluate returns the state and the last capture group of the first match,
// or the whole match when the pattern has no groups
func evaluate(re *regexp.Regexp, data string) (MatchState, string) {
	match := re.FindStringSubmatch(data)
	if match == nil {
		return NotMatched, ""
	}
	return Matched, match[len(match)-1]
}
