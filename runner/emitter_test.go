package runner

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/hrekt/hrekt/common/httpx"
	"github.com/hrekt/hrekt/common/matcher"
	"github.com/hrekt/hrekt/common/targets"
	"github.com/stretchr/testify/require"
)

func exampleSuccess() *httpx.Success {
	return &httpx.Success{
		URL:        "http://example.com:80/",
		FinalURL:   "http://example.com:80/",
		StatusCode: 200,
		Headers:    http.Header{"Server": {"ECS"}, "Content-Type": {"text/html; charset=UTF-8"}},
		Body:       []byte("<title>Example</title>"),
		Title:      "Example",
		Chain:      []httpx.ChainItem{{RequestURL: "http://example.com:80/", StatusCode: 200}},
	}
}

var exampleTarget = targets.Target{Host: "example.com", Port: 80, Scheme: targets.HTTP}

func TestBuildResult_urlOnly(t *testing.T) {
	cfg := RunConfig{NoColor: true}
	outcome := exampleSuccess()
	result, emit := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.True(t, emit)
	require.Equal(t, "http://example.com:80/", result.String())
}

func TestBuildResult_statusAndTitle(t *testing.T) {
	cfg := RunConfig{NoColor: true, Match: matcher.Config{StatusCode: true, Title: true}}
	outcome := exampleSuccess()
	result, emit := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.True(t, emit)
	require.Equal(t, "http://example.com:80/ [200] [Example]", result.String())
	require.Equal(t, result.String(), result.colored)
}

func TestBuildResult_noTitleInPage(t *testing.T) {
	cfg := RunConfig{NoColor: true, Match: matcher.Config{StatusCode: true, Title: true}}
	outcome := exampleSuccess()
	outcome.Body = []byte("<html><body>no head</body></html>")
	outcome.Title = ""
	result, emit := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.True(t, emit)
	require.Equal(t, "http://example.com:80/ [200]", result.String())
}

func TestBuildResult_fieldOrder(t *testing.T) {
	cfg := RunConfig{NoColor: true, Match: matcher.Config{StatusCode: true, Title: true}}
	outcome := exampleSuccess()
	match := matcher.Match(outcome, cfg.Match).WithTech("Nginx,PHP")
	result, _ := buildResult(exampleTarget, outcome, match, cfg)
	require.Equal(t, "http://example.com:80/ [200] [Example] [Nginx,PHP]", result.String())
}

func TestBuildResult_colored(t *testing.T) {
	cfg := RunConfig{Match: matcher.Config{StatusCode: true}}
	outcome := exampleSuccess()
	result, _ := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.Equal(t, "http://example.com:80/ [200]", result.String())
	require.NotEqual(t, result.String(), result.colored)
	require.Contains(t, result.colored, "200")
}

func TestBuildResult_silent(t *testing.T) {
	cfg := RunConfig{NoColor: true, Silent: true}
	outcome := exampleSuccess()
	result, emit := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.False(t, emit)
	require.Equal(t, "http://example.com:80/", result.String())
}

func TestBuildResult_excluded(t *testing.T) {
	cfg := RunConfig{NoColor: true, Match: matcher.Config{BodyRegex: regexp.MustCompile(`wp-content`)}}
	outcome := exampleSuccess()
	_, emit := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)
	require.False(t, emit)

	failure := &httpx.Failure{Kind: httpx.ConnectionError, URL: "http://example.com:80/"}
	_, emit = buildResult(exampleTarget, failure, matcher.Match(failure, matcher.Config{}), RunConfig{})
	require.False(t, emit)
}

func TestResultJSON(t *testing.T) {
	cfg := RunConfig{NoColor: true, Match: matcher.Config{StatusCode: true, Title: true}}
	outcome := exampleSuccess()
	result, _ := buildResult(exampleTarget, outcome, matcher.Match(outcome, cfg.Match), cfg)

	var decoded map[string]interface{}
	require.Nil(t, json.Unmarshal([]byte(result.JSON()), &decoded))
	require.Equal(t, "http://example.com:80/", decoded["url"])
	require.Equal(t, "Example", decoded["title"])
	require.Equal(t, float64(200), decoded["status_code"])
	require.Equal(t, "ECS", decoded["webserver"])
	require.Equal(t, "text/html", decoded["content_type"])
	require.Equal(t, "http", decoded["scheme"])
	require.Equal(t, "80", decoded["port"])
	require.NotEmpty(t, decoded["body_mmh3"])
	require.NotContains(t, decoded, "chain")
}
