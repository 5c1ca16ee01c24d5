package runner

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hrekt/hrekt/common/hashes"
	"github.com/hrekt/hrekt/common/httpx"
	"github.com/hrekt/hrekt/common/matcher"
	"github.com/hrekt/hrekt/common/targets"
	"github.com/logrusorgru/aurora"
)

// buildResult turns a matched outcome into a record. The bool reports
// whether the record should be printed: excluded targets never are, and
// silent mode suppresses every line.
func buildResult(target targets.Target, outcome httpx.Outcome, match matcher.MatchResult, cfg RunConfig) (Result, bool) {
	success, ok := outcome.(*httpx.Success)
	if !ok || match.Excluded {
		return Result{}, false
	}

	result := Result{
		Timestamp:     time.Now(),
		Input:         target.Host,
		URL:           success.URL,
		Scheme:        schemeOf(success.URL),
		Host:          success.IP,
		Port:          strconv.Itoa(int(target.Port)),
		Path:          target.Path,
		BodyMatch:     match.BodyMatch,
		HeaderMatch:   match.HeaderMatch,
		Technologies:  match.TechLabel,
		BodyMMH3:      hashes.Mmh3(success.Body),
		WebServer:     success.GetHeader("Server"),
		ContentType:   success.GetHeaderPart("Content-Type", ";"),
		ContentLength: success.ContentLength,
		Truncated:     success.Truncated,
		RedirectStop:  success.RedirectStop,
		Redirects:     success.Redirects,
		ResponseTime:  success.Duration.String(),
	}
	if match.HasStatus {
		result.StatusCode = match.StatusCode
	}
	if match.HasTitle && match.Title != "" {
		result.Title = match.Title
	}
	if success.HasChain() {
		result.FinalURL = success.FinalURL
		result.Chain = success.Chain
	}

	result.str = formatLine(aurora.NewAurora(false), result.URL, match)
	result.colored = result.str
	if !cfg.NoColor {
		result.colored = formatLine(aurora.NewAurora(true), result.URL, match)
	}
	return result, !cfg.Silent
}

// formatLine renders "URL [status] [title] [tech]". Each field appears only
// when requested; title and tech also need a value.
func formatLine(au aurora.Aurora, url string, match matcher.MatchResult) string {
	builder := &strings.Builder{}
	builder.WriteString(url)

	if match.HasStatus {
		builder.WriteString(" [")
		status := strconv.Itoa(match.StatusCode)
		// Color the status code based on its value
		switch {
		case match.StatusCode >= http.StatusOK && match.StatusCode < http.StatusMultipleChoices:
			builder.WriteString(au.Green(status).String())
		case match.StatusCode >= http.StatusMultipleChoices && match.StatusCode < http.StatusBadRequest:
			builder.WriteString(au.Yellow(status).String())
		case match.StatusCode >= http.StatusBadRequest && match.StatusCode < http.StatusInternalServerError:
			builder.WriteString(au.Red(status).String())
		case match.StatusCode >= http.StatusInternalServerError:
			builder.WriteString(au.Bold(au.Yellow(status)).String())
		default:
			builder.WriteString(status)
		}
		builder.WriteRune(']')
	}

	if match.HasTitle && match.Title != "" {
		builder.WriteString(" [")
		builder.WriteString(au.Cyan(match.Title).String())
		builder.WriteRune(']')
	}

	if match.TechLabel != "" {
		builder.WriteString(" [")
		builder.WriteString(au.Magenta(match.TechLabel).String())
		builder.WriteRune(']')
	}
	return builder.String()
}

func schemeOf(url string) string {
	if idx := strings.Index(url, "://"); idx > 0 {
		return url[:idx]
	}
	return ""
}
