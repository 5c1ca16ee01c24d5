package httpx

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/hrekt/hrekt/common/targets"
	"github.com/projectdiscovery/fastdialer/fastdialer"
	retryablehttp "github.com/projectdiscovery/retryablehttp-go"
	stringsutil "github.com/projectdiscovery/utils/strings"
)

// Redirect stop reasons
const (
	StopLoop    = "loop"
	StopMaxHops = "max-hops"
)

// HTTPX represent an instance of the library client
type HTTPX struct {
	client        *retryablehttp.Client
	Options       *Options
	CustomHeaders map[string]string
	Dialer        *fastdialer.Dialer
}

// ProbeRequest is one target with the run-scoped probing settings
type ProbeRequest struct {
	Target          targets.Target
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	ExtractTitle    bool
	// Fallback allows one retry with the other scheme
	Fallback bool
}

// New httpx instance
func New(options *Options) (*HTTPX, error) {
	httpx := &HTTPX{}
	fastdialerOpts := fastdialer.DefaultOptions
	fastdialerOpts.EnableFallback = true
	fastdialerOpts.WithDialerHistory = true
	fastdialerOpts.DialerTimeout = options.Timeout
	if len(options.Resolvers) > 0 {
		fastdialerOpts.BaseResolvers = options.Resolvers
	}
	dialer, err := fastdialer.NewDialer(fastdialerOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create resolver cache: %s", err)
	}
	httpx.Dialer = dialer
	if options.DefaultUserAgent == "" {
		options.DefaultUserAgent = DefaultUserAgent
	}
	if options.MaxResponseBodySize <= 0 {
		options.MaxResponseBodySize = DefaultOptions.MaxResponseBodySize
	}
	httpx.Options = options

	var retryablehttpOptions = retryablehttp.DefaultOptionsSpraying
	retryablehttpOptions.Timeout = options.Timeout
	retryablehttpOptions.RetryMax = 0

	// redirects are walked hop by hop in Probe
	var redirectFunc = func(_ *http.Request, _ []*http.Request) error {
		return http.ErrUseLastResponse
	}

	transport := &http.Transport{
		DialContext:         httpx.Dialer.Dial,
		MaxIdleConnsPerHost: -1,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
		},
		DisableKeepAlives: true,
	}

	if options.HTTPProxy != "" {
		proxyURL, parseErr := url.Parse(options.HTTPProxy)
		if parseErr != nil {
			return nil, parseErr
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	httpx.client = retryablehttp.NewWithHTTPClient(&http.Client{
		Transport:     transport,
		Timeout:       options.Timeout,
		CheckRedirect: redirectFunc,
	}, retryablehttpOptions)
	httpx.client.CheckRetry = func(_ context.Context, _ *http.Response, _ error) (bool, error) {
		return false, nil
	}

	httpx.CustomHeaders = options.CustomHeaders
	return httpx, nil
}

// NewProbeRequest wraps target with the client's run-scoped settings
func (h *HTTPX) NewProbeRequest(target targets.Target) ProbeRequest {
	return ProbeRequest{
		Target:          target,
		Timeout:         h.Options.Timeout,
		FollowRedirects: h.Options.FollowRedirects,
		MaxRedirects:    h.Options.MaxRedirects,
		ExtractTitle:    h.Options.ExtractTitle,
		Fallback:        !h.Options.NoFallbackScheme && !target.Forced,
	}
}

// Probe issues the GET for req and returns exactly one outcome
func (h *HTTPX) Probe(ctx context.Context, req ProbeRequest) Outcome {
	if ctx.Err() != nil {
		return &Skipped{Reason: "run cancelled"}
	}
	scheme := req.Target.Scheme
	outcome := h.probeScheme(ctx, req, scheme)
	if !req.Fallback || !shouldFallback(scheme, outcome) || ctx.Err() != nil {
		return outcome
	}

	fallback := h.probeScheme(ctx, req, scheme.Other())
	if _, ok := fallback.(*Failure); ok {
		return outcome
	}
	return fallback
}

// shouldFallback reports whether the other scheme is worth one more try
func shouldFallback(scheme targets.Scheme, outcome Outcome) bool {
	switch o := outcome.(type) {
	case *Failure:
		return o.Kind != Timeout && o.Kind != ResolutionError
	case *Success:
		return scheme == targets.HTTP && isPlainHTTPToTLS(o)
	}
	return false
}

// isPlainHTTPToTLS detects servers that answer plain HTTP on a TLS port with a 400
func isPlainHTTPToTLS(s *Success) bool {
	if s.StatusCode != http.StatusBadRequest {
		return false
	}
	return stringsutil.ContainsAny(string(s.Body), "HTTP request to an HTTPS server", "sent to HTTPS port")
}

type hop struct {
	statusCode int
	headers    http.Header
	body       []byte
	truncated  bool
	location   string
	ip         string
}

func (h *HTTPX) probeScheme(ctx context.Context, req ProbeRequest, scheme targets.Scheme) Outcome {
	timeStart := time.Now()
	startURL := req.Target.URLWithScheme(scheme)
	current := startURL
	visited := map[string]struct{}{visitKey(current): {}}

	success := &Success{URL: startURL}
	for {
		resp, err := h.fetch(ctx, current, req.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return &Skipped{Reason: "run cancelled"}
			}
			return &Failure{Kind: Classify(err), Message: err.Error(), URL: current}
		}
		success.Chain = append(success.Chain, ChainItem{RequestURL: current, StatusCode: resp.statusCode, Location: resp.location})
		success.FinalURL = current
		success.StatusCode = resp.statusCode
		success.Headers = resp.headers
		success.Body = resp.body
		success.ContentLength = len(resp.body)
		success.Truncated = resp.truncated
		success.IP = resp.ip

		if !req.FollowRedirects || !isRedirect(resp.statusCode) || resp.location == "" {
			break
		}
		if success.Redirects >= req.MaxRedirects {
			success.RedirectStop = StopMaxHops
			break
		}
		key := visitKey(resp.location)
		if _, seen := visited[key]; seen {
			success.RedirectStop = StopLoop
			break
		}
		visited[key] = struct{}{}
		success.Redirects++
		current = resp.location
	}

	if req.ExtractTitle {
		success.Title = ExtractTitle(success.Body, success.Headers)
	}
	success.Duration = time.Since(timeStart)
	return success
}

// fetch performs one hop under its own timeout and reads the capped body
func (h *HTTPX) fetch(ctx context.Context, targetURL string, timeout time.Duration) (*hop, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	h.SetCustomHeaders(req, h.CustomHeaders)

	httpresp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpresp.Body.Close()

	limit := h.Options.MaxResponseBodySize
	if limit >= math.MaxInt64 {
		limit = math.MaxInt64 - 1
	}
	body, err := io.ReadAll(io.LimitReader(httpresp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	result := &hop{
		statusCode: httpresp.StatusCode,
		headers:    httpresp.Header.Clone(),
		body:       body,
		ip:         h.Dialer.GetDialedIP(hostname(httpresp.Request.URL.Host)),
	}
	if int64(len(body)) > limit {
		result.body = body[:limit]
		result.truncated = true
	}
	if location, err := httpresp.Location(); err == nil {
		result.location = location.String()
	}
	return result, nil
}

func isRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// visitKey drops the default port so http://h:80/ and http://h/ compare equal
func visitKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
		if strings.Contains(u.Host, ":") {
			u.Host = "[" + u.Host + "]"
		}
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	return u.String()
}

func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

// SetCustomHeaders on the provided request
func (h *HTTPX) SetCustomHeaders(r *retryablehttp.Request, headers map[string]string) {
	userAgent := h.Options.DefaultUserAgent
	if h.Options.RandomAgent {
		userAgent = uarand.GetRandom()
	}
	r.Header.Set("User-Agent", userAgent)
	r.Header.Set("Accept", "*/*")
	r.Header.Set("Accept-Charset", "utf-8")
	for name, value := range headers {
		r.Header.Set(name, value)
		// host header is set on the request struct
		if name == "Host" {
			r.Host = value
		}
	}
}

// Close releases the dialer cache
func (h *HTTPX) Close() {
	h.Dialer.Close()
}
