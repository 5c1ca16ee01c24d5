package httpx

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/hrekt/hrekt/common/targets"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, configure func(*Options)) *HTTPX {
	t.Helper()
	options := DefaultOptions
	options.Timeout = 2 * time.Second
	if configure != nil {
		configure(&options)
	}
	ht, err := New(&options)
	require.Nil(t, err)
	t.Cleanup(ht.Close)
	return ht
}

func targetFor(t *testing.T, rawURL string, scheme targets.Scheme, forced bool) targets.Target {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.Nil(t, err)
	port, err := strconv.Atoi(u.Port())
	require.Nil(t, err)
	return targets.Target{Host: u.Hostname(), Port: uint16(port), Scheme: scheme, Forced: forced}
}

func TestProbe_success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "nginx")
		fmt.Fprint(w, "<html><head><TITLE> Hello &amp;\n  World </TITLE><title>second</title></head></html>")
	}))
	defer ts.Close()

	ht := newClient(t, func(o *Options) { o.ExtractTitle = true })
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, false)))

	success, ok := outcome.(*Success)
	require.True(t, ok, "unexpected outcome %#v", outcome)
	require.Equal(t, http.StatusOK, success.StatusCode)
	require.Equal(t, "Hello & World", success.Title)
	require.Equal(t, "nginx", success.GetHeader("server"))
	require.False(t, success.Truncated)
	require.Equal(t, success.URL, success.FinalURL)
}

func TestProbe_userAgent(t *testing.T) {
	agents := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
	}))
	defer ts.Close()

	ht := newClient(t, nil)
	ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))
	require.Equal(t, DefaultUserAgent, <-agents)
}

func redirectChain(hops int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/"))
		if n < hops {
			http.Redirect(w, r, "/"+strconv.Itoa(n+1), http.StatusFound)
			return
		}
		fmt.Fprint(w, "<title>landed</title>")
	}))
}

func TestProbe_followRedirects(t *testing.T) {
	ts := redirectChain(3)
	defer ts.Close()

	ht := newClient(t, func(o *Options) {
		o.FollowRedirects = true
		o.ExtractTitle = true
	})
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, success.StatusCode)
	require.Equal(t, 3, success.Redirects)
	require.Equal(t, "landed", success.Title)
	require.True(t, strings.HasSuffix(success.FinalURL, "/3"))
	require.Equal(t, []int{302, 302, 302, 200}, success.GetChainStatusCodes())
	require.Empty(t, success.RedirectStop)
}

func TestProbe_redirectsNotFollowed(t *testing.T) {
	ts := redirectChain(3)
	defer ts.Close()

	ht := newClient(t, nil)
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.Equal(t, http.StatusFound, success.StatusCode)
	require.Equal(t, 0, success.Redirects)
}

func TestProbe_redirectCap(t *testing.T) {
	ts := redirectChain(11)
	defer ts.Close()

	ht := newClient(t, func(o *Options) {
		o.FollowRedirects = true
		o.MaxRedirects = 10
	})
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.Equal(t, http.StatusFound, success.StatusCode)
	require.Equal(t, 10, success.Redirects)
	require.Equal(t, StopMaxHops, success.RedirectStop)
}

func TestProbe_redirectLoop(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a" {
			http.Redirect(w, r, "/b", http.StatusMovedPermanently)
			return
		}
		http.Redirect(w, r, "/a", http.StatusMovedPermanently)
	}))
	defer ts.Close()

	ht := newClient(t, func(o *Options) { o.FollowRedirects = true })
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.Equal(t, StopLoop, success.RedirectStop)
	require.Equal(t, http.StatusMovedPermanently, success.StatusCode)
	require.Equal(t, 2, success.Redirects)
}

func TestProbe_timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ht := newClient(t, func(o *Options) { o.Timeout = 200 * time.Millisecond })
	start := time.Now()
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, false)))

	failure, ok := outcome.(*Failure)
	require.True(t, ok, "unexpected outcome %#v", outcome)
	require.Equal(t, Timeout, failure.Kind)
	// timeouts are not retried with the other scheme
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestProbe_connectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := listener.Addr().String()
	require.Nil(t, listener.Close())

	ht := newClient(t, nil)
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, "http://"+addr, targets.HTTP, true)))

	failure, ok := outcome.(*Failure)
	require.True(t, ok, "unexpected outcome %#v", outcome)
	require.Equal(t, ConnectionError, failure.Kind)
	require.Contains(t, failure.URL, addr)
}

func TestProbe_tlsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	ht := newClient(t, nil)
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTPS, true)))

	failure, ok := outcome.(*Failure)
	require.True(t, ok, "unexpected outcome %#v", outcome)
	require.Equal(t, TLSError, failure.Kind)
}

func TestProbe_schemeFallback(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer ts.Close()

	ht := newClient(t, nil)
	target := targetFor(t, ts.URL, targets.HTTP, false)
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(target))

	success, ok := outcome.(*Success)
	require.True(t, ok, "unexpected outcome %#v", outcome)
	require.Equal(t, http.StatusOK, success.StatusCode)
	require.True(t, strings.HasPrefix(success.URL, "https://"))
	require.Equal(t, "secure", string(success.Body))

	// a forced scheme keeps the plain HTTP answer
	target.Forced = true
	outcome = ht.Probe(context.Background(), ht.NewProbeRequest(target))
	success, ok = outcome.(*Success)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, success.StatusCode)
	require.True(t, strings.HasPrefix(success.URL, "http://"))
}

func TestProbe_bodyCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", 4096))
	}))
	defer ts.Close()

	ht := newClient(t, func(o *Options) { o.MaxResponseBodySize = 1024 })
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.True(t, success.Truncated)
	require.Len(t, success.Body, 1024)
}

func TestProbe_unboundedBodyCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "full body")
	}))
	defer ts.Close()

	ht := newClient(t, func(o *Options) { o.MaxResponseBodySize = math.MaxInt64 })
	outcome := ht.Probe(context.Background(), ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, true)))

	success, ok := outcome.(*Success)
	require.True(t, ok)
	require.False(t, success.Truncated)
	require.Equal(t, "full body", string(success.Body))
}

func TestProbe_cancelled(t *testing.T) {
	ht := newClient(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := ht.Probe(ctx, ht.NewProbeRequest(targets.Target{Host: "127.0.0.1", Port: 80, Scheme: targets.HTTP}))
	skipped, ok := outcome.(*Skipped)
	require.True(t, ok)
	require.Equal(t, "run cancelled", skipped.Reason)
}

func TestProbe_cancelledInFlight(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ht := newClient(t, func(o *Options) { o.Timeout = 5 * time.Second })
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	outcome := ht.Probe(ctx, ht.NewProbeRequest(targetFor(t, ts.URL, targets.HTTP, false)))
	_, ok := outcome.(*Skipped)
	require.True(t, ok, "unexpected outcome %#v", outcome)
}

func TestHeadersString(t *testing.T) {
	headers := http.Header{
		"X-Powered-By": {"PHP/8.1"},
		"Content-Type": {"text/html"},
		"Set-Cookie":   {"a=1", "b=2"},
	}
	require.Equal(t, "Content-Type: text/html\nSet-Cookie: a=1\nSet-Cookie: b=2\nX-Powered-By: PHP/8.1", HeadersString(headers))
	require.Equal(t, "", HeadersString(nil))
}
