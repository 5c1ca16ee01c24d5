package httpx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	stringsutil "github.com/projectdiscovery/utils/strings"
)

// FailureKind categorizes why a probe produced no response
type FailureKind string

const (
	ResolutionError   FailureKind = "resolution-error"
	ConnectionError   FailureKind = "connection-error"
	TLSError          FailureKind = "tls-error"
	Timeout           FailureKind = "timeout"
	HTTPProtocolError FailureKind = "http-protocol-error"
	RedirectLoop      FailureKind = "redirect-loop"
)

// Classify maps a transport error to a FailureKind. Typed errors are
// checked first; the dialer and client wrap errors as strings often enough
// that message matching is kept as a fallback.
func Classify(err error) FailureKind {
	if err == nil {
		return HTTPProtocolError
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return Timeout
		}
		return ResolutionError
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}

	var (
		recordErr    tls.RecordHeaderError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		certInvalid  x509.CertificateInvalidError
		verification *tls.CertificateVerificationError
	)
	if errors.As(err, &recordErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) || errors.As(err, &verification) {
		return TLSError
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return ConnectionError
	}

	// the request URL would leak host names into the message checks
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	msg := strings.ToLower(err.Error())
	switch {
	case stringsutil.ContainsAny(msg, "timeout", "deadline exceeded", "timed out"):
		return Timeout
	case stringsutil.ContainsAny(msg, "no such host", "could not resolve host", "no address found", "server misbehaving"):
		return ResolutionError
	case stringsutil.ContainsAny(msg, "tls:", "x509", "handshake", "server gave http response to https client", "certificate"):
		return TLSError
	case stringsutil.ContainsAny(msg, "stopped after", "redirect loop"):
		return RedirectLoop
	case stringsutil.ContainsAny(msg, "connection refused", "connection reset", "no route to host",
		"network is unreachable", "could not connect", "broken pipe", "dial "):
		return ConnectionError
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConnectionError
	}
	return HTTPProtocolError
}
