package targets

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"

	customport "github.com/hrekt/hrekt/common/customports"
	"github.com/hrekt/hrekt/common/stringz"
	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/hmap/store/hybrid"
	"github.com/projectdiscovery/iputil"
	"github.com/projectdiscovery/mapcidr"
)

const maxLineSize = 1024 * 1024

// Options of the expander
type Options struct {
	Ports customport.CustomPorts
	Path  string
	// ForceHTTPS probes every port over TLS
	ForceHTTPS bool
	// Dedupe drops hosts already seen in this run
	Dedupe bool
}

// Expander turns input lines into probe targets
type Expander struct {
	options Options
	seen    *hybrid.HybridMap
	hosts   atomic.Uint64
}

// New creates an expander. Default ports are used when none are configured.
func New(options Options) (*Expander, error) {
	if len(options.Ports) == 0 {
		options.Ports = append(customport.CustomPorts{}, customport.DefaultPorts...)
	}
	expander := &Expander{options: options}
	if options.Dedupe {
		hm, err := hybrid.New(hybrid.DefaultDiskOptions)
		if err != nil {
			return nil, errors.Wrap(err, "could not create dedupe store")
		}
		expander.seen = hm
	}
	return expander, nil
}

// Expand returns one target per configured port for the given host.
// Blank lines yield no targets.
func (e *Expander) Expand(host string) []Target {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil
	}
	targets := make([]Target, 0, len(e.options.Ports))
	for _, port := range e.options.Ports {
		target := Target{
			Host:   host,
			Port:   port.Number,
			Scheme: HTTP,
			Path:   e.options.Path,
		}
		switch {
		case port.Scheme != "":
			target.Scheme = Scheme(port.Scheme)
			target.Forced = true
		case e.options.ForceHTTPS:
			target.Scheme = HTTPS
			target.Forced = true
		case port.Number == 443:
			target.Scheme = HTTPS
		}
		targets = append(targets, target)
	}
	return targets
}

// Stream reads hosts line by line and yields their targets lazily.
// The channel is closed when the input is exhausted, unreadable, or ctx is done.
func (e *Expander) Stream(ctx context.Context, input io.Reader) <-chan Target {
	results := make(chan Target)
	go func() {
		defer close(results)

		send := func(host string) bool {
			if e.isDuplicate(host) {
				return true
			}
			e.hosts.Add(1)
			for _, target := range e.Expand(host) {
				select {
				case results <- target:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		reader := bufio.NewReader(input)
		for {
			if ctx.Err() != nil {
				return
			}
			raw, readErr := readLine(reader)
			line := strings.TrimSpace(raw)
			// A valid host does not contain spaces or wildcards
			if line != "" && !strings.ContainsAny(line, " \t*") {
				if !e.sendLine(ctx, line, send) {
					return
				}
			}
			if readErr != nil {
				if readErr != io.EOF {
					gologger.Warning().Msgf("Could not read input: %s\n", readErr)
				}
				return
			}
		}
	}()
	return results
}

// sendLine expands one input line. It returns false once ctx is done.
func (e *Expander) sendLine(ctx context.Context, line string, send func(string) bool) bool {
	if iputil.IsCIDR(line) {
		ips, err := mapcidr.IPAddressesAsStream(line)
		if err != nil {
			gologger.Debug().Msgf("Could not expand cidr '%s': %s\n", line, err)
			return true
		}
		for ip := range ips {
			if !send(ip) {
				go drain(ips)
				return false
			}
		}
		return ctx.Err() == nil
	}

	host := stringz.ExtractHost(line)
	if host == "" {
		return true
	}
	return send(host)
}

// readLine returns the next line without its terminator. Lines longer than
// maxLineSize are consumed up to their newline and returned empty.
func readLine(reader *bufio.Reader) (string, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, isPrefix, err := reader.ReadLine()
		if !tooLong {
			if len(line)+len(chunk) > maxLineSize {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if err != nil || !isPrefix {
			if tooLong {
				gologger.Debug().Msgf("Skipping input line longer than %d bytes\n", maxLineSize)
				return "", err
			}
			return string(line), err
		}
	}
}

// Hosts returns the number of hosts expanded so far
func (e *Expander) Hosts() uint64 {
	return e.hosts.Load()
}

// Close releases the dedupe store
func (e *Expander) Close() error {
	if e.seen != nil {
		return e.seen.Close()
	}
	return nil
}

func (e *Expander) isDuplicate(host string) bool {
	if e.seen == nil {
		return false
	}
	if _, ok := e.seen.Get(host); ok {
		return true
	}
	_ = e.seen.Set(host, nil)
	return false
}

func drain(ips chan string) {
	for range ips {
	}
}
