package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hrekt/hrekt/common/fileutil"
	"github.com/hrekt/hrekt/common/httpx"
	"github.com/hrekt/hrekt/common/matcher"
	"github.com/hrekt/hrekt/common/ratelimit"
	"github.com/hrekt/hrekt/common/targets"
	"github.com/hrekt/hrekt/common/techdetect"
	"github.com/hrekt/hrekt/common/workerpool"
	"github.com/pkg/errors"
	"github.com/projectdiscovery/clistats"
	// automatic fd max increase if running as root
	_ "github.com/projectdiscovery/fdmax/autofdmax"
	"github.com/projectdiscovery/gologger"
	"go.uber.org/multierr"
)

const (
	statsDisplayInterval = 5
	cancelledReason      = "run cancelled"
)

// Runner is a client for running the enumeration process.
type Runner struct {
	options  *Options
	config   RunConfig
	hp       *httpx.HTTPX
	expander *targets.Expander
	limiter  *ratelimit.Limiter
	pool     *workerpool.Pool
	detector techdetect.Detector
	output   *outputWriter
	stats    clistats.StatisticsClient
	summary  *Summary
}

// New creates a new client for running enumeration process.
func New(options *Options) (runner *Runner, err error) {
	config, err := options.RunConfig()
	if err != nil {
		return nil, err
	}
	runner = &Runner{
		options: options,
		config:  config,
		summary: newSummary(),
	}
	defer func() {
		if err != nil {
			runner.Close() //nolint
			runner = nil
		}
	}()

	if config.TechDetect {
		runner.detector = options.TechDetector
		if runner.detector == nil {
			if runner.detector, err = techdetect.New(); err != nil {
				return runner, err
			}
		}
	}

	httpxOptions := httpx.DefaultOptions
	httpxOptions.Timeout = config.Timeout
	httpxOptions.FollowRedirects = config.FollowRedirects
	httpxOptions.MaxRedirects = config.MaxRedirects
	httpxOptions.MaxResponseBodySize = config.MaxResponseBodySize
	httpxOptions.ExtractTitle = config.Match.Title
	httpxOptions.NoFallbackScheme = config.NoFallbackScheme
	httpxOptions.RandomAgent = config.RandomAgent
	httpxOptions.HTTPProxy = options.HTTPProxy
	httpxOptions.Resolvers = options.Resolvers
	httpxOptions.CustomHeaders = options.CustomHeaders.Map()

	if runner.hp, err = httpx.New(&httpxOptions); err != nil {
		return runner, errors.Wrap(err, "could not create httpx instance")
	}

	runner.expander, err = targets.New(targets.Options{
		Ports:      config.Ports,
		Path:       config.Path,
		ForceHTTPS: config.ForceHTTPS,
		Dedupe:     config.Dedupe,
	})
	if err != nil {
		return runner, errors.Wrap(err, "could not create target expander")
	}
	if runner.limiter, err = ratelimit.New(config.Rate); err != nil {
		return runner, err
	}
	if runner.pool, err = workerpool.New(config.Workers, config.Concurrency); err != nil {
		return runner, err
	}
	if runner.output, err = newOutputWriter(config); err != nil {
		return runner, err
	}

	if config.ShowStatistics {
		if runner.stats, err = clistats.New(); err != nil {
			return runner, errors.Wrap(err, "could not create statistics")
		}
	}
	return runner, nil
}

// Summary returns the outcome counters of the run
func (r *Runner) Summary() *Summary {
	return r.summary
}

// RunEnumeration streams the input through the probing pipeline until the
// input is exhausted or ctx is cancelled
func (r *Runner) RunEnumeration(ctx context.Context) error {
	input, closeInput, err := r.input()
	if err != nil {
		return err
	}
	defer closeInput() //nolint

	r.startStats()
	stream := r.expander.Stream(ctx, input)
	r.dispatch(ctx, stream)
	r.pool.Wait()
	r.stopStats()

	if ctx.Err() != nil {
		gologger.Warning().Msgf("Run cancelled, in-flight probes were aborted\n")
	}
	r.summary.log()
	return nil
}

// dispatch pulls targets one at a time and hands each to a free slot
func (r *Runner) dispatch(ctx context.Context, stream <-chan targets.Target) {
	for {
		var (
			target targets.Target
			ok     bool
		)
		select {
		case <-ctx.Done():
			return
		case target, ok = <-stream:
			if !ok {
				return
			}
		}
		if r.stats != nil {
			r.stats.IncrementCounter("targets", 1)
		}
		err := r.pool.Submit(ctx, func() {
			r.process(ctx, target)
		})
		if err != nil {
			r.handle(ctx, target, &httpx.Skipped{Reason: cancelledReason})
		}
	}
}

func (r *Runner) process(ctx context.Context, target targets.Target) {
	if err := r.limiter.Acquire(ctx); err != nil {
		r.handle(ctx, target, &httpx.Skipped{Reason: cancelledReason})
		return
	}
	if r.stats != nil {
		r.stats.IncrementCounter("requests", 1)
	}
	outcome := r.hp.Probe(ctx, r.hp.NewProbeRequest(target))
	r.handle(ctx, target, outcome)
}

// handle matches, labels, counts and emits one outcome
func (r *Runner) handle(ctx context.Context, target targets.Target, outcome httpx.Outcome) {
	switch o := outcome.(type) {
	case *httpx.Failure:
		gologger.Debug().Msgf("Failure '%s': %s: %s\n", o.URL, o.Kind, o.Message)
	case *httpx.Skipped:
		gologger.Debug().Msgf("Skipped '%s': %s\n", target.URL(), o.Reason)
	}

	match := matcher.Match(outcome, r.config.Match)
	if success, ok := outcome.(*httpx.Success); ok && !match.Excluded && r.detector != nil {
		label, err := r.detector.Detect(ctx, success)
		if err != nil {
			gologger.Debug().Msgf("Could not detect technologies for '%s': %s\n", success.URL, err)
		} else {
			match = match.WithTech(label)
		}
	}
	r.summary.record(outcome, !match.Excluded)
	if match.Excluded {
		return
	}
	if r.stats != nil {
		r.stats.IncrementCounter("matched", 1)
	}

	result, emit := buildResult(target, outcome, match, r.config)
	if r.options.OnResult != nil {
		r.options.OnResult(result)
	}
	if emit {
		r.output.Write(result)
	}
}

// input selects the host source: reader, explicit hosts, list files, then stdin
func (r *Runner) input() (io.Reader, func() error, error) {
	nop := func() error { return nil }
	switch {
	case r.options.InputReader != nil:
		return r.options.InputReader, nop, nil
	case len(r.options.InputTargetHost) > 0:
		return strings.NewReader(strings.Join(r.options.InputTargetHost, "\n")), nop, nil
	case r.options.InputFile != "":
		files, err := fileutil.ListFilesWithPattern(r.options.InputFile)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not read input list")
		}
		var (
			readers []io.Reader
			opened  []*os.File
		)
		closeAll := func() error {
			var err error
			for _, f := range opened {
				err = multierr.Append(err, f.Close())
			}
			return err
		}
		for _, file := range files {
			f, err := os.Open(file)
			if err != nil {
				closeAll() //nolint
				return nil, nil, errors.Wrapf(err, "could not read input file '%s'", file)
			}
			opened = append(opened, f)
			// files without a trailing newline must not merge with the next one
			readers = append(readers, f, strings.NewReader("\n"))
		}
		return io.MultiReader(readers...), closeAll, nil
	case fileutil.HasStdin():
		return os.Stdin, nop, nil
	}
	return nil, nil, errors.New("no input provided")
}

func (r *Runner) startStats() {
	if r.stats == nil {
		return
	}
	r.stats.AddStatic("startedAt", time.Now())
	r.stats.AddStatic("rate", r.config.Rate)
	r.stats.AddCounter("targets", 0)
	r.stats.AddCounter("requests", 0)
	r.stats.AddCounter("matched", 0)
	if err := r.stats.Start(makePrintCallback(), time.Duration(statsDisplayInterval)*time.Second); err != nil {
		gologger.Warning().Msgf("Could not create statistic: %s\n", err)
	}
}

func (r *Runner) stopStats() {
	if r.stats == nil {
		return
	}
	if err := r.stats.Stop(); err != nil {
		gologger.Warning().Msgf("Could not stop statistic: %s\n", err)
	}
}

func makePrintCallback() func(stats clistats.StatisticsClient) {
	builder := &strings.Builder{}
	return func(stats clistats.StatisticsClient) {
		builder.WriteRune('[')
		startedAt, _ := stats.GetStatic("startedAt")
		duration := time.Since(startedAt.(time.Time))
		builder.WriteString(clistats.FmtDuration(duration))
		builder.WriteRune(']')

		targetCount, _ := stats.GetCounter("targets")
		builder.WriteString(" | Targets: ")
		builder.WriteString(clistats.String(targetCount))

		requests, _ := stats.GetCounter("requests")
		builder.WriteString(" | RPS: ")
		builder.WriteString(clistats.String(uint64(float64(requests) / duration.Seconds())))

		rate, _ := stats.GetStatic("rate")
		builder.WriteRune('/')
		builder.WriteString(clistats.String(rate))

		builder.WriteString(" | Requests: ")
		builder.WriteString(clistats.String(requests))

		matched, _ := stats.GetCounter("matched")
		builder.WriteString(" | Matched: ")
		builder.WriteString(clistats.String(matched))
		builder.WriteRune('\n')

		fmt.Fprintf(os.Stderr, "%s", builder.String())
		builder.Reset()
	}
}

// Close releases the dialer, the dedupe store and the output file.
// Calling it more than once is safe.
func (r *Runner) Close() error {
	var err error
	if r.output != nil {
		err = multierr.Append(err, r.output.Close())
	}
	if r.expander != nil {
		err = multierr.Append(err, r.expander.Close())
		r.expander = nil
	}
	if r.hp != nil {
		r.hp.Close()
		r.hp = nil
	}
	return err
}
