package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hrekt/hrekt/common/httpx"
	"github.com/projectdiscovery/gologger"
)

// Summary counts outcomes across the run
type Summary struct {
	Targets  atomic.Uint64
	Success  atomic.Uint64
	Matched  atomic.Uint64
	Failed   atomic.Uint64
	Skipped  atomic.Uint64
	started  time.Time
	mu       sync.Mutex
	failures map[httpx.FailureKind]uint64
}

func newSummary() *Summary {
	return &Summary{
		started:  time.Now(),
		failures: make(map[httpx.FailureKind]uint64),
	}
}

// record counts one outcome; matched is whether it passed every filter
func (s *Summary) record(outcome httpx.Outcome, matched bool) {
	s.Targets.Add(1)
	switch o := outcome.(type) {
	case *httpx.Success:
		s.Success.Add(1)
		if matched {
			s.Matched.Add(1)
		}
	case *httpx.Failure:
		s.Failed.Add(1)
		s.mu.Lock()
		s.failures[o.Kind]++
		s.mu.Unlock()
	case *httpx.Skipped:
		s.Skipped.Add(1)
	}
}

// FailuresByKind returns a copy of the failure counters
func (s *Summary) FailuresByKind() map[httpx.FailureKind]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	failures := make(map[httpx.FailureKind]uint64, len(s.failures))
	for kind, count := range s.failures {
		failures[kind] = count
	}
	return failures
}

func (s *Summary) log() {
	gologger.Info().Msgf("Probed %d targets in %s: %d responded, %d matched, %d failed, %d skipped\n",
		s.Targets.Load(), time.Since(s.started).Round(time.Millisecond),
		s.Success.Load(), s.Matched.Load(), s.Failed.Load(), s.Skipped.Load())
	for kind, count := range s.FailuresByKind() {
		gologger.Verbose().Msgf("%s: %d\n", kind, count)
	}
}
