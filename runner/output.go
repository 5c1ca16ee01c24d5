package runner

import (
	"bufio"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"
)

// outputWriter serializes result lines to the terminal and the optional file
type outputWriter struct {
	mu     sync.Mutex
	json   bool
	file   *os.File
	buffer *bufio.Writer
}

func newOutputWriter(cfg RunConfig) (*outputWriter, error) {
	w := &outputWriter{json: cfg.JSONOutput}
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, errors.Wrapf(err, "could not create output file '%s'", cfg.Output)
		}
		w.file = f
		w.buffer = bufio.NewWriter(f)
	}
	return w, nil
}

// Write prints one result; the file always gets the uncolored form
func (w *outputWriter) Write(result Result) {
	terminal, plain := result.colored, result.str
	if w.json {
		terminal = result.JSON()
		plain = terminal
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	gologger.Silent().Msgf("%s\n", terminal)
	if w.buffer != nil {
		//nolint:errcheck // flushed and checked on Close
		w.buffer.WriteString(plain + "\n")
	}
}

// Close flushes and closes the output file
func (w *outputWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	flushErr := w.buffer.Flush()
	closeErr := w.file.Close()
	w.file, w.buffer = nil, nil
	if flushErr != nil {
		return errors.Wrap(flushErr, "could not flush output file")
	}
	return closeErr
}
