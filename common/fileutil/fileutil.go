package fileutil

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) || err != nil || info == nil {
		return false
	}
	return !info.IsDir()
}

// HasStdin determines if the user has piped input
func HasStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	mode := stat.Mode()

	isPipedFromChrDev := (mode & os.ModeCharDevice) == 0
	isPipedFromFIFO := (mode & os.ModeNamedPipe) != 0

	return isPipedFromChrDev || isPipedFromFIFO
}

// LoadFile content to slice, skipping blank lines
func LoadFile(filename string) (lines []string) {
	f, err := os.Open(filename)
	if err != nil {
		return
	}
	defer f.Close() //nolint
	s := bufio.NewScanner(f)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	return
}

// ListFilesWithPattern resolves a file name or a glob to the matching files
func ListFilesWithPattern(rootpattern string) ([]string, error) {
	if FileExists(rootpattern) {
		return []string{rootpattern}, nil
	}
	files, err := filepath.Glob(rootpattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", rootpattern)
	}
	var regular []string
	for _, file := range files {
		if FileExists(file) {
			regular = append(regular, file)
		}
	}
	if len(regular) == 0 {
		return nil, errors.Errorf("no files found for %q", rootpattern)
	}
	return regular, nil
}
