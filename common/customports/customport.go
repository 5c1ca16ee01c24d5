package customport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	portRangeParts = 2
	maxPort        = 65535
)

// DefaultPorts probed when no custom list is given
var DefaultPorts = []Port{{Number: 80}, {Number: 443}}

// Port is a single port entry, optionally pinned to a scheme
type Port struct {
	Number uint16
	// Scheme is "http" or "https" when forced with a prefix, empty otherwise
	Scheme string
}

// CustomPorts is a flag value holding the parsed port list
type CustomPorts []Port

// String returns the list in its input syntax
func (c *CustomPorts) String() string {
	parts := make([]string, 0, len(*c))
	for _, p := range *c {
		if p.Scheme != "" {
			parts = append(parts, fmt.Sprintf("%s:%d", p.Scheme, p.Number))
			continue
		}
		parts = append(parts, strconv.Itoa(int(p.Number)))
	}
	return strings.Join(parts, ",")
}

// Set parses and appends a port list
func (c *CustomPorts) Set(value string) error {
	ports, err := Parse(value)
	if err != nil {
		return err
	}
	*c = dedupe(append(*c, ports...))
	return nil
}

// Parse reads a comma separated port list.
// Entries can be single ports or ranges (8000-8010) and may carry an
// http: or https: prefix to force the scheme.
func Parse(value string) (CustomPorts, error) {
	var ports CustomPorts
	for _, potentialPort := range strings.Split(value, ",") {
		potentialPort = strings.TrimSpace(potentialPort)
		if potentialPort == "" {
			continue
		}

		var scheme string
		lower := strings.ToLower(potentialPort)
		switch {
		case strings.HasPrefix(lower, "https:"):
			scheme = "https"
			potentialPort = potentialPort[len("https:"):]
		case strings.HasPrefix(lower, "http:"):
			scheme = "http"
			potentialPort = potentialPort[len("http:"):]
		}

		potentialRange := strings.Split(potentialPort, "-")
		if len(potentialRange) < portRangeParts {
			p, err := toPort(potentialPort)
			if err != nil {
				return nil, err
			}
			ports = append(ports, Port{Number: p, Scheme: scheme})
			continue
		}
		if len(potentialRange) > portRangeParts {
			return nil, errors.Errorf("invalid port range %q", potentialPort)
		}
		lowP, err := toPort(potentialRange[0])
		if err != nil {
			return nil, err
		}
		highP, err := toPort(potentialRange[1])
		if err != nil {
			return nil, err
		}
		if lowP > highP {
			return nil, errors.Errorf("invalid port range %q", potentialPort)
		}
		for i := int(lowP); i <= int(highP); i++ {
			ports = append(ports, Port{Number: uint16(i), Scheme: scheme})
		}
	}
	return dedupe(ports), nil
}

func toPort(value string) (uint16, error) {
	p, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid port %q", value)
	}
	if p < 1 || p > maxPort {
		return 0, errors.Errorf("port %d out of range", p)
	}
	return uint16(p), nil
}

// dedupe keeps the first occurrence of every port number
func dedupe(ports CustomPorts) CustomPorts {
	seen := make(map[uint16]struct{}, len(ports))
	out := ports[:0]
	for _, p := range ports {
		if _, ok := seen[p.Number]; ok {
			continue
		}
		seen[p.Number] = struct{}{}
		out = append(out, p)
	}
	return out
}
