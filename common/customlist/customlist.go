package customlist

import (
	"strings"

	"github.com/hrekt/hrekt/common/fileutil"
)

// CustomList collects comma separated values or the lines of a file
type CustomList []string

// String returns just a label
func (c *CustomList) String() string {
	return "Custom Global List"
}

// Set appends the lines of value when it names a file, its comma separated items otherwise
func (c *CustomList) Set(value string) error {
	if fileutil.FileExists(value) {
		*c = append(*c, fileutil.LoadFile(value)...)
		return nil
	}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*c = append(*c, item)
		}
	}
	return nil
}
