package hashes

import (
	"strconv"

	"github.com/spaolacci/murmur3"
)

// Mmh3 returns the 32-bit murmur3 hash of data as a signed decimal,
// the form used by shodan-style body and favicon hashes
func Mmh3(data []byte) string {
	return strconv.FormatInt(int64(int32(murmur3.Sum32(data))), 10)
}
