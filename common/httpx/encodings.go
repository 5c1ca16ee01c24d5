package httpx

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Decodegbk converts GBK to UTF-8
func Decodegbk(s []byte) ([]byte, error) {
	return decode(s, simplifiedchinese.GBK)
}

// Decodebig5 converts BIG5 to UTF-8
func Decodebig5(s []byte) ([]byte, error) {
	return decode(s, traditionalchinese.Big5)
}

func decode(s []byte, enc encoding.Encoding) ([]byte, error) {
	return io.ReadAll(transform.NewReader(bytes.NewReader(s), enc.NewDecoder()))
}
