package proxybackend

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"

	"github.com/andybalholm/brotli"
)

// ErrUnknownEncoding is returned by decode/encode when a Content-Encoding
// value is neither gzip, br, nor empty/identity. The caller's contract is
// to log it and skip injection rather than fail the response.
var ErrUnknownEncoding = errors.New("proxybackend: unknown content-encoding")

// decode returns body decompressed according to contentEncoding.
func decode(body []byte, contentEncoding string) ([]byte, error) {
	switch contentEncoding {
	case "", "identity":
		return body, nil

	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)

	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))

	default:
		return nil, ErrUnknownEncoding
	}
}

// recompress re-applies contentEncoding to body, the inverse of decode.
func recompress(body []byte, contentEncoding string) ([]byte, error) {
	switch contentEncoding {
	case "", "identity":
		return body, nil

	case "gzip":
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(body); err != nil {
			return nil, err
		}
		if err := gw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "br":
		var buf bytes.Buffer
		bw := brotli.NewWriter(&buf)
		if _, err := bw.Write(body); err != nil {
			return nil, err
		}
		if err := bw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return nil, ErrUnknownEncoding
	}
}
