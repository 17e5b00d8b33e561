package fileserver

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMultipleRanges is returned when a Range header names more than one
// range; Penguin only serves a single byte range per response.
var ErrMultipleRanges = errors.New("fileserver: multiple ranges not supported")

// ErrInvalidRange is returned when a Range header is not syntactically a
// single "bytes=start-end" (or "bytes=start-" / "bytes=-suffixLength")
// specifier.
var ErrInvalidRange = errors.New("fileserver: invalid range")

// ErrRangeNotSatisfiable is returned when a syntactically valid range falls
// outside [0, size).
var ErrRangeNotSatisfiable = errors.New("fileserver: range not satisfiable")

// ByteRange is a single, resolved byte range within a file of known size.
type ByteRange struct {
	Start  int64
	Length int64
}

// ParseRange parses a Range request header against a file of the given
// size. It only accepts a single range; ErrMultipleRanges, ErrInvalidRange,
// and ErrRangeNotSatisfiable distinguish the three failure modes the file
// backend answers with 400, 400, and 416 respectively.
func ParseRange(header string, size int64) (ByteRange, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, ErrInvalidRange
	}

	spec := header[len(prefix):]
	if strings.Contains(spec, ",") {
		return ByteRange{}, ErrMultipleRanges
	}

	dash := strings.IndexByte(spec, '-')
	if dash < 0 {
		return ByteRange{}, ErrInvalidRange
	}

	startStr, endStr := spec[:dash], spec[dash+1:]

	switch {
	case startStr == "" && endStr == "":
		return ByteRange{}, ErrInvalidRange

	case startStr == "":
		// "bytes=-N": the last N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n < 0 {
			return ByteRange{}, ErrInvalidRange
		}
		if n == 0 {
			return ByteRange{}, ErrRangeNotSatisfiable
		}
		if n > size {
			n = size
		}
		return ByteRange{Start: size - n, Length: n}, nil

	default:
		start, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil || start < 0 {
			return ByteRange{}, ErrInvalidRange
		}

		if start >= size {
			return ByteRange{}, ErrRangeNotSatisfiable
		}

		end := size - 1
		if endStr != "" {
			end, err = strconv.ParseInt(endStr, 10, 64)
			if err != nil || end < start {
				return ByteRange{}, ErrInvalidRange
			}
			if end > size-1 {
				end = size - 1
			}
		}

		return ByteRange{Start: start, Length: end - start + 1}, nil
	}
}
