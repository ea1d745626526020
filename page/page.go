// Package page implements the slotted-page layout used to materialize
// key/value pairs on disk: a fixed-size header, a line-pointer table that
// grows up from the header, and a value heap that grows down from the end
// of the page. Pages are opaque blobs once constructed — decode is the
// only way back to (key, value) pairs.
package page

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

const (
	// Size is the fixed size of every page, in bytes.
	Size = 8192
	// HeaderSize is the size of the fixed page header.
	HeaderSize = 12
	// MaxKeyLen is the maximum key length a line pointer can hold.
	MaxKeyLen = 32
	// linePointerSize is MaxKeyLen bytes of padded key plus a 2-byte offset.
	linePointerSize = MaxKeyLen + 2
	// valueHeaderSize is the 4-byte length prefix on every value entry.
	valueHeaderSize = 4
)

// KV is a single key/value pair as stored in a page.
type KV struct {
	Key   string
	Value string
}

// KeyTooLongError is returned when a key exceeds MaxKeyLen bytes.
type KeyTooLongError struct {
	Max, Actual int
}

func (e *KeyTooLongError) Error() string {
	return fmt.Sprintf("page: key too long: max %d, got %d", e.Max, e.Actual)
}

// ErrValueTooLong is returned when a value's length doesn't fit in a uint32.
var ErrValueTooLong = errors.New("page: value too long")

// ErrBadPageSize is returned when decode sees a header with the wrong page_size.
var ErrBadPageSize = errors.New("page: unexpected page_size in header")

// header mirrors the 12-byte on-disk header: six little-endian uint16 fields.
type header struct {
	pageSize uint16
	checksum uint16
	flags    uint16
	lower    uint16
	upper    uint16
	linp     uint16
}

func (h header) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.pageSize)
	binary.LittleEndian.PutUint16(buf[2:4], h.checksum)
	binary.LittleEndian.PutUint16(buf[4:6], h.flags)
	binary.LittleEndian.PutUint16(buf[6:8], h.lower)
	binary.LittleEndian.PutUint16(buf[8:10], h.upper)
	binary.LittleEndian.PutUint16(buf[10:12], h.linp)
	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < HeaderSize {
		return header{}, errors.New("page: truncated header")
	}
	h := header{
		pageSize: binary.LittleEndian.Uint16(buf[0:2]),
		checksum: binary.LittleEndian.Uint16(buf[2:4]),
		flags:    binary.LittleEndian.Uint16(buf[4:6]),
		lower:    binary.LittleEndian.Uint16(buf[6:8]),
		upper:    binary.LittleEndian.Uint16(buf[8:10]),
		linp:     binary.LittleEndian.Uint16(buf[10:12]),
	}
	if h.pageSize != Size {
		return header{}, errors.Wrapf(ErrBadPageSize, "got %d", h.pageSize)
	}
	return h, nil
}

// isSpaceToWrite reports whether n bytes still fit between lower and upper.
func (h header) isSpaceToWrite(n int) bool {
	return int(h.upper)-int(h.lower) >= n
}

// Construct lays pairs into a single 8192-byte page in order, growing line
// pointers up from the header and value entries down from the end of the
// page. Pairs that don't fit are returned, in order, as overflow — callers
// should feed overflow into a subsequent page. Construct never stops early:
// a later, smaller pair may still fit after an earlier, larger one didn't.
func Construct(pairs []KV) ([]byte, []KV, error) {
	buf := make([]byte, Size)
	h := header{pageSize: Size, lower: HeaderSize, upper: Size - 1, linp: HeaderSize}

	var overflow []KV
	for _, kv := range pairs {
		keyBytes := []byte(kv.Key)
		if len(keyBytes) > MaxKeyLen {
			return nil, nil, errors.WithStack(&KeyTooLongError{Max: MaxKeyLen, Actual: len(keyBytes)})
		}
		valueBytes := []byte(kv.Value)
		if len(valueBytes) > math.MaxUint32 {
			return nil, nil, errors.WithStack(ErrValueTooLong)
		}

		valueEntry := make([]byte, valueHeaderSize+len(valueBytes))
		binary.LittleEndian.PutUint32(valueEntry[:4], uint32(len(valueBytes)))
		copy(valueEntry[4:], valueBytes)
		newUpper := int(h.upper) - len(valueEntry)

		linePointer := make([]byte, linePointerSize)
		copy(linePointer, keyBytes)
		binary.LittleEndian.PutUint16(linePointer[MaxKeyLen:], uint16(newUpper))
		newLower := int(h.lower) + linePointerSize

		if !h.isSpaceToWrite(len(linePointer) + len(valueEntry)) {
			overflow = append(overflow, kv)
			continue
		}

		copy(buf[newUpper:int(h.upper)], valueEntry)
		copy(buf[h.lower:newLower], linePointer)
		h.lower = uint16(newLower)
		h.upper = uint16(newUpper)
	}

	copy(buf, h.encode())
	return buf, overflow, nil
}

// Decode reads back the ordered (key, value) pairs a page was constructed
// from.
func Decode(buf []byte) ([]KV, error) {
	if len(buf) != Size {
		return nil, errors.Errorf("page: expected %d bytes, got %d", Size, len(buf))
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	var pairs []KV
	for off := int(h.linp); off+linePointerSize <= int(h.lower); off += linePointerSize {
		lp := buf[off : off+linePointerSize]
		key := trimTrailingZeros(lp[:MaxKeyLen])
		valueOffset := binary.LittleEndian.Uint16(lp[MaxKeyLen:])

		if int(valueOffset)+valueHeaderSize > len(buf) {
			return nil, errors.New("page: value entry offset out of range")
		}
		valueLen := binary.LittleEndian.Uint32(buf[valueOffset : valueOffset+valueHeaderSize])
		valueStart := int(valueOffset) + valueHeaderSize
		valueEnd := valueStart + int(valueLen)
		if valueEnd > len(buf) {
			return nil, errors.New("page: value entry length out of range")
		}

		pairs = append(pairs, KV{Key: string(key), Value: string(buf[valueStart:valueEnd])})
	}

	return pairs, nil
}

func trimTrailingZeros(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}
