package wal

import "encoding/binary"

// Split scans buf left to right and returns the payload between every
// START_MAGIC/END_MAGIC pair it finds, in original order. A START_MAGIC
// resets any in-progress chunk; an END_MAGIC with no pending start is
// ignored. Buffers shorter than 4 bytes yield no chunks.
func Split(buf []byte) [][]byte {
	var chunks [][]byte
	start := -1

	for i := 0; i+4 <= len(buf); i++ {
		if binary.LittleEndian.Uint32(buf[i:i+4]) == StartMagic {
			start = i + 4
			continue
		}
		if binary.LittleEndian.Uint32(buf[i:i+4]) == EndMagic && start >= 0 {
			chunk := make([]byte, i-start)
			copy(chunk, buf[start:i])
			chunks = append(chunks, chunk)
			start = -1
		}
	}

	return chunks
}

// DecodeAll splits buf into chunks and decodes each one, returning the
// operations in file order. It stops and returns the error from the first
// chunk that fails to decode.
func DecodeAll(buf []byte) ([]Op, error) {
	chunks := Split(buf)
	ops := make([]Op, 0, len(chunks))
	for _, chunk := range chunks {
		op, err := Decode(chunk)
		if err != nil {
			return ops, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
