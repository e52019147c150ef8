// Package wire implements the session/stream reassembly layer of the RFB
// decoder: a seekable byte-stream reader over a lazily-delivered sequence
// of payload chunks, the per-direction packet queue that feeds it, the
// deterministic client/server merger, and the session locator that finds
// the RFB conversation inside a capture.
package wire

import (
	"fmt"
	"io"
)

// PayloadSource supplies the next chunk of bytes for a ByteReader to pull
// from. Next reports ok=false once the underlying sequence is exhausted.
type PayloadSource interface {
	Next() (data []byte, ok bool)
}

// ByteReader adapts a PayloadSource into a seek-capable, peek-capable
// binary reader. Every consumed byte is retained so that seeking backward
// is always legal, matching spec.md §4.1.
type ByteReader struct {
	source    PayloadSource
	buf       []byte
	pos       int
	exhausted bool
}

// NewByteReader creates a ByteReader pulling from source.
func NewByteReader(source PayloadSource) *ByteReader {
	return &ByteReader{source: source}
}

// ensure pulls payloads until at least target bytes are buffered, or the
// source is exhausted.
func (r *ByteReader) ensure(target int) {
	for !r.exhausted && len(r.buf) < target {
		data, ok := r.source.Next()
		if !ok {
			r.exhausted = true
			break
		}
		r.buf = append(r.buf, data...)
	}
}

func (r *ByteReader) drainAll() {
	for !r.exhausted {
		data, ok := r.source.Next()
		if !ok {
			r.exhausted = true
			break
		}
		r.buf = append(r.buf, data...)
	}
}

// Read returns up to n bytes, pulling more payloads as needed. It returns
// fewer than n bytes only once the source is exhausted.
func (r *ByteReader) Read(n int) []byte {
	r.ensure(r.pos + n)
	end := r.pos + n
	if end > len(r.buf) {
		end = len(r.buf)
	}
	out := r.buf[r.pos:end]
	r.pos = end
	return out
}

// ReadAll drains the source and returns every remaining byte.
func (r *ByteReader) ReadAll() []byte {
	r.drainAll()
	out := r.buf[r.pos:]
	r.pos = len(r.buf)
	return out
}

// Peek returns up to n bytes without advancing the read position.
func (r *ByteReader) Peek(n int) []byte {
	r.ensure(r.pos + n)
	end := r.pos + n
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return r.buf[r.pos:end]
}

// AtEOF reports whether the reader has no more bytes, per spec.md §4.1's
// "non-EOF by peek(1) being non-empty" termination predicate.
func (r *ByteReader) AtEOF() bool {
	return len(r.Peek(1)) == 0
}

// Tell returns the current read position.
func (r *ByteReader) Tell() int64 {
	return int64(r.pos)
}

// Seek repositions the reader. Relative (io.SeekCurrent) and absolute
// (io.SeekStart) seeks pull forward as needed; io.SeekEnd pulls the source
// fully so that the end position is known. Negative results are clamped
// to 0; seeking past the buffered end returns whatever exists.
func (r *ByteReader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
		r.ensure(int(target))
	case io.SeekCurrent:
		target = int64(r.pos) + offset
		r.ensure(int(target))
	case io.SeekEnd:
		r.drainAll()
		target = int64(len(r.buf)) + offset
	default:
		return 0, fmt.Errorf("wire: invalid whence %d", whence)
	}
	if target < 0 {
		target = 0
	}
	if target > int64(len(r.buf)) {
		target = int64(len(r.buf))
	}
	r.pos = int(target)
	return int64(r.pos), nil
}
