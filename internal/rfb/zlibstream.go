package rfb

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// zlibStream is the session's persistent zlib inflate state (spec.md §3,
// §5): a single instance lives on the SessionContext and every ZLIB or
// ZRLE rectangle's compressed fragment is fed into it in wire order, so
// the decoder's dictionary carries over across rectangles exactly as a
// real VNC client's decompressor would. Restarting the session means
// constructing a fresh zlibStream.
//
// Grounded on CambridgeSoftwareLtd-go-vnc's zrle.ZlibStream: a
// bytes.Buffer that fragments are appended to, with a zlib.Reader
// lazily created over the buffer on first use. bytes.Buffer.Read
// returns bytes as they become available and only reports io.EOF once
// the buffer is drained to empty, which is exactly the behaviour needed
// here: each fragment on the wire carries enough compressed bytes to
// produce the rectangle's decompressed output without the reader ever
// needing to block past what feed has written.
type zlibStream struct {
	buf    *bytes.Buffer
	reader io.ReadCloser
	pos    int64
	err    error
}

func newZlibStream() *zlibStream {
	return &zlibStream{buf: new(bytes.Buffer)}
}

// feed appends a newly-arrived compressed fragment to the stream.
func (z *zlibStream) feed(compressed []byte) {
	z.buf.Write(compressed)
}

// Read pulls exactly n bytes of decompressed output, satisfying
// binstruct.Source so ZRLE tile decoding can run straight off the
// inflate stream. If fewer than n bytes are available the short read
// is recorded and a shorter slice is returned, matching the sticky
// short-read convention of binstruct.Decoder.
func (z *zlibStream) Read(n int) []byte {
	if z.err != nil {
		return nil
	}
	if z.reader == nil {
		r, err := zlib.NewReader(z.buf)
		if err != nil {
			z.err = fmt.Errorf("zlib: %w", err)
			return nil
		}
		z.reader = r
	}
	out := make([]byte, n)
	got, err := io.ReadFull(z.reader, out)
	z.pos += int64(got)
	if got < n {
		z.err = fmt.Errorf("zlib: %w", err)
		return out[:got]
	}
	return out
}

// Tell returns the number of decompressed bytes produced so far.
func (z *zlibStream) Tell() int64 {
	return z.pos
}
