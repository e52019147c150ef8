// Package rfberrors defines the error kinds surfaced by capture ingestion
// and RFB protocol decoding, shared across internal/wire and internal/rfb
// so that the CLI can identify the failing phase without type-asserting
// into package-private error types.
package rfberrors

import "fmt"

// CaptureInputError indicates that no RFB conversation could be located in
// the input capture.
type CaptureInputError struct {
	Reason string
}

func (e *CaptureInputError) Error() string {
	return fmt.Sprintf("capture input error: %s", e.Reason)
}

// ProtocolError indicates malformed or unexpected handshake bytes, an
// unsupported security type, or a non-OK security result. Protocol errors
// are always fatal to the replay.
type ProtocolError struct {
	Phase  string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: %s", e.Phase, e.Detail)
}

// DecodeError indicates a short read mid-message, an invalid sub-encoding,
// or a compressed-stream failure. Offset is the byte-reader position at
// the point of failure, when known.
type DecodeError struct {
	Phase  string
	Offset int64
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error during %s at offset %d: %s", e.Phase, e.Offset, e.Detail)
}

// UnsupportedEncodingError indicates a FramebufferUpdate rectangle carrying
// an encoding the decoder does not implement pixel decoding for.
type UnsupportedEncodingError struct {
	Encoding int32
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding %d", e.Encoding)
}
