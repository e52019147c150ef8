// Package binstruct is the binary-structure kernel of the RFB decoder
// (spec.md §4, component 5): a small reusable abstraction for decoding
// fixed-width big-endian integers, booleans, padding, and
// length-prefixed byte/string fields from a byte-oriented source,
// tracking short reads as a single sticky error rather than per-field
// checks. Tagged-union dispatch on a previously-decoded field and
// context-dependent lengths are left to hand-written decoders per
// message in internal/rfb, per spec.md's design notes — a literal port
// of a declarative field-descriptor library does not fit idiomatic Go as
// well as small per-message decode functions built on this kernel.
package binstruct

import "github.com/rjsadow/rfbreplay/internal/rfberrors"

// Source is the minimal byte-pulling interface binstruct needs; *wire.ByteReader satisfies it.
type Source interface {
	Read(n int) []byte
	Tell() int64
}

// Decoder reads RFB wire-format primitives from a Source, accumulating
// the first short-read error encountered so that callers can decode a
// whole message and check Err() once at the end.
type Decoder struct {
	r     Source
	phase string
	err   error
}

// New creates a Decoder over r. phase identifies the message or
// handshake step being decoded, for error messages.
func New(r Source, phase string) *Decoder {
	return &Decoder{r: r, phase: phase}
}

// Err returns the first decode error encountered, or nil.
func (d *Decoder) Err() error {
	return d.err
}

// fail records a short-read as a DecodeError, if one hasn't already been recorded.
func (d *Decoder) fail(want, got int) {
	if d.err != nil {
		return
	}
	d.err = &rfberrors.DecodeError{
		Phase:  d.phase,
		Offset: d.r.Tell(),
		Detail: shortReadMessage(want, got),
	}
}

func shortReadMessage(want, got int) string {
	if got < want {
		return "short read: wanted " + itoa(want) + " bytes, got " + itoa(got)
	}
	return "short read"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Bytes reads exactly n bytes, recording a decode error if fewer were available.
func (d *Decoder) Bytes(n int) []byte {
	b := d.r.Read(n)
	if len(b) != n {
		d.fail(n, len(b))
	}
	return b
}

// Pad discards n bytes (protocol padding).
func (d *Decoder) Pad(n int) {
	d.Bytes(n)
}

// U8 reads an unsigned 8-bit integer.
func (d *Decoder) U8() uint8 {
	b := d.Bytes(1)
	if len(b) < 1 {
		return 0
	}
	return b[0]
}

// Bool reads a one-byte boolean: zero is false, non-zero is true.
func (d *Decoder) Bool() bool {
	return d.U8() != 0
}

// U16 reads a big-endian unsigned 16-bit integer.
func (d *Decoder) U16() uint16 {
	b := d.Bytes(2)
	if len(b) < 2 {
		return 0
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

// U32 reads a big-endian unsigned 32-bit integer.
func (d *Decoder) U32() uint32 {
	b := d.Bytes(4)
	if len(b) < 4 {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// I32 reads a big-endian signed 32-bit integer (used for encoding IDs,
// which are negative for pseudo-encodings).
func (d *Decoder) I32() int32 {
	return int32(d.U32())
}

// String reads n bytes and returns them as a string without charset
// conversion; callers decide Latin-1 vs UTF-8 interpretation.
func (d *Decoder) String(n int) string {
	return string(d.Bytes(n))
}
