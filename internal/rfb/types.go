// Package rfb implements the RFB/VNC protocol decoder core: the protocol
// data model, the handshake driver, the client/server event decoders, the
// Raw/CopyRect/Zlib/ZRLE pixel-data decoders, and the framebuffer model
// that applies rectangle, cursor, and clipboard updates and fires the
// session's callbacks. It consumes two internal/wire directional byte
// readers; it never touches a capture file or a TCP socket directly.
package rfb

import (
	"bytes"
	"fmt"

	"github.com/rjsadow/rfbreplay/internal/rfberrors"
)

// ProtocolVersion is the RFB handshake's 12-byte "RFB xxx.yyy\n" banner.
type ProtocolVersion struct {
	Major, Minor int
}

// ParseProtocolVersion decodes a 12-byte banner, per spec.md §3.
func ParseProtocolVersion(b []byte) (ProtocolVersion, error) {
	if len(b) != 12 || !bytes.HasPrefix(b, []byte("RFB ")) || b[7] != '.' || b[11] != '\n' {
		return ProtocolVersion{}, &rfberrors.ProtocolError{
			Phase:  "handshake",
			Detail: fmt.Sprintf("malformed protocol version banner %q", b),
		}
	}
	major, okMajor := parseDigits(b[4:7])
	minor, okMinor := parseDigits(b[8:11])
	if !okMajor || !okMinor {
		return ProtocolVersion{}, &rfberrors.ProtocolError{
			Phase:  "handshake",
			Detail: fmt.Sprintf("malformed protocol version banner %q", b),
		}
	}
	return ProtocolVersion{Major: major, Minor: minor}, nil
}

func parseDigits(b []byte) (int, bool) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Encode renders the banner's wire form.
func (v ProtocolVersion) Encode() []byte {
	return []byte(fmt.Sprintf("RFB %03d.%03d\n", v.Major, v.Minor))
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Less reports whether v precedes o.
func (v ProtocolVersion) Less(o ProtocolVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

// MinVersion returns the earlier of two protocol versions — the
// "effective version" of a connection per spec.md §4.5.
func MinVersion(a, b ProtocolVersion) ProtocolVersion {
	if a.Less(b) {
		return a
	}
	return b
}

// SecurityType is the RFB security-type code negotiated during the handshake.
type SecurityType uint8

const (
	SecurityInvalid SecurityType = 0
	SecurityNone    SecurityType = 1
	SecurityVNCAuth SecurityType = 2
)

func (s SecurityType) String() string {
	switch s {
	case SecurityNone:
		return "None"
	case SecurityVNCAuth:
		return "VNC Authentication"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// Rectangle is a screen or cursor region, per spec.md §3.
type Rectangle struct {
	X, Y, W, H uint16
}

// Area returns the rectangle's pixel count.
func (r Rectangle) Area() int {
	return int(r.W) * int(r.H)
}

// Colour is a 16-bit-per-channel palette entry, used by SetColourMapEntries.
type Colour struct {
	R, G, B uint16
}

// ButtonMask is the bitmask of currently-pressed pointer buttons carried by PointerEvent.
type ButtonMask uint8
