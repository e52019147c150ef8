package rfb

import (
	"fmt"

	"github.com/rjsadow/rfbreplay/internal/binstruct"
	"github.com/rjsadow/rfbreplay/internal/rfberrors"
	"github.com/rjsadow/rfbreplay/internal/wire"
)

// ClientOpcode is a client-to-server message type, per spec.md §4.6.
type ClientOpcode uint8

const (
	OpSetPixelFormat           ClientOpcode = 0
	OpSetEncodings             ClientOpcode = 2
	OpFramebufferUpdateRequest ClientOpcode = 3
	OpKeyEvent                 ClientOpcode = 4
	OpPointerEvent             ClientOpcode = 5
	OpClientCutText            ClientOpcode = 6
)

// DecodeClientEvent reads and applies one client-to-server message,
// returning its opcode for logging. Applying the effect inline, rather
// than building an intermediate event object, matches every message's
// synchronous single-use lifetime in spec.md §5.
func DecodeClientEvent(ctx *SessionContext, r *wire.ByteReader) (ClientOpcode, error) {
	d := binstruct.New(r, "client-event")
	op := ClientOpcode(d.U8())
	switch op {
	case OpSetPixelFormat:
		d.Pad(3)
		pf := DecodePixelFormat(d)
		if d.Err() != nil {
			return op, d.Err()
		}
		ctx.Framebuffer.PixFmt = pf

	case OpSetEncodings:
		d.Pad(1)
		n := d.U16()
		for i := 0; i < int(n); i++ {
			d.I32()
		}
		if d.Err() != nil {
			return op, d.Err()
		}
		// The encoding list has no further effect on this decoder: it
		// always decodes whatever encoding the server actually sends.

	case OpFramebufferUpdateRequest:
		d.Bool()
		d.U16()
		d.U16()
		d.U16()
		d.U16()
		if d.Err() != nil {
			return op, d.Err()
		}

	case OpKeyEvent:
		down := d.Bool()
		d.Pad(2)
		key := d.U32()
		if d.Err() != nil {
			return op, d.Err()
		}
		if down {
			ctx.TypeKey(key)
		}

	case OpPointerEvent:
		mask := ButtonMask(d.U8())
		x := d.U16()
		y := d.U16()
		if d.Err() != nil {
			return op, d.Err()
		}
		ctx.Framebuffer.MoveCursor(int(x), int(y), mask)

	case OpClientCutText:
		d.Pad(3)
		length := d.U32()
		text := d.String(int(length))
		if d.Err() != nil {
			return op, d.Err()
		}
		ctx.SetClipboard(decodeLatin1(text))

	default:
		return op, &rfberrors.ProtocolError{Phase: "event-loop", Detail: fmt.Sprintf("unknown client opcode %d", op)}
	}
	return op, nil
}
