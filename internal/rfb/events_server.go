package rfb

import (
	"fmt"

	"github.com/rjsadow/rfbreplay/internal/binstruct"
	"github.com/rjsadow/rfbreplay/internal/rfberrors"
	"github.com/rjsadow/rfbreplay/internal/wire"
)

// ServerOpcode is a server-to-client message type, per spec.md §4.6.
type ServerOpcode uint8

const (
	OpFramebufferUpdate   ServerOpcode = 0
	OpSetColourMapEntries ServerOpcode = 1
	OpBell                ServerOpcode = 2
	OpServerCutText       ServerOpcode = 3
)

// DecodeServerEvent reads and applies one server-to-client message,
// returning its opcode for logging.
func DecodeServerEvent(ctx *SessionContext, r *wire.ByteReader) (ServerOpcode, error) {
	d := binstruct.New(r, "server-event")
	op := ServerOpcode(d.U8())
	switch op {
	case OpFramebufferUpdate:
		d.Pad(1)
		numRects := d.U16()
		if d.Err() != nil {
			return op, d.Err()
		}
		for i := 0; i < int(numRects); i++ {
			if err := decodeRectangle(ctx, r); err != nil {
				return op, err
			}
		}

	case OpSetColourMapEntries:
		d.Pad(1)
		d.U16() // first colour
		count := d.U16()
		for i := 0; i < int(count); i++ {
			d.U16()
			d.U16()
			d.U16()
		}
		if d.Err() != nil {
			return op, d.Err()
		}

	case OpBell:
		// No payload.

	case OpServerCutText:
		d.Pad(3)
		length := d.U32()
		text := d.String(int(length))
		if d.Err() != nil {
			return op, d.Err()
		}
		ctx.SetClipboard(decodeLatin1(text))

	default:
		return op, &rfberrors.ProtocolError{Phase: "event-loop", Detail: fmt.Sprintf("unknown server opcode %d", op)}
	}
	return op, nil
}

// decodeRectangle reads a FramebufferUpdate rectangle header and
// dispatches its payload to the matching encoding decoder.
func decodeRectangle(ctx *SessionContext, r *wire.ByteReader) error {
	d := binstruct.New(r, "framebuffer-update-rectangle")
	x := d.U16()
	y := d.U16()
	w := d.U16()
	h := d.U16()
	encoding := Encoding(d.I32())
	if d.Err() != nil {
		return d.Err()
	}
	rect := Rectangle{X: x, Y: y, W: w, H: h}
	return applyEncoding(ctx, r, rect, encoding)
}
