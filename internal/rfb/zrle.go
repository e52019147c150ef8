package rfb

import (
	"errors"
	"fmt"

	"github.com/rjsadow/rfbreplay/internal/binstruct"
)

// errReservedSubEncoding marks a ZRLE sub-encoding value the protocol
// reserves for future use. Per spec.md §9's design notes, this is the
// one ZRLE decode failure that is NOT tolerated at tile granularity —
// a reserved sub-encoding means the decoder no longer knows how many
// bytes the tile consumed, so the whole rectangle (and the replay) must
// abort rather than risk silently misaligning the inflate stream.
var errReservedSubEncoding = errors.New("zrle: reserved sub-encoding")

const tileSize = 64

// decodeZRLETile decodes one ZRLE tile from src (the session's inflate
// stream), returning tw*th*cpixelSize bytes of compact-pixel data, per
// spec.md §4.7's full sub-encoding table:
//
//	0        Raw: tw*th cpixels follow directly.
//	1        Solid: one cpixel fills the whole tile.
//	2-16     Packed palette: a palette of N=sub cpixels, then
//	         bit-packed indices (1, 2, or 4 bits wide depending on N),
//	         each row padded out to a whole byte.
//	17-127   Reserved/unused — fatal.
//	128      Plain RLE: (cpixel, run-length) pairs until the tile fills.
//	129      Reserved/unused — fatal.
//	130-255  Palette RLE: a palette of N=sub-128 cpixels; each run is
//	         either a single palette index (byte <128) or a palette
//	         index with an explicit run length (byte >=128).
func decodeZRLETile(src binstruct.Source, tw, th, cpixelSize int) ([]byte, error) {
	d := binstruct.New(src, "zrle-tile")
	sub := d.U8()
	need := tw * th * cpixelSize

	var out []byte
	switch {
	case sub == 0:
		out = append([]byte(nil), d.Bytes(need)...)
	case sub == 1:
		px := d.Bytes(cpixelSize)
		out = make([]byte, need)
		for i := 0; i < tw*th; i++ {
			copy(out[i*cpixelSize:], px)
		}
	case sub >= 2 && sub <= 16:
		var err error
		out, err = decodePackedPalette(d, int(sub), tw, th, cpixelSize)
		if err != nil {
			return nil, err
		}
	case sub == 128:
		out = decodePlainRLE(d, tw, th, cpixelSize)
	case sub == 129:
		return nil, fmt.Errorf("%w: 129", errReservedSubEncoding)
	case sub >= 17 && sub <= 127:
		return nil, fmt.Errorf("%w: %d", errReservedSubEncoding, sub)
	default: // 130-255
		var err error
		out, err = decodePaletteRLE(d, int(sub)-128, tw, th, cpixelSize)
		if err != nil {
			return nil, err
		}
	}
	if d.Err() != nil {
		return nil, d.Err()
	}
	return clampTo(out, need), nil
}

func clampTo(b []byte, need int) []byte {
	if len(b) == need {
		return b
	}
	padded := make([]byte, need)
	copy(padded, b)
	return padded
}

func decodePackedPalette(d *binstruct.Decoder, paletteSize, tw, th, cpixelSize int) ([]byte, error) {
	palette := make([][]byte, paletteSize)
	for i := range palette {
		palette[i] = append([]byte(nil), d.Bytes(cpixelSize)...)
	}
	bitwidth := 4
	switch {
	case paletteSize == 2:
		bitwidth = 1
	case paletteSize <= 4:
		bitwidth = 2
	}
	out := make([]byte, tw*th*cpixelSize)
	idx := 0
	mask := byte(1<<uint(bitwidth)) - 1
	for row := 0; row < th; row++ {
		var curByte byte
		haveBits := 0
		for col := 0; col < tw; col++ {
			if haveBits == 0 {
				curByte = d.U8()
				haveBits = 8
			}
			shift := uint(haveBits - bitwidth)
			pidx := int((curByte >> shift) & mask)
			haveBits -= bitwidth
			if pidx >= len(palette) {
				return nil, fmt.Errorf("zrle: packed palette index %d out of range (size %d)", pidx, paletteSize)
			}
			copy(out[idx*cpixelSize:], palette[pidx])
			idx++
		}
		// Each row's trailing partial byte is discarded; the next row
		// starts at a fresh byte boundary.
	}
	return out, nil
}

func decodePlainRLE(d *binstruct.Decoder, tw, th, cpixelSize int) []byte {
	total := tw * th
	out := make([]byte, total*cpixelSize)
	idx := 0
	for idx < total {
		px := d.Bytes(cpixelSize)
		if d.Err() != nil {
			break
		}
		length := readRunLength(d)
		for i := 0; i < length && idx < total; i++ {
			copy(out[idx*cpixelSize:], px)
			idx++
		}
		if d.Err() != nil {
			break
		}
	}
	return out
}

func decodePaletteRLE(d *binstruct.Decoder, paletteSize, tw, th, cpixelSize int) ([]byte, error) {
	palette := make([][]byte, paletteSize)
	for i := range palette {
		palette[i] = append([]byte(nil), d.Bytes(cpixelSize)...)
	}
	total := tw * th
	out := make([]byte, total*cpixelSize)
	idx := 0
	for idx < total {
		b := d.U8()
		if d.Err() != nil {
			break
		}
		if b < 128 {
			if int(b) >= len(palette) {
				return nil, fmt.Errorf("zrle: palette RLE index %d out of range (size %d)", b, paletteSize)
			}
			copy(out[idx*cpixelSize:], palette[b])
			idx++
			continue
		}
		pidx := int(b) - 128
		if pidx >= len(palette) {
			return nil, fmt.Errorf("zrle: palette RLE index %d out of range (size %d)", pidx, paletteSize)
		}
		length := readRunLength(d)
		for i := 0; i < length && idx < total; i++ {
			copy(out[idx*cpixelSize:], palette[pidx])
			idx++
		}
		if d.Err() != nil {
			break
		}
	}
	return out, nil
}

// readRunLength reads a ZRLE RLE run length: the sum of consecutive
// bytes (each contributing its value) until a byte less than 0xFF is
// read, plus 1.
func readRunLength(d *binstruct.Decoder) int {
	length := 1
	for {
		b := d.U8()
		if d.Err() != nil {
			return length
		}
		length += int(b)
		if b < 0xFF {
			break
		}
	}
	return length
}

// pasteTile converts a decoded tile's compact-pixel bytes to RGB and
// writes them into dst (a rect.W*rect.H*3 RGB buffer) at tile offset
// (tx, ty).
func pasteTile(dst []byte, rectW, tx, ty, tw, th int, pf PixelFormat, cpixels []byte, cpixelSize int) {
	for row := 0; row < th; row++ {
		for col := 0; col < tw; col++ {
			srcOff := (row*tw + col) * cpixelSize
			px := cpixels[srcOff : srcOff+cpixelSize]
			r, g, b := pf.ToRGB(px)
			dstOff := ((ty+row)*rectW + (tx + col)) * 3
			dst[dstOff] = r
			dst[dstOff+1] = g
			dst[dstOff+2] = b
		}
	}
}
