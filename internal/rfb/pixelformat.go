package rfb

import "github.com/rjsadow/rfbreplay/internal/binstruct"

// PixelFormat is the RFB PixelFormat structure exchanged during ServerInit
// and SetPixelFormat, per spec.md §3.
type PixelFormat struct {
	BitsPerPixel uint8
	Depth        uint8
	BigEndian    bool
	TrueColour   bool
	RedMax       uint16
	GreenMax     uint16
	BlueMax      uint16
	RedShift     uint8
	GreenShift   uint8
	BlueShift    uint8
}

// DecodePixelFormat reads the 16-byte PixelFormat structure.
func DecodePixelFormat(d *binstruct.Decoder) PixelFormat {
	pf := PixelFormat{
		BitsPerPixel: d.U8(),
		Depth:        d.U8(),
		BigEndian:    d.Bool(),
		TrueColour:   d.Bool(),
		RedMax:       d.U16(),
		GreenMax:     d.U16(),
		BlueMax:      d.U16(),
		RedShift:     d.U8(),
		GreenShift:   d.U8(),
		BlueShift:    d.U8(),
	}
	d.Pad(3)
	return pf
}

// Encode renders the 16-byte PixelFormat wire structure.
func (pf PixelFormat) Encode() []byte {
	buf := make([]byte, 16)
	buf[0] = pf.BitsPerPixel
	buf[1] = pf.Depth
	if pf.BigEndian {
		buf[2] = 1
	}
	if pf.TrueColour {
		buf[3] = 1
	}
	buf[4] = byte(pf.RedMax >> 8)
	buf[5] = byte(pf.RedMax)
	buf[6] = byte(pf.GreenMax >> 8)
	buf[7] = byte(pf.GreenMax)
	buf[8] = byte(pf.BlueMax >> 8)
	buf[9] = byte(pf.BlueMax)
	buf[10] = pf.RedShift
	buf[11] = pf.GreenShift
	buf[12] = pf.BlueShift
	return buf
}

// BytesPerPixel is the on-wire pixel stride for Raw/Zlib rectangles.
func (pf PixelFormat) BytesPerPixel() int {
	return int(pf.BitsPerPixel) / 8
}

// CompactPixelSize is the cpixel stride ZRLE uses: 3 bytes when the format
// is 32bpp true-colour with depth ≤24 (the high byte carries no colour
// information and is dropped), else the full pixel stride. Per spec.md §3's
// PixelFormat "compact pixel" derivation.
func (pf PixelFormat) CompactPixelSize() int {
	if pf.TrueColour && pf.BitsPerPixel == 32 && pf.Depth <= 24 {
		return 3
	}
	return pf.BytesPerPixel()
}

// ToRGB converts a single pixel's on-wire bytes (whatever their width —
// a full BytesPerPixel() pixel or a ZRLE compact pixel) into 8-bit RGB
// using this format's shifts and channel maxima, per spec.md §4.6.
func (pf PixelFormat) ToRGB(pixel []byte) (r, g, b uint8) {
	var v uint32
	if pf.BigEndian {
		for _, c := range pixel {
			v = v<<8 | uint32(c)
		}
	} else {
		for i := len(pixel) - 1; i >= 0; i-- {
			v = v<<8 | uint32(pixel[i])
		}
	}
	extract := func(shift uint8, max uint16) uint8 {
		if max == 0 {
			return 0
		}
		c := (v >> shift) & uint32(max)
		return uint8(c * 255 / uint32(max))
	}
	r = extract(pf.RedShift, pf.RedMax)
	g = extract(pf.GreenShift, pf.GreenMax)
	b = extract(pf.BlueShift, pf.BlueMax)
	return
}

// pixelsToRGB converts a raw buffer of fixed-stride pixels into an RGB
// buffer (3 bytes per pixel), used by Raw and Zlib rectangle decoding.
func pixelsToRGB(pf PixelFormat, raw []byte, stride int) []byte {
	if stride <= 0 {
		return nil
	}
	n := len(raw) / stride
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		px := raw[i*stride : (i+1)*stride]
		r, g, b := pf.ToRGB(px)
		out[i*3] = r
		out[i*3+1] = g
		out[i*3+2] = b
	}
	return out
}
