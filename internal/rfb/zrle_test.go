package rfb

import (
	"bytes"
	"testing"

	"github.com/rjsadow/rfbreplay/internal/binstruct"
)

type zrleTileSource struct {
	buf []byte
	pos int
}

func (s *zrleTileSource) Read(n int) []byte {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	out := s.buf[s.pos:end]
	s.pos = end
	return out
}

func (s *zrleTileSource) Tell() int64 { return int64(s.pos) }

// TestDecodeZRLETile_Scenario5 reproduces spec.md §8 concrete scenario 5:
// sub-encoding 1 (solid) for a 2x2 tile with cpixel AA BB CC.
func TestDecodeZRLETile_Scenario5(t *testing.T) {
	src := &zrleTileSource{buf: []byte{0x01, 0xAA, 0xBB, 0xCC}}
	out, err := decodeZRLETile(src, 2, 2, 3)
	if err != nil {
		t.Fatalf("decodeZRLETile failed: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC}
	if !bytes.Equal(out, want) {
		t.Fatalf("tile = % x, want % x", out, want)
	}
}

func TestDecodeZRLETile_Raw(t *testing.T) {
	px := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	src := &zrleTileSource{buf: append([]byte{0x00}, px...)}
	out, err := decodeZRLETile(src, 2, 2, 3)
	if err != nil {
		t.Fatalf("decodeZRLETile failed: %v", err)
	}
	if !bytes.Equal(out, px) {
		t.Fatalf("tile = % x, want % x", out, px)
	}
}

func TestDecodeZRLETile_PlainRLE(t *testing.T) {
	// One run of 3 pixels of AA BB CC, then one pixel of DD EE FF, total 2x2=4.
	src := &zrleTileSource{buf: []byte{128, 0xAA, 0xBB, 0xCC, 0x02, 0xDD, 0xEE, 0xFF, 0x00}}
	out, err := decodeZRLETile(src, 2, 2, 3)
	if err != nil {
		t.Fatalf("decodeZRLETile failed: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if !bytes.Equal(out, want) {
		t.Fatalf("tile = % x, want % x", out, want)
	}
}

func TestDecodeZRLETile_PackedPalette2(t *testing.T) {
	// Palette of 2 entries -> 1 bit per index. Tile 4x1: indices 1,0,1,0
	// pack into a single byte 0b10100000, with the row padded to a byte.
	palette := []byte{0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF} // index 0 = black, 1 = white
	src := &zrleTileSource{buf: append(append([]byte{2}, palette...), 0b10100000)}
	out, err := decodeZRLETile(src, 4, 1, 3)
	if err != nil {
		t.Fatalf("decodeZRLETile failed: %v", err)
	}
	want := []byte{0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Fatalf("tile = % x, want % x", out, want)
	}
}

func TestDecodeZRLETile_ReservedSubEncodingErrors(t *testing.T) {
	src := &zrleTileSource{buf: []byte{17}}
	if _, err := decodeZRLETile(src, 1, 1, 3); err == nil {
		t.Fatal("expected an error for reserved sub-encoding 17")
	}
}

func TestReadRunLength(t *testing.T) {
	src := &zrleTileSource{buf: []byte{0xFF, 0xFF, 0x02}}
	dec := binstruct.New(src, "test")
	if got := readRunLength(dec); got != 0xFF+0xFF+0x02+1 {
		t.Fatalf("readRunLength = %d, want %d", got, 0xFF+0xFF+0x02+1)
	}
}
