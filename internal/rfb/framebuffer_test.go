package rfb

import "testing"

func TestFramebuffer_UpdateScreenClipsToBounds(t *testing.T) {
	fb := NewFramebuffer(2, 2, identityPixelFormat(), &Handlers{})
	rgb := []byte{
		1, 1, 1, 2, 2, 2, 3, 3, 3, // a 3x1 rectangle, wider than the framebuffer
	}
	fb.UpdateScreen(rgb, Rectangle{X: 0, Y: 0, W: 3, H: 1})
	if fb.Screen[0] != 1 || fb.Screen[3] != 2 {
		t.Fatalf("screen = %v, want first two pixels copied", fb.Screen)
	}
}

func TestFramebuffer_MoveCursorOutOfRangeDropsSilently(t *testing.T) {
	fb := NewFramebuffer(2, 2, identityPixelFormat(), &Handlers{})
	fb.MoveCursor(-1, -1, 0)
	for _, b := range fb.CursorPath {
		if b != 0 {
			t.Fatalf("expected cursor path to remain blank, got %v", fb.CursorPath)
		}
	}
	if fb.CursorX != -1 || fb.CursorY != -1 {
		t.Fatalf("cursor position not recorded despite being out of image bounds")
	}
}

func TestFramebuffer_Resize(t *testing.T) {
	fb := NewFramebuffer(2, 2, identityPixelFormat(), &Handlers{})
	fb.Resize(4, 3)
	if fb.Width != 4 || fb.Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 4x3", fb.Width, fb.Height)
	}
	if len(fb.Screen) != 4*3*3 {
		t.Fatalf("screen buffer len = %d, want %d", len(fb.Screen), 4*3*3)
	}
}

func TestFramebuffer_GetScreenRectangle(t *testing.T) {
	fb := NewFramebuffer(2, 1, identityPixelFormat(), &Handlers{})
	fb.UpdateScreen([]byte{10, 20, 30, 40, 50, 60}, Rectangle{X: 0, Y: 0, W: 2, H: 1})
	got := fb.GetScreenRectangle(Rectangle{X: 1, Y: 0, W: 1, H: 1})
	if len(got) != 3 || got[0] != 40 || got[1] != 50 || got[2] != 60 {
		t.Fatalf("GetScreenRectangle = %v, want [40 50 60]", got)
	}
}
