package rfb

// Handlers is the session's event-handler registry (spec.md §3): a
// struct of optional function pointers rather than a dynamically-keyed
// map, since the callback set is fixed and known at compile time.
type Handlers struct {
	ScreenUpdate         func(screen []byte, width, height int, rect Rectangle)
	UpdateCursor         func(cursor *CursorImage)
	UpdateCursorPosition func(x, y int, buttons ButtonMask)
	TypeKey              func(keysym uint32)
	Clipboard            func(text string)
}

// CursorImage is the server's current cursor shape: an RGBA bitmap plus
// the pixel offset within it that tracks the pointer (the "hotspot").
type CursorImage struct {
	W, H               int
	Pixels             []byte // RGBA, W*H*4 bytes
	HotspotX, HotspotY int
}

// Framebuffer is the reconstructed screen model: an RGB screen image,
// the current cursor shape, and an RGBA image tracing every position the
// cursor has visited, per spec.md §3 and §4.8.
type Framebuffer struct {
	Width, Height int
	PixFmt        PixelFormat

	Screen []byte // RGB, Width*Height*3 bytes

	Cursor   *CursorImage
	CursorX  int
	CursorY  int

	// CursorPath is an RGBA image the same size as Screen; every
	// position the cursor moves to is stamped onto it, building a
	// visual trace of pointer movement across the session.
	CursorPath []byte

	handlers *Handlers
}

// NewFramebuffer allocates a Framebuffer of the given dimensions and
// pixel format, sharing handlers with the owning SessionContext so that
// screen and cursor mutations announce themselves immediately.
func NewFramebuffer(width, height int, pf PixelFormat, handlers *Handlers) *Framebuffer {
	return &Framebuffer{
		Width:      width,
		Height:     height,
		PixFmt:     pf,
		Screen:     make([]byte, width*height*3),
		CursorPath: make([]byte, width*height*4),
		handlers:   handlers,
	}
}

// Resize reallocates the screen and cursor-path buffers for a new
// desktop size, as announced by the DesktopSize or ExtendedDesktopSize
// pseudo-encodings. Prior screen content is not preserved across a
// resize, matching a server sending a full-screen update immediately
// after resizing.
func (fb *Framebuffer) Resize(width, height int) {
	fb.Width = width
	fb.Height = height
	fb.Screen = make([]byte, width*height*3)
	fb.CursorPath = make([]byte, width*height*4)
}

// UpdateScreen pastes an RGB image (rect.W*rect.H*3 bytes) into the
// screen at rect's position, clipping to the framebuffer bounds, and
// fires the ScreenUpdate handler. Per spec.md §4.8, every screen
// mutation is announced immediately.
func (fb *Framebuffer) UpdateScreen(rgb []byte, rect Rectangle) {
	rowBytes := int(rect.W) * 3
	for row := 0; row < int(rect.H); row++ {
		dstY := int(rect.Y) + row
		if dstY < 0 || dstY >= fb.Height {
			continue
		}
		n := rowBytes
		if int(rect.X)+int(rect.W) > fb.Width {
			n = (fb.Width - int(rect.X)) * 3
		}
		if n <= 0 || int(rect.X) >= fb.Width || int(rect.X) < 0 {
			continue
		}
		srcOff := row * rowBytes
		dstOff := (dstY*fb.Width + int(rect.X)) * 3
		copy(fb.Screen[dstOff:dstOff+n], rgb[srcOff:srcOff+n])
	}
	if fb.handlers != nil && fb.handlers.ScreenUpdate != nil {
		fb.handlers.ScreenUpdate(fb.Screen, fb.Width, fb.Height, rect)
	}
}

// GetScreenRectangle reads back an RGB copy of a screen region, used by
// the CopyRect encoding to source pixels already on screen.
func (fb *Framebuffer) GetScreenRectangle(rect Rectangle) []byte {
	out := make([]byte, int(rect.W)*int(rect.H)*3)
	rowBytes := int(rect.W) * 3
	for row := 0; row < int(rect.H); row++ {
		srcY := int(rect.Y) + row
		if srcY < 0 || srcY >= fb.Height {
			continue
		}
		n := rowBytes
		if int(rect.X)+int(rect.W) > fb.Width {
			n = (fb.Width - int(rect.X)) * 3
		}
		if n <= 0 || int(rect.X) >= fb.Width || int(rect.X) < 0 {
			continue
		}
		srcOff := (srcY*fb.Width + int(rect.X)) * 3
		dstOff := row * rowBytes
		copy(out[dstOff:dstOff+n], fb.Screen[srcOff:srcOff+n])
	}
	return out
}

// SetCursor installs a new cursor shape and fires the UpdateCursor handler.
func (fb *Framebuffer) SetCursor(cursor *CursorImage) {
	fb.Cursor = cursor
	if fb.handlers != nil && fb.handlers.UpdateCursor != nil {
		fb.handlers.UpdateCursor(cursor)
	}
}

// MoveCursor records a new pointer position, stamping it onto
// CursorPath when in bounds (out-of-range positions are silently
// dropped per spec.md §4.8) and firing the UpdateCursorPosition handler.
func (fb *Framebuffer) MoveCursor(x, y int, buttons ButtonMask) {
	fb.CursorX, fb.CursorY = x, y
	if x >= 0 && x < fb.Width && y >= 0 && y < fb.Height {
		off := (y*fb.Width + x) * 4
		fb.CursorPath[off] = 255
		fb.CursorPath[off+1] = 0
		fb.CursorPath[off+2] = 0
		fb.CursorPath[off+3] = 255
	}
	if fb.handlers != nil && fb.handlers.UpdateCursorPosition != nil {
		fb.handlers.UpdateCursorPosition(x, y, buttons)
	}
}
