package e2e

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rjsadow/rfbreplay/internal/capture"
	"github.com/rjsadow/rfbreplay/internal/rfb"
	"github.com/rjsadow/rfbreplay/internal/wire"
)

var (
	serverIP   = [4]byte{10, 0, 0, 1}
	clientIP   = [4]byte{10, 0, 0, 2}
	serverPort = uint16(5900)
	clientPort = uint16(51234)
)

func serverFrame(payload []byte) []byte {
	return buildTCPFrame(serverIP, clientIP, serverPort, clientPort, payload)
}

func clientFrame(payload []byte) []byte {
	return buildTCPFrame(clientIP, serverIP, clientPort, serverPort, payload)
}

// identityPixelFormat is the 32bpp true-colour format used throughout
// spec.md §8's concrete scenarios: depth 24, maxes 0xFF, shifts R=16
// G=8 B=0, little-endian on the wire.
var identityPixelFormat = rfb.PixelFormat{
	BitsPerPixel: 32,
	Depth:        24,
	TrueColour:   true,
	RedMax:       0xFF,
	GreenMax:     0xFF,
	BlueMax:      0xFF,
	RedShift:     16,
	GreenShift:   8,
	BlueShift:    0,
}

// buildCapture assembles a full synthetic capture of one RFB session
// covering spec.md §8's concrete scenarios other than the ZRLE tile
// (scenario 5, covered by internal/rfb's zrle_test.go): a version 3.8
// no-auth handshake naming a 10x10 desktop, a Raw rectangle update, a key
// press, a pointer move, and a clipboard paste.
func buildCapture() []byte {
	var frames [][]byte

	// --- handshake ---
	frames = append(frames, serverFrame([]byte("RFB 003.008\n")))
	frames = append(frames, clientFrame([]byte("RFB 003.008\n")))
	frames = append(frames, serverFrame([]byte{0x01, 0x01})) // one security type: NONE
	frames = append(frames, clientFrame([]byte{0x01}))       // client selects NONE
	frames = append(frames, serverFrame([]byte{0x00, 0x00, 0x00, 0x00})) // SecurityResult OK
	frames = append(frames, clientFrame([]byte{0x01}))                  // ClientInit: shared

	serverInit := []byte{0x00, 0x0a, 0x00, 0x0a} // width=10, height=10
	serverInit = append(serverInit, identityPixelFormat.Encode()...)
	serverInit = append(serverInit, 0x00, 0x00, 0x00, 0x02) // name length = 2
	serverInit = append(serverInit, []byte("Hi")...)
	frames = append(frames, serverFrame(serverInit))

	// --- event loop ---

	// FramebufferUpdate: one Raw rectangle at (0,0), 2x1, per scenario 4.
	fbUpdate := []byte{0x00, 0x00, 0x00, 0x01} // msg type 0, pad, numRects=1
	fbUpdate = append(fbUpdate,
		0x00, 0x00, 0x00, 0x00, // x=0, y=0
		0x00, 0x02, 0x00, 0x01, // w=2, h=1
		0x00, 0x00, 0x00, 0x00, // encoding = Raw
	)
	fbUpdate = append(fbUpdate, 0xFF, 0x00, 0x00, 0x00) // pixel 0: LE, expect RGB (0,0,255)
	fbUpdate = append(fbUpdate, 0x00, 0xFF, 0x00, 0x00) // pixel 1: LE, expect RGB (0,255,0)
	frames = append(frames, serverFrame(fbUpdate))

	// KeyEvent: key down 'A' (scenario 2).
	frames = append(frames, clientFrame([]byte{0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x41}))

	// PointerEvent: (3,5), LEFT button (scenario 3).
	frames = append(frames, clientFrame([]byte{0x05, 0x01, 0x00, 0x03, 0x00, 0x05}))

	// ClientCutText: "hello" (scenario 6).
	frames = append(frames, clientFrame([]byte{
		0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		'h', 'e', 'l', 'l', 'o',
	}))

	return buildPcapFile(frames)
}

var _ = Describe("Replaying a captured VNC session", func() {
	var ctx *rfb.SessionContext

	BeforeEach(func() {
		sessions, err := capture.Parse(buildCapture())
		Expect(err).NotTo(HaveOccurred())
		Expect(sessions).To(HaveLen(1))

		server, client, err := wire.Locate(sessions)
		Expect(err).NotTo(HaveOccurred())

		sess, err := rfb.NewSession(server, client, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(sess.Run()).To(Succeed())

		ctx = sess.Context
	})

	It("completes the handshake with the negotiated desktop name and size", func() {
		Expect(ctx.Name).To(Equal("Hi"))
		Expect(ctx.Security).To(Equal(rfb.SecurityNone))
		Expect(ctx.Framebuffer.Width).To(Equal(10))
		Expect(ctx.Framebuffer.Height).To(Equal(10))
	})

	It("decodes the Raw rectangle into the framebuffer's RGB screen", func() {
		screen := ctx.Framebuffer.Screen
		Expect(screen[0:3]).To(Equal([]byte{0, 0, 255}))
		Expect(screen[3:6]).To(Equal([]byte{0, 255, 0}))
	})

	It("tracks typed text from the KeyEvent", func() {
		Expect(ctx.TypedText.String()).To(ContainSubstring("A"))
	})

	It("stamps the cursor path red at the pointer position", func() {
		Expect(ctx.Framebuffer.CursorX).To(Equal(3))
		Expect(ctx.Framebuffer.CursorY).To(Equal(5))
		off := (5*ctx.Framebuffer.Width + 3) * 4
		Expect(ctx.Framebuffer.CursorPath[off : off+4]).To(Equal([]byte{255, 0, 0, 255}))
	})

	It("records the clipboard text from ClientCutText", func() {
		Expect(ctx.Clipboard).To(Equal("hello"))
	})
})
