package rfb

import (
	"testing"

	"github.com/rjsadow/rfbreplay/internal/wire"
)

func singleChunkStream(data []byte) *wire.DirectionalStream {
	return wire.NewDirectionalStream([]wire.Payload{{Data: data}})
}

// TestRunHandshake_Scenario1 reproduces spec.md §8 concrete scenario 1:
// version 3.8, no-auth handshake ending with a 1x1 framebuffer named "Hi".
func TestRunHandshake_Scenario1(t *testing.T) {
	serverBytes := []byte{}
	serverBytes = append(serverBytes, []byte("RFB 003.008\n")...)
	serverBytes = append(serverBytes, 0x01, 0x01) // 1 security type offered: NONE
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x00) // security result OK
	// ServerInit: width=1 height=1
	serverBytes = append(serverBytes, 0x00, 0x01, 0x00, 0x01)
	// PixelFormat: bpp=32 depth=24 big-endian=0 true-colour=1 maxes 0xFF shifts 16/8/0, 3 pad
	serverBytes = append(serverBytes, 32, 24, 0, 1, 0, 0xFF, 0, 0xFF, 0, 0xFF, 16, 8, 0, 0, 0, 0)
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x02) // name length 2
	serverBytes = append(serverBytes, 'H', 'i')

	clientBytes := []byte{}
	clientBytes = append(clientBytes, []byte("RFB 003.008\n")...)
	clientBytes = append(clientBytes, 0x01) // security type selected: NONE
	clientBytes = append(clientBytes, 0x00) // ClientInit: not shared

	server := singleChunkStream(serverBytes)
	client := singleChunkStream(clientBytes)

	ctx, err := RunHandshake(server.Reader(), client.Reader())
	if err != nil {
		t.Fatalf("RunHandshake failed: %v", err)
	}
	if ctx.Name != "Hi" {
		t.Fatalf("Name = %q, want %q", ctx.Name, "Hi")
	}
	if ctx.Framebuffer.Width != 1 || ctx.Framebuffer.Height != 1 {
		t.Fatalf("framebuffer = %dx%d, want 1x1", ctx.Framebuffer.Width, ctx.Framebuffer.Height)
	}
	if ctx.Security != SecurityNone {
		t.Fatalf("Security = %v, want NONE", ctx.Security)
	}
	if ctx.Version != (ProtocolVersion{Major: 3, Minor: 8}) {
		t.Fatalf("Version = %v, want 3.8", ctx.Version)
	}
}

// TestRunHandshake_MandatedSecurityAtVersion33 confirms that a version
// 3.3 handshake uses the server-mandated security type (a bare u32),
// not the security-types list client/server exchange used at 3.4+.
func TestRunHandshake_MandatedSecurityAtVersion33(t *testing.T) {
	serverBytes := []byte{}
	serverBytes = append(serverBytes, []byte("RFB 003.003\n")...)
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x01) // mandated security: NONE
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x00) // security result OK
	serverBytes = append(serverBytes, 0x00, 0x01, 0x00, 0x01)
	serverBytes = append(serverBytes, 32, 24, 0, 1, 0, 0xFF, 0, 0xFF, 0, 0xFF, 16, 8, 0, 0, 0, 0)
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x00) // empty name

	clientBytes := []byte{}
	clientBytes = append(clientBytes, []byte("RFB 003.003\n")...)
	clientBytes = append(clientBytes, 0x00) // ClientInit: not shared

	server := singleChunkStream(serverBytes)
	client := singleChunkStream(clientBytes)

	ctx, err := RunHandshake(server.Reader(), client.Reader())
	if err != nil {
		t.Fatalf("RunHandshake failed: %v", err)
	}
	if ctx.Security != SecurityNone {
		t.Fatalf("Security = %v, want NONE", ctx.Security)
	}
	if ctx.Version != (ProtocolVersion{Major: 3, Minor: 3}) {
		t.Fatalf("Version = %v, want 3.3", ctx.Version)
	}
}

func TestRunHandshake_SecurityResultFailureAborts(t *testing.T) {
	serverBytes := []byte{}
	serverBytes = append(serverBytes, []byte("RFB 003.008\n")...)
	serverBytes = append(serverBytes, 0x01, 0x01)
	serverBytes = append(serverBytes, 0x00, 0x00, 0x00, 0x01) // security result FAILED

	clientBytes := []byte{}
	clientBytes = append(clientBytes, []byte("RFB 003.008\n")...)
	clientBytes = append(clientBytes, 0x01)

	server := singleChunkStream(serverBytes)
	client := singleChunkStream(clientBytes)

	if _, err := RunHandshake(server.Reader(), client.Reader()); err == nil {
		t.Fatal("expected an error when the security result is FAILED")
	}
}
