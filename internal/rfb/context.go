package rfb

import "strings"

// SessionContext is the decoder's mutable state for one VNC connection,
// per spec.md §3: the negotiated handshake parameters, the framebuffer
// model, the persistent zlib inflate state, and the accumulators that
// track typed text and clipboard contents. Exactly one SessionContext
// exists per replayed capture session.
type SessionContext struct {
	Version      ProtocolVersion
	Security     SecurityType
	SharedAccess bool
	Name         string

	Framebuffer *Framebuffer
	Handlers    *Handlers

	TypedText strings.Builder
	Clipboard string

	// ClientEventCounts and ServerEventCounts tally how many times each
	// opcode was successfully decoded and applied during the event
	// loop, for the session index's per-opcode activity summary.
	ClientEventCounts map[uint8]int
	ServerEventCounts map[uint8]int

	zlib *zlibStream
}

// RecordClientEvent increments the tally for a successfully applied
// client-to-server opcode.
func (ctx *SessionContext) RecordClientEvent(op ClientOpcode) {
	ctx.ClientEventCounts[uint8(op)]++
}

// RecordServerEvent increments the tally for a successfully applied
// server-to-client opcode.
func (ctx *SessionContext) RecordServerEvent(op ServerOpcode) {
	ctx.ServerEventCounts[uint8(op)]++
}

// TypeKey appends the character or symbolic name for a pressed key to
// the typed-text accumulator and fires the TypeKey handler. Only
// key-down events call this; key-up is recorded in the replayed log but
// does not mutate typed text.
func (ctx *SessionContext) TypeKey(keysym uint32) {
	ctx.TypedText.WriteString(KeysymName(keysym))
	if ctx.Handlers != nil && ctx.Handlers.TypeKey != nil {
		ctx.Handlers.TypeKey(keysym)
	}
}

// SetClipboard records a new clipboard string (from either
// ClientCutText or ServerCutText) and fires the Clipboard handler.
func (ctx *SessionContext) SetClipboard(text string) {
	ctx.Clipboard = text
	if ctx.Handlers != nil && ctx.Handlers.Clipboard != nil {
		ctx.Handlers.Clipboard(text)
	}
}

// decodeLatin1 reinterprets raw wire bytes as Latin-1 text: RFB's
// ClientCutText/ServerCutText strings are Latin-1, where byte value and
// Unicode code point coincide, so this is a direct byte-to-rune widening
// rather than a lookup-table conversion.
func decodeLatin1(s string) string {
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}
