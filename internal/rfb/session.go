package rfb

import (
	"log/slog"
	"time"

	"github.com/rjsadow/rfbreplay/internal/wire"
)

// EventCallback receives a timestamped notice of a decoded client or
// server message, for callers that want a trace of the replay
// alongside the framebuffer/handler callbacks.
type EventCallback func(timestamp time.Time, origin wire.Origin, opcode uint8)

// Session orchestrates one replayed VNC connection: it runs the
// handshake, then drives the event loop off the merged,
// timestamp-ordered stream until both directions are exhausted, per
// spec.md §4.5 and §5.
type Session struct {
	Context *SessionContext
	merged  *wire.MergedStream
	trace   EventCallback
}

// NewSession runs the handshake over server and client, then returns a
// Session ready to Run the event loop.
func NewSession(server, client *wire.DirectionalStream, trace EventCallback) (*Session, error) {
	ctx, err := RunHandshake(server.Reader(), client.Reader())
	if err != nil {
		return nil, err
	}
	return &Session{
		Context: ctx,
		merged:  wire.NewMergedStream(client, server),
		trace:   trace,
	}, nil
}

// Run drives the merged stream to completion, decoding and applying
// every message in timestamp order until both directions are
// exhausted (OriginNone), per spec.md §5's termination rule.
func (s *Session) Run() error {
	for {
		origin := s.merged.NextOrigin()
		switch origin {
		case wire.OriginNone:
			return nil
		case wire.OriginClient:
			ts, _ := s.merged.Client.NextTimestamp()
			op, err := DecodeClientEvent(s.Context, s.merged.Client.Reader())
			if s.trace != nil {
				s.trace(ts, origin, uint8(op))
			}
			if err != nil {
				return err
			}
			s.Context.RecordClientEvent(op)
		case wire.OriginServer:
			ts, _ := s.merged.Server.NextTimestamp()
			op, err := DecodeServerEvent(s.Context, s.merged.Server.Reader())
			if s.trace != nil {
				s.trace(ts, origin, uint8(op))
			}
			if err != nil {
				return err
			}
			s.Context.RecordServerEvent(op)
		default:
			slog.Warn("merged stream returned unexpected origin", "origin", origin)
			return nil
		}
	}
}
