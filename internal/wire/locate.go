package wire

import (
	"bytes"

	"github.com/rjsadow/rfbreplay/internal/capture"
	"github.com/rjsadow/rfbreplay/internal/rfberrors"
)

// Locate scans the capture's TCP sessions and returns the server and
// client directional streams of the first conversation whose initial
// payload is exactly 12 bytes, starts with "RFB ", and ends with "\n",
// per spec.md §4.4. The half-flow whose first payload has the earlier
// timestamp is labelled server (the server sends its banner first); the
// other is client.
func Locate(sessions []capture.Session) (server, client *DirectionalStream, err error) {
	for _, sess := range sessions {
		for i := 0; i < 2; i++ {
			a := sess.Flows[i]
			b := sess.Flows[1-i]
			if len(a.Packets) == 0 {
				continue
			}
			first := a.Packets[0].Payload
			if !isRFBBanner(first) {
				continue
			}

			serverFlow, clientFlow := a, b
			if len(b.Packets) > 0 && b.Packets[0].Timestamp.Before(a.Packets[0].Timestamp) {
				serverFlow, clientFlow = b, a
			}
			return toStream(serverFlow), toStream(clientFlow), nil
		}
	}
	return nil, nil, &rfberrors.CaptureInputError{Reason: "no flow in the capture starts with an RFB protocol banner"}
}

func isRFBBanner(payload []byte) bool {
	return len(payload) == 12 && bytes.HasPrefix(payload, []byte("RFB ")) && bytes.HasSuffix(payload, []byte("\n"))
}

func toStream(f capture.Flow) *DirectionalStream {
	payloads := make([]Payload, len(f.Packets))
	for i, p := range f.Packets {
		payloads[i] = Payload{Timestamp: p.Timestamp, Data: p.Payload}
	}
	return NewDirectionalStream(payloads)
}
