package wire

// Origin identifies which directional stream the merger has selected for
// the next packet.
type Origin int

const (
	// OriginNone means both streams are exhausted.
	OriginNone Origin = iota
	OriginClient
	OriginServer
)

func (o Origin) String() string {
	switch o {
	case OriginClient:
		return "client"
	case OriginServer:
		return "server"
	default:
		return "none"
	}
}

// MergedStream presents a pair of DirectionalStreams as one, per
// spec.md §4.3: the next packet is always the one with the smaller
// pending timestamp; when only one side has pending data, that side is
// drained; ties resolve deterministically (client wins ties here).
type MergedStream struct {
	Client *DirectionalStream
	Server *DirectionalStream
}

// NewMergedStream builds a MergedStream over the given client and server
// directional streams.
func NewMergedStream(client, server *DirectionalStream) *MergedStream {
	return &MergedStream{Client: client, Server: server}
}

// NextOrigin reports which side the event loop should parse from next.
func (m *MergedStream) NextOrigin() Origin {
	ct, cok := m.Client.NextTimestamp()
	st, sok := m.Server.NextTimestamp()

	switch {
	case !cok && !sok:
		return OriginNone
	case !cok:
		return OriginServer
	case !sok:
		return OriginClient
	case ct.After(st):
		return OriginServer
	default:
		return OriginClient
	}
}
