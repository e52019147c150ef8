package wire

import "time"

// Payload is one timestamped chunk of bytes arriving on a directional stream.
type Payload struct {
	Timestamp time.Time
	Data      []byte
}

// DirectionalStream wraps an ordered queue of (timestamp, payload) pairs
// for one side of a TCP conversation and binds a ByteReader to it, per
// spec.md §4.2. NextTimestamp exposes the timestamp of the next pending
// packet without consuming it; CurrentTimestamp is the timestamp of the
// last packet actually delivered to the reader, retained even once the
// queue empties.
type DirectionalStream struct {
	payloads []Payload
	idx      int

	currentTimestamp    time.Time
	hasCurrentTimestamp bool

	reader *ByteReader
}

// NewDirectionalStream creates a DirectionalStream over an already-ordered
// slice of payloads.
func NewDirectionalStream(payloads []Payload) *DirectionalStream {
	ds := &DirectionalStream{payloads: payloads}
	ds.reader = NewByteReader(ds)
	return ds
}

// Next implements PayloadSource: it pops the next pending payload, if any,
// updating CurrentTimestamp as it does so.
func (ds *DirectionalStream) Next() ([]byte, bool) {
	if ds.idx >= len(ds.payloads) {
		return nil, false
	}
	p := ds.payloads[ds.idx]
	ds.idx++
	ds.currentTimestamp = p.Timestamp
	ds.hasCurrentTimestamp = true
	return p.Data, true
}

// NextTimestamp returns the timestamp of the next pending packet. ok is
// false iff no packet is pending.
func (ds *DirectionalStream) NextTimestamp() (ts time.Time, ok bool) {
	if ds.idx >= len(ds.payloads) {
		return time.Time{}, false
	}
	return ds.payloads[ds.idx].Timestamp, true
}

// CurrentTimestamp returns the timestamp of the most recently delivered
// packet. ok is false before any packet has been taken.
func (ds *DirectionalStream) CurrentTimestamp() (ts time.Time, ok bool) {
	return ds.currentTimestamp, ds.hasCurrentTimestamp
}

// Reader returns the ByteReader bound to this stream's payload queue.
func (ds *DirectionalStream) Reader() *ByteReader {
	return ds.reader
}
