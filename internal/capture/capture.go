// Package capture reads a classic ("libpcap") packet-capture file into
// ordered, per-direction TCP payload sequences with timestamps. It is the
// external collaborator spec.md assigns the role of "packet-capture file
// reader": the RFB decoder in internal/rfb never parses Ethernet, IPv4, or
// TCP itself, it only consumes the Flows this package produces.
//
// This reader is intentionally minimal: IPv4 over Ethernet (with an
// optional single 802.1Q tag) only, no pcapng, no IP fragmentation
// reassembly, no IPv6. Real-world captures of a VNC session over a single
// TCP connection satisfy all of these.
package capture

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"os"
	"time"
)

// Packet is one TCP segment's payload with its capture timestamp.
type Packet struct {
	Timestamp time.Time
	Payload   []byte
}

// Endpoint identifies one side of a TCP connection.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

// Flow is one TCP half-connection: every payload observed travelling from
// Src to Dst, in capture order.
type Flow struct {
	Src, Dst Endpoint
	Packets  []Packet
}

// Session pairs the two half-flows of one TCP conversation. Flows[0] and
// Flows[1] are in the order first observed; neither is yet labelled
// client or server — that is internal/wire's session locator's job.
type Session struct {
	Flows [2]Flow
}

const (
	magicMicros        = 0xa1b2c3d4
	magicMicrosSwapped  = 0xd4c3b2a1
	magicNanos         = 0xa1b23c4d
	magicNanosSwapped  = 0x4d3cb2a1
)

// ReadFile parses a classic pcap file at path into TCP sessions.
func ReadFile(path string) ([]Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses classic pcap file contents already held in memory.
func Parse(data []byte) ([]Session, error) {
	if len(data) < 24 {
		return nil, fmt.Errorf("capture: file too short for a pcap global header")
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	var order binary.ByteOrder
	var nanos bool
	switch magic {
	case magicMicros:
		order, nanos = binary.LittleEndian, false
	case magicMicrosSwapped:
		order, nanos = binary.BigEndian, false
	case magicNanos:
		order, nanos = binary.LittleEndian, true
	case magicNanosSwapped:
		order, nanos = binary.BigEndian, true
	default:
		return nil, fmt.Errorf("capture: unrecognized pcap magic number 0x%08x", magic)
	}

	offset := 24 // past the global header
	var flows []*Flow
	flowIndex := make(map[string]int)

	for offset+16 <= len(data) {
		tsSec := order.Uint32(data[offset:])
		tsFrac := order.Uint32(data[offset+4:])
		inclLen := order.Uint32(data[offset+8:])
		offset += 16

		if offset+int(inclLen) > len(data) {
			return nil, fmt.Errorf("capture: truncated packet record at offset %d", offset)
		}
		frame := data[offset : offset+int(inclLen)]
		offset += int(inclLen)

		var ts time.Time
		if nanos {
			ts = time.Unix(int64(tsSec), int64(tsFrac)).UTC()
		} else {
			ts = time.Unix(int64(tsSec), int64(tsFrac)*1000).UTC()
		}

		src, dst, payload, ok := parseEthernetIPv4TCP(frame)
		if !ok || len(payload) == 0 {
			continue
		}

		key := flowKey(src, dst)
		idx, exists := flowIndex[key]
		if !exists {
			idx = len(flows)
			flowIndex[key] = idx
			flows = append(flows, &Flow{Src: src, Dst: dst})
		}
		flows[idx].Packets = append(flows[idx].Packets, Packet{Timestamp: ts, Payload: payload})
	}

	return pairFlows(flows), nil
}

func flowKey(src, dst Endpoint) string {
	return src.String() + ">" + dst.String()
}

// pairFlows groups directional Flows into Sessions by matching each flow
// with its reverse-direction counterpart, if one was observed.
func pairFlows(flows []*Flow) []Session {
	used := make([]bool, len(flows))
	var sessions []Session
	for i, f := range flows {
		if used[i] {
			continue
		}
		used[i] = true
		sess := Session{Flows: [2]Flow{*f, {}}}
		for j := i + 1; j < len(flows); j++ {
			if used[j] {
				continue
			}
			g := flows[j]
			if g.Src == f.Dst && g.Dst == f.Src {
				sess.Flows[1] = *g
				used[j] = true
				break
			}
		}
		sessions = append(sessions, sess)
	}
	return sessions
}

// parseEthernetIPv4TCP strips an Ethernet (with an optional single 802.1Q
// tag), IPv4, and TCP header from frame, returning the endpoints and the
// TCP payload bytes. ok is false for anything this minimal reader does not
// understand (non-IPv4 ethertypes, non-TCP IP protocols, truncated frames).
func parseEthernetIPv4TCP(frame []byte) (src, dst Endpoint, payload []byte, ok bool) {
	if len(frame) < 14 {
		return
	}
	etherType := uint16(frame[12])<<8 | uint16(frame[13])
	offset := 14
	if etherType == 0x8100 { // 802.1Q VLAN tag
		if len(frame) < offset+4 {
			return
		}
		etherType = uint16(frame[offset+2])<<8 | uint16(frame[offset+3])
		offset += 4
	}
	if etherType != 0x0800 { // IPv4
		return
	}

	ip := frame[offset:]
	if len(ip) < 20 {
		return
	}
	version := ip[0] >> 4
	ihl := int(ip[0]&0x0f) * 4
	if version != 4 || ihl < 20 || len(ip) < ihl {
		return
	}
	totalLen := int(binary.BigEndian.Uint16(ip[2:4]))
	protocol := ip[9]
	if protocol != 6 { // TCP
		return
	}
	srcIP := netip.AddrFrom4([4]byte{ip[12], ip[13], ip[14], ip[15]})
	dstIP := netip.AddrFrom4([4]byte{ip[16], ip[17], ip[18], ip[19]})

	if totalLen == 0 || totalLen > len(ip) {
		totalLen = len(ip) // some captures zero this out or truncate; fall back to what we have
	}
	tcp := ip[ihl:totalLen]
	if len(tcp) < 20 {
		return
	}
	srcPort := binary.BigEndian.Uint16(tcp[0:2])
	dstPort := binary.BigEndian.Uint16(tcp[2:4])
	dataOffset := int(tcp[12]>>4) * 4
	if dataOffset < 20 || dataOffset > len(tcp) {
		return
	}

	src = Endpoint{Addr: srcIP, Port: srcPort}
	dst = Endpoint{Addr: dstIP, Port: dstPort}
	payload = tcp[dataOffset:]
	ok = true
	return
}
