package e2e

import (
	"encoding/binary"
)

// buildPcapFile assembles a minimal classic-pcap (libpcap) byte buffer
// containing frames in capture order, one 16-byte record header per
// frame. Grounded on internal/capture's own test fixture builder —
// duplicated here rather than imported since internal/capture's helper
// is unexported and this package exercises the public pipeline only.
func buildPcapFile(frames [][]byte) []byte {
	var buf []byte

	header := make([]byte, 24)
	binary.LittleEndian.PutUint32(header[0:4], 0xa1b2c3d4)
	binary.LittleEndian.PutUint16(header[4:6], 2)
	binary.LittleEndian.PutUint16(header[6:8], 4)
	binary.LittleEndian.PutUint32(header[16:20], 65535)
	binary.LittleEndian.PutUint32(header[20:24], 1) // LINKTYPE_ETHERNET
	buf = append(buf, header...)

	for i, frame := range frames {
		rec := make([]byte, 16)
		binary.LittleEndian.PutUint32(rec[0:4], uint32(1700000000+i))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(i*1000))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(len(frame)))
		binary.LittleEndian.PutUint32(rec[12:16], uint32(len(frame)))
		buf = append(buf, rec...)
		buf = append(buf, frame...)
	}
	return buf
}

// buildTCPFrame wraps payload in an Ethernet+IPv4+TCP frame travelling
// from srcIP:srcPort to dstIP:dstPort.
func buildTCPFrame(srcIP, dstIP [4]byte, srcPort, dstPort uint16, payload []byte) []byte {
	tcp := make([]byte, 20+len(payload))
	binary.BigEndian.PutUint16(tcp[0:2], srcPort)
	binary.BigEndian.PutUint16(tcp[2:4], dstPort)
	tcp[12] = 5 << 4 // data offset: 5 words = 20 bytes, no options
	copy(tcp[20:], payload)

	ip := make([]byte, 20+len(tcp))
	ip[0] = 0x45 // version 4, IHL 5
	binary.BigEndian.PutUint16(ip[2:4], uint16(len(ip)))
	ip[9] = 6 // protocol: TCP
	copy(ip[12:16], srcIP[:])
	copy(ip[16:20], dstIP[:])
	copy(ip[20:], tcp)

	eth := make([]byte, 14+len(ip))
	binary.BigEndian.PutUint16(eth[12:14], 0x0800) // IPv4
	copy(eth[14:], ip)
	return eth
}
