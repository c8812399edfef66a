// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

/*
Packet layout, all fields big-endian:

|<- 4 bytes ->|<-- 8 bytes -->|<- 2 bytes ->|<---- N * 4 bytes ---->|
+-------------+---------------+-------------+-----------------------+
|  sequence   |   timestamp   |    count    |        values         |
|  (uint32)   | (int64, ns)   |  (uint16)   |    (N * float32, dB)  |
+-------------+---------------+-------------+-----------------------+
*/

// HeaderSize is the fixed number of bytes before the values.
const HeaderSize = 4 + 8 + 2

var ErrShortPacket = errors.New("udp: packet shorter than its header claims")

// Packet is one decoded datagram.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Values    []float32
}

// AppendPacket encodes p into buf, which is reset first.
func AppendPacket(buf *bytes.Buffer, p Packet) error {
	if len(p.Values) > math.MaxUint16 {
		return fmt.Errorf("udp: %d values exceed the packet limit of %d", len(p.Values), math.MaxUint16)
	}

	buf.Reset()
	buf.Grow(HeaderSize + 4*len(p.Values))

	err := binary.Write(buf, binary.BigEndian, p.Sequence)
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, p.Timestamp)
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, uint16(len(p.Values)))
	}
	if err == nil {
		err = binary.Write(buf, binary.BigEndian, p.Values)
	}
	return err
}

// DecodePacket parses a datagram produced by AppendPacket.
func DecodePacket(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, ErrShortPacket
	}

	var p Packet
	p.Sequence = binary.BigEndian.Uint32(data[0:4])
	p.Timestamp = int64(binary.BigEndian.Uint64(data[4:12]))
	count := int(binary.BigEndian.Uint16(data[12:14]))

	if len(data) < HeaderSize+4*count {
		return Packet{}, ErrShortPacket
	}
	p.Values = make([]float32, count)
	if err := binary.Read(bytes.NewReader(data[HeaderSize:]), binary.BigEndian, p.Values); err != nil {
		return Packet{}, fmt.Errorf("udp: decode values: %w", err)
	}
	return p, nil
}
