// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

import (
	"encoding/binary"
	"fmt"
	"math"
)

// IDSource supplies fresh correlation IDs to the encoder. The ground
// station injects its allocator; tests may supply their own.
type IDSource interface {
	Next() uint8
}

// Encoder serializes MessagePackets to wire format.
type Encoder struct {
	ids IDSource
}

// NewEncoder creates an encoder drawing correlation IDs from ids.
func NewEncoder(ids IDSource) *Encoder {
	return &Encoder{ids: ids}
}

// Encode serializes p to exactly DataLen bytes:
// [data_len, packet_type, response_id, checksum, payload..., end_mark].
//
// ID 0xFF is reserved for satellite-originated packets. A
// ground-originated packet carrying the reserved ID gets a fresh one
// substituted here so the sentinel keeps its meaning on the wire.
func (e *Encoder) Encode(p *MessagePacket) ([]byte, error) {
	if p.DataLen < HeaderSize {
		return nil, fmt.Errorf("packet data_len %d below header size", p.DataLen)
	}

	if p.ResponseID == ReservedID {
		p.ResponseID = e.ids.Next()
	}

	buf := make([]byte, 0, p.DataLen)
	buf = append(buf, p.DataLen)
	buf = append(buf, uint8(p.PacketType))
	buf = append(buf, p.ResponseID)
	buf = append(buf, p.Checksum)
	buf = append(buf, p.Payload[:p.PayloadLen()]...)
	buf = append(buf, p.EndMark)

	return buf, nil
}

// PutUint32 writes v little-endian into the packet payload at off and
// extends DataLen to cover it.
func PutUint32(p *MessagePacket, off int, v uint32) {
	binary.LittleEndian.PutUint32(p.Payload[off:off+4], v)
	p.DataLen += 4
}

// PutUint8 writes v into the packet payload at off and extends DataLen.
func PutUint8(p *MessagePacket, off int, v uint8) {
	p.Payload[off] = v
	p.DataLen++
}

// PutFloat32 writes v as IEEE-754 binary32 little-endian at off and
// extends DataLen.
func PutFloat32(p *MessagePacket, off int, v float32) {
	binary.LittleEndian.PutUint32(p.Payload[off:off+4], math.Float32bits(v))
	p.DataLen += 4
}
