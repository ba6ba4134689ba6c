// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

// MessagePacket is a logical link-layer record before serialization.
//
// DataLen is the total on-wire length in bytes, inclusive of the
// four-byte header and the end marker. The checksum byte is reserved:
// it is carried on every packet but neither computed nor verified by
// either end.
type MessagePacket struct {
	DataLen    uint8
	PacketType ResponseType
	ResponseID uint8
	Checksum   uint8
	Payload    [128]byte
	EndMark    uint8
}

// NewMessagePacket creates a header-only packet of the given type.
// Callers append payload bytes into Payload and bump DataLen by the
// exact payload size before encoding.
func NewMessagePacket(t ResponseType, id uint8) MessagePacket {
	return MessagePacket{
		DataLen:    HeaderSize,
		PacketType: t,
		ResponseID: id,
		Checksum:   0x00,
		EndMark:    EndMark,
	}
}

// PayloadLen returns the number of payload bytes declared by DataLen.
func (p *MessagePacket) PayloadLen() int {
	if p.DataLen < HeaderSize {
		return 0
	}
	return int(p.DataLen) - HeaderSize
}
