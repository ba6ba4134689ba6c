// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

// Command builder functions create MessagePackets ready for encoding.
// Each builder lays out its payload little-endian at the offsets the
// satellite firmware expects and bumps data_len by the exact payload
// size.

// NewTimeSend creates a TIME_SEND packet (0x02) carrying epoch seconds.
// Sent in reply to a TIME_REQUEST, or unsolicited for set_time.
func NewTimeSend(id uint8, epoch uint32) MessagePacket {
	p := NewMessagePacket(TimeSend, id)
	PutUint32(&p, 0, epoch)
	return p
}

// NewUpdateMinTemp creates an UPDATE_MIN_TEMP packet (0x03).
func NewUpdateMinTemp(id uint8, value uint8) MessagePacket {
	p := NewMessagePacket(UpdateMinTemp, id)
	PutUint8(&p, 0, value)
	return p
}

// NewUpdateMaxTemp creates an UPDATE_MAX_TEMP packet (0x0A).
func NewUpdateMaxTemp(id uint8, value uint8) MessagePacket {
	p := NewMessagePacket(UpdateMaxTemp, id)
	PutUint8(&p, 0, value)
	return p
}

// NewUpdateHumidity creates an UPDATE_HUMIDITY packet (0x04).
func NewUpdateHumidity(id uint8, value uint8) MessagePacket {
	p := NewMessagePacket(UpdateHumidity, id)
	PutUint8(&p, 0, value)
	return p
}

// NewUpdateLight creates an UPDATE_LIGHT packet (0x06).
func NewUpdateLight(id uint8, value uint8) MessagePacket {
	p := NewMessagePacket(UpdateLight, id)
	PutUint8(&p, 0, value)
	return p
}

// NewUpdateVoltage creates an UPDATE_VOLTAGE packet (0x05) carrying an
// IEEE-754 binary32 value.
func NewUpdateVoltage(id uint8, value float32) MessagePacket {
	p := NewMessagePacket(UpdateVoltage, id)
	PutFloat32(&p, 0, value)
	return p
}

// NewRequestSensorLogs creates a REQUEST_SENSOR_LOGS packet (0x13) for
// the inclusive timestamp range [start, end]. The satellite streams at
// most MaxLogRecords SENSOR_LOG packets followed by TOTAL_LOGS.
func NewRequestSensorLogs(id uint8, start, end uint32) MessagePacket {
	p := NewMessagePacket(RequestSensorLogs, id)
	PutUint32(&p, 0, start)
	PutUint32(&p, 4, end)
	return p
}

// NewRequestEventLog creates a REQUEST_EVENT_LOG packet (0x16) for the
// inclusive timestamp range [start, end]. The satellite streams
// EVENT_LOG packets followed by EVENT_LOG_END.
func NewRequestEventLog(id uint8, start, end uint32) MessagePacket {
	p := NewMessagePacket(RequestEventLog, id)
	PutUint32(&p, 0, start)
	PutUint32(&p, 4, end)
	return p
}

// NewRequestCurrentTime creates a REQUEST_CURRENT_TIME packet (0x17).
//
// The request carries no meaningful payload, but the deployed firmware
// was qualified against a ground side that sized this packet as if it
// carried a u32, so four zero bytes go on the wire. Kept for wire
// compatibility.
func NewRequestCurrentTime(id uint8) MessagePacket {
	p := NewMessagePacket(RequestCurrentTime, id)
	p.DataLen += 4
	return p
}
