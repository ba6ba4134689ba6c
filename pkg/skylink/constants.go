// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package skylink implements the nanosatellite link-layer protocol used
// between the ground station and the spacecraft.
//
// The link multiplexes two streams over a single byte channel: binary
// packets delimited by a length prefix and a fixed end marker, and
// free-form ASCII debug lines terminated by line feed. This package
// provides packet encoding/decoding, frame extraction, validation, and
// human-readable formatting.
package skylink

// Protocol framing
const (
	EndMark    = 0x55 // terminates every binary packet
	HeaderSize = 5    // data_len + type + id + checksum + end mark

	// MaxFrameSize is the safety ceiling for an accumulating binary
	// frame. A frame that grows past this without a valid end mark is
	// dropped.
	MaxFrameSize = 256

	// ReservedID marks satellite-originated packets (beacons,
	// asynchronous events). Never used as a live correlation ID.
	ReservedID = 0xFF
)

// ResponseType identifies every packet kind exchanged with the satellite.
type ResponseType uint8

// Response type wire codes
const (
	Beacon              ResponseType = 0x01 // sat→gnd, sensor reading
	TimeSend            ResponseType = 0x02 // gnd→sat, u32 epoch seconds
	UpdateMinTemp       ResponseType = 0x03 // gnd→sat, u8
	UpdateHumidity      ResponseType = 0x04 // gnd→sat, u8
	UpdateVoltage       ResponseType = 0x05 // gnd→sat, f32
	UpdateLight         ResponseType = 0x06 // gnd→sat, u8
	Event               ResponseType = 0x07 // sat→gnd, event record
	Ack                 ResponseType = 0x08 // sat→gnd, empty
	Nack                ResponseType = 0x09 // sat→gnd, empty
	UpdateMaxTemp       ResponseType = 0x0A // gnd→sat, u8
	TimeRequest         ResponseType = 0x10 // sat→gnd, empty
	SensorLog           ResponseType = 0x11 // sat→gnd, sensor reading
	TotalLogs           ResponseType = 0x12 // sat→gnd, end of sensor logs
	RequestSensorLogs   ResponseType = 0x13 // gnd→sat, 2×u32
	EventLog            ResponseType = 0x14 // sat→gnd, event record
	EventLogEnd         ResponseType = 0x15 // sat→gnd, empty
	RequestEventLog     ResponseType = 0x16 // gnd→sat, 2×u32
	RequestCurrentTime  ResponseType = 0x17 // gnd→sat, empty
	ResponseCurrentTime ResponseType = 0x18 // sat→gnd, u32 epoch seconds
	Unknown             ResponseType = 0xFF
)

// Mode is the satellite operating state.
type Mode uint8

// Mode wire values
const (
	ModeError Mode = 0x01
	ModeSafe  Mode = 0x02
	ModeOK    Mode = 0x03
)

// EventKind enumerates mode-transition and lifecycle events raised by
// the satellite.
type EventKind uint8

// Event wire values
const (
	EventOKToError EventKind = iota
	EventErrorToOK
	EventWatchdogReset
	EventInit
	EventOKToSafe
	EventSafeToError
	EventSafeToOK
	EventErrorToSafe
)

// The satellite never returns more than this many records for a single
// log range request.
const MaxLogRecords = 10
