// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package skylink

import (
	"fmt"
	"time"
)

// timestampLayout renders epoch seconds in local time for operators.
const timestampLayout = "2006-01-02 15:04:05 MST"

// FormatTimestamp renders epoch seconds as local time.
func FormatTimestamp(epoch uint32) string {
	return time.Unix(int64(epoch), 0).Local().Format(timestampLayout)
}

// FormatSensorData renders a reading in the multi-line form streamed to
// operators for sensor log records.
func FormatSensorData(r SensorReading) string {
	return fmt.Sprintf("Temperature: %d°C\nHumidity: %d%%\nLight: %d%%\nMode: %s\nVoltage: %.2fV\nTimestamp: %d\nLocal Time: %s\n",
		r.Temp, r.Humidity, r.Light, r.Mode, r.Voltage, r.Timestamp, FormatTimestamp(r.Timestamp))
}

// FormatEventData renders an event record for operator delivery.
func FormatEventData(e EventRecord) string {
	return fmt.Sprintf("Event: %s\nTimestamp: %d", e.Event, e.Timestamp)
}

// FormatBeacon renders the stdout block printed for each beacon.
func FormatBeacon(r SensorReading) string {
	return fmt.Sprintf("Beacon Data:\nMode: %s\nTimestamp: %d\nLocal Time: %s\n-----------------\n",
		r.Mode, r.Timestamp, FormatTimestamp(r.Timestamp))
}

// FormatEvent renders the stdout block printed for each asynchronous
// event.
func FormatEvent(e EventRecord) string {
	return fmt.Sprintf("Event: %s\nTimestamp: %d\nLocal Time: %s\n-----------------\n",
		e.Event, e.Timestamp, FormatTimestamp(e.Timestamp))
}

// String returns the operator-facing mode name.
func (m Mode) String() string {
	switch m {
	case ModeError:
		return "Error"
	case ModeSafe:
		return "Safe"
	case ModeOK:
		return "OK"
	default:
		return "Unknown"
	}
}

// String returns the operator-facing event name.
func (e EventKind) String() string {
	switch e {
	case EventOKToError:
		return "OK to Error"
	case EventErrorToOK:
		return "Error to OK"
	case EventWatchdogReset:
		return "Watchdog Reset"
	case EventInit:
		return "Initialization"
	case EventOKToSafe:
		return "OK to Safe"
	case EventSafeToError:
		return "Safe to Error"
	case EventSafeToOK:
		return "Safe to OK"
	case EventErrorToSafe:
		return "Error to Safe"
	default:
		return "Unknown"
	}
}

// String returns the wire-registry name of a response type.
func (t ResponseType) String() string {
	switch t {
	case Beacon:
		return "BEACON"
	case TimeSend:
		return "TIME_SEND"
	case UpdateMinTemp:
		return "UPDATE_MIN_TEMP"
	case UpdateHumidity:
		return "UPDATE_HUMIDITY"
	case UpdateVoltage:
		return "UPDATE_VOLTAGE"
	case UpdateLight:
		return "UPDATE_LIGHT"
	case Event:
		return "EVENT"
	case Ack:
		return "ACK"
	case Nack:
		return "NACK"
	case UpdateMaxTemp:
		return "UPDATE_MAX_TEMP"
	case TimeRequest:
		return "TIME_REQUEST"
	case SensorLog:
		return "SENSOR_LOG"
	case TotalLogs:
		return "TOTAL_LOGS"
	case RequestSensorLogs:
		return "REQUEST_SENSOR_LOGS"
	case EventLog:
		return "EVENT_LOG"
	case EventLogEnd:
		return "EVENT_LOG_END"
	case RequestEventLog:
		return "REQUEST_EVENT_LOG"
	case RequestCurrentTime:
		return "REQUEST_CURRENT_TIME"
	case ResponseCurrentTime:
		return "RESPONSE_CURRENT_TIME"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame renders a decoded binary frame for the link monitor.
func FormatFrame(frame []byte, at time.Time) string {
	t := ParseResponseType(frame)
	id := ParseResponseID(frame)

	s := fmt.Sprintf("[%s] %s (0x%02X) id=0x%02X len=%d\n",
		at.Format("15:04:05.000"), t, uint8(t), id, len(frame))

	switch t {
	case Beacon, SensorLog:
		if r, err := ParseSensorData(frame); err == nil {
			s += fmt.Sprintf("  temp=%d°C humid=%d%% light=%d%% mode=%s voltage=%.2fV ts=%d\n",
				r.Temp, r.Humidity, r.Light, r.Mode, r.Voltage, r.Timestamp)
			return s
		}
	case Event, EventLog:
		if e, err := ParseEventData(frame); err == nil {
			s += fmt.Sprintf("  event=%s ts=%d\n", e.Event, e.Timestamp)
			return s
		}
	case ResponseCurrentTime:
		if epoch, err := ParseCurrentTime(frame); err == nil {
			s += fmt.Sprintf("  epoch=%d (%s)\n", epoch, FormatTimestamp(epoch))
			return s
		}
	case Ack, Nack, TimeRequest, EventLogEnd:
		return s
	}

	if len(frame) > HeaderSize {
		s += "  payload:"
		for _, b := range frame[4 : len(frame)-1] {
			s += fmt.Sprintf(" %02X", b)
		}
		s += "\n"
	}
	return s
}
