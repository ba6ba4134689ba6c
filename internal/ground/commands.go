// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package ground

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelsat/groundlink/pkg/skylink"
)

const helpMessage = "🛰️ === SATELLITE COMMAND CENTER === 🛰️\n\n" +
	"📊 SENSOR DATA COMMANDS:\n" +
	"  • get_sensor_data         - Get the latest sensor readings\n" +
	"  • get_recent_sensor_data  - Get sensor data from the last minute\n\n" +
	"⏰ TIME MANAGEMENT:\n" +
	"  • get_current_time        - Get the current time from the satellite\n" +
	"  • set_time <timestamp>    - Set custom time for the satellite\n\n" +
	"🔧 SATELLITE CONFIGURATION:\n" +
	"  • update_light <value>    - Set light level (0-100)\n" +
	"  • update_min_temp <value> - Set minimum temperature\n" +
	"  • update_max_temp <value> - Set maximum temperature\n" +
	"  • update_humidity <value> - Set humidity level (0-100)\n" +
	"  • update_voltage <value>  - Set voltage level (0.1-3.3V)\n\n" +
	"📝 LOG RETRIEVAL:\n" +
	"  • get_sensor_logs <start> <end> - Request sensor logs between timestamps (MAX 10)\n" +
	"  • get_events_logs <start> <end> - Request events logs between timestamps (MAX 10)\n\n" +
	"ℹ️ HELP:\n" +
	"  • help                    - Show this help message\n\n"

// HandleCommand parses one operator message and executes it. Every
// outcome, success or failure, is reported to the originating operator
// only; command errors never reach the wire.
func (d *Dispatcher) HandleCommand(op OperatorHandle, message string) {
	d.log.Info("operator command received", "operator", uint64(op), "message", message)

	fields := strings.Fields(message)
	if len(fields) == 0 {
		return
	}
	command := fields[0]
	args := fields[1:]

	d.metrics.ObserveCommand(command)

	switch command {
	case "get_sensor_data":
		d.cmdGetSensorData(op)
	case "get_recent_sensor_data":
		d.cmdGetRecentSensorData(op)
	case "update_light":
		d.cmdUpdateLight(op, args)
	case "update_min_temp":
		d.cmdUpdateMinTemp(op, args)
	case "update_max_temp":
		d.cmdUpdateMaxTemp(op, args)
	case "update_humidity":
		d.cmdUpdateHumidity(op, args)
	case "update_voltage":
		d.cmdUpdateVoltage(op, args)
	case "get_sensor_logs":
		d.cmdGetSensorLogs(op, args)
	case "get_events_logs":
		d.cmdGetEventsLogs(op, args)
	case "get_current_time":
		d.RequestCurrentTime(op)
	case "set_time":
		d.cmdSetTime(op, args)
	case "help":
		d.sender.Send(op, helpMessage)
	default:
		d.sender.Send(op, "Unknown command: "+command+". Type 'help' for available commands.")
	}
}

func (d *Dispatcher) cmdGetSensorData(op OperatorHandle) {
	d.mu.Lock()
	latest := d.latest
	d.mu.Unlock()

	reply := fmt.Sprintf("Temperature: %d°C, Humidity: %d%%, Light: %d%%, Voltage: %gV, Mode: %s",
		latest.Temp, latest.Humidity, latest.Light, latest.Voltage, latest.Mode)
	d.sender.Send(op, reply)
}

// The recent window is the last 50 seconds of the satellite clock,
// anchored at the latest beacon.
func (d *Dispatcher) cmdGetRecentSensorData(op OperatorHandle) {
	latest, ok := d.LatestReading()
	if !ok || latest.Timestamp == 0 {
		d.sender.Send(op, "Error: No sensor data available yet. Wait for a beacon.")
		return
	}

	end := latest.Timestamp
	start := uint32(0)
	if end > 50 {
		start = end - 50
	}

	d.RequestSensorRange(start, end, op)
	d.sender.Send(op, "Retrieving sensor data from the last minute...")
}

func (d *Dispatcher) cmdUpdateLight(op OperatorHandle, args []string) {
	value, err := parseInt(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid light value")
		return
	}
	if value < 0 || value > 100 {
		d.sender.Send(op, "Error: Light value must be between 0 and 100")
		return
	}

	d.UpdateLight(uint8(value), op)
	d.sender.Send(op, fmt.Sprintf("Light updated to %d%%", value))
}

// Temperature thresholds ride to the satellite unchecked; the firmware
// validates them (as percentages, oddly) and NACKs out-of-range values.
func (d *Dispatcher) cmdUpdateMinTemp(op OperatorHandle, args []string) {
	value, err := parseInt(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid temperature value")
		return
	}

	d.UpdateMinTemp(uint8(value), op)
	d.sender.Send(op, fmt.Sprintf("Minimum temperature updated to %d°C", value))
}

func (d *Dispatcher) cmdUpdateMaxTemp(op OperatorHandle, args []string) {
	value, err := parseInt(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid temperature value")
		return
	}

	d.UpdateMaxTemp(uint8(value), op)
	d.sender.Send(op, fmt.Sprintf("Maximum temperature updated to %d°C", value))
}

func (d *Dispatcher) cmdUpdateHumidity(op OperatorHandle, args []string) {
	value, err := parseInt(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid humidity value")
		return
	}
	if value < 0 || value > 100 {
		d.sender.Send(op, "Error: Humidity value must be between 0 and 100")
		return
	}

	d.UpdateHumidity(uint8(value), op)
	d.sender.Send(op, fmt.Sprintf("Humidity updated to %d%%", value))
}

func (d *Dispatcher) cmdUpdateVoltage(op OperatorHandle, args []string) {
	if len(args) < 1 {
		d.sender.Send(op, "Error: Invalid voltage value")
		return
	}
	value, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		d.sender.Send(op, "Error: Invalid voltage value")
		return
	}

	if value > 3.3 || value < 0.1 {
		d.sender.Send(op, "Error: Voltage value must be between 0.1 and 3.3")
		return
	}

	d.UpdateVoltage(float32(value), op)
	d.sender.Send(op, fmt.Sprintf("Voltage updated to %fV", value))
}

func (d *Dispatcher) cmdGetSensorLogs(op OperatorHandle, args []string) {
	start, end, err := parseRange(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid timestamp values. Format: get_sensor_logs <start_timestamp> <end_timestamp>")
		return
	}

	d.RequestSensorRange(start, end, op)
	d.sender.Send(op, fmt.Sprintf("Requested logs between %d and %d. Processing...", start, end))
}

func (d *Dispatcher) cmdGetEventsLogs(op OperatorHandle, args []string) {
	start, end, err := parseRange(args)
	if err != nil {
		d.sender.Send(op, "Error: Invalid timestamp values. Format: get_events_logs <start_timestamp> <end_timestamp>")
		return
	}

	d.RequestEventRange(start, end, op)
	d.sender.Send(op, fmt.Sprintf("Requested logs between %d and %d. Processing...", start, end))
}

// set_time refuses to move the satellite clock behind the latest
// beacon; the satellite's log timeline must stay monotone.
func (d *Dispatcher) cmdSetTime(op OperatorHandle, args []string) {
	if len(args) < 1 {
		d.sender.Send(op, "Error: Invalid time value. Format: set_time <unix_timestamp>")
		return
	}
	newTime, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		d.sender.Send(op, "Error: Invalid time value. Format: set_time <unix_timestamp>")
		return
	}

	latest, ok := d.LatestReading()
	if ok && latest.Timestamp > 0 && uint32(newTime) < latest.Timestamp {
		d.sender.Send(op, fmt.Sprintf("Error: Cannot set time before the latest sensor data timestamp (%d)", latest.Timestamp))
		return
	}

	d.SendCustomTime(uint32(newTime))
	d.sender.Send(op, "\nSet custom time to:"+skylink.FormatTimestamp(uint32(newTime))+"\n")
}

func parseInt(args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.Atoi(args[0])
}

func parseRange(args []string) (uint32, uint32, error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("missing arguments")
	}
	start, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	end, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(start), uint32(end), nil
}
