// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package link provides the duplex byte channel to the satellite.
//
// Two concrete transports exist: a raw serial device and a WebSocket
// bridge carrying the same byte stream. An in-memory loopback is
// provided for tests.
package link

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Conn is the duplex byte channel between the ground station and the
// satellite.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConn wraps a serial port.
type SerialConn struct {
	port serial.Port
}

func (s *SerialConn) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConn) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConn) Close() error {
	return s.port.Close()
}

// OpenSerial opens the satellite serial line in 8-N-1 raw mode.
func OpenSerial(portName string, baudRate int) (Conn, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialConn{port: port}, nil
}

// Open selects a transport: a WebSocket bridge when url is set,
// otherwise the serial device.
func Open(portName string, baudRate int, url string) (Conn, string, error) {
	if url != "" {
		conn, err := OpenWebSocket(url)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", url), nil
	}

	if portName != "" {
		conn, err := OpenSerial(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("no link configured: set a serial port or a bridge URL")
}
