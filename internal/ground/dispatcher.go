// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package ground implements the core engine of the ground station: the
// link-layer dispatch loop, the request/response correlator, the sensor
// index, and the operator command surface.
package ground

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kestrelsat/groundlink/internal/link"
	"github.com/kestrelsat/groundlink/internal/observability"
	"github.com/kestrelsat/groundlink/pkg/skylink"
)

// TextSender delivers text to an operator session. Send reports false
// when the handle no longer maps to a live session; the dispatcher
// treats that as a silent drop.
type TextSender interface {
	Send(op OperatorHandle, text string) bool
}

// discardSender drops everything; used until a gateway is attached.
type discardSender struct{}

func (discardSender) Send(OperatorHandle, string) bool { return false }

// Dispatcher owns the packet engine: it drives the listen loop over the
// link, classifies inbound frames, routes correlated replies to waiting
// operators, and translates operator requests into outbound packets.
type Dispatcher struct {
	conn    link.Conn
	writeMu sync.Mutex // one packet's bytes stay contiguous on the wire

	ids     *IDAllocator
	enc     *skylink.Encoder
	reader  *skylink.FrameReader
	corr    *Correlator
	index   *SensorIndex
	metrics *observability.Collector
	log     *slog.Logger
	out     io.Writer // beacon/event/debug console, normally stdout

	sender TextSender

	mu         sync.Mutex
	latest     skylink.SensorReading
	haveBeacon bool
}

// NewDispatcher builds a dispatcher over conn. The allocator is an
// owned instance injected here so tests can seed their own; metrics may
// be nil.
func NewDispatcher(conn link.Conn, ids *IDAllocator, metrics *observability.Collector, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		conn:    conn,
		ids:     ids,
		enc:     skylink.NewEncoder(ids),
		reader:  skylink.NewFrameReader(),
		corr:    NewCorrelator(),
		index:   NewSensorIndex(),
		metrics: metrics,
		log:     logger,
		out:     os.Stdout,
		sender:  discardSender{},
	}
}

// AttachSender wires the operator gateway in after construction.
func (d *Dispatcher) AttachSender(s TextSender) {
	d.sender = s
}

// SetConsole redirects the beacon/event/debug console; tests capture it.
func (d *Dispatcher) SetConsole(w io.Writer) {
	d.out = w
}

// Index exposes the sensor index.
func (d *Dispatcher) Index() *SensorIndex {
	return d.index
}

// Correlator exposes the pending-request table.
func (d *Dispatcher) Correlator() *Correlator {
	return d.corr
}

// LatestReading returns the last beacon's reading, if any beacon has
// arrived yet.
func (d *Dispatcher) LatestReading() (skylink.SensorReading, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest, d.haveBeacon
}

// Listen drives the inbound loop until ctx is cancelled or the link
// reaches EOF. Transient read errors are logged and the loop continues;
// nothing inbound is fatal.
func (d *Dispatcher) Listen(ctx context.Context) error {
	buf := make([]byte, 256)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := d.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				return nil
			}
			d.log.Error("link read failed", "error", err)
			continue
		}
		if n == 0 {
			continue
		}

		for i := 0; i < n; i++ {
			frame, ferr := d.reader.Feed(buf[i])
			if ferr != nil {
				d.metrics.ObserveFramingError()
				d.log.Warn("frame dropped", "error", ferr)
				continue
			}
			if frame != nil {
				d.handleFrame(frame)
			}
		}
	}
}

// handleFrame routes one complete frame off the reader.
func (d *Dispatcher) handleFrame(frame *skylink.Frame) {
	switch frame.Kind {
	case skylink.FrameText:
		d.metrics.ObserveFrame("text")
		if len(frame.Bytes) > 1 {
			fmt.Fprintf(d.out, "Satellite Debug: %s", frame.Bytes)
		}
	case skylink.FrameBinary:
		d.metrics.ObserveFrame("binary")
		d.HandleResponse(frame.Bytes)
	}
}

// HandleResponse classifies and dispatches one binary frame.
func (d *Dispatcher) HandleResponse(response []byte) {
	if len(response) < skylink.HeaderSize {
		d.log.Warn("invalid response size", "len", len(response))
		return
	}

	// The firmware's EVENT packets declare a payload-exclusive length,
	// so they come off the reader as 9 bytes. Reconstruct the ten-byte
	// frame by prepending the true length before classification; this
	// is the only packet type with the defect.
	if len(response) == 9 {
		fixed := make([]byte, 0, 10)
		fixed = append(fixed, 10)
		fixed = append(fixed, response...)
		response = fixed
	}

	responseType := skylink.ParseResponseType(response)
	responseID := skylink.ParseResponseID(response)

	// The response set is closed and small: dispatch is a static
	// switch, with unknown types falling through to the log-and-drop
	// arm.
	switch responseType {
	case skylink.TimeRequest:
		d.handleTimeRequest()
	case skylink.Beacon:
		d.handleBeacon(response)
	case skylink.SensorLog:
		d.handleSensorLog(response, responseID)
	case skylink.TotalLogs:
		d.handleSensorLogEnd(responseID)
	case skylink.Ack:
		d.handleAck(responseID)
	case skylink.Nack:
		d.handleNack(responseID)
	case skylink.Event:
		d.handleEvent(response)
	case skylink.EventLog:
		d.handleEventLog(response, responseID)
	case skylink.EventLogEnd:
		d.handleEventLogEnd(responseID)
	case skylink.ResponseCurrentTime:
		d.handleCurrentTime(response, responseID)
	default:
		d.metrics.ObserveUnknownResponse()
		fmt.Fprintf(d.out, "Unknown response type: %d\n", uint8(responseType))
	}
}

//----------------------------------------------------------------------
// Inbound handlers
//----------------------------------------------------------------------

func (d *Dispatcher) handleTimeRequest() {
	if err := d.SendCurrentTime(); err != nil {
		d.log.Error("time send failed", "error", err)
	}
}

// Beacons are ephemeral state, not history: they update latest_data and
// never touch the sensor index.
func (d *Dispatcher) handleBeacon(response []byte) {
	reading, err := skylink.ParseSensorData(response)
	if err != nil {
		d.log.Warn("beacon parse failed", "error", err)
		return
	}

	d.mu.Lock()
	d.latest = reading
	d.haveBeacon = true
	d.mu.Unlock()

	fmt.Fprint(d.out, skylink.FormatBeacon(reading))
}

func (d *Dispatcher) handleSensorLog(response []byte, responseID uint8) {
	reading, err := skylink.ParseSensorData(response)
	if err != nil {
		d.log.Warn("sensor log parse failed", "error", err)
		return
	}

	d.index.Insert(reading)

	if op, ok := d.corr.Peek(responseID); ok {
		d.sender.Send(op, "\nSensor log data:\n"+skylink.FormatSensorData(reading))
	}
}

func (d *Dispatcher) handleSensorLogEnd(responseID uint8) {
	if op, ok := d.corr.Complete(responseID); ok {
		d.sender.Send(op, "Completed retrieval of sensor logs.\n")
	}
	d.metrics.SetPendingRequests(d.corr.Len())
}

func (d *Dispatcher) handleAck(responseID uint8) {
	if op, ok := d.corr.Complete(responseID); ok {
		d.sender.Send(op, "Sucess operation")
	}
	d.metrics.SetPendingRequests(d.corr.Len())
}

func (d *Dispatcher) handleNack(responseID uint8) {
	if op, ok := d.corr.Complete(responseID); ok {
		d.sender.Send(op, "Request failed. Please try again.")
	}
	d.metrics.SetPendingRequests(d.corr.Len())
}

func (d *Dispatcher) handleEvent(response []byte) {
	event, err := skylink.ParseEventData(response)
	if err != nil {
		d.log.Warn("event parse failed", "error", err)
		return
	}
	fmt.Fprint(d.out, skylink.FormatEvent(event))
}

func (d *Dispatcher) handleEventLog(response []byte, responseID uint8) {
	event, err := skylink.ParseEventData(response)
	if err != nil {
		d.log.Warn("event log parse failed", "error", err)
		return
	}

	fmt.Fprint(d.out, skylink.FormatEvent(event))

	if op, ok := d.corr.Peek(responseID); ok {
		d.sender.Send(op, "\nEvent log data:\n"+skylink.FormatEventData(event))
	}
}

func (d *Dispatcher) handleEventLogEnd(responseID uint8) {
	if op, ok := d.corr.Complete(responseID); ok {
		d.sender.Send(op, "\nCompleted retrieval of events logs.\n")
	}
	d.metrics.SetPendingRequests(d.corr.Len())
}

func (d *Dispatcher) handleCurrentTime(response []byte, responseID uint8) {
	op, ok := d.corr.Complete(responseID)
	d.metrics.SetPendingRequests(d.corr.Len())
	if !ok {
		return
	}

	epoch, err := skylink.ParseCurrentTime(response)
	if err != nil {
		d.log.Warn("current time parse failed", "error", err)
		return
	}

	d.sender.Send(op, "Current time: "+skylink.FormatTimestamp(epoch)+"\n")
}

//----------------------------------------------------------------------
// Outbound commands
//----------------------------------------------------------------------

// SendCustomTime sends a TIME_SEND carrying an operator-chosen epoch.
func (d *Dispatcher) SendCustomTime(epoch uint32) error {
	p := skylink.NewTimeSend(d.ids.Next(), epoch)
	return d.sendPacket(&p)
}

// SendCurrentTime answers a TIME_REQUEST with ground epoch seconds.
func (d *Dispatcher) SendCurrentTime() error {
	epoch := uint32(time.Now().Unix())
	d.log.Info("sending time", "epoch", epoch)
	p := skylink.NewTimeSend(d.ids.Next(), epoch)
	return d.sendPacket(&p)
}

// UpdateMaxTemp sends the new maximum temperature threshold and
// registers op for the ACK/NACK.
func (d *Dispatcher) UpdateMaxTemp(value uint8, op OperatorHandle) error {
	p := skylink.NewUpdateMaxTemp(d.ids.Next(), value)
	return d.sendCorrelated(&p, op)
}

// UpdateMinTemp sends the new minimum temperature threshold.
func (d *Dispatcher) UpdateMinTemp(value uint8, op OperatorHandle) error {
	p := skylink.NewUpdateMinTemp(d.ids.Next(), value)
	return d.sendCorrelated(&p, op)
}

// UpdateHumidity sends the new humidity threshold.
func (d *Dispatcher) UpdateHumidity(value uint8, op OperatorHandle) error {
	p := skylink.NewUpdateHumidity(d.ids.Next(), value)
	return d.sendCorrelated(&p, op)
}

// UpdateLight sends the new light threshold.
func (d *Dispatcher) UpdateLight(value uint8, op OperatorHandle) error {
	p := skylink.NewUpdateLight(d.ids.Next(), value)
	return d.sendCorrelated(&p, op)
}

// UpdateVoltage sends the new voltage threshold.
func (d *Dispatcher) UpdateVoltage(value float32, op OperatorHandle) error {
	p := skylink.NewUpdateVoltage(d.ids.Next(), value)
	return d.sendCorrelated(&p, op)
}

// RequestSensorRange asks for sensor logs in [start, end] and registers
// op for the streamed records and their terminal TOTAL_LOGS.
func (d *Dispatcher) RequestSensorRange(start, end uint32, op OperatorHandle) error {
	p := skylink.NewRequestSensorLogs(d.ids.Next(), start, end)
	return d.sendCorrelated(&p, op)
}

// RequestEventRange asks for event logs in [start, end].
func (d *Dispatcher) RequestEventRange(start, end uint32, op OperatorHandle) error {
	p := skylink.NewRequestEventLog(d.ids.Next(), start, end)
	return d.sendCorrelated(&p, op)
}

// RequestCurrentTime asks the satellite for its clock and registers op
// for the reply.
func (d *Dispatcher) RequestCurrentTime(op OperatorHandle) error {
	p := skylink.NewRequestCurrentTime(d.ids.Next())
	return d.sendCorrelated(&p, op)
}

// sendCorrelated registers the packet's ID before transmission so a
// fast reply cannot race the registration.
func (d *Dispatcher) sendCorrelated(p *skylink.MessagePacket, op OperatorHandle) error {
	d.corr.Register(p.ResponseID, op)
	d.metrics.SetPendingRequests(d.corr.Len())
	return d.sendPacket(p)
}

// sendPacket encodes and writes one packet; the write mutex keeps its
// bytes contiguous on the wire across concurrent senders.
func (d *Dispatcher) sendPacket(p *skylink.MessagePacket) error {
	data, err := d.enc.Encode(p)
	if err != nil {
		return err
	}

	d.writeMu.Lock()
	_, werr := d.conn.Write(data)
	d.writeMu.Unlock()

	if werr != nil {
		d.log.Error("link write failed", "type", p.PacketType.String(), "error", werr)
		return werr
	}

	d.metrics.ObservePacketSent(p.PacketType.String())
	return nil
}
