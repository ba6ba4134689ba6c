// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

package ground

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kestrelsat/groundlink/internal/link"
	"github.com/kestrelsat/groundlink/pkg/skylink"
)

// ============================================================
// Test Harness
// ============================================================

// recordingSender collects deliveries per operator handle.
type recordingSender struct {
	mu   sync.Mutex
	msgs map[OperatorHandle][]string
	gone map[OperatorHandle]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		msgs: make(map[OperatorHandle][]string),
		gone: make(map[OperatorHandle]bool),
	}
}

func (r *recordingSender) Send(op OperatorHandle, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gone[op] {
		return false
	}
	r.msgs[op] = append(r.msgs[op], text)
	return true
}

func (r *recordingSender) messages(op OperatorHandle) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs[op]...)
}

// syncBuffer is a goroutine-safe console capture.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestDispatcher() (*Dispatcher, *link.Loopback, *recordingSender, *syncBuffer) {
	loop := link.NewLoopback()
	sender := newRecordingSender()
	console := &syncBuffer{}

	d := NewDispatcher(loop, NewIDAllocator(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	d.AttachSender(sender)
	d.SetConsole(console)

	return d, loop, sender, console
}

// literalBeacon is temp=20, humid=45, light=50, mode=OK, voltage=2.10,
// timestamp=10_000_000.
var literalBeacon = []byte{
	0x10, 0x01, 0xFF, 0x00,
	0x14, 0x2D, 0x32, 0x03,
	0x66, 0x66, 0x06, 0x40,
	0x80, 0x96, 0x98, 0x00,
	0x55,
}

func sensorLogFrame(id uint8, ts uint32) []byte {
	frame := make([]byte, 16, 17)
	frame[0] = 16
	frame[1] = uint8(skylink.SensorLog)
	frame[2] = id
	frame[4] = 21
	frame[5] = 40
	frame[6] = 60
	frame[7] = uint8(skylink.ModeOK)
	binary.LittleEndian.PutUint32(frame[8:12], math.Float32bits(2.0))
	binary.LittleEndian.PutUint32(frame[12:16], ts)
	return append(frame, skylink.EndMark)
}

func emptyFrame(t skylink.ResponseType, id uint8) []byte {
	return []byte{0x05, uint8(t), id, 0x00, skylink.EndMark}
}

func totalLogsFrame(id uint8) []byte {
	return []byte{0x06, uint8(skylink.TotalLogs), id, 0x00, 0x00, skylink.EndMark}
}

// ============================================================
// Inbound Handling
// ============================================================

// Beacons update the latest reading and never touch the index.
func TestHandleResponse_Beacon(t *testing.T) {
	d, _, _, console := newTestDispatcher()

	d.HandleResponse(literalBeacon)

	latest, ok := d.LatestReading()
	if !ok {
		t.Fatal("No latest reading after beacon")
	}
	if latest.Temp != 20 || latest.Humidity != 45 || latest.Light != 50 {
		t.Errorf("Latest reading wrong: %+v", latest)
	}
	if latest.Mode != skylink.ModeOK {
		t.Errorf("Mode = %v, want OK", latest.Mode)
	}
	if math.Abs(float64(latest.Voltage)-2.10) > 0.001 {
		t.Errorf("Voltage = %f, want 2.10", latest.Voltage)
	}
	if latest.Timestamp != 10_000_000 {
		t.Errorf("Timestamp = %d, want 10000000", latest.Timestamp)
	}

	if d.Index().Size() != 0 {
		t.Error("Beacon must not be inserted into the sensor index")
	}
	if !strings.Contains(console.String(), "Beacon Data:") {
		t.Error("Beacon block missing from console")
	}
}

// Two streamed records followed by TOTAL_LOGS complete the request and
// clear the pending entry.
func TestSensorLogStreaming(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(3)

	d.HandleCommand(op, "get_sensor_logs 100 200")

	sent := loop.DrainSent()
	if len(sent) == 0 || skylink.ParseResponseType(sent) != skylink.RequestSensorLogs {
		t.Fatalf("No REQUEST_SENSOR_LOGS on the wire: %X", sent)
	}
	k := skylink.ParseResponseID(sent)

	d.HandleResponse(sensorLogFrame(k, 120))
	d.HandleResponse(sensorLogFrame(k, 150))
	d.HandleResponse(totalLogsFrame(k))

	msgs := sender.messages(op)
	if len(msgs) != 4 {
		t.Fatalf("Expected 4 deliveries (confirm + 2 records + completion), got %d: %q", len(msgs), msgs)
	}
	if !strings.Contains(msgs[0], "Requested logs between 100 and 200") {
		t.Errorf("Missing request confirmation: %q", msgs[0])
	}
	for _, m := range msgs[1:3] {
		if !strings.HasPrefix(m, "\nSensor log data:\n") {
			t.Errorf("Streamed record badly framed: %q", m)
		}
	}
	if msgs[3] != "Completed retrieval of sensor logs.\n" {
		t.Errorf("Completion message wrong: %q", msgs[3])
	}

	if d.Correlator().Len() != 0 {
		t.Error("Pending entry survived completion")
	}
	if d.Index().Size() != 2 {
		t.Errorf("Index size = %d, want 2", d.Index().Size())
	}
}

// ACK after a configuration update delivers the terminal message and
// clears the correlator.
func TestAckAfterUpdate(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(7)

	d.HandleCommand(op, "update_humidity 55")

	sent := loop.DrainSent()
	if skylink.ParseResponseType(sent) != skylink.UpdateHumidity {
		t.Fatalf("Expected UPDATE_HUMIDITY on the wire, got %X", sent)
	}
	if sent[4] != 0x37 {
		t.Errorf("Payload byte = 0x%02X, want 0x37", sent[4])
	}
	k := skylink.ParseResponseID(sent)

	d.HandleResponse(emptyFrame(skylink.Ack, k))

	msgs := sender.messages(op)
	if len(msgs) != 2 {
		t.Fatalf("Expected confirm + ACK delivery, got %q", msgs)
	}
	if msgs[1] != "Sucess operation" {
		t.Errorf("ACK delivery = %q", msgs[1])
	}
	if d.Correlator().Len() != 0 {
		t.Error("Correlator not empty after ACK")
	}
}

func TestNackDelivery(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(2)

	d.HandleCommand(op, "update_max_temp 200")
	k := skylink.ParseResponseID(loop.DrainSent())

	d.HandleResponse(emptyFrame(skylink.Nack, k))

	msgs := sender.messages(op)
	if msgs[len(msgs)-1] != "Request failed. Please try again." {
		t.Errorf("NACK delivery = %q", msgs[len(msgs)-1])
	}
	if d.Correlator().Len() != 0 {
		t.Error("Correlator not empty after NACK")
	}
}

// A response whose ID has no pending entry is silently dropped.
func TestCorrelatorMissIsSilent(t *testing.T) {
	d, _, sender, _ := newTestDispatcher()

	d.HandleResponse(emptyFrame(skylink.Ack, 0x42))

	if len(sender.messages(0)) != 0 {
		t.Error("Uncorrelated ACK must not reach any operator")
	}
}

// Delivery to a disconnected operator is a no-op.
func TestDeliveryToGoneOperatorDropped(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(9)

	d.HandleCommand(op, "get_current_time")
	k := skylink.ParseResponseID(loop.DrainSent())

	sender.gone[op] = true

	d.HandleResponse(currentTimeFrame(k, 10_000_000))

	if d.Correlator().Len() != 0 {
		t.Error("Pending entry must be consumed even when the operator is gone")
	}
}

// currentTimeFrame mirrors the firmware's RESPONSE_CURRENT_TIME layout:
// u32 epoch at offset 4 plus a padding byte, end mark last.
func currentTimeFrame(id uint8, epoch uint32) []byte {
	frame := make([]byte, 10)
	frame[0] = 10
	frame[1] = uint8(skylink.ResponseCurrentTime)
	frame[2] = id
	binary.LittleEndian.PutUint32(frame[4:8], epoch)
	frame[9] = skylink.EndMark
	return frame
}

// The satellite's clock reply is formatted as local time and completes
// the request.
func TestCurrentTimeDelivery(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(6)

	d.HandleCommand(op, "get_current_time")
	k := skylink.ParseResponseID(loop.DrainSent())

	d.HandleResponse(currentTimeFrame(k, 10_000_000))

	msgs := sender.messages(op)
	if len(msgs) != 1 {
		t.Fatalf("Expected one delivery, got %q", msgs)
	}
	if !strings.HasPrefix(msgs[0], "Current time: ") || !strings.HasSuffix(msgs[0], "\n") {
		t.Errorf("Delivery = %q", msgs[0])
	}
	if d.Correlator().Len() != 0 {
		t.Error("Correlator not empty after time reply")
	}
}

// The firmware's EVENT frames arrive as 9 bytes; the dispatcher
// reconstructs the ten-byte frame before classification.
func TestLengthNineCompensation(t *testing.T) {
	d, _, _, console := newTestDispatcher()

	short := make([]byte, 0, 9)
	short = append(short, uint8(skylink.Event), 0xFF, 0x00, uint8(skylink.EventOKToSafe))
	ts := make([]byte, 4)
	binary.LittleEndian.PutUint32(ts, 123456)
	short = append(short, ts...)
	short = append(short, skylink.EndMark)

	if len(short) != 9 {
		t.Fatalf("Test frame must be 9 bytes, got %d", len(short))
	}

	d.HandleResponse(short)

	out := console.String()
	if !strings.Contains(out, "Event: OK to Safe") {
		t.Errorf("Event handler did not fire on compensated frame:\n%s", out)
	}
	if !strings.Contains(out, "Timestamp: 123456") {
		t.Errorf("Event timestamp wrong:\n%s", out)
	}
}

// TIME_REQUEST triggers an immediate TIME_SEND carrying ground epoch
// seconds.
func TestTimeRequestTriggersTimeSend(t *testing.T) {
	d, loop, _, _ := newTestDispatcher()

	before := uint32(time.Now().Unix())
	d.HandleResponse(emptyFrame(skylink.TimeRequest, skylink.ReservedID))
	after := uint32(time.Now().Unix())

	sent := loop.DrainSent()
	if skylink.ParseResponseType(sent) != skylink.TimeSend {
		t.Fatalf("Expected TIME_SEND, got %X", sent)
	}
	epoch := binary.LittleEndian.Uint32(sent[4:8])
	if epoch < before || epoch > after {
		t.Errorf("Epoch %d outside [%d, %d]", epoch, before, after)
	}
}

func TestUnknownResponseTypeLogged(t *testing.T) {
	d, _, _, console := newTestDispatcher()

	d.HandleResponse([]byte{0x05, 0x7E, 0x01, 0x00, skylink.EndMark})

	if !strings.Contains(console.String(), "Unknown response type: 126") {
		t.Errorf("Unknown type not reported:\n%s", console.String())
	}
}

func TestShortFrameRejected(t *testing.T) {
	d, _, sender, _ := newTestDispatcher()

	d.HandleResponse([]byte{0x03, 0x08, 0x01})

	if len(sender.messages(0)) != 0 {
		t.Error("Short frame must be dropped before dispatch")
	}
}

// Event log streaming mirrors sensor logs with its own terminal packet.
func TestEventLogStreaming(t *testing.T) {
	d, loop, sender, _ := newTestDispatcher()
	op := OperatorHandle(4)

	d.HandleCommand(op, "get_events_logs 0 500000")
	k := skylink.ParseResponseID(loop.DrainSent())

	frame := make([]byte, 0, 10)
	frame = append(frame, 10, uint8(skylink.EventLog), k, 0x00, uint8(skylink.EventInit))
	ts := make([]byte, 4)
	binary.LittleEndian.PutUint32(ts, 99)
	frame = append(frame, ts...)
	frame = append(frame, skylink.EndMark)

	d.HandleResponse(frame)
	d.HandleResponse(emptyFrame(skylink.EventLogEnd, k))

	msgs := sender.messages(op)
	if len(msgs) != 3 {
		t.Fatalf("Expected confirm + record + completion, got %q", msgs)
	}
	if !strings.HasPrefix(msgs[1], "\nEvent log data:\n") {
		t.Errorf("Streamed event badly framed: %q", msgs[1])
	}
	if !strings.Contains(msgs[1], "Event: Initialization") {
		t.Errorf("Event name missing: %q", msgs[1])
	}
	if msgs[2] != "\nCompleted retrieval of events logs.\n" {
		t.Errorf("Completion message wrong: %q", msgs[2])
	}
	if d.Correlator().Len() != 0 {
		t.Error("Pending entry survived EVENT_LOG_END")
	}
}

// ============================================================
// Listen Loop
// ============================================================

// Debug text and binary frames interleave on the link; the loop routes
// both and exits cleanly on EOF.
func TestListen_InterleavedTraffic(t *testing.T) {
	d, loop, _, console := newTestDispatcher()

	done := make(chan error, 1)
	go func() {
		done <- d.Listen(context.Background())
	}()

	loop.Inject([]byte("boot sequence complete\n"))
	loop.Inject(literalBeacon)

	deadline := time.After(2 * time.Second)
	for {
		out := console.String()
		if strings.Contains(out, "Satellite Debug: boot sequence complete\n") &&
			strings.Contains(out, "Beacon Data:") {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("Listen did not process traffic:\n%s", console.String())
		case <-time.After(10 * time.Millisecond):
		}
	}

	loop.Close()
	if err := <-done; err != nil {
		t.Errorf("Listen returned error on EOF: %v", err)
	}
}
