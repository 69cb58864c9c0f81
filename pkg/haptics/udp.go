// SPDX-License-Identifier: MIT
package haptics

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"

	applog "haptic/internal/log"
)

// maxSendFailures is the number of consecutive send errors after which
// the bridge declares its engine stopped and notifies the coordinator.
const maxSendFailures = 5

/*
UDP Pulse Packet Structure (BigEndian)

+--------------------------------------------------------------------------+
| Field           | Data Type | Size (Bytes) | Description                 |
|-----------------|-----------|--------------|-----------------------------|
| Sequence Number | uint32    | 4            | Monotonically increasing    |
| Timestamp       | int64     | 8            | Nanoseconds since epoch     |
| Intensity       | float32   | 4            | Feedback strength, 0..1     |
| Sharpness       | float32   | 4            | Pulse character, 0..1       |
| Duration        | uint16    | 2            | Pulse length, milliseconds  |
+--------------------------------------------------------------------------+
*/

// UDPBridge forwards pulses to an out-of-process actuator driver as
// binary UDP packets. UDP keeps dispatch non-blocking and tolerates a
// missing or restarting driver; the cost is that pulses may be lost,
// which the feedback model accepts (the next block brings a new one).
type UDPBridge struct {
	target string

	mu       sync.Mutex // protects conn, running, seq, failures, packet
	conn     *net.UDPConn
	running  bool
	seq      uint32
	failures int
	packet   *bytes.Buffer // reusable packet build buffer

	stopped chan error
}

// NewUDPBridge creates a bridge targeting "host:port". The connection
// is established by Start, not here.
func NewUDPBridge(target string) *UDPBridge {
	return &UDPBridge{
		target:  target,
		packet:  new(bytes.Buffer),
		stopped: make(chan error, 1),
	}
}

// Supported always reports true: the bridge assumes a driver is (or
// will be) listening. Send failures surface through Stopped instead.
func (b *UDPBridge) Supported() bool { return true }

// Start resolves and dials the target. Safe to call repeatedly; a
// running bridge is left alone. Start is also the recovery path after
// the bridge declared itself stopped.
func (b *UDPBridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	udpAddr, err := net.ResolveUDPAddr("udp", b.target)
	if err != nil {
		return fmt.Errorf("failed to resolve actuator address %q: %w", b.target, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return fmt.Errorf("failed to dial actuator at %q: %w", b.target, err)
	}

	applog.Infof("Haptics: UDP bridge connected to %s", conn.RemoteAddr())
	b.conn = conn
	b.running = true
	b.failures = 0
	return nil
}

// Stop closes the connection. Safe to call repeatedly.
func (b *UDPBridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopLocked()
}

func (b *UDPBridge) stopLocked() error {
	if !b.running {
		return nil
	}
	b.running = false
	if b.conn != nil {
		err := b.conn.Close()
		b.conn = nil
		if err != nil {
			return fmt.Errorf("failed to close actuator connection: %w", err)
		}
	}
	return nil
}

// Pulse packs one pulse into the wire format and sends it. A UDP write
// does not wait for the driver, keeping the call non-blocking. After
// maxSendFailures consecutive errors the bridge stops itself and
// signals Stopped so the lifecycle coordinator can attempt a restart.
func (b *UDPBridge) Pulse(p Pulse) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return ErrEngineStopped
	}

	b.seq++
	b.packet.Reset()
	err := binary.Write(b.packet, binary.BigEndian, b.seq)
	if err == nil {
		err = binary.Write(b.packet, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(b.packet, binary.BigEndian, float32(p.Intensity))
	}
	if err == nil {
		err = binary.Write(b.packet, binary.BigEndian, float32(p.Sharpness))
	}
	if err == nil {
		err = binary.Write(b.packet, binary.BigEndian, uint16(p.Duration/time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("failed to pack pulse packet: %w", err)
	}

	if _, err := b.conn.Write(b.packet.Bytes()); err != nil {
		b.failures++
		if b.failures >= maxSendFailures {
			_ = b.stopLocked()
			select {
			case b.stopped <- fmt.Errorf("actuator unreachable after %d sends: %w", b.failures, err):
			default:
			}
		}
		return fmt.Errorf("failed to send pulse %d: %w", b.seq, err)
	}

	b.failures = 0
	return nil
}

// Stopped delivers the engine-stopped notification raised after
// repeated send failures.
func (b *UDPBridge) Stopped() <-chan error {
	return b.stopped
}

var _ Actuator = (*UDPBridge)(nil)
