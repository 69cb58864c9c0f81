// SPDX-License-Identifier: MIT
package haptics_test

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"haptic/pkg/haptics"
)

// listenUDP binds an ephemeral loopback port and returns the
// connection and its address.
func listenUDP(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().String()
}

func TestUDPBridgePacketLayout(t *testing.T) {
	listener, addr := listenUDP(t)

	bridge := haptics.NewUDPBridge(addr)
	if err := bridge.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer bridge.Stop()

	before := time.Now().UnixNano()
	pulse := haptics.Pulse{
		Intensity: 0.75,
		Sharpness: haptics.PulseSharpness,
		Duration:  haptics.PulseDuration,
	}
	if err := bridge.Pulse(pulse); err != nil {
		t.Fatalf("pulse: %v", err)
	}
	after := time.Now().UnixNano()

	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	packet := make([]byte, 64)
	n, _, err := listener.ReadFromUDP(packet)
	if err != nil {
		t.Fatalf("read packet: %v", err)
	}
	if n != 22 {
		t.Fatalf("packet length = %d, want 22", n)
	}

	seq := binary.BigEndian.Uint32(packet[0:4])
	ts := int64(binary.BigEndian.Uint64(packet[4:12]))
	intensity := math.Float32frombits(binary.BigEndian.Uint32(packet[12:16]))
	sharpness := math.Float32frombits(binary.BigEndian.Uint32(packet[16:20]))
	durationMs := binary.BigEndian.Uint16(packet[20:22])

	if seq != 1 {
		t.Errorf("sequence = %d, want 1", seq)
	}
	if ts < before || ts > after {
		t.Errorf("timestamp %d outside send interval [%d, %d]", ts, before, after)
	}
	if intensity != 0.75 {
		t.Errorf("intensity = %v, want 0.75", intensity)
	}
	if sharpness != float32(haptics.PulseSharpness) {
		t.Errorf("sharpness = %v, want %v", sharpness, haptics.PulseSharpness)
	}
	if want := uint16(haptics.PulseDuration / time.Millisecond); durationMs != want {
		t.Errorf("duration = %d ms, want %d ms", durationMs, want)
	}
}

func TestUDPBridgeSequenceIncrements(t *testing.T) {
	listener, addr := listenUDP(t)

	bridge := haptics.NewUDPBridge(addr)
	if err := bridge.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer bridge.Stop()

	for range 3 {
		if err := bridge.Pulse(haptics.Pulse{Intensity: 0.5}); err != nil {
			t.Fatalf("pulse: %v", err)
		}
	}

	packet := make([]byte, 64)
	for want := uint32(1); want <= 3; want++ {
		listener.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := listener.ReadFromUDP(packet); err != nil {
			t.Fatalf("read packet %d: %v", want, err)
		}
		if seq := binary.BigEndian.Uint32(packet[0:4]); seq != want {
			t.Errorf("sequence = %d, want %d", seq, want)
		}
	}
}

func TestUDPBridgePulseWhileStopped(t *testing.T) {
	bridge := haptics.NewUDPBridge("127.0.0.1:1")

	err := bridge.Pulse(haptics.Pulse{Intensity: 0.5})
	if err != haptics.ErrEngineStopped {
		t.Errorf("error = %v, want ErrEngineStopped", err)
	}
}

func TestUDPBridgeStartStopIdempotent(t *testing.T) {
	_, addr := listenUDP(t)

	bridge := haptics.NewUDPBridge(addr)
	if err := bridge.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := bridge.Start(); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := bridge.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := bridge.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestUDPBridgeBadAddress(t *testing.T) {
	bridge := haptics.NewUDPBridge("not a host:port")
	if err := bridge.Start(); err == nil {
		t.Fatal("expected error for unresolvable address")
	}
}
