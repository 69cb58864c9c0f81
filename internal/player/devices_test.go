// SPDX-License-Identifier: MIT
package player

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func TestHostDevices(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return []*portaudio.DeviceInfo{
			{Name: "Builtin Output", MaxOutputChannels: 2, DefaultSampleRate: 44100},
			{Name: "USB Mic", MaxInputChannels: 1, DefaultSampleRate: 48000},
		}, nil
	}

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate: %f", i, d.DefaultSampleRate)
		}
	}
	if devices[0].MaxOutputChannels != 2 {
		t.Errorf("device 0 output channels = %d, want 2", devices[0].MaxOutputChannels)
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestOutputDeviceInvalidID(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return []*portaudio.DeviceInfo{
			{Name: "Builtin Output", MaxOutputChannels: 2, DefaultSampleRate: 44100},
		}, nil
	}

	if _, err := OutputDevice(5); err == nil {
		t.Error("expected error for out-of-range device ID")
	}
	device, err := OutputDevice(0)
	if err != nil {
		t.Fatalf("OutputDevice(0): %v", err)
	}
	if device.Name != "Builtin Output" {
		t.Errorf("device name = %q, want Builtin Output", device.Name)
	}
}

func TestStateString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StatePlaying, "playing"},
		{StateStopped, "stopped"},
		{StateSuspended, "suspended"},
		{State(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
