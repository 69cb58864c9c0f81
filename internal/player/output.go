// SPDX-License-Identifier: MIT
package player

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"haptic/internal/config"
)

// Output is the audio output collaborator: it owns a device stream and
// drives block delivery by invoking the installed callback once per
// produced block with an interleaved float32 buffer. Implementations
// must guarantee that after Stop returns, no further callback
// invocations occur.
type Output interface {
	// Open installs the block callback and acquires the device.
	Open(cb func(out []float32)) error
	// Start begins block delivery.
	Start() error
	// Stop halts block delivery, blocking until in-flight callbacks
	// have returned.
	Stop() error
	// Close releases the device. The Output may be reopened.
	Close() error
}

// DeviceOutput implements Output on a PortAudio output stream.
type DeviceOutput struct {
	deviceID        int
	channels        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool

	stream *portaudio.Stream
}

// NewDeviceOutput creates an output for the configured device.
// PortAudio must be initialized before Open is called.
func NewDeviceOutput(cfg *config.Config) *DeviceOutput {
	return &DeviceOutput{
		deviceID:        cfg.Audio.OutputDevice,
		channels:        cfg.Audio.Channels,
		sampleRate:      cfg.Audio.SampleRate,
		framesPerBuffer: cfg.Audio.FramesPerBuffer,
		lowLatency:      cfg.Audio.LowLatency,
	}
}

// Open acquires the device and installs cb as the stream callback.
func (o *DeviceOutput) Open(cb func(out []float32)) error {
	if o.stream != nil {
		return fmt.Errorf("output stream already open")
	}

	device, err := OutputDevice(o.deviceID)
	if err != nil {
		return fmt.Errorf("failed to resolve output device: %w", err)
	}

	var latency time.Duration
	if o.lowLatency {
		latency = device.DefaultLowOutputLatency
	} else {
		latency = device.DefaultHighOutputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // no input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: o.channels,
			Device:   device,
			Latency:  latency,
		},
		FramesPerBuffer: o.framesPerBuffer,
		SampleRate:      o.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, cb)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	o.stream = stream
	return nil
}

func (o *DeviceOutput) Start() error {
	if o.stream == nil {
		return fmt.Errorf("output stream not open")
	}
	return o.stream.Start()
}

func (o *DeviceOutput) Stop() error {
	if o.stream == nil {
		return nil
	}
	return o.stream.Stop()
}

func (o *DeviceOutput) Close() error {
	if o.stream == nil {
		return nil
	}
	err := o.stream.Close()
	o.stream = nil
	return err
}

var _ Output = (*DeviceOutput)(nil)
