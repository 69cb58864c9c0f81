// SPDX-License-Identifier: MIT

/*
Package haptics defines the actuator collaborator contract and the
trigger that converts block intensities into bounded-duration pulses.

The pipeline core never talks to haptic hardware directly; it drives an
Actuator, which models an external haptic engine: a capability query,
engine start/stop, a failure notification channel and non-blocking
submission of single parametrized pulses. Bridges in this package
forward pulses to out-of-process actuator drivers over UDP or
websocket; absence of hardware is modeled by Nop and is never an
error.
*/
package haptics

import "time"

// Pulse is one parametrized haptic event dispatched immediately.
type Pulse struct {
	Intensity float64       // 0..1 feedback strength
	Sharpness float64       // 0..1 transient character of the pulse
	Duration  time.Duration // how long the actuator holds the pulse
	Delay     time.Duration // start delay, zero for immediate dispatch
}

// Actuator is the haptic engine collaborator contract. Implementations
// must make Pulse non-blocking: it runs inside the real-time audio
// delivery path.
type Actuator interface {
	// Supported reports whether haptic output is actually available.
	// When false, all other operations are silent no-ops.
	Supported() bool

	// Start brings the actuator engine up. Idempotent.
	Start() error

	// Stop tears the actuator engine down. Idempotent.
	Stop() error

	// Pulse dispatches one pulse to the device without waiting for
	// completion.
	Pulse(p Pulse) error

	// Stopped delivers engine-stopped notifications (hardware or
	// transport initiated, independent of the app lifecycle). A nil
	// channel means the engine never reports failures.
	Stopped() <-chan error
}

// Nop is the actuator used when no haptic hardware is reachable.
// All operations succeed and do nothing; Supported reports false so
// the trigger skips pulse construction entirely.
type Nop struct{}

func (Nop) Supported() bool       { return false }
func (Nop) Start() error          { return nil }
func (Nop) Stop() error           { return nil }
func (Nop) Pulse(Pulse) error     { return nil }
func (Nop) Stopped() <-chan error { return nil }

var _ Actuator = Nop{}
