// SPDX-License-Identifier: MIT
package haptics

import "time"

// Pulse shape issued for every analyzed block. The duration is short
// enough that back-to-back blocks read as continuous feedback.
const (
	PulseDuration  = 100 * time.Millisecond
	PulseSharpness = 0.5
)

// Trigger issues one fixed-shape pulse per intensity value. Fire is
// called from the real-time delivery path, so dispatch failures are
// queued on a buffered channel for a cold-path reader instead of being
// reported synchronously.
type Trigger struct {
	actuator Actuator
	errs     chan error
}

// NewTrigger wraps an actuator. A nil actuator behaves like Nop.
func NewTrigger(a Actuator) *Trigger {
	if a == nil {
		a = Nop{}
	}
	return &Trigger{
		actuator: a,
		errs:     make(chan error, 8),
	}
}

// Fire dispatches one pulse of the given intensity, starting
// immediately. It never blocks and never panics. On an unsupported
// actuator it is a silent no-op; on dispatch failure the error is
// queued for Errors and playback continues unaffected. Errors are
// dropped when the queue is full rather than stalling the audio
// callback.
func (t *Trigger) Fire(intensity float64) {
	if !t.actuator.Supported() {
		return
	}
	err := t.actuator.Pulse(Pulse{
		Intensity: intensity,
		Sharpness: PulseSharpness,
		Duration:  PulseDuration,
	})
	if err != nil {
		select {
		case t.errs <- err:
		default:
		}
	}
}

// Errors delivers pulse dispatch failures to the controller's event
// loop.
func (t *Trigger) Errors() <-chan error {
	return t.errs
}
