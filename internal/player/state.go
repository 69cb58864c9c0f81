// SPDX-License-Identifier: MIT
package player

// State is the playback state machine position. Transitions:
// Idle → Playing → Stopped, Stopped → Playing (restart) and
// Playing → Suspended → Playing (lifecycle pause/resume). There is no
// terminal state; a controller can always be restarted.
//
// Invariant: the audio output and the actuator engine are active if
// and only if the state is Playing.
type State int32

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
	StateSuspended
)

// String returns the string representation of the State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}
