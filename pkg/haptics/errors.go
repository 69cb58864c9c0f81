// SPDX-License-Identifier: MIT
package haptics

import "errors"

var (
	// ErrEngineStopped is returned by Pulse when the actuator engine
	// is not running.
	ErrEngineStopped = errors.New("haptics: actuator engine not running")
)
