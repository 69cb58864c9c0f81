// SPDX-License-Identifier: MIT

// Package lifecycle reacts to OS background/foreground transitions and
// actuator-engine failures, deciding when to suspend and resume the
// playback pipeline. Audio and haptic failures stay independent here:
// losing the actuator never stops audio playback.
package lifecycle

import (
	"context"
	"fmt"

	applog "haptic/internal/log"
	"haptic/pkg/haptics"
)

// Notifier is the OS lifecycle collaborator. Implementations deliver
// one value per transition; a nil channel means the transition never
// occurs.
type Notifier interface {
	// Background fires when the application entered the background.
	Background() <-chan struct{}
	// Foreground fires when the application is entering the
	// foreground.
	Foreground() <-chan struct{}
}

// Playback is the slice of the playback controller the coordinator
// drives.
type Playback interface {
	Resume() error
	Suspend() error
	Playing() bool
}

// Coordinator consumes lifecycle and engine-failure events on a single
// goroutine, serializing its reactions against each other. It is
// injected with its collaborators at construction; its subscription
// lifetime is the Run context.
type Coordinator struct {
	notifier Notifier
	playback Playback
	actuator haptics.Actuator
	onError  func(error)

	wasPlaying bool // whether the pipeline was playing when suspended
}

// NewCoordinator wires a coordinator. onError may be nil, in which
// case failures are logged.
func NewCoordinator(notifier Notifier, playback Playback, actuator haptics.Actuator, onError func(error)) *Coordinator {
	if actuator == nil {
		actuator = haptics.Nop{}
	}
	return &Coordinator{
		notifier: notifier,
		playback: playback,
		actuator: actuator,
		onError:  onError,
	}
}

// Run consumes events until ctx is done. It is the only goroutine
// touching c.wasPlaying.
func (c *Coordinator) Run(ctx context.Context) {
	var background, foreground <-chan struct{}
	if c.notifier != nil {
		background = c.notifier.Background()
		foreground = c.notifier.Foreground()
	}
	stopped := c.actuator.Stopped()

	for {
		select {
		case <-ctx.Done():
			return
		case <-background:
			c.onBackground()
		case <-foreground:
			c.onForeground()
		case err := <-stopped:
			c.onEngineStopped(err)
		}
	}
}

// onBackground suspends unconditionally: nothing may hold the device
// while the app is in the background.
func (c *Coordinator) onBackground() {
	c.wasPlaying = c.playback.Playing()
	applog.Infof("Lifecycle: entered background (was playing: %v)", c.wasPlaying)
	if err := c.playback.Suspend(); err != nil {
		c.report(fmt.Errorf("suspend failed: %w", err))
	}
}

// onForeground resumes only if the suspension interrupted playback.
// The actuator engine is restarted before playback so it is ready
// when the first post-resume block arrives.
func (c *Coordinator) onForeground() {
	applog.Infof("Lifecycle: entering foreground (resume: %v)", c.wasPlaying)
	if !c.wasPlaying {
		return
	}
	c.wasPlaying = false

	if err := c.actuator.Start(); err != nil {
		c.report(fmt.Errorf("actuator restart failed: %w", err))
	}
	if err := c.playback.Resume(); err != nil {
		c.report(fmt.Errorf("resume failed: %w", err))
	}
}

// onEngineStopped handles a hardware/OS initiated actuator failure:
// report, attempt one restart, and leave audio alone either way.
// Restarts are retried on demand by the next event, not on a timer.
func (c *Coordinator) onEngineStopped(err error) {
	c.report(fmt.Errorf("actuator engine stopped: %w", err))
	if rerr := c.actuator.Start(); rerr != nil {
		c.report(fmt.Errorf("actuator engine restart failed: %w", rerr))
		return
	}
	applog.Infof("Lifecycle: actuator engine restarted")
}

func (c *Coordinator) report(err error) {
	if c.onError != nil {
		c.onError(err)
		return
	}
	applog.Errorf("Lifecycle: %v", err)
}
