// SPDX-License-Identifier: MIT
package lifecycle

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalNotifier maps job-control signals onto lifecycle transitions:
// SIGTSTP means the process went to the background, SIGCONT that it is
// coming back. Transitions are delivered on buffered channels so a
// slow consumer coalesces bursts instead of blocking signal delivery.
type SignalNotifier struct {
	background chan struct{}
	foreground chan struct{}
	signals    chan os.Signal
	quit       chan struct{}
}

// NewSignalNotifier subscribes to SIGTSTP and SIGCONT and starts the
// translation goroutine. Call Close to unsubscribe.
func NewSignalNotifier() *SignalNotifier {
	n := &SignalNotifier{
		background: make(chan struct{}, 1),
		foreground: make(chan struct{}, 1),
		signals:    make(chan os.Signal, 4),
		quit:       make(chan struct{}),
	}
	signal.Notify(n.signals, syscall.SIGTSTP, syscall.SIGCONT)
	go n.translate()
	return n
}

func (n *SignalNotifier) translate() {
	for {
		select {
		case <-n.quit:
			return
		case sig := <-n.signals:
			var ch chan struct{}
			if sig == syscall.SIGTSTP {
				ch = n.background
			} else {
				ch = n.foreground
			}
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func (n *SignalNotifier) Background() <-chan struct{} { return n.background }
func (n *SignalNotifier) Foreground() <-chan struct{} { return n.foreground }

// Close unsubscribes from the signals and stops the translation
// goroutine.
func (n *SignalNotifier) Close() {
	signal.Stop(n.signals)
	close(n.quit)
}

// ManualNotifier delivers transitions on demand. Embedding
// applications that learn about lifecycle changes through their own
// channels (a UI framework, a supervisor RPC) call the Notify methods
// directly.
type ManualNotifier struct {
	background chan struct{}
	foreground chan struct{}
}

func NewManualNotifier() *ManualNotifier {
	return &ManualNotifier{
		background: make(chan struct{}, 1),
		foreground: make(chan struct{}, 1),
	}
}

func (n *ManualNotifier) Background() <-chan struct{} { return n.background }
func (n *ManualNotifier) Foreground() <-chan struct{} { return n.foreground }

// NotifyBackground records a background transition. Bursts coalesce.
func (n *ManualNotifier) NotifyBackground() {
	select {
	case n.background <- struct{}{}:
	default:
	}
}

// NotifyForeground records a foreground transition. Bursts coalesce.
func (n *ManualNotifier) NotifyForeground() {
	select {
	case n.foreground <- struct{}{}:
	default:
	}
}
