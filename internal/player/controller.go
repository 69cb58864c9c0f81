// SPDX-License-Identifier: MIT

/*
Package player implements the playback controller: the play/stop/loop
state machine that owns the audio output and actuator handles, feeds
blocks through the spectral pipeline as they are produced and drives
the haptic trigger.

Thread model: a single real-time delivery path (the output stream
callback) plus a control path serialized by a mutex. The delivery path
reads only immutable configuration and atomics, so it never contends
with control operations; a block delivered mid-teardown observes a
non-Playing state and is dropped. End-of-stream and pulse failures are
handed to an event-loop goroutine over buffered channels because
control operations must not run inside the delivery callback.
*/
package player

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"haptic/internal/analysis"
	applog "haptic/internal/log"
	"haptic/internal/source"
	"haptic/pkg/haptics"
)

// ErrNoSource is reported when Start is called without an audio
// source.
var ErrNoSource = errors.New("player: no audio source configured")

// Callbacks are the optional notification hooks. They are invoked from
// the control path (never from the delivery callback) and must not
// call back into the controller.
type Callbacks struct {
	OnStart func()
	OnStop  func()
	OnError func(error)
}

// Options configure a Controller. All fields are read-only after
// construction; changing the band or loop flag requires a new
// controller.
type Options struct {
	// Clip is the preloaded audio resource. When nil, Loader is
	// invoked on the first Start.
	Clip   *source.Clip
	Loader func() (*source.Clip, error)

	Channels        int
	FramesPerBuffer int
	Loop            bool

	Analyzer  *analysis.Analyzer
	Extractor *analysis.Extractor
	Actuator  haptics.Actuator
	Output    Output

	Callbacks Callbacks
}

// Controller owns the output and actuator handles while Playing and
// runs the per-block pipeline inside the delivery callback.
type Controller struct {
	mu    sync.Mutex // serializes control-path transitions
	state atomic.Int32

	clip   *source.Clip
	loader func() (*source.Clip, error)

	output    Output
	actuator  haptics.Actuator
	analyzer  *analysis.Analyzer
	extractor *analysis.Extractor
	trigger   *haptics.Trigger

	channels int
	frames   int
	loop     bool
	cb       Callbacks

	// Delivery-path state, touched only by the stream callback.
	block       []float32 // mono analysis scratch, pre-allocated
	cursor      int       // next sample offset into the clip
	eosSignaled bool

	intensity atomic.Uint64 // float64 bits of the last block intensity

	eosCh    chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewController builds a controller in the Idle state and starts its
// event-loop goroutine. Close releases the loop.
func NewController(opts Options) (*Controller, error) {
	if opts.Analyzer == nil || opts.Extractor == nil {
		return nil, errors.New("player: analyzer and extractor are required")
	}
	if opts.Output == nil {
		return nil, errors.New("player: output collaborator is required")
	}
	if opts.Channels < 1 {
		opts.Channels = 1
	}
	if opts.FramesPerBuffer < 1 {
		return nil, errors.New("player: frames per buffer must be positive")
	}
	actuator := opts.Actuator
	if actuator == nil {
		actuator = haptics.Nop{}
	}

	c := &Controller{
		clip:      opts.Clip,
		loader:    opts.Loader,
		output:    opts.Output,
		actuator:  actuator,
		analyzer:  opts.Analyzer,
		extractor: opts.Extractor,
		trigger:   haptics.NewTrigger(actuator),
		channels:  opts.Channels,
		frames:    opts.FramesPerBuffer,
		loop:      opts.Loop,
		cb:        opts.Callbacks,
		block:     make([]float32, opts.FramesPerBuffer),
		eosCh:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	c.state.Store(int32(StateIdle))

	c.wg.Add(1)
	go c.run()

	return c, nil
}

// run is the controller's event loop: it turns delivery-path signals
// into control-path actions, keeping Stop out of the audio callback.
func (c *Controller) run() {
	defer c.wg.Done()
	for {
		select {
		case <-c.eosCh:
			applog.Debugf("Player: end of stream, stopping")
			if err := c.Stop(); err != nil {
				c.reportError(err)
			}
		case err := <-c.trigger.Errors():
			c.reportError(err)
		case <-c.done:
			return
		}
	}
}

// State returns the current playback state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Intensity returns the band intensity of the most recent block.
func (c *Controller) Intensity() float64 {
	return math.Float64frombits(c.intensity.Load())
}

// Start acquires the output and actuator resources and begins block
// delivery. Valid from Idle, Stopped and Suspended; a no-op while
// Playing. Playback always begins at the start of the clip: the
// controller tears down and rebuilds rather than pausing, so there is
// no position to resume.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == StatePlaying {
		return nil // idempotent
	}

	if c.clip == nil {
		if c.loader == nil {
			c.reportError(ErrNoSource)
			return ErrNoSource
		}
		clip, err := c.loader()
		if err != nil {
			c.reportError(err)
			return err
		}
		c.clip = clip
	}

	// The actuator engine comes up before the first block can arrive.
	// An actuator failure is reported but does not block audio.
	if err := c.actuator.Start(); err != nil {
		c.reportError(err)
	}

	c.cursor = 0
	c.eosSignaled = false
	c.intensity.Store(0)

	// A run that raced Stop may have left an end-of-stream token
	// behind; delivered now, it would halt the fresh run.
	select {
	case <-c.eosCh:
	default:
	}

	if err := c.output.Open(c.processBlock); err != nil {
		c.reportError(err)
		if stopErr := c.actuator.Stop(); stopErr != nil {
			c.reportError(stopErr)
		}
		return err
	}

	prev := c.State()
	c.state.Store(int32(StatePlaying))
	if err := c.output.Start(); err != nil {
		c.state.Store(int32(prev))
		_ = c.output.Close()
		c.reportError(err)
		if stopErr := c.actuator.Stop(); stopErr != nil {
			c.reportError(stopErr)
		}
		return err
	}

	applog.Infof("Player: playing (%d samples, loop=%v)", len(c.clip.Samples), c.loop)
	if c.cb.OnStart != nil {
		c.cb.OnStart()
	}
	return nil
}

// Stop halts block delivery and releases the output and actuator
// handles. Valid from Playing; a no-op otherwise. After Stop returns,
// no further block triggers a pulse.
func (c *Controller) Stop() error {
	return c.stopTo(StateStopped)
}

// Suspend is Stop for lifecycle transitions: the same teardown, but
// the controller parks in Suspended so observers can tell an OS
// suspension from a user stop. Start resumes from either.
func (c *Controller) Suspend() error {
	return c.stopTo(StateSuspended)
}

func (c *Controller) stopTo(next State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() != StatePlaying {
		return nil // idempotent
	}

	// Flip the state first: any block delivered during teardown sees
	// a non-Playing state and is dropped rather than processed
	// against a half-released handle.
	c.state.Store(int32(next))

	if err := c.output.Stop(); err != nil {
		c.reportError(err)
	}
	if err := c.output.Close(); err != nil {
		c.reportError(err)
	}
	if err := c.actuator.Stop(); err != nil {
		c.reportError(err)
	}
	c.intensity.Store(0)

	applog.Infof("Player: %s", next)
	if c.cb.OnStop != nil {
		c.cb.OnStop()
	}
	return nil
}

// Close stops playback and shuts down the event loop. The controller
// cannot be restarted after Close.
func (c *Controller) Close() error {
	err := c.Stop()
	c.stopOnce.Do(func() { close(c.done) })
	c.wg.Wait()
	return err
}

// processBlock is the real-time delivery callback. It copies the next
// clip block to the device buffer, runs the spectral pipeline on it
// and fires the trigger. No allocation, no locks, no control-path
// calls; everything it needs is pre-allocated or immutable.
func (c *Controller) processBlock(out []float32) {
	if c.State() != StatePlaying {
		for i := range out {
			out[i] = 0
		}
		return
	}

	samples := c.clip.Samples
	frames := len(out) / c.channels
	if frames > len(c.block) {
		frames = len(c.block)
	}

	n := 0
	for i := range frames {
		if c.cursor >= len(samples) {
			if c.loop {
				c.cursor = 0
			} else {
				c.block[i] = 0
				for ch := range c.channels {
					out[i*c.channels+ch] = 0
				}
				continue
			}
		}
		s := samples[c.cursor]
		c.cursor++
		c.block[i] = s
		for ch := range c.channels {
			out[i*c.channels+ch] = s
		}
		n++
	}

	if n > 0 {
		// blockLen is the transform size: short final blocks are
		// zero-padded by the analyzer, so the spectrum's resolution
		// (and the normalization) stays fixed.
		spectrum := c.analyzer.Analyze(c.block[:n])
		intensity := c.extractor.Extract(spectrum, c.analyzer.SampleRate(), c.analyzer.FFTSize())
		c.intensity.Store(math.Float64bits(intensity))
		c.trigger.Fire(intensity)
	}

	if !c.loop && c.cursor >= len(samples) && !c.eosSignaled {
		c.eosSignaled = true
		select {
		case c.eosCh <- struct{}{}:
		default:
		}
	}
}

// reportError forwards an error to the OnError callback, falling back
// to the logger.
func (c *Controller) reportError(err error) {
	if c.cb.OnError != nil {
		c.cb.OnError(err)
		return
	}
	applog.Errorf("Player: %v", err)
}
