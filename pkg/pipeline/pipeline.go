// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"

	"haptic/internal/analysis"
	"haptic/internal/config"
	"haptic/internal/player"
	"haptic/internal/source"
	"haptic/pkg/bitint"
	"haptic/pkg/haptics"
)

// State is the externally observable pipeline state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateStopped
	StateSuspended
)

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

// SystemDefaultDevice selects the host's default output device.
const SystemDefaultDevice = config.DefaultDeviceID

// Config configures a Pipeline. Zero values fall back to the engine
// defaults, except OutputDevice, which is taken literally; Path is the
// only required field.
type Config struct {
	// Path to the audio resource (wav, mp3 or ogg).
	Path string

	// SampleRate of the output device in Hz. The clip is resampled
	// to it on load.
	SampleRate int

	// Channels of the output device, 1 or 2.
	Channels int

	// FramesPerBuffer is the analysis block size. Non powers of two
	// are padded up to the next power of two for the transform.
	FramesPerBuffer int

	// OutputDevice selects the playback device by ID. Device IDs
	// start at 0, so the zero value picks the first device; use
	// SystemDefaultDevice (-1) for the host's default output.
	OutputDevice int

	// LowLatency requests the device's low-latency parameters.
	LowLatency bool

	// MinFrequency and MaxFrequency bound the analyzed band in Hz.
	MinFrequency float64
	MaxFrequency float64

	// Window names the analysis window function, "hann" by default.
	Window string

	// Loop restarts the clip on exhaustion instead of stopping.
	Loop bool

	// Notification callbacks. They arrive on internal goroutines and
	// must not call back into the pipeline.
	OnStart func()
	OnStop  func()
	OnError func(error)
}

func (c *Config) applyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = config.DefaultSampleRate
	}
	if c.Channels == 0 {
		c.Channels = config.DefaultChannels
	}
	if c.FramesPerBuffer == 0 {
		c.FramesPerBuffer = config.DefaultFramesPerBuffer
	}
	if c.MinFrequency == 0 && c.MaxFrequency == 0 {
		c.MinFrequency = config.DefaultMinFrequency
		c.MaxFrequency = config.DefaultMaxFrequency
	}
	if c.Window == "" {
		c.Window = config.DefaultWindow
	}
}

// newOutput builds the device output. Tests swap it for a fake.
var newOutput = func(cfg *config.Config) player.Output {
	return player.NewDeviceOutput(cfg)
}

// Pipeline glues the decoder, analyzer, extractor, playback controller
// and haptic trigger together behind a small control surface.
type Pipeline struct {
	controller *player.Controller
}

// New validates the configuration and assembles a pipeline in the
// Idle state. Configuration errors are reported through cfg.OnError
// and returned. The audio resource is loaded lazily on the first
// start. actuator may be nil for audio-only operation.
func New(cfg Config, actuator haptics.Actuator) (*Pipeline, error) {
	cfg.applyDefaults()

	fail := func(err error) (*Pipeline, error) {
		if cfg.OnError != nil {
			cfg.OnError(err)
		}
		return nil, err
	}

	if cfg.Path == "" {
		return fail(player.ErrNoSource)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return fail(fmt.Errorf("pipeline: channels must be 1 or 2, got %d", cfg.Channels))
	}

	band := analysis.Band{MinHz: cfg.MinFrequency, MaxHz: cfg.MaxFrequency}
	if err := band.Validate(float64(cfg.SampleRate)); err != nil {
		return fail(err)
	}

	win, err := analysis.ParseWindowFunc(cfg.Window)
	if err != nil {
		return fail(err)
	}

	fftSize := bitint.NextPowerOfTwo(cfg.FramesPerBuffer)
	analyzer, err := analysis.NewAnalyzer(fftSize, float64(cfg.SampleRate), win)
	if err != nil {
		return fail(err)
	}

	deviceCfg := &config.Config{}
	deviceCfg.Audio.OutputDevice = cfg.OutputDevice
	deviceCfg.Audio.SampleRate = float64(cfg.SampleRate)
	deviceCfg.Audio.FramesPerBuffer = cfg.FramesPerBuffer
	deviceCfg.Audio.Channels = cfg.Channels
	deviceCfg.Audio.LowLatency = cfg.LowLatency

	path, rate := cfg.Path, cfg.SampleRate
	controller, err := player.NewController(player.Options{
		Loader: func() (*source.Clip, error) {
			return source.Load(path, rate, source.DefaultRegistry())
		},
		Channels:        cfg.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Loop:            cfg.Loop,
		Analyzer:        analyzer,
		Extractor:       analysis.NewExtractor(band),
		Actuator:        actuator,
		Output:          newOutput(deviceCfg),
		Callbacks: player.Callbacks{
			OnStart: cfg.OnStart,
			OnStop:  cfg.OnStop,
			OnError: cfg.OnError,
		},
	})
	if err != nil {
		return fail(err)
	}

	return &Pipeline{controller: controller}, nil
}

// StartAudioProcessing begins playback and haptic dispatch from the
// start of the clip. A no-op while already playing.
func (p *Pipeline) StartAudioProcessing() error {
	return p.controller.Start()
}

// StopAudioProcessing halts playback and releases the audio and
// actuator resources. A no-op unless playing.
func (p *Pipeline) StopAudioProcessing() error {
	return p.controller.Stop()
}

// Suspend tears playback down for a lifecycle transition. Resume
// starts over from the beginning of the clip.
func (p *Pipeline) Suspend() error {
	return p.controller.Suspend()
}

// Resume restarts playback after a suspension.
func (p *Pipeline) Resume() error {
	return p.controller.Start()
}

// Playing reports whether block delivery is active.
func (p *Pipeline) Playing() bool {
	return p.controller.State() == player.StatePlaying
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	switch p.controller.State() {
	case player.StatePlaying:
		return StatePlaying
	case player.StateStopped:
		return StateStopped
	case player.StateSuspended:
		return StateSuspended
	default:
		return StateIdle
	}
}

// Intensity returns the normalized band intensity of the most recent
// audio block, in [0, 1].
func (p *Pipeline) Intensity() float64 {
	return p.controller.Intensity()
}

// Close stops playback and releases the pipeline. It cannot be
// restarted.
func (p *Pipeline) Close() error {
	return p.controller.Close()
}
