// SPDX-License-Identifier: MIT
package pipeline

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"haptic/internal/config"
	"haptic/internal/player"
	"haptic/pkg/utils"
)

// fakeOutput stands in for the PortAudio stream. Tests push blocks
// through the captured callback by hand.
type fakeOutput struct {
	mu      sync.Mutex
	cb      func(out []float32)
	started bool
}

func (o *fakeOutput) Open(cb func(out []float32)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cb = cb
	return nil
}

func (o *fakeOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = true
	return nil
}

func (o *fakeOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = false
	return nil
}

func (o *fakeOutput) Close() error { return nil }

// deliver invokes the stream callback with a fresh device buffer.
func (o *fakeOutput) deliver(frames, channels int) []float32 {
	o.mu.Lock()
	cb := o.cb
	o.mu.Unlock()
	buf := make([]float32, frames*channels)
	cb(buf)
	return buf
}

var _ player.Output = (*fakeOutput)(nil)

// writeTestWav writes a mono 16-bit sine clip and returns its path.
func writeTestWav(t *testing.T, sampleRate, samples int, frequency float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	sine := utils.GenerateSineWave(samples, float64(sampleRate), frequency, 0.8)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, samples),
	}
	for i, s := range sine {
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
	return path
}

func swapOutput(t *testing.T, out player.Output) {
	t.Helper()
	orig := newOutput
	newOutput = func(*config.Config) player.Output { return out }
	t.Cleanup(func() { newOutput = orig })
}

// Device 0 is a real device; the facade must not confuse it with "use
// the system default".
func TestOutputDeviceSelectionIsLiteral(t *testing.T) {
	var gotDevice int
	orig := newOutput
	newOutput = func(cfg *config.Config) player.Output {
		gotDevice = cfg.Audio.OutputDevice
		return &fakeOutput{}
	}
	t.Cleanup(func() { newOutput = orig })

	path := writeTestWav(t, 8000, 256, 100)

	p, err := New(Config{Path: path, SampleRate: 8000, OutputDevice: 0}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Close()
	if gotDevice != 0 {
		t.Errorf("device = %d, want 0 (explicit first device)", gotDevice)
	}

	p, err = New(Config{Path: path, SampleRate: 8000, OutputDevice: SystemDefaultDevice}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Close()
	if gotDevice != SystemDefaultDevice {
		t.Errorf("device = %d, want %d (system default)", gotDevice, SystemDefaultDevice)
	}
}

func TestApplyDefaultsLeavesOutputDeviceAlone(t *testing.T) {
	cfg := Config{Path: "x.wav", OutputDevice: 0}
	cfg.applyDefaults()
	if cfg.OutputDevice != 0 {
		t.Errorf("OutputDevice = %d after defaults, want 0", cfg.OutputDevice)
	}

	cfg = Config{Path: "x.wav", OutputDevice: SystemDefaultDevice}
	cfg.applyDefaults()
	if cfg.OutputDevice != SystemDefaultDevice {
		t.Errorf("OutputDevice = %d after defaults, want %d", cfg.OutputDevice, SystemDefaultDevice)
	}
}

func TestNewRejectsMissingPath(t *testing.T) {
	var reported error
	_, err := New(Config{OnError: func(e error) { reported = e }}, nil)
	if err == nil {
		t.Fatal("expected error for missing path")
	}
	if reported == nil {
		t.Error("expected error via OnError callback")
	}
}

func TestNewRejectsInvalidBand(t *testing.T) {
	cases := []struct {
		name     string
		min, max float64
	}{
		{"inverted", 250, 20},
		{"equal", 100, 100},
		{"negative min", -5, 100},
		{"above nyquist", 20, 96000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Config{
				Path:         "clip.wav",
				MinFrequency: tc.min,
				MaxFrequency: tc.max,
			}, nil)
			if err == nil {
				t.Errorf("band [%v, %v): expected validation error", tc.min, tc.max)
			}
		})
	}
}

func TestNewRejectsUnknownWindow(t *testing.T) {
	_, err := New(Config{Path: "clip.wav", Window: "kaiser"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown window name")
	}
}

func TestPipelinePlaysClipToCompletion(t *testing.T) {
	const (
		sampleRate = 8000
		frames     = 256
		channels   = 1
	)
	path := writeTestWav(t, sampleRate, 4*frames, 100)

	out := &fakeOutput{}
	swapOutput(t, out)

	var mu sync.Mutex
	starts, stops := 0, 0
	var errs []error

	actuator := utils.NewMockActuator()
	p, err := New(Config{
		Path:            path,
		SampleRate:      sampleRate,
		Channels:        channels,
		FramesPerBuffer: frames,
		MinFrequency:    20,
		MaxFrequency:    250,
		OnStart: func() {
			mu.Lock()
			starts++
			mu.Unlock()
		},
		OnStop: func() {
			mu.Lock()
			stops++
			mu.Unlock()
		},
		OnError: func(e error) {
			mu.Lock()
			errs = append(errs, e)
			mu.Unlock()
		},
	}, actuator)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if p.State() != StateIdle {
		t.Fatalf("initial state = %v, want %v", p.State(), StateIdle)
	}

	if err := p.StartAudioProcessing(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !p.Playing() {
		t.Fatal("expected Playing after start")
	}

	// The clip is exactly four blocks long. Check the readouts before
	// the final block: exhaustion resets them.
	for range 3 {
		buf := out.deliver(frames, channels)
		nonZero := false
		for _, s := range buf {
			if s != 0 {
				nonZero = true
				break
			}
		}
		if !nonZero {
			t.Error("expected audio in the device buffer while playing")
		}
	}
	if got := p.Intensity(); got <= 0 || got > 1 {
		t.Errorf("intensity = %v, want in (0, 1]", got)
	}
	if actuator.PulseCount() == 0 {
		t.Error("expected haptic pulses for an in-band sine")
	}
	out.deliver(frames, channels)

	// Exhaustion stops the pipeline from the event loop.
	stopped := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return stops == 1
	}
	deadline := time.Now().Add(2 * time.Second)
	for !stopped() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if p.State() != StateStopped {
		t.Fatalf("state after exhaustion = %v, want %v", p.State(), StateStopped)
	}

	mu.Lock()
	defer mu.Unlock()
	if starts != 1 || stops != 1 {
		t.Errorf("starts=%d stops=%d, want 1 and 1", starts, stops)
	}
	for _, e := range errs {
		t.Errorf("unexpected error: %v", e)
	}
}

func TestPipelineLoopKeepsPlaying(t *testing.T) {
	const (
		sampleRate = 8000
		frames     = 256
	)
	path := writeTestWav(t, sampleRate, frames+frames/2, 100)

	out := &fakeOutput{}
	swapOutput(t, out)

	p, err := New(Config{
		Path:            path,
		SampleRate:      sampleRate,
		Channels:        1,
		FramesPerBuffer: frames,
		Loop:            true,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.StartAudioProcessing(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Far more blocks than the clip holds.
	for range 10 {
		out.deliver(frames, 1)
	}
	if !p.Playing() {
		t.Fatal("expected looped playback to continue past clip end")
	}

	if err := p.StopAudioProcessing(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p.State() != StateStopped {
		t.Errorf("state after stop = %v, want %v", p.State(), StateStopped)
	}
}

func TestPipelineSuspendResume(t *testing.T) {
	const (
		sampleRate = 8000
		frames     = 256
	)
	path := writeTestWav(t, sampleRate, 8*frames, 100)

	out := &fakeOutput{}
	swapOutput(t, out)

	p, err := New(Config{
		Path:            path,
		SampleRate:      sampleRate,
		Channels:        1,
		FramesPerBuffer: frames,
		Loop:            true,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.StartAudioProcessing(); err != nil {
		t.Fatalf("start: %v", err)
	}
	out.deliver(frames, 1)

	if err := p.Suspend(); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if p.State() != StateSuspended {
		t.Fatalf("state after suspend = %v, want %v", p.State(), StateSuspended)
	}
	if p.Intensity() != 0 {
		t.Errorf("intensity after suspend = %v, want 0", p.Intensity())
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !p.Playing() {
		t.Fatal("expected Playing after resume")
	}
}
