// SPDX-License-Identifier: MIT

// Package utils holds test helpers shared across packages: signal
// generators, spectrum inspection and actuator fakes.
package utils

import (
	"math"
	"sync"

	"haptic/pkg/haptics"
)

// GenerateSineWave returns a mono float32 block containing a pure sine
// at the given frequency with the given peak amplitude.
func GenerateSineWave(size int, sampleRate, frequency, amplitude float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = float32(math.Sin(2*math.Pi*frequency*t) * amplitude)
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics,
// handy for tests that need a non-trivial spectrum.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	buffer := make([]float32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buffer[i] = float32(signal * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in
// magnitudes[startBin..endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// MockActuator implements haptics.Actuator for testing. It records
// every call and can be set to fail pulses or report no hardware
// support.
type MockActuator struct {
	mu          sync.Mutex
	SupportedFn bool
	PulseErr    error
	StartErr    error

	StartCalls int
	StopCalls  int
	Pulses     []haptics.Pulse
	stoppedCh  chan error
}

// NewMockActuator returns a supported actuator that accepts all
// pulses.
func NewMockActuator() *MockActuator {
	return &MockActuator{
		SupportedFn: true,
		stoppedCh:   make(chan error, 1),
	}
}

func (m *MockActuator) Supported() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SupportedFn
}

func (m *MockActuator) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
	return m.StartErr
}

func (m *MockActuator) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
	return nil
}

func (m *MockActuator) Pulse(p haptics.Pulse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PulseErr != nil {
		return m.PulseErr
	}
	m.Pulses = append(m.Pulses, p)
	return nil
}

func (m *MockActuator) Stopped() <-chan error {
	return m.stoppedCh
}

// FailEngine injects an engine-stopped notification as if the
// hardware had gone away.
func (m *MockActuator) FailEngine(err error) {
	m.stoppedCh <- err
}

// SetPulseErr switches pulse dispatch between failing and succeeding.
func (m *MockActuator) SetPulseErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PulseErr = err
}

// PulseCount returns the number of accepted pulses.
func (m *MockActuator) PulseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Pulses)
}

// Counts returns the number of Start and Stop calls.
func (m *MockActuator) Counts() (starts, stops int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartCalls, m.StopCalls
}

var _ haptics.Actuator = (*MockActuator)(nil)
