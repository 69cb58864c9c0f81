// SPDX-License-Identifier: MIT
package analysis

import (
	"testing"

	"haptic/pkg/utils"
)

func TestBandValidate(t *testing.T) {
	cases := []struct {
		name    string
		band    Band
		rate    float64
		wantErr bool
	}{
		{"default band", Band{20, 250}, 44100, false},
		{"full range", Band{0, 22050}, 44100, false},
		{"negative min", Band{-1, 250}, 44100, true},
		{"inverted", Band{250, 20}, 44100, true},
		{"equal", Band{100, 100}, 44100, true},
		{"above nyquist", Band{20, 22051}, 44100, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.band.Validate(tc.rate)
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestExtractInBandSine(t *testing.T) {
	analyzer := newTestAnalyzer(t, Hann)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})

	block := utils.GenerateSineWave(testFFTSize, testSampleRate, 100, 0.05)
	spectrum := analyzer.Analyze(block)

	got := extractor.Extract(spectrum, testSampleRate, testFFTSize)
	if got <= 0 || got > 1 {
		t.Errorf("intensity = %v, want in (0, 1]", got)
	}
}

func TestExtractOutOfBandSine(t *testing.T) {
	analyzer := newTestAnalyzer(t, Hann)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})

	block := utils.GenerateSineWave(testFFTSize, testSampleRate, 5000, 0.5)
	spectrum := analyzer.Analyze(block)

	got := extractor.Extract(spectrum, testSampleRate, testFFTSize)
	if got > 0.01 {
		t.Errorf("intensity = %v for a 5kHz sine in a 20-250Hz band, want near 0", got)
	}
}

func TestExtractAmplitudeMonotonic(t *testing.T) {
	analyzer := newTestAnalyzer(t, Hann)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})

	prev := -1.0
	for _, amp := range []float64{0.001, 0.01, 0.05, 0.1} {
		block := utils.GenerateSineWave(testFFTSize, testSampleRate, 100, amp)
		spectrum := analyzer.Analyze(block)
		got := extractor.Extract(spectrum, testSampleRate, testFFTSize)
		if got <= prev {
			t.Errorf("amplitude %v: intensity %v not above previous %v", amp, got, prev)
		}
		prev = got
	}
}

func TestExtractClampsToOne(t *testing.T) {
	analyzer := newTestAnalyzer(t, Hann)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})

	block := utils.GenerateSineWave(testFFTSize, testSampleRate, 100, 1.0)
	spectrum := analyzer.Analyze(block)

	if got := extractor.Extract(spectrum, testSampleRate, testFFTSize); got != 1 {
		t.Errorf("intensity = %v for a full-scale sine, want clamped to 1", got)
	}
}

// Bin mapping is half-open: a spike exactly on the max-frequency bin
// is excluded, one bin below is included.
func TestExtractHalfOpenBinRange(t *testing.T) {
	// sampleRate 1000, blockLen 100: bin width 10 Hz.
	// Band [20, 50) maps to bins [2, 5).
	const (
		rate     = 1000.0
		blockLen = 100
	)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 50})

	spectrum := make([]float64, 51)
	spectrum[5] = 80
	if got := extractor.Extract(spectrum, rate, blockLen); got != 0 {
		t.Errorf("spike on excluded upper bin: intensity = %v, want 0", got)
	}

	spectrum[4] = 70
	want := 70.0 / blockLen
	if got := extractor.Extract(spectrum, rate, blockLen); got != want {
		t.Errorf("spike on included bin: intensity = %v, want %v", got, want)
	}

	spectrum[2] = 90
	want = 90.0 / blockLen
	if got := extractor.Extract(spectrum, rate, blockLen); got != want {
		t.Errorf("spike on lower bin: intensity = %v, want %v", got, want)
	}
}

func TestExtractDegenerateInputs(t *testing.T) {
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})
	spectrum := make([]float64, 513)

	cases := []struct {
		name     string
		spectrum []float64
		rate     float64
		blockLen int
	}{
		{"empty spectrum", nil, 44100, 1024},
		{"zero block length", spectrum, 44100, 0},
		{"negative block length", spectrum, 44100, -1},
		{"zero sample rate", spectrum, 0, 1024},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractor.Extract(tc.spectrum, tc.rate, tc.blockLen); got != 0 {
				t.Errorf("intensity = %v, want 0", got)
			}
		})
	}

	// A band that collapses to zero bins after the floor.
	narrow := NewExtractor(Band{MinHz: 101, MaxHz: 102})
	if got := narrow.Extract(spectrum, 44100, 64); got != 0 {
		t.Errorf("collapsed band: intensity = %v, want 0", got)
	}
}

func TestExtractZeroAllocs(t *testing.T) {
	analyzer := newTestAnalyzer(t, Hann)
	extractor := NewExtractor(Band{MinHz: 20, MaxHz: 250})
	block := utils.GenerateSineWave(testFFTSize, testSampleRate, 100, 0.5)
	spectrum := analyzer.Analyze(block)

	allocs := testing.AllocsPerRun(100, func() {
		extractor.Extract(spectrum, testSampleRate, testFFTSize)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Extract, got %.1f", allocs)
	}
}
