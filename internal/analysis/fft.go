// SPDX-License-Identifier: MIT

// Package analysis implements the per-block spectral pipeline: a
// windowed FFT over one audio block and the reduction of a frequency
// band of the resulting spectrum to a single normalized intensity.
// Everything here runs inside the real-time delivery callback, so the
// hot paths are allocation-free after construction and hold no locks.
package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"haptic/pkg/bitint"
)

// WindowFunc selects the window applied before the transform.
type WindowFunc int

const (
	None WindowFunc = iota
	Hann
	Hamming
	Blackman
	BlackmanNuttall
	Nuttall
	Lanczos
	BartlettHann
)

// workspace holds the pre-allocated buffers for one Analyzer.
type workspace struct {
	input     []float64    // windowed input samples
	fftOutput []complex128 // complex FFT output
	magnitude []float64    // squared magnitudes per bin
	window    []float64    // window coefficients
}

// Analyzer transforms one real-valued audio block into a magnitude
// spectrum. It is stateless across calls: no phase or history is
// carried from one block to the next. An Analyzer is not safe for
// concurrent use; the delivery path owns it exclusively.
type Analyzer struct {
	fft        *fourier.FFT
	fftSize    int
	sampleRate float64
	ws         workspace
}

// NewAnalyzer creates an Analyzer for blocks of up to fftSize samples.
// fftSize must be a power of 2; callers with other block sizes round up
// with bitint.NextPowerOfTwo and let Analyze zero-pad the remainder.
func NewAnalyzer(fftSize int, sampleRate float64, win WindowFunc) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	coeffs := make([]float64, fftSize)
	applyWindow(coeffs, win)

	// Real input FFT yields fftSize/2 + 1 complex values (DC .. Nyquist).
	outputSize := fftSize/2 + 1

	return &Analyzer{
		fft:        fourier.NewFFT(fftSize),
		fftSize:    fftSize,
		sampleRate: sampleRate,
		ws: workspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, outputSize),
			magnitude: make([]float64, outputSize),
			window:    coeffs,
		},
	}, nil
}

// Analyze computes the magnitude spectrum of one block. Blocks shorter
// than the FFT size are zero-padded; blocks longer are truncated. The
// returned slice is the Analyzer's internal buffer, valid until the
// next call. Magnitudes are squared (re² + im²) and non-negative.
//
// Blocks with fewer than two samples produce an empty spectrum; this
// is a no-op, not an error.
func (a *Analyzer) Analyze(block []float32) []float64 {
	if len(block) < 2 {
		return a.ws.magnitude[:0]
	}

	n := len(block)
	if n > a.fftSize {
		n = a.fftSize
	}
	for i := range a.fftSize {
		if i < n {
			a.ws.input[i] = float64(block[i]) * a.ws.window[i]
		} else {
			a.ws.input[i] = 0 // zero-pad short final blocks
		}
	}

	a.fft.Coefficients(a.ws.fftOutput, a.ws.input)
	for i, c := range a.ws.fftOutput {
		re, im := real(c), imag(c)
		a.ws.magnitude[i] = re*re + im*im
	}

	return a.ws.magnitude
}

// FrequencyForBin returns the center frequency (Hz) for a spectrum bin.
// Out-of-range indices return 0.
func (a *Analyzer) FrequencyForBin(bin int) float64 {
	if bin < 0 || bin >= len(a.ws.fftOutput) {
		return 0
	}
	return float64(bin) * (a.sampleRate / float64(a.fftSize))
}

// FFTSize returns the configured transform size.
func (a *Analyzer) FFTSize() int {
	return a.fftSize
}

// SampleRate returns the configured sample rate (Hz).
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Unknown names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "none", "rectangular":
		return None, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	case "bartletthann":
		return BartlettHann, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: %q", name)
	}
}

// applyWindow fills coeffs with the selected window function. The
// slice is seeded with ones because the gonum window funcs multiply
// in place.
func applyWindow(coeffs []float64, win WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch win {
	case None:
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	default:
		window.Hann(coeffs)
	}
}
