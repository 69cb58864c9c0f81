// SPDX-License-Identifier: MIT
package analysis

import "fmt"

// Band is the frequency sub-range whose spectral peak drives the
// actuator. Invariant: 0 <= MinHz < MaxHz <= sampleRate/2, checked at
// configuration time, not per block.
type Band struct {
	MinHz float64
	MaxHz float64
}

// Validate checks the band invariant against a sample rate.
func (b Band) Validate(sampleRate float64) error {
	if b.MinHz < 0 {
		return fmt.Errorf("band min %.1f Hz must be >= 0", b.MinHz)
	}
	if b.MinHz >= b.MaxHz {
		return fmt.Errorf("band min %.1f Hz must be below max %.1f Hz", b.MinHz, b.MaxHz)
	}
	if nyquist := sampleRate / 2; b.MaxHz > nyquist {
		return fmt.Errorf("band max %.1f Hz exceeds Nyquist frequency %.1f Hz", b.MaxHz, nyquist)
	}
	return nil
}

// Extractor reduces the configured band of a spectrum to one intensity
// value per block. It carries no state between blocks; any temporal
// smoothing is a caller concern.
type Extractor struct {
	band Band
}

// NewExtractor creates an Extractor for the given band.
func NewExtractor(band Band) *Extractor {
	return &Extractor{band: band}
}

// Band returns the configured frequency band.
func (e *Extractor) Band() Band {
	return e.band
}

// Extract returns the peak spectral magnitude within the band,
// normalized by block length and clamped to [0, 1]. The band is
// converted to the half-open bin range [minBin, maxBin) with integer
// floor; bin width depends on blockLen, which may differ from the
// spectrum's transform size for a short final block. An empty bin
// range or empty spectrum yields 0.
func (e *Extractor) Extract(spectrum []float64, sampleRate float64, blockLen int) float64 {
	if len(spectrum) == 0 || blockLen <= 0 || sampleRate <= 0 {
		return 0
	}

	binWidth := sampleRate / float64(blockLen)
	minBin := int(e.band.MinHz / binWidth)
	maxBin := int(e.band.MaxHz / binWidth)

	if minBin < 0 {
		minBin = 0
	}
	if maxBin > len(spectrum) {
		maxBin = len(spectrum)
	}
	if minBin >= maxBin {
		return 0
	}

	peak := spectrum[minBin]
	for _, m := range spectrum[minBin+1 : maxBin] {
		if m > peak {
			peak = m
		}
	}

	intensity := peak / float64(blockLen)
	if intensity > 1 {
		intensity = 1
	}
	if intensity < 0 {
		intensity = 0
	}
	return intensity
}
