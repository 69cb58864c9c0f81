// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "haptic/internal/log"
)

// Clip is a fully decoded audio resource: mono float32 PCM at a known
// sample rate. A Clip is immutable after Load; the playback controller
// reads it concurrently with nothing else writing.
type Clip struct {
	Samples []float32
	Rate    int
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.Rate) * float64(time.Second))
}

// DefaultRegistry holds the built-in decoders keyed by file extension.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("wav", WavDecoder{})
	r.Register("mp3", MP3Decoder{})
	r.Register("ogg", OggDecoder{})
	return r
}

// Load decodes the file at path into a mono Clip at targetRate. The
// decoder is picked by extension from the registry; multi-channel
// audio is averaged down to mono and rate-mismatched audio is
// resampled. The whole file is decoded here so the delivery path never
// touches the filesystem.
func Load(path string, targetRate int, reg *Registry) (*Clip, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	dec, ok := reg.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer src.Close()

	mono := NewMonoMixer(src)

	var samples []float32
	buf := make([]float32, 4096)
	for {
		n, err := mono.ReadSamples(buf)
		if n > 0 {
			samples = append(samples, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read samples from %s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptyClip
	}

	rate := src.SampleRate()
	if targetRate > 0 && rate != targetRate {
		applog.Debugf("Source: resampling %s from %d Hz to %d Hz", path, rate, targetRate)
		samples = ResampleMono(samples, rate, targetRate)
		rate = targetRate
	}

	clip := &Clip{Samples: samples, Rate: rate}
	applog.Infof("Source: loaded %s (%d samples, %d Hz, %s)",
		path, len(clip.Samples), clip.Rate, clip.Duration().Round(time.Millisecond))
	return clip, nil
}
