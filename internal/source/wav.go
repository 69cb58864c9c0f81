// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavSource struct {
	dec      *wav.Decoder
	buf      *goaudio.IntBuffer
	scale    float32
	channels int
	rate     int
}

func (s *wavSource) SampleRate() int { return s.rate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("wav read: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	for i := range n {
		dst[i] = float32(s.buf.Data[i]) * s.scale
	}
	return n, nil
}

// WavDecoder decodes RIFF/WAVE PCM streams via go-audio/wav.
type WavDecoder struct{}

func (WavDecoder) Decode(r io.ReadSeeker) (Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("wav: unsupported bit depth %d", bitDepth)
	}

	return &wavSource{
		dec:      dec,
		buf:      &goaudio.IntBuffer{Format: dec.Format(), Data: make([]int, 4096)},
		scale:    1.0 / float32(int64(1)<<(bitDepth-1)),
		channels: int(dec.NumChans),
		rate:     int(dec.SampleRate),
	}, nil
}
