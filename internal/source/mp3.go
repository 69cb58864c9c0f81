// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Reader narrows gomp3.Decoder for testing.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type mp3Source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return 2 } // go-mp3 always emits stereo
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	// go-mp3 produces 16-bit little-endian PCM, two bytes per sample.
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768.0
	}
	return samples, err
}

// MP3Decoder decodes MPEG layer 3 streams via hajimehoshi/go-mp3.
type MP3Decoder struct{}

func (MP3Decoder) Decode(r io.ReadSeeker) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
