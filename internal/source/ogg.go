// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// oggReader narrows oggvorbis.Reader for testing.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type oggSource struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *oggSource) SampleRate() int { return s.sampleRate }
func (s *oggSource) Channels() int   { return s.channels }
func (s *oggSource) Close() error    { return nil }

func (s *oggSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	// oggvorbis already produces interleaved float32 in [-1, 1].
	return s.dec.Read(dst)
}

// OggDecoder decodes Ogg Vorbis streams via jfreymuth/oggvorbis.
type OggDecoder struct{}

func (OggDecoder) Decode(r io.ReadSeeker) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ogg: %w", err)
	}
	return &oggSource{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
