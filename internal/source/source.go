// SPDX-License-Identifier: MIT

// Package source implements the audio source collaborator: decoding a
// named audio resource into float32 PCM, mixing it down to mono and
// resampling it to the pipeline's target rate. All decoding happens up
// front when a clip is loaded; nothing in this package runs on the
// real-time delivery path.
package source

import "io"

// Source is a stream of interleaved float32 samples in [-1, 1].
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved samples and returns the
	// number of float32 values written. io.EOF signals the end of the
	// stream.
	ReadSamples(dst []float32) (int, error)
	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input stream. The reader must
// seek because the WAV container requires it; the other formats simply
// ignore the capability.
type Decoder interface {
	Decode(r io.ReadSeeker) (Source, error)
}

// Registry maps format keys ("wav", "mp3", "ogg") to decoders.
type Registry struct {
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

func (r *Registry) Register(format string, d Decoder) {
	r.codecs[format] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	d, ok := r.codecs[format]
	return d, ok
}
