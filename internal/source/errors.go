// SPDX-License-Identifier: MIT
package source

import "errors"

var (
	// ErrUnknownFormat is returned when no decoder is registered for
	// a file's extension.
	ErrUnknownFormat = errors.New("source: unknown audio format")

	// ErrEmptyClip is returned when a file decodes to zero samples.
	ErrEmptyClip = errors.New("source: file contains no samples")

	// ErrNotWavFile is returned when a .wav file fails container
	// validation.
	ErrNotWavFile = errors.New("source: not a valid WAV file")
)
