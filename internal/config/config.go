// SPDX-License-Identifier: MIT
package config

// Core configuration constants that define the boundaries and defaults
// for the haptic feedback pipeline.
const (
	// Default values for the audio side of the pipeline
	DefaultDeviceID        = MinDeviceID // System default output device
	DefaultChannels        = 2           // Stereo output
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultFramesPerBuffer = 512         // Balanced latency/FFT resolution
	DefaultLowLatency      = false       // Standard latency mode
	DefaultWindow          = "hann"      // FFT window function

	// Default values for the haptic side
	DefaultMinFrequency = 20.0  // Low edge of the feedback band (Hz)
	DefaultMaxFrequency = 250.0 // High edge of the feedback band (Hz)
	DefaultBridge       = "nop" // Actuator bridge ("nop", "udp" or "ws")
	DefaultUDPAddress   = "127.0.0.1:9090"
	DefaultWSPort       = "8080"

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents the system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer
)
