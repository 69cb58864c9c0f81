// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the main application configuration, loaded from YAML and
// optionally overridden by environment variables and CLI flags. It is
// treated as immutable once the pipeline has been constructed.
type Config struct {
	Debug    bool          `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel string        `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Command  string        `yaml:"-"`         // One-off command to execute instead of playing (e.g. "list").
	Audio    AudioConfig   `yaml:"audio"`     // Audio output and analysis settings.
	Source   SourceConfig  `yaml:"source"`    // Audio source settings.
	Band     BandConfig    `yaml:"band"`      // Frequency band driving the actuator.
	Haptics  HapticsConfig `yaml:"haptics"`   // Actuator bridge settings.
	Meter    bool          `yaml:"meter"`     // Show the live intensity meter TUI.
}

// AudioConfig holds settings for the output device and spectral analysis.
type AudioConfig struct {
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index for output (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Target sample rate in Hz (source is resampled to this).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Audio frames per processing block (affects latency and FFT resolution).
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from the device.
	Channels        int     `yaml:"channels"`          // Output channels (1 mono, 2 stereo).
	Window          string  `yaml:"window"`            // FFT window function name ("hann", "hamming", "none", ...).
}

// SourceConfig holds settings for the audio file being played.
type SourceConfig struct {
	Path string `yaml:"path"` // Path to the audio file (wav, mp3 or ogg).
	Loop bool   `yaml:"loop"` // Restart playback from the beginning at end of stream.
}

// BandConfig is the frequency sub-range whose peak energy drives the
// actuator. Invariant: 0 <= min_hz < max_hz <= sample_rate/2.
type BandConfig struct {
	MinHz float64 `yaml:"min_hz"`
	MaxHz float64 `yaml:"max_hz"`
}

// HapticsConfig selects and configures the actuator bridge.
type HapticsConfig struct {
	Bridge     string `yaml:"bridge"`      // "nop", "udp" or "ws".
	UDPAddress string `yaml:"udp_address"` // Target address for the UDP bridge ("host:port").
	WSPort     string `yaml:"ws_port"`     // Listen port for the websocket bridge.
}

// LoadConfig loads configuration from a YAML file specified by path. If
// path is empty it searches default locations ("config.yaml") and falls
// back to built-in defaults when no file is found. Environment variable
// overrides are applied after loading, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			Channels:        DefaultChannels,
			Window:          DefaultWindow,
		},
		Source: SourceConfig{
			Path: "",
			Loop: false,
		},
		Band: BandConfig{
			MinHz: DefaultMinFrequency,
			MaxHz: DefaultMaxFrequency,
		},
		Haptics: HapticsConfig{
			Bridge:     DefaultBridge,
			UDPAddress: DefaultUDPAddress,
			WSPort:     DefaultWSPort,
		},
	}

	if path == "" {
		candidates := []string{"config.yaml"}
		found := false
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration invariants that the pipeline relies
// on. The frequency band check is the one from the analysis contract:
// 0 <= min < max <= Nyquist.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside supported range [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside supported range (0, %d]",
			c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Band.MinHz < 0 {
		return fmt.Errorf("band.min_hz must be >= 0, got %.1f", c.Band.MinHz)
	}
	if c.Band.MinHz >= c.Band.MaxHz {
		return fmt.Errorf("band.min_hz %.1f must be below band.max_hz %.1f",
			c.Band.MinHz, c.Band.MaxHz)
	}
	nyquist := c.Audio.SampleRate / 2
	if c.Band.MaxHz > nyquist {
		return fmt.Errorf("band.max_hz %.1f exceeds Nyquist frequency %.1f",
			c.Band.MaxHz, nyquist)
	}
	switch c.Haptics.Bridge {
	case "nop", "udp", "ws":
	default:
		return fmt.Errorf("haptics.bridge must be one of nop, udp, ws; got %q", c.Haptics.Bridge)
	}
	return nil
}

// applyEnvOverrides applies ENV_* overrides on top of whatever was
// loaded from file or defaults.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	// ENV_LOOP
	if val, ok := os.LookupEnv("ENV_LOOP"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Source.Loop = bVal
		}
	}

	// ENV_HAPTIC_{...} are specific to the actuator bridge.

	// ENV_HAPTIC_BRIDGE
	if val, ok := os.LookupEnv("ENV_HAPTIC_BRIDGE"); ok {
		cfg.Haptics.Bridge = val
	}
	// ENV_HAPTIC_UDP_ADDRESS
	if val, ok := os.LookupEnv("ENV_HAPTIC_UDP_ADDRESS"); ok {
		cfg.Haptics.UDPAddress = val
	}
	// ENV_HAPTIC_WS_PORT
	if val, ok := os.LookupEnv("ENV_HAPTIC_WS_PORT"); ok {
		cfg.Haptics.WSPort = val
	}
}
