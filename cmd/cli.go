package cmd

import (
	"os"

	"haptic/internal/build"
	"haptic/internal/config"

	"github.com/spf13/cobra"
)

// ParseArgs loads the YAML configuration and applies CLI flag
// overrides on top of it. The positional argument is the audio file
// to play.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetInfo()

	var (
		cfg        *config.Config
		configPath string

		outputDevice    int
		channels        int
		sampleRate      float64
		framesPerBuffer int
		lowLatency      bool
		window          string

		minFreq float64
		maxFreq float64
		loop    bool

		bridge  string
		udpAddr string
		wsPort  string

		meter   bool
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " [flags] <audio-file>",
		Short:         "Play an audio file and drive a haptic actuator from its low frequencies",
		Version:       buildInfo.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags beat both the file and the environment, but only
			// when the user actually set them.
			flags := cmd.Flags()
			if flags.Changed("device") {
				loaded.Audio.OutputDevice = outputDevice
			}
			if flags.Changed("channels") {
				loaded.Audio.Channels = channels
			}
			if flags.Changed("sample-rate") {
				loaded.Audio.SampleRate = sampleRate
			}
			if flags.Changed("frames-per-buffer") {
				loaded.Audio.FramesPerBuffer = framesPerBuffer
			}
			if flags.Changed("low-latency") {
				loaded.Audio.LowLatency = lowLatency
			}
			if flags.Changed("window") {
				loaded.Audio.Window = window
			}
			if flags.Changed("min-freq") {
				loaded.Band.MinHz = minFreq
			}
			if flags.Changed("max-freq") {
				loaded.Band.MaxHz = maxFreq
			}
			if flags.Changed("loop") {
				loaded.Source.Loop = loop
			}
			if flags.Changed("bridge") {
				loaded.Haptics.Bridge = bridge
			}
			if flags.Changed("udp-addr") {
				loaded.Haptics.UDPAddress = udpAddr
			}
			if flags.Changed("ws-port") {
				loaded.Haptics.WSPort = wsPort
			}
			if flags.Changed("meter") {
				loaded.Meter = meter
			}
			if verbose {
				loaded.Debug = true
				loaded.LogLevel = "debug"
			}
			if len(args) == 1 {
				loaded.Source.Path = args[0]
			}

			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio output devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			loaded.Command = "list"
			cfg = loaded
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the YAML configuration file")

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&outputDevice, "device", "d", config.DefaultDeviceID,
		"Output device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&channels, "channels", "c", config.DefaultChannels,
		"Number of output channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	rootCmd.PersistentFlags().StringVarP(&window, "window", "w", config.DefaultWindow,
		"FFT window function (hann, hamming, blackman, none, ...)")

	// Band and Playback Configuration
	rootCmd.PersistentFlags().Float64Var(&minFreq, "min-freq", config.DefaultMinFrequency,
		"Lower bound of the analyzed frequency band (Hz)")
	rootCmd.PersistentFlags().Float64Var(&maxFreq, "max-freq", config.DefaultMaxFrequency,
		"Upper bound of the analyzed frequency band (Hz)")
	rootCmd.PersistentFlags().BoolVarP(&loop, "loop", "r", false,
		"Restart playback from the beginning at end of stream")

	// Haptic Bridge Configuration
	rootCmd.PersistentFlags().StringVar(&bridge, "bridge", config.DefaultBridge,
		"Actuator bridge (nop, udp, ws)")
	rootCmd.PersistentFlags().StringVar(&udpAddr, "udp-addr", config.DefaultUDPAddress,
		"Target address for the UDP bridge")
	rootCmd.PersistentFlags().StringVar(&wsPort, "ws-port", config.DefaultWSPort,
		"Listen port for the websocket bridge")

	// Debug Configuration
	rootCmd.PersistentFlags().BoolVarP(&meter, "meter", "m", false,
		"Show the live intensity meter")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return cfg, nil
}
