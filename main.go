package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"haptic/cmd"
	"haptic/internal/build"
	"haptic/internal/config"
	"haptic/internal/lifecycle"
	applog "haptic/internal/log"
	"haptic/internal/player"
	"haptic/internal/tui"
	"haptic/pkg/haptics"
	"haptic/pkg/pipeline"
)

// main is the entry point. The program flow is divided into three
// phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Assemble the actuator bridge and the playback pipeline
//   - Start playback and haptic dispatch
//   - Run the lifecycle coordinator and, optionally, the meter TUI
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Clean up resources
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	build.Initialize()

	// One thread for the real-time audio callback, one for everything
	// else.
	runtime.GOMAXPROCS(2)

	if err := player.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer player.Terminate()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if cfg == nil {
		// --help or --version already handled by the CLI.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	}

	if cfg.Command == "list" {
		if err := player.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	if cfg.Source.Path == "" {
		applog.Fatalf("no audio file given, see --help")
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	actuator := buildActuator(cfg)

	// Runtime failures from the pipeline and from lifecycle recovery
	// land in the same place.
	onError := func(err error) {
		applog.Errorf("Pipeline: %v", err)
	}

	p, err := pipeline.New(pipeline.Config{
		Path:            cfg.Source.Path,
		SampleRate:      int(cfg.Audio.SampleRate),
		Channels:        cfg.Audio.Channels,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		OutputDevice:    cfg.Audio.OutputDevice,
		LowLatency:      cfg.Audio.LowLatency,
		MinFrequency:    cfg.Band.MinHz,
		MaxFrequency:    cfg.Band.MaxHz,
		Window:          cfg.Audio.Window,
		Loop:            cfg.Source.Loop,
		OnError:         onError,
	}, actuator)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if err := p.StartAudioProcessing(); err != nil {
		applog.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := lifecycle.NewSignalNotifier()
	defer notifier.Close()
	coord := lifecycle.NewCoordinator(notifier, p, actuator, onError)
	go coord.Run(ctx)

	if cfg.Meter {
		// The meter owns the terminal until the user quits.
		err := tui.StartMeterUI(build.GetInfo().Name, p.Intensity, func() string {
			return p.State().String()
		})
		if err != nil {
			applog.Errorf("Meter: %v", err)
		}
	} else {
		fmt.Printf("Playing %s  (band %.0f-%.0f Hz, bridge %s)  Ctrl+C to stop.\n",
			cfg.Source.Path, cfg.Band.MinHz, cfg.Band.MaxHz, cfg.Haptics.Bridge)
		<-done
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := p.Close(); err != nil {
		applog.Errorf("Error closing pipeline: %v", err)
	}
}

// buildActuator constructs the bridge named by the configuration.
func buildActuator(cfg *config.Config) haptics.Actuator {
	switch cfg.Haptics.Bridge {
	case "udp":
		return haptics.NewUDPBridge(cfg.Haptics.UDPAddress)
	case "ws":
		return haptics.NewWSBridge(cfg.Haptics.WSPort)
	default:
		return haptics.Nop{}
	}
}
