// Package main provides the vinylbox player entry point.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/ohmeg/vinylbox/internal/app/notification"
	"github.com/ohmeg/vinylbox/internal/app/playback"
	"github.com/ohmeg/vinylbox/internal/app/player"
	"github.com/ohmeg/vinylbox/internal/domain/playlist"
	"github.com/ohmeg/vinylbox/internal/domain/track"
	"github.com/ohmeg/vinylbox/internal/infra/audio"
	"github.com/ohmeg/vinylbox/internal/infra/config"
	"github.com/ohmeg/vinylbox/internal/infra/logger"
	"github.com/ohmeg/vinylbox/internal/infra/probe"
)

var (
	app        = kingpin.New("vinylbox", "vinylbox local audio player")
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// play command (default)
	playCmd   = app.Command("play", "Start the player").Default()
	playPaths = playCmd.Arg("paths", "Audio files or folders to enqueue").Strings()

	// formats command
	formatsCmd = app.Command("formats", "List supported audio formats and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == formatsCmd.FullCommand() {
		printFormats()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(mergeLogConfig(cfg, *verbose, *logfile)); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	if *configPath != "" {
		zlog.Info().Msgf("Loaded config from %s", *configPath)
	}

	if err := run(cfg, *playPaths); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default()
	}
	return config.Load(*configPath)
}

// mergeLogConfig builds the logger configuration from the config file, with
// command-line flags taking precedence.
func mergeLogConfig(cfg *config.Config, verbose bool, logfile string) logger.Config {
	lc := logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
	}
	if verbose {
		lc.Level = "debug"
	}
	if logfile != "" {
		lc.Output = logfile
	}
	return lc
}

// run wires the core and drives it until the REPL quits or a signal
// arrives. A separate function ensures defers fire on error returns.
func run(cfg *config.Config, paths []string) error {
	backend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to create audio backend: %w", err)
	}
	defer backend.Stop()

	probeChain := probe.NewChain(probe.NewMP3Prober(), probe.NewDecoderProber())
	clock := playback.NewClock(backend, probeChain)
	store := playlist.NewStore()
	events := notification.NewManager()
	defer events.Close()

	p := player.New(store, clock, backend, events)
	p.SetVolume(cfg.Player.InitialVolume)

	events.Subscribe(notification.SinkFunc(printEvent))

	for _, path := range paths {
		enqueue(p, path)
	}

	// Host tick loop: the core holds no timer of its own.
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Player.TickRateHz))
	defer ticker.Stop()
	stopTicks := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				p.Tick()
			case <-stopTicks:
				return
			}
		}
	}()
	defer close(stopTicks)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	replDone := make(chan error, 1)
	go func() {
		replDone <- runREPL(p)
	}()

	select {
	case sig := <-sigCh:
		zlog.Info().Msgf("Received signal %v, shutting down", sig)
		p.Stop()
		return nil
	case err := <-replDone:
		p.Stop()
		return err
	}
}

func newBackend(cfg *config.Config) (playback.Backend, error) {
	switch cfg.Audio.Backend {
	case "beep":
		return audio.New(cfg.Audio.Settings)
	default:
		return nil, errors.Newf("unsupported audio backend: %s", cfg.Audio.Backend)
	}
}

// enqueue adds a file or, recursively, a folder.
func enqueue(p *player.Player, path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Skipping %s: %v\n", path, err)
		return
	}
	if info.IsDir() {
		added, err := p.AddFolder(path)
		if err != nil {
			fmt.Printf("Error adding folder %s: %v\n", path, err)
			return
		}
		fmt.Printf("Added %d track(s) from %s\n", added, path)
		return
	}
	if added := p.AddTracks([]string{path}); added == 0 {
		fmt.Printf("Skipping %s: unsupported format\n", path)
	}
}

func printEvent(e playback.Event) error {
	switch e.Type {
	case playback.EventTrackStarted:
		fmt.Printf("▶️  Playing: %s\n", e.Track)
	case playback.EventTrackEnded:
		fmt.Printf("⏹  Finished: %s\n", e.Track)
	case playback.EventLoadFailed:
		fmt.Printf("⚠️  Could not load %s: %v\n", e.Track, e.Err)
	case playback.EventStateChanged:
		switch e.Phase {
		case playback.PhasePaused:
			fmt.Printf("⏸  Paused: %s\n", e.Track)
		case playback.PhaseStopped:
			fmt.Println("⏹  Stopped")
		}
	}
	return nil
}

func printFormats() {
	fmt.Println("Supported audio formats:")
	for _, ext := range track.SupportedExtensions() {
		fmt.Printf("  %s\n", ext)
	}
}
