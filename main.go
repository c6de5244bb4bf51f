// ABOUTME: Entry point for the waveout tone player
// ABOUTME: Parses CLI flags, opens the audio device, and plays a 440Hz tone until Escape
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sendspin/waveout/internal/app"
	"github.com/Sendspin/waveout/internal/config"
	"github.com/Sendspin/waveout/internal/console"
	"github.com/Sendspin/waveout/internal/ui"
	"github.com/Sendspin/waveout/internal/version"
	"github.com/Sendspin/waveout/pkg/audio/output"
	"github.com/Sendspin/waveout/pkg/waveout"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile   = flag.String("config", "", "Config file (yaml, toml or json)")
	backend      = flag.String("backend", "oto", "Output backend: oto, malgo, beep, portaudio, wav, null")
	logFile      = flag.String("log-file", "waveout.log", "Log file path")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	wavFile      = flag.String("wav-file", "waveout.wav", "Capture file for the wav backend")
	retries      = flag.Int("retries", waveout.DefaultSubmitRetries, "Buffer submission retries (0 disables)")
	retryBackoff = flag.Duration("retry-backoff", waveout.DefaultRetryBackoff, "Delay before the first submission retry")
)

// flagKeys maps command-line flags to config keys
var flagKeys = map[string]string{
	"backend":       "backend",
	"log-file":      "logfile",
	"no-tui":        "notui",
	"wav-file":      "wavfile",
	"retries":       "retries",
	"retry-backoff": "retrybackoff",
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	// Only flags the operator set explicitly override file and environment
	overrides := make(map[string]any)
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.(flag.Getter).Get()
		}
	})

	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return app.ExitDeviceFailure
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		return app.ExitDeviceFailure
	}
	defer func() { _ = f.Close() }()

	useTUI := !cfg.NoTUI
	stdout := io.Writer(os.Stdout)

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		restore, err := console.Raw(os.Stdin)
		if err != nil {
			log.Printf("Could not switch terminal to raw mode: %v", err)
		}
		defer restore()

		// Streaming logs mode: log to both stdout and file
		stdout = console.NewlineWriter(os.Stdout)
		log.SetOutput(io.MultiWriter(stdout, f))
	}

	log.Printf("Starting %s %s by %s (backend: %s)", version.Product, version.Version, version.Manufacturer, cfg.Backend)

	device, err := output.New(cfg.Backend, output.Options{
		FramesPerBuffer: waveout.DefaultFramesPerBuffer,
		WAVPath:         cfg.WAVFile,
	})
	if err != nil {
		log.Printf("Failed to create output: %v", err)
		fmt.Fprintln(stdout, app.OpenFailedMessage)
		return app.ExitDeviceFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// TUI setup
	var tuiProg *tea.Program
	quit := make(chan struct{}, 1)

	if useTUI {
		ctrl := ui.NewControl()
		quit = ctrl.Quit
		tuiProg, err = ui.Run(ctrl)
		if err != nil {
			log.Printf("Failed to start TUI: %v", err)
			return app.ExitDeviceFailure
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			// The TUI is gone; nothing else can deliver Escape
			select {
			case ctrl.Quit <- struct{}{}:
			default:
			}
		}()
		stdout = log.Writer()
	} else {
		go waitForEscape(ctx, quit)
	}

	player := app.New(device, app.Config{
		SubmitRetries: cfg.SubmitRetries,
		RetryBackoff:  cfg.RetryBackoff,
		Stdout:        stdout,
		OnStatus: func(msg ui.StatusMsg) {
			if tuiProg != nil {
				tuiProg.Send(msg)
			}
		},
	})

	code := player.Run(ctx, quit)

	if tuiProg != nil {
		tuiProg.Quit()
		tuiProg.Wait()
		// The player wrote to the log while the TUI owned the screen
		if err := player.Failure(); errors.Is(err, app.ErrOpenFailed) {
			fmt.Println(app.OpenFailedMessage)
		} else if err != nil {
			fmt.Printf("Playback stopped: %v\n", err)
		}
	}

	log.Printf("Player stopped (exit code %d)", code)
	return code
}

// waitForEscape polls stdin for the Escape key
func waitForEscape(ctx context.Context, quit chan<- struct{}) {
	err := console.Wait(ctx, os.Stdin)
	switch {
	case err == nil:
		log.Printf("Escape pressed")
		quit <- struct{}{}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, io.EOF):
		log.Printf("Standard input closed; stop with SIGINT or SIGTERM")
	default:
		log.Printf("Key input error: %v", err)
	}
}
