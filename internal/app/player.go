// ABOUTME: Tone player lifecycle orchestration
// ABOUTME: Opens the device, runs the buffer session, waits for quit, tears down
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Sendspin/waveout/internal/ui"
	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/Sendspin/waveout/pkg/audio/output"
	"github.com/Sendspin/waveout/pkg/waveout"
)

// Process exit codes
const (
	ExitOK            = 0
	ExitDeviceFailure = 1
)

// ErrOpenFailed marks a failure reported by Player.Failure that happened
// while opening the device
var ErrOpenFailed = errors.New("audio device open failed")

const (
	OpenFailedMessage = "Unable to open the audio interface. Terminating."
	playingMessage    = "You should hear a sine wave now. Press Escape to quit."
)

// Config holds player configuration
type Config struct {
	// Format is the device format (default: audio.DefaultFormat)
	Format audio.Format

	// SubmitRetries and RetryBackoff are passed to the session; 0 retries
	// disables retrying
	SubmitRetries int
	RetryBackoff  time.Duration

	// StatsInterval is how often OnStatus receives counters (default: 500ms)
	StatsInterval time.Duration

	// CloseTimeout bounds the wait for the device's close notification
	// (default: 2s)
	CloseTimeout time.Duration

	// Stdout receives the status lines (default: os.Stdout)
	Stdout io.Writer

	// OnStatus is called with state and statistics updates
	OnStatus func(ui.StatusMsg)
}

// Player represents the main tone player application
type Player struct {
	config  Config
	device  output.Device
	session *waveout.Session
	failure error
}

// New creates a new player for device
func New(device output.Device, config Config) *Player {
	if config.Format == (audio.Format{}) {
		config.Format = audio.DefaultFormat
	}
	if config.StatsInterval == 0 {
		config.StatsInterval = 500 * time.Millisecond
	}
	if config.CloseTimeout == 0 {
		config.CloseTimeout = 2 * time.Second
	}
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}

	retries := config.SubmitRetries
	if retries == 0 {
		retries = -1
	}

	p := &Player{
		config: config,
		device: device,
	}
	p.session = waveout.NewSession(device, waveout.Config{
		Format:        config.Format,
		SubmitRetries: retries,
		RetryBackoff:  config.RetryBackoff,
		OnError: func(err error) {
			log.Printf("Playback error: %v", err)
			p.status(ui.StatusMsg{Error: err.Error()})
		},
	})

	return p
}

// Session returns the buffer session driven by this player
func (p *Player) Session() *waveout.Session {
	return p.session
}

// Failure returns why the last Run ended with ExitDeviceFailure, nil
// otherwise. Open failures wrap ErrOpenFailed.
func (p *Player) Failure() error {
	return p.failure
}

// Run plays until quit is signaled or ctx is done and returns the process
// exit code. A device that fails to open yields ExitDeviceFailure without
// any buffer being submitted.
func (p *Player) Run(ctx context.Context, quit <-chan struct{}) int {
	events := make(chan output.Event, p.session.EventCapacity())
	p.failure = nil

	log.Printf("Opening %s output: %s (%d bytes/s), %d x %d frames",
		p.device.Name(), p.config.Format, p.config.Format.AvgBytesPerSec(),
		waveout.DefaultBufferCount, waveout.DefaultFramesPerBuffer)

	if err := p.device.Open(p.config.Format, events); err != nil {
		log.Printf("Failed to open audio device: %v", err)
		p.failure = fmt.Errorf("%w: %w", ErrOpenFailed, err)
		fmt.Fprintln(p.config.Stdout, OpenFailedMessage)
		p.status(ui.StatusMsg{State: "failed", Error: err.Error()})
		return ExitDeviceFailure
	}

	fmt.Fprintln(p.config.Stdout, playingMessage)
	p.status(ui.StatusMsg{
		Backend:         p.device.Name(),
		Format:          p.config.Format.String(),
		SessionID:       p.session.ID(),
		State:           "playing",
		BufferCount:     waveout.DefaultBufferCount,
		FramesPerBuffer: waveout.DefaultFramesPerBuffer,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionDone := make(chan error, 1)
	go func() {
		sessionDone <- p.session.Run(runCtx, events)
	}()
	go p.statsLoop(runCtx)

	code := ExitOK
	select {
	case <-quit:
		log.Printf("Received quit request")
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	case err := <-sessionDone:
		log.Printf("Session ended unexpectedly: %v", err)
		fmt.Fprintf(p.config.Stdout, "Playback stopped: %v\n", err)
		p.failure = err
		p.status(ui.StatusMsg{State: "failed", Error: err.Error()})
		code = ExitDeviceFailure
		sessionDone = nil
	}

	p.status(ui.StatusMsg{State: "stopping"})
	if err := p.device.Close(); err != nil {
		log.Printf("Error closing audio device: %v", err)
	}

	if sessionDone != nil {
		select {
		case err := <-sessionDone:
			if err != nil {
				log.Printf("Session stopped: %v", err)
			}
		case <-time.After(p.config.CloseTimeout):
			log.Printf("Device did not report close within %v", p.config.CloseTimeout)
			cancel()
			<-sessionDone
		}
	}

	stats := p.session.Stats()
	log.Printf("Playback stopped: %d refills, %d submits, %d failed, sample index %d",
		stats.Refills, stats.Submits, stats.SubmitFailures, stats.SampleIndex)
	p.session.Release()

	return code
}

// statsLoop periodically forwards session statistics
func (p *Player) statsLoop(ctx context.Context) {
	if p.config.OnStatus == nil {
		return
	}

	ticker := time.NewTicker(p.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := p.session.Stats()
			p.status(ui.StatusMsg{
				Refills:        stats.Refills,
				Submits:        stats.Submits,
				SubmitFailures: stats.SubmitFailures,
				SampleIndex:    stats.SampleIndex,
			})
		}
	}
}

func (p *Player) status(msg ui.StatusMsg) {
	if p.config.OnStatus != nil {
		p.config.OnStatus(msg)
	}
}
