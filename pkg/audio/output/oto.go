// ABOUTME: Oto-based audio output implementation
// ABOUTME: Streams the buffer queue through a persistent oto player
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	opts   Options
	otoCtx *oto.Context
	player *oto.Player
	queue  *Queue
	events chan<- Event
	format audio.Format
	ready  bool
	mu     sync.Mutex
}

// NewOto creates a new Oto output
func NewOto(opts Options) Device {
	return &Oto{opts: opts}
}

func (o *Oto) Name() string { return "oto" }

// Open initializes the output device
func (o *Oto) Open(format audio.Format, events chan<- Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ready {
		return ErrAlreadyOpen
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	// oto allows a single context per process, so it is created once and
	// resumed on reopen
	if o.otoCtx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferDuration(format, o.opts.FramesPerBuffer),
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-readyChan
		o.otoCtx = ctx
	} else if err := o.otoCtx.Resume(); err != nil {
		return fmt.Errorf("failed to resume oto context: %w", err)
	}

	o.events = events
	o.format = format
	o.queue = NewQueue(events)

	// Persistent player pulling from the queue; keep its internal buffer to
	// one device buffer so completions track playback closely
	o.player = o.otoCtx.NewPlayer(o.queue)
	if o.opts.FramesPerBuffer > 0 {
		o.player.SetBufferSize(format.BufferBytes(o.opts.FramesPerBuffer))
	}
	_ = start(events, func() error {
		o.player.Play()
		return nil
	})
	o.ready = true

	log.Printf("Audio output initialized: %s (oto)", format)

	return nil
}

// Submit queues a buffer for playback
func (o *Oto) Submit(index int, data []byte) error {
	o.mu.Lock()
	q := o.queue
	ready := o.ready
	o.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	return q.Push(index, data)
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil
	}

	dropped := o.queue.Pending()
	o.queue.Close()
	var firstErr error
	if err := o.player.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close oto player: %w", err)
	}
	o.player = nil
	if err := o.otoCtx.Suspend(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to suspend oto context: %w", err)
	}
	o.ready = false

	log.Printf("Audio output closed (oto), %d buffers played, %d dropped, %d underruns",
		o.queue.Played(), dropped, o.queue.Underruns())
	post(o.events, Event{Kind: EventClosed, Index: -1})

	return firstErr
}

// bufferDuration returns the playback time of one buffer
func bufferDuration(format audio.Format, frames int) time.Duration {
	if frames <= 0 || format.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(format.SampleRate)
}
