//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using a PortAudio callback stream
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	opts    Options
	stream  *portaudio.Stream
	queue   *Queue
	events  chan<- Event
	scratch []byte
	ready   bool
	mu      sync.Mutex
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Device {
	return &PortAudio{opts: opts}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio and starts a callback stream
func (p *PortAudio) Open(format audio.Format, events chan<- Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return ErrAlreadyOpen
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	queue := NewQueue(events)
	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), p.opts.FramesPerBuffer, func(out []int16) {
		need := len(out) * 2
		if cap(p.scratch) < need {
			p.scratch = make([]byte, need)
		}
		buf := p.scratch[:need]
		_, _ = queue.Read(buf)
		for i := range out {
			out[i] = audio.Int16LE(buf, i)
		}
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	p.queue = queue
	p.events = events
	if err := start(events, stream.Start); err != nil {
		stream.Close()
		portaudio.Terminate()
		p.stream = nil
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.ready = true

	log.Printf("Audio output initialized: %s (portaudio)", format)

	return nil
}

// Submit queues a buffer for playback
func (p *PortAudio) Submit(index int, data []byte) error {
	p.mu.Lock()
	q := p.queue
	ready := p.ready
	p.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	return q.Push(index, data)
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return nil
	}
	p.ready = false
	dropped := p.queue.Pending()
	p.queue.Close()

	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}

	log.Printf("Audio output closed (portaudio), %d buffers played, %d dropped, %d underruns",
		p.queue.Played(), dropped, p.queue.Underruns())
	post(p.events, Event{Kind: EventClosed, Index: -1})
	return portaudio.Terminate()
}
