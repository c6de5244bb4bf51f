// ABOUTME: Beep speaker audio output implementation
// ABOUTME: Adapts the buffer queue to a beep.Streamer played by the global speaker
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Beep output implementation using the beep speaker package
type Beep struct {
	opts   Options
	queue  *Queue
	events chan<- Event
	ready  bool
	mu     sync.Mutex
}

// NewBeep creates a new Beep output
func NewBeep(opts Options) Device {
	return &Beep{opts: opts}
}

func (b *Beep) Name() string { return "beep" }

// Open initializes the speaker and starts streaming the queue
func (b *Beep) Open(format audio.Format, events chan<- Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ready {
		return ErrAlreadyOpen
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	bufferSize := b.opts.FramesPerBuffer
	if bufferSize <= 0 {
		bufferSize = format.SampleRate / 100
	}
	if err := speaker.Init(beep.SampleRate(format.SampleRate), bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	b.queue = NewQueue(events)
	b.events = events
	_ = start(events, func() error {
		speaker.Play(&queueStreamer{queue: b.queue})
		return nil
	})
	b.ready = true

	log.Printf("Audio output initialized: %s (beep)", format)

	return nil
}

// Submit queues a buffer for playback
func (b *Beep) Submit(index int, data []byte) error {
	b.mu.Lock()
	q := b.queue
	ready := b.ready
	b.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	return q.Push(index, data)
}

// Close stops the speaker
func (b *Beep) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return nil
	}

	speaker.Clear()
	dropped := b.queue.Pending()
	b.queue.Close()
	speaker.Close()
	b.ready = false

	log.Printf("Audio output closed (beep), %d buffers played, %d dropped, %d underruns",
		b.queue.Played(), dropped, b.queue.Underruns())
	post(b.events, Event{Kind: EventClosed, Index: -1})

	return nil
}

// queueStreamer converts interleaved stereo 16-bit bytes to beep frames
type queueStreamer struct {
	queue   *Queue
	scratch []byte
	err     error
}

func (s *queueStreamer) Stream(samples [][2]float64) (int, bool) {
	need := len(samples) * 4
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	buf := s.scratch[:need]

	if _, err := s.queue.Read(buf); err != nil {
		return 0, false
	}

	for i := range samples {
		samples[i][0] = audio.SampleToFloat(audio.Int16LE(buf, i*2))
		samples[i][1] = audio.SampleToFloat(audio.Int16LE(buf, i*2+1))
	}
	return len(samples), true
}

func (s *queueStreamer) Err() error {
	return s.err
}
