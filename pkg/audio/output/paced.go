// ABOUTME: Software devices that consume buffers without sound hardware
// ABOUTME: Null discards, WAV captures to file; both complete buffers at the real-time rate
package output

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Sendspin/waveout/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// sink consumes the bytes of each completed buffer
type sink interface {
	write(data []byte) error
	close() error
}

// Paced is a device whose playback clock is a timer instead of hardware.
// Buffers are consumed strictly in submission order.
type Paced struct {
	name    string
	opts    Options
	newSink func(format audio.Format) (sink, error)

	format  audio.Format
	sink    sink
	events  chan<- Event
	submits chan queuedBuffer
	done    chan struct{}
	wg      sync.WaitGroup
	ready   bool
	mu      sync.Mutex

	written uint64
}

// NewNull creates a device that discards audio
func NewNull(opts Options) Device {
	return &Paced{
		name: "null",
		opts: opts,
		newSink: func(audio.Format) (sink, error) {
			return discard{}, nil
		},
	}
}

// NewWAV creates a device that records audio to opts.WAVPath
func NewWAV(opts Options) Device {
	return &Paced{
		name: "wav",
		opts: opts,
		newSink: func(format audio.Format) (sink, error) {
			return newWAVSink(opts.WAVPath, format)
		},
	}
}

func (p *Paced) Name() string { return p.name }

// Open starts the playback clock
func (p *Paced) Open(format audio.Format, events chan<- Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return ErrAlreadyOpen
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	s, err := p.newSink(format)
	if err != nil {
		return fmt.Errorf("failed to open %s output: %w", p.name, err)
	}

	p.format = format
	p.sink = s
	p.events = events
	p.submits = make(chan queuedBuffer, 64)
	p.done = make(chan struct{})
	p.written = 0
	p.ready = true

	_ = start(events, func() error {
		p.wg.Add(1)
		go p.run(p.submits, p.done)
		return nil
	})

	log.Printf("Audio output initialized: %s (%s)", format, p.name)

	return nil
}

// Submit queues a buffer for playback
func (p *Paced) Submit(index int, data []byte) error {
	p.mu.Lock()
	ready := p.ready
	submits, done := p.submits, p.done
	p.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}

	select {
	case submits <- queuedBuffer{index: index, data: data}:
		return nil
	case <-done:
		return ErrClosed
	}
}

// run plays buffers in order, sleeping for each buffer's duration unless unpaced
func (p *Paced) run(submits <-chan queuedBuffer, done <-chan struct{}) {
	defer p.wg.Done()

	blockAlign := p.format.BlockAlign()
	next := time.Now()

	for {
		var buf queuedBuffer
		select {
		case buf = <-submits:
		case <-done:
			return
		}

		if !p.opts.Unpaced {
			frames := len(buf.data) / blockAlign
			next = next.Add(bufferDuration(p.format, frames))
			if wait := time.Until(next); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-timer.C:
				case <-done:
					timer.Stop()
					return
				}
			} else {
				next = time.Now()
			}
		}

		if err := p.sink.write(buf.data); err != nil {
			log.Printf("Error writing buffer %d to %s output: %v", buf.index, p.name, err)
		}

		p.mu.Lock()
		p.written += uint64(len(buf.data))
		p.mu.Unlock()

		post(p.events, Event{Kind: EventBufferDone, Index: buf.index})
	}
}

// Close stops the clock, flushes the sink and posts EventClosed
func (p *Paced) Close() error {
	p.mu.Lock()
	if !p.ready {
		p.mu.Unlock()
		return nil
	}
	p.ready = false
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()

	err := p.sink.close()
	log.Printf("Audio output closed (%s), %d bytes written", p.name, p.BytesWritten())
	post(p.events, Event{Kind: EventClosed, Index: -1})

	return err
}

// BytesWritten returns the number of bytes consumed since Open
func (p *Paced) BytesWritten() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

type discard struct{}

func (discard) write([]byte) error { return nil }
func (discard) close() error       { return nil }

// wavSink encodes buffers into a WAV file
type wavSink struct {
	file    *os.File
	encoder *wav.Encoder
	format  *goaudio.Format
}

func newWAVSink(path string, format audio.Format) (*wavSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &wavSink{
		file:    f,
		encoder: wav.NewEncoder(f, format.SampleRate, format.BitDepth, format.Channels, 1),
		format: &goaudio.Format{
			SampleRate:  format.SampleRate,
			NumChannels: format.Channels,
		},
	}, nil
}

func (s *wavSink) write(data []byte) error {
	buf := &goaudio.IntBuffer{
		Format:         s.format,
		Data:           make([]int, len(data)/2),
		SourceBitDepth: 16,
	}
	for i := range buf.Data {
		buf.Data[i] = int(audio.Int16LE(data, i))
	}
	return s.encoder.Write(buf)
}

func (s *wavSink) close() error {
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return s.file.Close()
}
