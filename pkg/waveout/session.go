// ABOUTME: Audio session driving the buffer ring from device events
// ABOUTME: Single consumer: refills completed buffers round-robin and resubmits them
package waveout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/Sendspin/waveout/pkg/audio/output"
	"github.com/Sendspin/waveout/pkg/audio/tone"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	DefaultBufferCount     = 4
	DefaultFramesPerBuffer = 512
	DefaultSubmitRetries   = 3
	DefaultRetryBackoff    = 2 * time.Millisecond
)

var (
	ErrSubmit               = errors.New("buffer submission failed")
	ErrUnexpectedCompletion = errors.New("unexpected buffer completion")
	ErrSessionClosed        = errors.New("session closed")
	ErrNotOpened            = errors.New("device not opened")
	ErrStalled              = errors.New("no buffer queued at the device")
)

// Config holds session configuration
type Config struct {
	// Format is the device format (default: audio.DefaultFormat)
	Format audio.Format

	// BufferCount is the number of buffers in the ring (default: 4)
	BufferCount int

	// FramesPerBuffer is the size of each buffer in frames (default: 512)
	FramesPerBuffer int

	// Generator produces the samples (default: 440 Hz at 10% amplitude)
	Generator *tone.Generator

	// SubmitRetries is how many times a rejected submission is retried.
	// Negative disables retries.
	SubmitRetries int

	// RetryBackoff is the delay before the first retry, doubled each attempt
	RetryBackoff time.Duration

	// OnError is called from Run for errors that do not stop the session
	OnError func(error)
}

// Stats contains session counters. Safe to read while Run is active.
type Stats struct {
	SessionID      string
	Completions    uint64
	Refills        uint64
	Submits        uint64
	SubmitFailures uint64
	SampleIndex    uint64
	CursorPosition uint64
}

// Session owns the buffer pool, the round-robin cursor and the tone
// generator. All of that state is touched only by the goroutine calling
// Handle (normally Run), which makes it the single writer.
type Session struct {
	id     uuid.UUID
	config Config
	device output.Device
	gen    *tone.Generator

	pool   *Pool
	cursor *Cursor
	closed bool

	completions    atomic.Uint64
	refills        atomic.Uint64
	submits        atomic.Uint64
	submitFailures atomic.Uint64
	sampleIndex    atomic.Uint64
	cursorPos      atomic.Uint64
}

// NewSession creates a session that feeds device
func NewSession(device output.Device, config Config) *Session {
	if config.Format == (audio.Format{}) {
		config.Format = audio.DefaultFormat
	}
	if config.BufferCount == 0 {
		config.BufferCount = DefaultBufferCount
	}
	if config.FramesPerBuffer == 0 {
		config.FramesPerBuffer = DefaultFramesPerBuffer
	}
	if config.SubmitRetries == 0 {
		config.SubmitRetries = DefaultSubmitRetries
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = DefaultRetryBackoff
	}

	gen := config.Generator
	if gen == nil {
		gen = tone.NewDefault(config.Format)
	}

	return &Session{
		id:     uuid.New(),
		config: config,
		device: device,
		gen:    gen,
	}
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id.String()
}

// EventCapacity is the channel size that lets the device post every
// possible outstanding notification without blocking
func (s *Session) EventCapacity() int {
	return s.config.BufferCount + 2
}

// Pool returns the buffer pool, nil before the device opened or after
// Release. Not safe to call while Run is active.
func (s *Session) Pool() *Pool {
	return s.pool
}

// Run consumes device events until the device closes, the channel is
// closed, or ctx is canceled. Submission errors are reported through
// OnError and do not stop the loop unless no buffer is left queued at the
// device, in which case Run returns ErrStalled.
func (s *Session) Run(ctx context.Context, events <-chan output.Event) error {
	log.Printf("Session %s: waiting for device events (%d x %d frames, %s, %gHz tone)",
		s.ID(), s.config.BufferCount, s.config.FramesPerBuffer, s.config.Format, s.gen.Frequency())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := s.Handle(ctx, ev); err != nil {
				if errors.Is(err, ErrInvalidPool) || errors.Is(err, ErrSessionClosed) || errors.Is(err, ErrStalled) {
					return err
				}
				s.reportError(err)
			}
			if s.closed {
				log.Printf("Session %s: device closed after %d refills", s.ID(), s.refills.Load())
				return nil
			}
		}
	}
}

// Handle applies one device event
func (s *Session) Handle(ctx context.Context, ev output.Event) error {
	if s.closed {
		return ErrSessionClosed
	}

	switch ev.Kind {
	case output.EventOpened:
		return s.opened(ctx)
	case output.EventBufferDone:
		return s.bufferDone(ctx, ev.Index)
	case output.EventClosed:
		s.closed = true
		return nil
	default:
		return fmt.Errorf("unknown device event: %s", ev.Kind)
	}
}

// opened allocates (or clears) the pool and submits every buffer once,
// in index order, as silence
func (s *Session) opened(ctx context.Context) error {
	if ch := s.gen.Channels(); ch != s.config.Format.Channels {
		return fmt.Errorf("%w: generator writes %d channels, format has %d",
			ErrInvalidPool, ch, s.config.Format.Channels)
	}
	if s.pool == nil {
		pool, err := NewPool(s.config.BufferCount, s.config.FramesPerBuffer, s.config.Format)
		if err != nil {
			return err
		}
		s.pool = pool
	} else {
		s.pool.Reset()
	}
	s.cursor = NewCursor(s.pool.Len())
	s.cursorPos.Store(0)

	var errs []error
	for i := 0; i < s.pool.Len(); i++ {
		if err := s.submit(ctx, i); err != nil {
			// Keep the silence; it is resubmitted when the cursor gets here
			s.pool.Slot(i).State = SlotFilled
			errs = append(errs, err)
		}
	}

	log.Printf("Session %s: primed %d buffers of %d bytes",
		s.ID(), s.pool.Len()-len(errs), s.pool.BufferBytes())

	return s.checkStalled(errors.Join(errs...))
}

// bufferDone marks index as completed, then refills and resubmits buffers
// in strict cursor order. A completion that arrives ahead of the cursor is
// held until the cursor reaches it, so a queued buffer is never refilled
// and the waveform stays continuous.
func (s *Session) bufferDone(ctx context.Context, index int) error {
	if s.pool == nil {
		return ErrNotOpened
	}
	if index < 0 || index >= s.pool.Len() {
		return fmt.Errorf("%w: index %d out of range", ErrUnexpectedCompletion, index)
	}

	slot := s.pool.Slot(index)
	if slot.State != SlotQueued {
		return fmt.Errorf("%w: buffer %d is %s", ErrUnexpectedCompletion, index, slot.State)
	}
	slot.State = SlotCompleted
	s.completions.Add(1)

	for {
		idx := s.cursor.Peek()
		next := s.pool.Slot(idx)

		switch next.State {
		case SlotCompleted:
			s.gen.SynthesizeBytes(next.Data, s.pool.Frames())
			next.State = SlotFilled
			n := s.refills.Add(1)
			s.sampleIndex.Store(s.gen.Index())
			if n <= 5 {
				log.Printf("Session %s: refill #%d into buffer %d, sample index %d",
					s.ID(), n, idx, s.gen.Index())
			}
		case SlotFilled:
			// contents survived a failed submission
		default:
			return nil
		}

		if err := s.submit(ctx, idx); err != nil {
			return s.checkStalled(err)
		}
		s.cursor.Advance()
		s.cursorPos.Store(s.cursor.Position())
	}
}

// submit hands buffer i to the device, retrying with exponential backoff.
// A closed or unopened device is not retried.
func (s *Session) submit(ctx context.Context, i int) error {
	slot := s.pool.Slot(i)

	err := backoff.Retry(func() error {
		err := s.device.Submit(i, slot.Data)
		if errors.Is(err, output.ErrClosed) || errors.Is(err, output.ErrNotOpen) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.retryPolicy(), ctx))
	if err != nil {
		s.submitFailures.Add(1)
		return fmt.Errorf("%w: buffer %d: %w", ErrSubmit, i, err)
	}

	slot.State = SlotQueued
	s.submits.Add(1)
	return nil
}

// retryPolicy doubles RetryBackoff after every rejected attempt, up to
// SubmitRetries retries
func (s *Session) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.config.RetryBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	retries := max(s.config.SubmitRetries, 0)
	return backoff.WithMaxRetries(policy, uint64(retries))
}

// checkStalled upgrades a submission error to ErrStalled when the device
// holds no buffer. No completion can arrive then, so nothing would ever
// retry the filled slots.
func (s *Session) checkStalled(err error) error {
	if err == nil || s.pool.Count(SlotQueued) > 0 {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStalled, err)
}

// Release drops the buffer pool. Call after Run has returned.
func (s *Session) Release() {
	s.pool = nil
	s.cursor = nil
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() Stats {
	return Stats{
		SessionID:      s.ID(),
		Completions:    s.completions.Load(),
		Refills:        s.refills.Load(),
		Submits:        s.submits.Load(),
		SubmitFailures: s.submitFailures.Load(),
		SampleIndex:    s.sampleIndex.Load(),
		CursorPosition: s.cursorPos.Load(),
	}
}

func (s *Session) reportError(err error) {
	if s.config.OnError != nil {
		s.config.OnError(err)
		return
	}
	log.Printf("Session %s: %v", s.ID(), err)
}
