// ABOUTME: Audio device interface definition
// ABOUTME: waveOut-style contract: open with format + event sink, submit indexed buffers
package output

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Sendspin/waveout/pkg/audio"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotOpen           = errors.New("device not open")
	ErrClosed            = errors.New("device closed")
	ErrAlreadyOpen       = errors.New("device already open")
	ErrUnknownBackend    = errors.New("unknown output backend")
)

// EventKind identifies a device lifecycle notification
type EventKind int

const (
	// EventOpened is posted once when the device session starts
	EventOpened EventKind = iota
	// EventBufferDone is posted when a submitted buffer has been consumed
	EventBufferDone
	// EventClosed is posted once when the device is closed
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventBufferDone:
		return "buffer-done"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a notification from the device to its single consumer
type Event struct {
	Kind EventKind
	// Index is the submitted buffer index for EventBufferDone, -1 otherwise
	Index int
}

// Device represents an audio output device driven by indexed buffers
type Device interface {
	// Open starts the device with the given format. Notifications are posted
	// on events, starting with EventOpened.
	Open(format audio.Format, events chan<- Event) error

	// Submit queues buffer index for playback. The device reads data
	// without modifying it and reports EventBufferDone(index) once done.
	// The caller must not touch data until then.
	Submit(index int, data []byte) error

	// Close stops playback and posts EventClosed
	Close() error

	// Name returns the backend name
	Name() string
}

// Options configures device construction
type Options struct {
	// FramesPerBuffer is the size of one submitted buffer in frames
	FramesPerBuffer int

	// WAVPath is the capture file for the wav backend
	WAVPath string

	// Unpaced makes the null and wav backends complete buffers as fast as
	// they arrive instead of at the real-time rate
	Unpaced bool
}

// Backends lists the names accepted by New
func Backends() []string {
	return []string{"oto", "malgo", "beep", "portaudio", "wav", "null"}
}

// New creates the named backend
func New(backend string, opts Options) (Device, error) {
	switch strings.ToLower(backend) {
	case "", "oto":
		return NewOto(opts), nil
	case "malgo":
		return NewMalgo(opts), nil
	case "beep":
		return NewBeep(opts), nil
	case "portaudio":
		return NewPortAudio(opts), nil
	case "wav":
		if opts.WAVPath == "" {
			return nil, fmt.Errorf("wav backend requires an output path")
		}
		return NewWAV(opts), nil
	case "null":
		return NewNull(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
}

// CheckFormat rejects anything but interleaved signed 16-bit PCM.
// Only stereo is accepted; the tone is mono duplicated to both channels.
func CheckFormat(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format.BitDepth != 16 {
		return fmt.Errorf("%w: %d-bit (supported: 16)", ErrUnsupportedFormat, format.BitDepth)
	}
	if format.Channels != 2 {
		return fmt.Errorf("%w: %d channels (supported: 2)", ErrUnsupportedFormat, format.Channels)
	}
	return nil
}

// start runs the platform start hook and announces the device only once it
// is running, so a failed Open never leaves EventOpened behind
func start(events chan<- Event, run func() error) error {
	if err := run(); err != nil {
		return err
	}
	post(events, Event{Kind: EventOpened, Index: -1})
	return nil
}

// post delivers ev without blocking the audio thread. The channel is sized
// for every outstanding buffer plus the open and close notifications, so a
// full channel means the consumer has gone away.
func post(events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
		log.Printf("Warning: dropped %s event (index %d), consumer not keeping up", ev.Kind, ev.Index)
	}
}
