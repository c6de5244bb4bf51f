// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo; the device data callback drains the buffer queue
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	opts     Options
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	queue    *Queue
	events   chan<- Event
	format   audio.Format
	ready    bool
	mu       sync.Mutex
}

// NewMalgo creates a new Malgo output
func NewMalgo(opts Options) Device {
	return &Malgo{opts: opts}
}

func (m *Malgo) Name() string { return "malgo" }

// Open initializes the output device with specified format
func (m *Malgo) Open(format audio.Format, events chan<- Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return ErrAlreadyOpen
	}
	if err := CheckFormat(format); err != nil {
		return err
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	queue := NewQueue(events)
	blockAlign := format.BlockAlign()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1
	if m.opts.FramesPerBuffer > 0 {
		deviceConfig.PeriodSizeInFrames = uint32(m.opts.FramesPerBuffer)
	}

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		n := int(frameCount) * blockAlign
		if n > len(pOutputSample) {
			n = len(pOutputSample)
		}
		_, _ = queue.Read(pOutputSample[:n])
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		freeContext(ctx)
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.queue = queue
	m.events = events
	m.format = format

	if err := start(events, device.Start); err != nil {
		device.Uninit()
		freeContext(ctx)
		m.device = nil
		m.malgoCtx = nil
		return fmt.Errorf("failed to start device: %w", err)
	}
	m.ready = true

	log.Printf("Audio output initialized: %s (malgo)", format)

	return nil
}

// Submit queues a buffer for playback
func (m *Malgo) Submit(index int, data []byte) error {
	m.mu.Lock()
	q := m.queue
	ready := m.ready
	m.mu.Unlock()

	if !ready {
		return ErrNotOpen
	}
	return q.Push(index, data)
}

// Close stops and uninitializes the device
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return nil
	}

	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	m.device.Uninit()
	m.device = nil
	dropped := m.queue.Pending()
	m.queue.Close()
	freeContext(m.malgoCtx)
	m.malgoCtx = nil
	m.ready = false

	log.Printf("Audio output closed (malgo), %d buffers played, %d dropped, %d underruns",
		m.queue.Played(), dropped, m.queue.Underruns())
	post(m.events, Event{Kind: EventClosed, Index: -1})

	return nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	ctx.Free()
}
