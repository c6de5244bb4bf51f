//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"

	"github.com/Sendspin/waveout/pkg/audio"
)

var errPortAudioDisabled = fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio(opts Options) Device {
	return &PortAudio{}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio
func (p *PortAudio) Open(format audio.Format, events chan<- Event) error {
	return errPortAudioDisabled
}

// Submit queues a buffer for playback
func (p *PortAudio) Submit(index int, data []byte) error {
	return ErrNotOpen
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}
