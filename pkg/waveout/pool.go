// ABOUTME: Fixed pool of device buffers with per-slot descriptors
// ABOUTME: Allocated once per device session, zero-filled, never resized
package waveout

import (
	"errors"
	"fmt"

	"github.com/Sendspin/waveout/pkg/audio"
)

var ErrInvalidPool = errors.New("invalid buffer pool size")

// SlotState tracks one buffer through the submit/complete cycle
type SlotState int

const (
	// SlotIdle holds silence and has never been submitted
	SlotIdle SlotState = iota
	// SlotQueued is owned by the device until it reports completion
	SlotQueued
	// SlotCompleted has finished playing and may be refilled
	SlotCompleted
	// SlotFilled has been refilled but the device has not accepted it yet
	SlotFilled
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotQueued:
		return "queued"
	case SlotCompleted:
		return "completed"
	case SlotFilled:
		return "filled"
	default:
		return fmt.Sprintf("SlotState(%d)", int(s))
	}
}

// Slot is a buffer and its descriptor
type Slot struct {
	Data          []byte
	Length        int
	BytesRecorded int
	Loops         int
	State         SlotState
}

// Pool owns the buffers handed to the device
type Pool struct {
	slots  []Slot
	frames int
	format audio.Format
}

// NewPool allocates count zero-filled buffers of frames frames each
func NewPool(count, frames int, format audio.Format) (*Pool, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d buffers", ErrInvalidPool, count)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("%w: %d frames per buffer", ErrInvalidPool, frames)
	}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPool, err)
	}

	size := format.BufferBytes(frames)
	p := &Pool{
		slots:  make([]Slot, count),
		frames: frames,
		format: format,
	}
	for i := range p.slots {
		p.slots[i] = Slot{
			Data:   make([]byte, size),
			Length: size,
		}
	}
	return p, nil
}

// Reset zero-fills every buffer and returns all slots to idle
func (p *Pool) Reset() {
	for i := range p.slots {
		s := &p.slots[i]
		clear(s.Data)
		s.BytesRecorded = 0
		s.Loops = 0
		s.State = SlotIdle
	}
}

// Slot returns the slot at index i
func (p *Pool) Slot(i int) *Slot {
	return &p.slots[i]
}

// Len returns the number of buffers
func (p *Pool) Len() int {
	return len(p.slots)
}

// Frames returns the number of frames per buffer
func (p *Pool) Frames() int {
	return p.frames
}

// BufferBytes returns the size of each buffer
func (p *Pool) BufferBytes() int {
	return p.format.BufferBytes(p.frames)
}

// Count returns how many slots are in state s
func (p *Pool) Count(s SlotState) int {
	n := 0
	for i := range p.slots {
		if p.slots[i].State == s {
			n++
		}
	}
	return n
}
