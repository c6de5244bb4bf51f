// ABOUTME: Audio type definitions
// ABOUTME: Defines the fixed PCM output format and 16-bit sample packing helpers
package audio

import (
	"encoding/binary"
	"fmt"
)

const (
	// 16-bit audio range constants
	MaxInt16 = 32767
	MinInt16 = -32768

	// Fixed output format
	DefaultSampleRate = 48000
	DefaultChannels   = 2
	DefaultBitDepth   = 16
)

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat is stereo, signed 16-bit little-endian PCM at 48 kHz
var DefaultFormat = Format{
	SampleRate: DefaultSampleRate,
	Channels:   DefaultChannels,
	BitDepth:   DefaultBitDepth,
}

// BytesPerSample returns the size of one sample of one channel
func (f Format) BytesPerSample() int {
	return f.BitDepth / 8
}

// BlockAlign returns the size in bytes of one frame (one sample per channel)
func (f Format) BlockAlign() int {
	return f.Channels * f.BytesPerSample()
}

// AvgBytesPerSec returns the byte rate of the stream
func (f Format) AvgBytesPerSec() int {
	return f.SampleRate * f.BlockAlign()
}

// BufferBytes returns the byte size of a buffer holding the given number of frames
func (f Format) BufferBytes(frames int) int {
	return frames * f.BlockAlign()
}

// Validate checks that the format describes a playable PCM stream
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.BitDepth <= 0 || f.BitDepth%8 != 0 {
		return fmt.Errorf("invalid bit depth: %d", f.BitDepth)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// PutInt16LE packs samples into dst as little-endian 16-bit values
// and returns the number of bytes written
func PutInt16LE(dst []byte, samples []int16) int {
	n := len(samples)
	if limit := len(dst) / 2; n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n * 2
}

// Int16LE reads the little-endian 16-bit sample at sample position i
func Int16LE(src []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(src[i*2:]))
}

// SampleToFloat converts a 16-bit sample to the [-1, 1) range
func SampleToFloat(sample int16) float64 {
	return float64(sample) / 32768.0
}
