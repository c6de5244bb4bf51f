// ABOUTME: Sine tone generator
// ABOUTME: Produces phase-continuous 16-bit PCM frames from a running sample index
package tone

import (
	"math"

	"github.com/Sendspin/waveout/pkg/audio"
)

const (
	DefaultFrequency = 440.0 // A4 note
	DefaultAmplitude = 0.1   // 10% of full scale
)

// Generator synthesizes a fixed-frequency sine wave. Every channel of a
// frame carries the same value. Not safe for concurrent use; the owning
// session serializes all calls.
type Generator struct {
	frequency  float64
	sampleRate int
	amplitude  float64
	channels   int

	// index is the number of frames generated so far. Never reset.
	index uint64

	scratch []int16
}

// NewGenerator creates a tone generator starting at sample index 0
func NewGenerator(frequency float64, sampleRate int, amplitude float64, channels int) *Generator {
	if channels < 1 {
		channels = 1
	}
	return &Generator{
		frequency:  frequency,
		sampleRate: sampleRate,
		amplitude:  amplitude,
		channels:   channels,
	}
}

// NewDefault creates the 440 Hz, 10% amplitude generator for the given format
func NewDefault(format audio.Format) *Generator {
	return NewGenerator(DefaultFrequency, format.SampleRate, DefaultAmplitude, format.Channels)
}

// SampleAt returns the sample value for sample index n
func (g *Generator) SampleAt(n uint64) int16 {
	value := g.amplitude * math.Sin(2*math.Pi*g.frequency*float64(n)/float64(g.sampleRate))
	return clamp16(math.Round(value * audio.MaxInt16))
}

// Synthesize fills dst with frames interleaved frames and advances the index
// by frames. dst must hold at least frames*channels samples; if it is
// shorter, only the whole frames that fit are written. Returns frames written.
func (g *Generator) Synthesize(dst []int16, frames int) int {
	if fit := len(dst) / g.channels; frames > fit {
		frames = fit
	}

	for i := 0; i < frames; i++ {
		v := g.SampleAt(g.index)
		base := i * g.channels
		for ch := 0; ch < g.channels; ch++ {
			dst[base+ch] = v
		}
		g.index++
	}

	return frames
}

// SynthesizeBytes is Synthesize writing little-endian 16-bit samples into a
// raw device buffer
func (g *Generator) SynthesizeBytes(dst []byte, frames int) int {
	if fit := len(dst) / (g.channels * 2); frames > fit {
		frames = fit
	}

	n := frames * g.channels
	if cap(g.scratch) < n {
		g.scratch = make([]int16, n)
	}
	frames = g.Synthesize(g.scratch[:n], frames)
	audio.PutInt16LE(dst, g.scratch[:n])

	return frames
}

// Index returns the index of the next frame to be generated
func (g *Generator) Index() uint64 {
	return g.index
}

// Channels returns the number of interleaved channels written per frame
func (g *Generator) Channels() int {
	return g.channels
}

// Frequency returns the tone frequency in Hz
func (g *Generator) Frequency() float64 {
	return g.frequency
}

func clamp16(v float64) int16 {
	if v > audio.MaxInt16 {
		return audio.MaxInt16
	}
	if v < audio.MinInt16 {
		return audio.MinInt16
	}
	return int16(v)
}
