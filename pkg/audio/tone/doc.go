// ABOUTME: Sine test tone package
// ABOUTME: Generates phase-continuous 16-bit PCM for the buffer ring
// Package tone generates the continuous sine test tone.
//
// The generator keeps a running sample index so that consecutive calls
// produce one unbroken waveform regardless of how the output is split into
// buffers:
//
//	gen := tone.NewDefault(audio.DefaultFormat)
//	gen.SynthesizeBytes(buf, 512)
package tone
