// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and 16-bit PCM conversion functions
// Package audio provides the PCM format description shared by the tone
// generator, the buffer pool and the output backends.
//
// Example:
//
//	format := audio.DefaultFormat
//	size := format.BufferBytes(512) // 2048 bytes for 512 stereo 16-bit frames
//
//	// Pack samples the way the device expects them
//	n := audio.PutInt16LE(buf, samples)
package audio
