// ABOUTME: Audio output package for indexed buffer playback
// ABOUTME: Provides the Device interface and oto, malgo, beep, portaudio, wav, null backends
// Package output provides audio devices modelled on the classic waveOut API:
// a device is opened with a fixed format and an event channel, buffers are
// submitted by index, and the device reports each buffer back once it has
// been consumed.
//
// Example:
//
//	events := make(chan output.Event, 6)
//	dev, err := output.New("oto", output.Options{FramesPerBuffer: 512})
//	err = dev.Open(audio.DefaultFormat, events)
//	err = dev.Submit(0, buf)
//	// ... wait for output.Event{Kind: output.EventBufferDone, Index: 0}
package output
