// ABOUTME: Multi-buffered streaming core
// ABOUTME: Buffer pool, round-robin cursor, and the event-driven session
// Package waveout keeps an audio device fed with a continuous tone using a
// fixed ring of buffers.
//
// The device posts output.Event values on a channel. A single goroutine
// running Session.Run consumes them: on EventOpened every buffer is
// submitted once as silence, and on each EventBufferDone the next buffer in
// round-robin order is refilled from the tone generator and resubmitted.
//
// Example:
//
//	dev := output.NewOto(output.Options{FramesPerBuffer: waveout.DefaultFramesPerBuffer})
//	session := waveout.NewSession(dev, waveout.Config{})
//	events := make(chan output.Event, session.EventCapacity())
//	if err := dev.Open(audio.DefaultFormat, events); err != nil {
//	    return err
//	}
//	go session.Run(ctx, events)
package waveout
