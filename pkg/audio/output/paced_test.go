// ABOUTME: Tests for the null and wav software devices
// ABOUTME: Verifies event sequence, ordering, pacing, and WAV capture contents
package output

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sendspin/waveout/pkg/audio"
	"github.com/go-audio/wav"
)

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for device event")
		return Event{}
	}
}

func TestNullDeviceEventSequence(t *testing.T) {
	dev := NewNull(Options{FramesPerBuffer: 4, Unpaced: true})
	events := make(chan Event, 8)

	if err := dev.Open(audio.DefaultFormat, events); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if ev := nextEvent(t, events); ev.Kind != EventOpened {
		t.Fatalf("expected opened event first, got %s", ev.Kind)
	}

	for i := 0; i < 4; i++ {
		if err := dev.Submit(i, make([]byte, 16)); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		ev := nextEvent(t, events)
		if ev.Kind != EventBufferDone || ev.Index != i {
			t.Errorf("expected buffer-done %d, got %s %d", i, ev.Kind, ev.Index)
		}
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if ev := nextEvent(t, events); ev.Kind != EventClosed {
		t.Errorf("expected closed event, got %s", ev.Kind)
	}
	if got := dev.(*Paced).BytesWritten(); got != 64 {
		t.Errorf("expected 64 bytes written, got %d", got)
	}
}

func TestNullDeviceRejectsUnsupportedFormat(t *testing.T) {
	dev := NewNull(Options{})
	events := make(chan Event, 4)

	err := dev.Open(audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 24}, events)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events after failed open")
	}
	if err := dev.Submit(0, make([]byte, 4)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestNullDeviceDoubleOpen(t *testing.T) {
	dev := NewNull(Options{Unpaced: true})
	events := make(chan Event, 4)
	if err := dev.Open(audio.DefaultFormat, events); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer dev.Close()

	if err := dev.Open(audio.DefaultFormat, events); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("expected ErrAlreadyOpen, got %v", err)
	}
}

func TestNullDevicePacesPlayback(t *testing.T) {
	// 480 frames at 48 kHz = 10ms per buffer
	dev := NewNull(Options{FramesPerBuffer: 480})
	events := make(chan Event, 8)
	if err := dev.Open(audio.DefaultFormat, events); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer dev.Close()
	nextEvent(t, events)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_ = dev.Submit(i, make([]byte, audio.DefaultFormat.BufferBytes(480)))
	}
	for i := 0; i < 3; i++ {
		nextEvent(t, events)
	}

	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("expected ~30ms of paced playback, took %v", elapsed)
	}
}

func TestWAVDeviceCapturesSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	dev := NewWAV(Options{FramesPerBuffer: 2, WAVPath: path, Unpaced: true})
	events := make(chan Event, 8)

	if err := dev.Open(audio.DefaultFormat, events); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	nextEvent(t, events)

	buf := make([]byte, 8)
	audio.PutInt16LE(buf, []int16{100, 100, -200, -200})
	if err := dev.Submit(0, buf); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	nextEvent(t, events)

	if err := dev.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open capture: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("expected a valid WAV file")
	}
	if dec.SampleRate != 48000 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("unexpected header: %dHz %dch %dbit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("failed to read PCM: %v", err)
	}
	want := []int{100, 100, -200, -200}
	if len(pcm.Data) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(pcm.Data))
	}
	for i, w := range want {
		if pcm.Data[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, pcm.Data[i])
		}
	}
}

func TestWAVDeviceBadPath(t *testing.T) {
	dev := NewWAV(Options{WAVPath: filepath.Join(t.TempDir(), "missing", "x.wav")})
	if err := dev.Open(audio.DefaultFormat, make(chan Event, 2)); err == nil {
		t.Error("expected open to fail for an unwritable path")
	}
}
