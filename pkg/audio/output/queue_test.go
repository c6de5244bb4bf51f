// ABOUTME: Tests for the submitted buffer queue
// ABOUTME: Verifies FIFO completion reporting, partial reads, and underrun padding
package output

import (
	"bytes"
	"io"
	"testing"
)

func TestQueueCompletesInSubmissionOrder(t *testing.T) {
	events := make(chan Event, 8)
	q := NewQueue(events)

	for _, idx := range []int{2, 0, 1} {
		if err := q.Push(idx, bytes.Repeat([]byte{byte(idx + 1)}, 4)); err != nil {
			t.Fatalf("push %d failed: %v", idx, err)
		}
	}

	p := make([]byte, 12)
	n, err := q.Read(p)
	if err != nil || n != 12 {
		t.Fatalf("expected 12 bytes, got %d (%v)", n, err)
	}

	want := []byte{3, 3, 3, 3, 1, 1, 1, 1, 2, 2, 2, 2}
	if !bytes.Equal(p, want) {
		t.Errorf("expected %v, got %v", want, p)
	}

	for _, idx := range []int{2, 0, 1} {
		ev := <-events
		if ev.Kind != EventBufferDone || ev.Index != idx {
			t.Errorf("expected buffer-done %d, got %s %d", idx, ev.Kind, ev.Index)
		}
	}
	if q.Played() != 3 {
		t.Errorf("expected 3 played, got %d", q.Played())
	}
}

func TestQueuePartialReadDefersCompletion(t *testing.T) {
	events := make(chan Event, 4)
	q := NewQueue(events)
	_ = q.Push(0, []byte{1, 2, 3, 4, 5, 6})

	p := make([]byte, 4)
	_, _ = q.Read(p)
	if len(events) != 0 {
		t.Fatal("expected no completion after partial read")
	}
	if q.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", q.Pending())
	}

	_ = q.Push(1, []byte{7, 8})
	_, _ = q.Read(p)
	if !bytes.Equal(p, []byte{5, 6, 7, 8}) {
		t.Errorf("expected continuation across buffers, got %v", p)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(events))
	}
}

func TestQueueUnderrunPadsSilence(t *testing.T) {
	q := NewQueue(make(chan Event, 4))
	_ = q.Push(0, []byte{9, 9})

	p := []byte{1, 1, 1, 1, 1, 1}
	n, err := q.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(p) {
		t.Errorf("expected full read of %d, got %d", len(p), n)
	}
	if !bytes.Equal(p, []byte{9, 9, 0, 0, 0, 0}) {
		t.Errorf("expected zero padding, got %v", p)
	}
	if q.Underruns() != 1 {
		t.Errorf("expected 1 underrun, got %d", q.Underruns())
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue(make(chan Event, 4))
	_ = q.Push(0, []byte{1, 2})
	q.Close()

	if q.Pending() != 0 {
		t.Errorf("expected pending buffers dropped, got %d", q.Pending())
	}
	if _, err := q.Read(make([]byte, 2)); err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
	if err := q.Push(1, []byte{1}); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
