// ABOUTME: FIFO of submitted buffers read by the platform audio thread
// ABOUTME: Reports each buffer as done once its last byte has been read
package output

import (
	"io"
	"sync"
)

type queuedBuffer struct {
	index int
	data  []byte
}

// Queue holds submitted buffers in submission order and serves them as one
// continuous byte stream. It is the only state shared between the platform
// audio thread (Read) and the submitting goroutine (Push).
type Queue struct {
	mu      sync.Mutex
	pending []queuedBuffer
	offset  int // bytes of pending[0] already read
	events  chan<- Event
	closed  bool

	played    uint64
	underruns uint64
}

// NewQueue creates a queue reporting completions on events
func NewQueue(events chan<- Event) *Queue {
	return &Queue{events: events}
}

// Push appends a buffer for playback
func (q *Queue) Push(index int, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.pending = append(q.pending, queuedBuffer{index: index, data: data})
	return nil
}

// Read fills p from the queued buffers. When the queue runs dry the rest of
// p is zero-filled so the stream keeps running. Returns io.EOF once closed.
func (q *Queue) Read(p []byte) (int, error) {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		return 0, io.EOF
	}

	var done []int
	n := 0
	for n < len(p) && len(q.pending) > 0 {
		head := q.pending[0]
		c := copy(p[n:], head.data[q.offset:])
		n += c
		q.offset += c

		if q.offset >= len(head.data) {
			done = append(done, head.index)
			q.pending[0] = queuedBuffer{}
			q.pending = q.pending[1:]
			q.offset = 0
			q.played++
		}
	}

	if n < len(p) {
		clear(p[n:])
		q.underruns++
	}
	events := q.events
	q.mu.Unlock()

	for _, idx := range done {
		post(events, Event{Kind: EventBufferDone, Index: idx})
	}

	return len(p), nil
}

// Close drops any pending buffers; further reads return io.EOF
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.pending = nil
	q.offset = 0
}

// Pending returns the number of buffers not yet fully read
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Played returns the number of buffers fully read
func (q *Queue) Played() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.played
}

// Underruns returns how many reads had to pad with silence
func (q *Queue) Underruns() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.underruns
}
