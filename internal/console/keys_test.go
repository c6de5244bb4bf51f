// ABOUTME: Tests for the console key poller
// ABOUTME: Verifies Escape detection, ignored keys, EOF, and cancellation
package console

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

func TestWaitForEscape(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"escape only", "\x1b", nil},
		{"keys then escape", "abc q\r\x1b", nil},
		{"no escape", "hello", io.EOF},
		{"arrow key ignored", "\x1b[A", io.EOF},
		{"function key ignored", "\x1bOP", io.EOF},
		{"escape after arrow", "\x1b[Bx\x1b", nil},
		{"alt letter ignored", "\x1bx", io.EOF},
		{"alt backspace ignored", "\x1b\x7f", io.EOF},
		{"alt digit ignored", "\x1b1", io.EOF},
		{"modified arrow ignored", "\x1b[1;5A", io.EOF},
		{"double escape", "\x1b\x1b", nil},
		{"escape after alt key", "\x1bq\x1b", nil},
		{"empty", "", io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WaitForEscape(strings.NewReader(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWaitForEscapeAcrossReads(t *testing.T) {
	r, w := io.Pipe()
	defer r.Close()

	result := make(chan error, 1)
	go func() { result <- WaitForEscape(r) }()

	for _, chunk := range []string{"a", "b", "\r"} {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	select {
	case err := <-result:
		t.Fatalf("returned early after non-Escape keys: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := w.Write([]byte{KeyEscape}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("expected nil after Escape, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Escape was not detected")
	}
}

func TestWaitCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, r); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRawOnNonTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	restore, err := Raw(f)
	if err != nil {
		t.Fatalf("expected no error for non-terminal, got %v", err)
	}
	restore()
}

func TestNewlineWriter(t *testing.T) {
	var sb strings.Builder
	w := NewlineWriter(&sb)

	n, err := w.Write([]byte("one\ntwo\n"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != 8 {
		t.Errorf("expected 8 bytes reported, got %d", n)
	}
	if sb.String() != "one\r\ntwo\r\n" {
		t.Errorf("unexpected output %q", sb.String())
	}
}
