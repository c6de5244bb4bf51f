// ABOUTME: Console key poller for running without the TUI
// ABOUTME: Puts the terminal in raw mode and blocks until Escape is pressed
package console

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// KeyEscape is the byte sent by the Escape key
const KeyEscape = 27

// Raw switches f to raw mode when it is a terminal so single key presses
// are delivered without waiting for Enter. The returned func restores the
// previous mode. Non-terminals are left untouched.
func Raw(f *os.File) (restore func(), err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}, err
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// WaitForEscape reads r until a lone Escape key press is seen. Escape
// sequences produced by arrow, function and Alt-modified keys (ESC followed
// by another byte in the same read) are ignored, as are all other keys. Returns the
// read error if r ends first.
func WaitForEscape(r io.Reader) error {
	buf := make([]byte, 32)
	for {
		n, err := r.Read(buf)
		if isEscapePress(buf[:n]) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Wait is WaitForEscape that also returns when ctx is done. The reading
// goroutine exits once r is closed or delivers more input.
func Wait(ctx context.Context, r io.Reader) error {
	result := make(chan error, 1)
	go func() {
		result <- WaitForEscape(r)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isEscapePress reports whether chunk holds a lone Escape. ESC counts only
// as the last byte of a read or when another ESC follows; ESC with any
// other byte is a terminal sequence (arrows, function keys, Alt+key).
func isEscapePress(chunk []byte) bool {
	for i := 0; i < len(chunk); i++ {
		if chunk[i] != KeyEscape {
			continue
		}
		if i+1 == len(chunk) || chunk[i+1] == KeyEscape {
			return true
		}
		// skip ESC and the byte it prefixes
		i++
	}
	return false
}

// NewlineWriter returns a writer that emits "\r\n" for every "\n", keeping
// line output readable while the terminal is in raw mode
func NewlineWriter(w io.Writer) io.Writer {
	return &crlfWriter{w: w}
}

type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
