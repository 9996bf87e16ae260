package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when a read is abandoned by context.
var ErrInputCanceled = errors.New("input canceled")

// LineReader reads lines from a terminal while honoring context
// cancellation, so the chat loop can exit on Ctrl-C even though stdin
// reads block.
type LineReader struct {
	reader *bufio.Reader
	mu     sync.Mutex
}

// NewLineReader wraps r in a cancellable line reader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReader(r)}
}

// ReadLine returns the next trimmed line, or ErrInputCanceled if ctx ends
// first. A read abandoned by cancellation keeps running in the background
// until the underlying reader yields; the mutex keeps a later call from
// interleaving with it.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err  error
		line string
	}
	ch := make(chan result, 1)

	go func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		line, err := r.reader.ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res := <-ch:
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
