// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// Stdio is a line-oriented Transport that treats each line of stdin as
// one inbound message and writes replies as lines of stdout. It exists
// only so the gateway has something concrete to run against without a
// physical radio attached; it is not a stand-in for the serial
// Meshtastic driver that spec.md §1 places out of scope.
type Stdio struct {
	channel int
	in      io.Reader
	out     io.Writer

	mu     sync.Mutex
	werr   error
	recvCh chan Message
	errCh  chan error
	once   sync.Once
}

// NewStdio wraps in/out as a Transport, tagging every inbound message
// with the given channel number.
func NewStdio(in io.Reader, out io.Writer, channel int) *Stdio {
	return &Stdio{
		channel: channel,
		in:      in,
		out:     out,
		recvCh:  make(chan Message),
		errCh:   make(chan error, 1),
	}
}

// RecvText implements Transport, scanning stdin line by line on first
// call. The returned channel closes when stdin reaches EOF or ctx is
// cancelled.
func (s *Stdio) RecvText(ctx context.Context) <-chan Message {
	s.once.Do(func() {
		go s.scan(ctx)
	})
	return s.recvCh
}

func (s *Stdio) scan(ctx context.Context) {
	defer close(s.recvCh)

	scanner := bufio.NewScanner(s.in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				if err := scanner.Err(); err != nil {
					s.setErr(fmt.Errorf("reading stdin: %w", err))
				}
				return
			}
			select {
			case s.recvCh <- Message{Channel: s.channel, SenderID: "stdin", Text: line}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// SendText implements Transport.
func (s *Stdio) SendText(text string) error {
	_, err := fmt.Fprintln(s.out, text)
	return err
}

func (s *Stdio) setErr(err error) {
	s.mu.Lock()
	s.werr = err
	s.mu.Unlock()
	select {
	case s.errCh <- err:
	default:
	}
}

// Err implements Transport.
func (s *Stdio) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.werr
}

// Close implements Transport. Stdio owns no resources beyond the
// io.Reader/io.Writer it was given, so Close is a no-op.
func (s *Stdio) Close() error {
	return nil
}
