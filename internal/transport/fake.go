// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"sync"
)

// Fake is an in-memory Transport for tests: Inject feeds messages as if
// they arrived over the mesh, and Sent records everything passed to
// SendText in order.
type Fake struct {
	mu       sync.Mutex
	ch       chan Message
	sent     []string
	sendErr  error
	closed   bool
	closeErr error
}

// NewFake returns a Fake ready to receive injected messages.
func NewFake() *Fake {
	return &Fake{ch: make(chan Message, 16)}
}

// Inject enqueues a message as if it had arrived over the mesh. Panics
// if called after Close.
func (f *Fake) Inject(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		panic("transport: Inject after Close")
	}
	f.ch <- msg
}

// RecvText implements Transport.
func (f *Fake) RecvText(ctx context.Context) <-chan Message {
	return f.ch
}

// SetSendError causes every subsequent SendText call to fail with err.
func (f *Fake) SetSendError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// SendText implements Transport.
func (f *Fake) SendText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

// Sent returns every frame passed to SendText so far, in order.
func (f *Fake) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

// Err implements Transport.
func (f *Fake) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeErr
}

// Close implements Transport. Closing twice is a no-op.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.ch)
	return f.closeErr
}

// CloseWithError closes the fake as if the underlying link failed with
// err, which Err then reports.
func (f *Fake) CloseWithError(err error) {
	f.mu.Lock()
	f.closeErr = err
	f.mu.Unlock()
	f.Close()
}
