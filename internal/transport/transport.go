// SPDX-License-Identifier: MPL-2.0

package transport

import "context"

// Message is one inbound text payload observed on the mesh, per spec.md
// §6's recv_text() shape.
type Message struct {
	Channel  int
	SenderID string
	Text     string
}

// Transport is the narrow interface the gateway event loop consumes from
// the radio link (spec.md §1, §6). The binary framing protocol that
// speaks to the serial port is an external collaborator, not part of
// this module.
type Transport interface {
	// RecvText streams inbound messages until ctx is cancelled or the
	// underlying link closes, at which point the channel is closed. A
	// closed channel with no error is a clean shutdown signal; Err
	// reports the reason after the channel closes.
	RecvText(ctx context.Context) <-chan Message

	// SendText sends one text payload on the configured channel. Callers
	// must only pass strings whose encoded length is at most
	// max_text_bytes; the gateway's chunker logs any frame larger than
	// that before passing it on.
	SendText(text string) error

	// Err reports the reason RecvText's channel closed, if any. Callers
	// should check it once the channel is drained to distinguish a
	// requested shutdown from a transport failure.
	Err() error

	// Close releases the underlying link.
	Close() error
}
