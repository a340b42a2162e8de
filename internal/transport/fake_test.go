// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"testing"
)

func TestFakeInjectAndRecv(t *testing.T) {
	f := NewFake()
	f.Inject(Message{Channel: 0, SenderID: "!abc123", Text: "!help"})

	ctx := context.Background()
	msg := <-f.RecvText(ctx)
	if msg.Text != "!help" || msg.SenderID != "!abc123" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestFakeSendRecordsFrames(t *testing.T) {
	f := NewFake()
	if err := f.SendText("frame one"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := f.SendText("frame two"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	got := f.Sent()
	want := []string{"frame one", "frame two"}
	if len(got) != len(want) {
		t.Fatalf("Sent() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sent()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFakeSendError(t *testing.T) {
	f := NewFake()
	sendErr := errors.New("link down")
	f.SetSendError(sendErr)
	if err := f.SendText("x"); !errors.Is(err, sendErr) {
		t.Fatalf("SendText error = %v, want %v", err, sendErr)
	}
	if len(f.Sent()) != 0 {
		t.Fatalf("Sent() should be empty after a failed send, got %v", f.Sent())
	}
}

func TestFakeCloseClosesChannel(t *testing.T) {
	f := NewFake()
	ch := f.RecvText(context.Background())
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestFakeCloseWithError(t *testing.T) {
	f := NewFake()
	linkErr := errors.New("radio disconnected")
	f.CloseWithError(linkErr)
	if !errors.Is(f.Err(), linkErr) {
		t.Fatalf("Err() = %v, want %v", f.Err(), linkErr)
	}
}
