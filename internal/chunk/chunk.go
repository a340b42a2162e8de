// SPDX-License-Identifier: MPL-2.0

package chunk

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dark-Alex-17/meshexec/internal/testutil"
)

// noOutputMarker is sent as a single frame when the reply is empty.
const noOutputMarker = "[no output]"

// Sender is the narrow send half of the transport interface MeshExec
// consumes (spec.md §6): one operation, send one text payload.
type Sender interface {
	SendText(text string) error
}

// Split partitions reply into successive byte slices of at most maxContentBytes,
// cutting only at UTF-8 character boundaries. An empty reply yields a single
// "[no output]" slice.
func Split(reply string, maxContentBytes int) []string {
	if reply == "" {
		return []string{noOutputMarker}
	}

	var slices []string
	b := []byte(reply)
	for len(b) > 0 {
		end := cutPoint(b, maxContentBytes)
		slices = append(slices, string(b[:end]))
		b = b[end:]
	}
	return slices
}

// cutPoint returns the largest end <= max such that b[:end] ends on a UTF-8
// character boundary (or end == len(b) if the whole remainder fits). A
// UTF-8 code point is at most 4 bytes, so backing off from max can cross
// at most 3 continuation bytes before reaching a lead byte; cmdtree.Validate
// enforces max_content_bytes >= 4, so the backoff below always has room to
// land on a boundary without needing to fall back to max itself.
func cutPoint(b []byte, max int) int {
	if max >= len(b) {
		return len(b)
	}
	end := max
	// A UTF-8 continuation byte has the high bits 10xxxxxx (0x80-0xBF).
	// Back off until we're not splitting a multi-byte sequence.
	for end > 0 && b[end]&0xC0 == 0x80 {
		end--
	}
	if end == 0 {
		// Unreachable when max_content_bytes >= 4 (see cmdtree.Validate);
		// kept as a forward-progress guarantee against a misconfigured
		// caller that bypasses validation.
		return max
	}
	return end
}

// Compose turns content slices into frames, appending the " [i/N]" footer
// (1-based) unless there is only one slice.
func Compose(slices []string) []string {
	n := len(slices)
	if n <= 1 {
		return slices
	}
	frames := make([]string, n)
	for i, s := range slices {
		frames[i] = fmt.Sprintf("%s [%d/%d]", s, i+1, n)
	}
	return frames
}

// Send composes reply into frames and sends them sequentially over sender,
// pausing delay between successive frames. A send error aborts the
// remaining frames and is logged, per spec.md §4.F and §7. maxTextBytes is
// used only for a check per frame: Validate sizes the footer for the
// output cap, but the executor's annotations ("[exit n]", "[output
// truncated]", "[timed out ...]") are appended after the cap and slices
// cut short at rune boundaries add frames, so a reply can need more
// frames than Validate allowed for. A frame over maxTextBytes is logged
// and sent anyway; it is not split further.
func Send(ctx context.Context, sender Sender, reply string, maxContentBytes, maxTextBytes int, delay time.Duration, clock testutil.Clock, logger *log.Logger) {
	slices := Split(reply, maxContentBytes)
	frames := Compose(slices)

	for i, frame := range frames {
		if len(frame) > maxTextBytes {
			logger.Error("frame exceeds max_text_bytes, sending anyway", "frame", i+1, "size", len(frame), "max", maxTextBytes)
		}
		if i > 0 && delay > 0 {
			select {
			case <-clock.After(delay):
			case <-ctx.Done():
				logger.Warn("aborting chunked reply: context cancelled", "sent", i, "total", len(frames))
				return
			}
		}
		if err := sender.SendText(frame); err != nil {
			logger.Error("transport send failed, abandoning remaining frames", "frame", i+1, "total", len(frames), "error", err)
			return
		}
	}
}
