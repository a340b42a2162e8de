// SPDX-License-Identifier: MPL-2.0

// Package gateway runs the single cooperative event loop that owns the
// transport and the command pipeline (spec.md §5): it draws one inbound
// message at a time, dispatches it, executes the resolved command if
// any, and fully replies — including inter-frame pacing — before
// drawing the next. A global shutdown signal stops new messages from
// being drawn, sends the current child process (if any) SIGTERM and
// kills it if it has not exited within the grace period, drops any
// frames of the current reply not yet sent, then closes the transport.
package gateway
