// SPDX-License-Identifier: MPL-2.0

// Package dispatch turns an inbound mesh text payload into either a
// runtime-bound invocation ready for the executor, or a reply string
// (an error or rendered help) to send back directly.
package dispatch
