// SPDX-License-Identifier: MPL-2.0

// Package exec spawns the shell configured for a resolved invocation,
// injects its bound values as environment variables, and captures combined
// stdout/stderr into a single reply string under a wall-clock timeout and
// an output-size cap. It never returns an error to its caller: every
// failure mode is folded into the reply string, per spec.md §4.E and §7.
package exec
