// SPDX-License-Identifier: MPL-2.0

// Package chunk splits a reply string into numbered frames that respect the
// radio's per-frame byte budget, and paces their delivery over a transport,
// per spec.md §4.F.
package chunk
