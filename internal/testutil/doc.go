// SPDX-License-Identifier: MPL-2.0

// Package testutil provides the Clock abstraction used to make chunk
// pacing and gateway timing deterministic in tests: production code
// takes a Clock and is handed RealClock, tests hand it a FakeClock they
// advance by hand instead of sleeping.
package testutil
