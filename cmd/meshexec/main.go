// SPDX-License-Identifier: MPL-2.0

// Command meshexec bridges a LoRa Meshtastic mesh network and a local
// shell: it resolves "!"-prefixed command aliases against a YAML
// command tree, executes the resolved shell invocation, and chunks the
// combined stdout/stderr back across the mesh.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
