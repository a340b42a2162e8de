// SPDX-License-Identifier: MPL-2.0

// Package cmdtree defines the schema, YAML loading and validation for a
// MeshExec command tree: the recursive structure of groups and leaves that
// the dispatcher walks to resolve an inbound mesh message into a shell
// invocation.
package cmdtree
