// SPDX-License-Identifier: MPL-2.0

package cmdtree

import "strings"

type (
	// Arg is a positional argument accepted by a Leaf.
	Arg struct {
		// Name is the argument's identifier. The environment binding name is
		// Name with hyphens replaced by underscores.
		Name string
		// Help is a one-line description shown in --help output.
		Help string
		// Default, when non-nil, makes the argument optional.
		Default *string
		// Greedy, if true, makes this argument consume the space-joined tail
		// of remaining tokens. At most one Arg per Leaf may be greedy, and it
		// must be the last one.
		Greedy bool
	}

	// Flag is a named flag accepted by a Leaf, boolean unless Arg is set.
	Flag struct {
		// Long is the flag's long form, e.g. "--port". Always starts with "--".
		Long string
		// Short, when non-nil, is the flag's short form, e.g. "-p".
		Short *string
		// Help is a one-line description shown in --help output.
		Help string
		// Arg, when non-nil, names the binding the flag's value is exported
		// under, making the flag value-bearing instead of boolean.
		Arg *string
		// Required, if true, makes omitting the flag (with no Default) an error.
		Required bool
		// Default, when non-nil, is used when the flag is absent.
		Default *string
		// Greedy, if true, makes a value-bearing flag consume the space-joined
		// tail of remaining tokens as its value. At most one Flag per Leaf may
		// be greedy, it must have Arg set, and it must be the last Flag.
		Greedy bool
	}

	// Node is a command tree node: either a Leaf (Command set, Commands nil)
	// or a Group (Commands set, Command empty). Exactly one of the two forms
	// is valid after loading; Validate enforces this.
	Node struct {
		// Name identifies this node among its siblings. Matches [A-Za-z0-9_-]+.
		Name string
		// Help is a one-line (Group) or paragraph (Leaf) description.
		Help string

		// Command is the Leaf's shell script body. Empty for a Group.
		Command string
		// Args is the Leaf's ordered positional argument list.
		Args []Arg
		// Flags is the Leaf's ordered flag list.
		Flags []Flag

		// Commands is the Group's ordered child list. Nil for a Leaf.
		Commands []*Node
	}

	// RootConfig is the top-level loaded and validated command tree plus the
	// gateway's operating parameters.
	RootConfig struct {
		// Device is the path to the transport's serial device.
		Device string
		// Channel is the mesh channel index commands are received/sent on.
		Channel int
		// Baud, when non-zero, overrides the transport's default baud rate.
		Baud int
		// Shell is the program spawned to run a Leaf's Command.
		Shell string
		// ShellArgs are arguments passed to Shell before the script body.
		ShellArgs []string
		// MaxTextBytes is the hard per-frame byte budget enforced by the radio.
		MaxTextBytes int
		// ChunkDelayMillis is the pause between successive outbound frames.
		ChunkDelayMillis int
		// MaxContentBytes is the per-frame budget for reply content, leaving
		// room for the " [i/N]" footer within MaxTextBytes.
		MaxContentBytes int
		// ExecTimeoutSeconds bounds how long a single invocation may run
		// before being terminated. Defaults to 60 if zero.
		ExecTimeoutSeconds int
		// MaxOutputBytes bounds how much combined stdout/stderr is retained
		// per invocation. Defaults to 65536 if zero.
		MaxOutputBytes int
		// ShutdownGraceSeconds bounds how long the gateway waits for an
		// in-flight child process to exit during shutdown. Defaults to 5 if zero.
		ShutdownGraceSeconds int
		// Commands is the ordered top-level command list. Never empty after loading.
		Commands []*Node
	}
)

// IsLeaf reports whether n is a Leaf node.
func (n *Node) IsLeaf() bool {
	return n.Commands == nil
}

// IsGroup reports whether n is a Group node.
func (n *Node) IsGroup() bool {
	return n.Commands != nil
}

// Child returns the child of a Group matching name, or nil if absent or n is a Leaf.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// BindingName returns the environment-variable name an Arg binds to: its
// Name with hyphens replaced by underscores.
func (a *Arg) BindingName() string {
	return strings.ReplaceAll(a.Name, "-", "_")
}

// RequiredArg reports whether the Arg must be supplied (no Default).
func (a *Arg) RequiredArg() bool {
	return a.Default == nil
}

// BindingName returns the environment-variable name this Flag binds to:
// Arg if set, else Long with leading dashes stripped and remaining hyphens
// replaced by underscores.
func (f *Flag) BindingName() string {
	if f.Arg != nil {
		return strings.ReplaceAll(*f.Arg, "-", "_")
	}
	return strings.ReplaceAll(strings.TrimPrefix(f.Long, "--"), "-", "_")
}

// IsBoolean reports whether the flag is boolean (no Arg, so presence alone
// binds "true") as opposed to value-bearing.
func (f *Flag) IsBoolean() bool {
	return f.Arg == nil
}

// ExecTimeout returns the effective exec timeout in seconds, applying the default.
func (r *RootConfig) ExecTimeout() int {
	if r.ExecTimeoutSeconds <= 0 {
		return 60
	}
	return r.ExecTimeoutSeconds
}

// OutputCap returns the effective max output bytes, applying the default.
func (r *RootConfig) OutputCap() int {
	if r.MaxOutputBytes <= 0 {
		return 65536
	}
	return r.MaxOutputBytes
}

// ShutdownGrace returns the effective shutdown grace period in seconds, applying the default.
func (r *RootConfig) ShutdownGrace() int {
	if r.ShutdownGraceSeconds <= 0 {
		return 5
	}
	return r.ShutdownGraceSeconds
}
