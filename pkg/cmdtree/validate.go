// SPDX-License-Identifier: MPL-2.0

package cmdtree

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate runs the structural validation pass of spec.md §3 over an
// assembled (but not yet validated) RootConfig, failing on the first
// violation found with a locator identifying the offending node.
func Validate(r *RootConfig) error {
	if r.Shell == "" {
		return &LoadError{Locator: "root", Err: fmt.Errorf("shell is required")}
	}
	if r.MaxTextBytes < 16 {
		return &LoadError{Locator: "root", Err: fmt.Errorf("max_text_bytes must be >= 16, got %d", r.MaxTextBytes)}
	}
	if r.ChunkDelayMillis < 0 {
		return &LoadError{Locator: "root", Err: fmt.Errorf("chunk_delay must be >= 0, got %d", r.ChunkDelayMillis)}
	}
	// 4 is the widest a single UTF-8 code point can encode to; anything
	// smaller risks internal/chunk's cutPoint having to split a rune in
	// half when it can't back off onto a lead byte within the budget.
	if r.MaxContentBytes < 4 {
		return &LoadError{Locator: "root", Err: fmt.Errorf("max_content_bytes must be >= 4, got %d", r.MaxContentBytes)}
	}
	if len(r.Commands) == 0 {
		return &LoadError{Locator: "root.commands", Err: fmt.Errorf("at least one command is required")}
	}

	worstN := int(math.Ceil(float64(r.OutputCap()) / float64(r.MaxContentBytes)))
	if worstN < 1 {
		worstN = 1
	}
	footerReserve := 0
	if worstN > 1 {
		digits := len(strconv.Itoa(worstN))
		footerReserve = 2*digits + 4 // " [" + i + "/" + N + "]"
	}
	if r.MaxContentBytes+footerReserve > r.MaxTextBytes {
		return &LoadError{Locator: "root", Err: fmt.Errorf(
			"max_content_bytes (%d) plus worst-case footer (%d bytes, for up to %d frames) exceeds max_text_bytes (%d)",
			r.MaxContentBytes, footerReserve, worstN, r.MaxTextBytes)}
	}

	for i, c := range r.Commands {
		if err := validateNode(c, fmt.Sprintf("root.commands[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *Node, locator string) error {
	if !nameRegex.MatchString(n.Name) {
		return &LoadError{Locator: locator, Err: fmt.Errorf("invalid name %q", n.Name)}
	}

	isLeaf := n.Command != ""
	isGroup := n.Commands != nil
	if isLeaf == isGroup {
		return &LoadError{Locator: locator, Err: fmt.Errorf("node must have exactly one of command or commands")}
	}

	if isGroup {
		return validateGroup(n, locator)
	}
	return validateLeaf(n, locator)
}

func validateGroup(n *Node, locator string) error {
	if len(n.Args) > 0 || len(n.Flags) > 0 {
		return &LoadError{Locator: locator, Err: fmt.Errorf("group node cannot have args or flags")}
	}
	if len(n.Commands) == 0 {
		return &LoadError{Locator: locator, Err: fmt.Errorf("group must have at least one child command")}
	}
	seen := make(map[string]bool, len(n.Commands))
	for i, c := range n.Commands {
		if seen[c.Name] {
			return &LoadError{Locator: fmt.Sprintf("%s.commands[%d]", locator, i), Err: fmt.Errorf("duplicate child name %q", c.Name)}
		}
		seen[c.Name] = true
		if err := validateNode(c, fmt.Sprintf("%s.commands[%d]", locator, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateLeaf(n *Node, locator string) error {
	if strings.TrimSpace(n.Command) == "" {
		return &LoadError{Locator: locator, Err: fmt.Errorf("command cannot be empty")}
	}

	greedyArgIdx := -1
	for i, a := range n.Args {
		if a.Name == "" {
			return &LoadError{Locator: fmt.Sprintf("%s.args[%d]", locator, i), Err: fmt.Errorf("arg name is required")}
		}
		if !nameRegex.MatchString(a.Name) {
			return &LoadError{Locator: fmt.Sprintf("%s.args[%d]", locator, i), Err: fmt.Errorf("invalid arg name %q", a.Name)}
		}
		if a.Greedy {
			if greedyArgIdx != -1 {
				return &LoadError{Locator: fmt.Sprintf("%s.args[%d]", locator, i), Err: fmt.Errorf("at most one arg may be greedy")}
			}
			greedyArgIdx = i
		}
	}
	if greedyArgIdx != -1 && greedyArgIdx != len(n.Args)-1 {
		return &LoadError{Locator: fmt.Sprintf("%s.args[%d]", locator, greedyArgIdx), Err: fmt.Errorf("greedy arg must be the last arg")}
	}

	if err := validateFlags(n.Flags, locator); err != nil {
		return err
	}
	return nil
}

func validateFlags(flags []Flag, locator string) error {
	used := make(map[string]string) // identifier -> "flags[i]" that claimed it
	greedyIdx := -1

	for i, f := range flags {
		fLocator := fmt.Sprintf("%s.flags[%d]", locator, i)
		if !strings.HasPrefix(f.Long, "--") || len(f.Long) <= 2 {
			return &LoadError{Locator: fLocator, Err: fmt.Errorf("flag long %q must start with --", f.Long)}
		}
		if f.Short != nil {
			if len(*f.Short) != 2 || (*f.Short)[0] != '-' || (*f.Short)[1] == '-' {
				return &LoadError{Locator: fLocator, Err: fmt.Errorf("flag short %q must be '-' plus one non-dash character", *f.Short)}
			}
		}
		if f.Greedy {
			if f.Arg == nil {
				return &LoadError{Locator: fLocator, Err: fmt.Errorf("greedy flag must have arg set")}
			}
			if greedyIdx != -1 {
				return &LoadError{Locator: fLocator, Err: fmt.Errorf("at most one flag may be greedy")}
			}
			greedyIdx = i
		}

		longIdent := strings.TrimPrefix(f.Long, "--")
		idents := []string{longIdent}
		if f.Short != nil {
			idents = append(idents, string((*f.Short)[1]))
		}
		if f.Arg != nil {
			idents = append(idents, *f.Arg)
		}
		for _, id := range idents {
			if id == "help" || id == "h" {
				return &LoadError{Locator: fLocator, Err: fmt.Errorf("identifier %q is reserved", id)}
			}
			if owner, ok := used[id]; ok && owner != fLocator {
				return &LoadError{Locator: fLocator, Err: fmt.Errorf("identifier %q collides with %s", id, owner)}
			}
			used[id] = fLocator
		}
	}
	if greedyIdx != -1 && greedyIdx != len(flags)-1 {
		return &LoadError{Locator: fmt.Sprintf("%s.flags[%d]", locator, greedyIdx), Err: fmt.Errorf("greedy flag must be the last flag")}
	}
	return nil
}
