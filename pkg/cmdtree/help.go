// SPDX-License-Identifier: MPL-2.0

package cmdtree

import (
	"fmt"
	"strings"
)

// RenderHelp produces the plain-text help for n, reached by following path
// (the !-prefixed, space-joined names from the root to n, not including the
// leading "!"). The output is plain ASCII so it survives chunking untouched.
func RenderHelp(n *Node, path []string) string {
	if n.IsGroup() {
		return renderGroupHelp(n, path)
	}
	return renderLeafHelp(n, path)
}

func renderGroupHelp(n *Node, path []string) string {
	var b strings.Builder
	prefix := "!"
	if len(path) > 0 {
		prefix = "!" + strings.Join(path, " ") + " "
	}
	fmt.Fprintf(&b, "%s<subcommand> [args...]\n\n", prefix)
	if n.Help != "" {
		fmt.Fprintf(&b, "%s\n\n", n.Help)
	}
	b.WriteString("Subcommands:\n")

	width := 0
	for _, c := range n.Commands {
		if len(c.Name) > width {
			width = len(c.Name)
		}
	}
	for _, c := range n.Commands {
		fmt.Fprintf(&b, "  %-*s    %s\n", width, c.Name, c.Help)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderLeafHelp(n *Node, path []string) string {
	var b strings.Builder

	usage := fmt.Sprintf("!%s", strings.Join(path, " "))
	for _, a := range n.Args {
		usage += " " + argUsage(a)
	}
	if len(n.Flags) > 0 {
		usage += " [flags...]"
	}
	fmt.Fprintf(&b, "%s\n\n", usage)

	if n.Help != "" {
		fmt.Fprintf(&b, "%s\n\n", n.Help)
	}

	if len(n.Args) > 0 {
		b.WriteString("Arguments:\n")
		for _, a := range n.Args {
			fmt.Fprintf(&b, "  %-20s %s    %s\n", strings.ToUpper(a.Name), argModifier(a), a.Help)
		}
		b.WriteString("\n")
	}

	b.WriteString("Flags:\n")
	fmt.Fprintf(&b, "  %-20s %s\n", "-h, --help", "show this help")
	for _, f := range n.Flags {
		fmt.Fprintf(&b, "  %-20s %s    %s\n", flagLabel(f), flagModifier(f), f.Help)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func argUsage(a Arg) string {
	name := strings.ToUpper(a.Name)
	if a.Greedy {
		return fmt.Sprintf("<%s...>", name)
	}
	if a.Default != nil {
		return fmt.Sprintf("[%s]", name)
	}
	return fmt.Sprintf("<%s>", name)
}

func argModifier(a Arg) string {
	switch {
	case a.Greedy:
		return "(greedy)"
	case a.Default != nil:
		return fmt.Sprintf("(default=%q)", *a.Default)
	default:
		return "(required)"
	}
}

func flagLabel(f Flag) string {
	label := f.Long
	if f.Short != nil {
		label = *f.Short + ", " + f.Long
	}
	if f.Arg != nil {
		label += " <" + strings.ToUpper(*f.Arg) + ">"
	}
	return label
}

func flagModifier(f Flag) string {
	switch {
	case f.Greedy:
		return "(greedy)"
	case f.Required:
		return "(required)"
	case f.Default != nil:
		return fmt.Sprintf("(default=%q)", *f.Default)
	default:
		return ""
	}
}

// RootHelp renders the synthetic root group whose children are the
// top-level commands, used for the built-in "!help" alias.
func RootHelp(commands []*Node) string {
	root := &Node{Commands: commands}
	return renderGroupHelp(root, nil)
}
