// SPDX-License-Identifier: MPL-2.0

package cmdtree

import (
	"strings"
	"testing"
)

func TestRenderHelpGroupListsSubcommands(t *testing.T) {
	n := &Node{
		Name: "net",
		Help: "network diagnostics",
		Commands: []*Node{
			{Name: "ping", Help: "ping a host"},
			{Name: "check-port", Help: "check a tcp port"},
		},
	}

	out := RenderHelp(n, []string{"net"})

	if !strings.HasPrefix(out, "!net <subcommand> [args...]\n") {
		t.Fatalf("unexpected usage line: %q", out)
	}
	if !strings.Contains(out, "network diagnostics") {
		t.Fatalf("missing group help text: %q", out)
	}
	if !strings.Contains(out, "ping") || !strings.Contains(out, "check-port") {
		t.Fatalf("missing subcommands: %q", out)
	}
}

func TestRenderHelpLeafShowsArgsAndFlags(t *testing.T) {
	def := "8080"
	n := &Node{
		Name:    "check-port",
		Help:    "check a tcp port",
		Command: "nc -z $host $port",
		Args: []Arg{
			{Name: "host"},
		},
		Flags: []Flag{
			{Long: "--port", Arg: strPtr("port"), Default: &def},
		},
	}

	out := RenderHelp(n, []string{"net", "check-port"})

	if !strings.HasPrefix(out, "!net check-port <HOST> [flags...]\n") {
		t.Fatalf("unexpected usage line: %q", out)
	}
	if !strings.Contains(out, "Arguments:") || !strings.Contains(out, "HOST") {
		t.Fatalf("missing arguments section: %q", out)
	}
	if !strings.Contains(out, "--port") || !strings.Contains(out, `default="8080"`) {
		t.Fatalf("missing flag default annotation: %q", out)
	}
	if !strings.Contains(out, "-h, --help") {
		t.Fatalf("missing built-in help flag: %q", out)
	}
}

func TestRootHelpRendersTopLevelCommands(t *testing.T) {
	commands := []*Node{
		{Name: "net", Help: "network diagnostics", Commands: []*Node{{Name: "ping"}}},
		{Name: "status", Help: "system status", Command: "echo ok"},
	}

	out := RootHelp(commands)

	if !strings.HasPrefix(out, "!<subcommand> [args...]\n") {
		t.Fatalf("unexpected usage line: %q", out)
	}
	if !strings.Contains(out, "net") || !strings.Contains(out, "status") {
		t.Fatalf("missing top-level commands: %q", out)
	}
}
