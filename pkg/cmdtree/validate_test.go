// SPDX-License-Identifier: MPL-2.0

package cmdtree

import "testing"

func strPtr(s string) *string { return &s }

func baseConfig() *RootConfig {
	return &RootConfig{
		Shell:           "/bin/sh",
		MaxTextBytes:    200,
		MaxContentBytes: 180,
		Commands: []*Node{
			{Name: "status", Command: "echo ok"},
		},
	}
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	if err := Validate(baseConfig()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMissingShell(t *testing.T) {
	cfg := baseConfig()
	cfg.Shell = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for missing shell")
	}
}

func TestValidateRejectsAmbiguousLeafGroupNode(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{Name: "oops"}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a node that is neither a leaf nor a group")
	}
}

func TestValidateRejectsTwoGreedyArgs(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{
		Name:    "run",
		Command: "echo $a $b",
		Args: []Arg{
			{Name: "a", Greedy: true},
			{Name: "b", Greedy: true},
		},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for two greedy args")
	}
}

func TestValidateRejectsGreedyArgNotLast(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{
		Name:    "run",
		Command: "echo $a $b",
		Args: []Arg{
			{Name: "a", Greedy: true},
			{Name: "b"},
		},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a greedy arg that isn't last")
	}
}

func TestValidateRejectsDuplicateFlagIdentifiers(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{
		Name:    "run",
		Command: "echo",
		Flags: []Flag{
			{Long: "--port", Arg: strPtr("port")},
			{Long: "--port-number", Arg: strPtr("port")},
		},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for two flags binding the same identifier")
	}
}

func TestValidateRejectsReservedHelpIdentifier(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{
		Name:    "run",
		Command: "echo",
		Flags:   []Flag{{Long: "--help"}},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for a flag claiming the reserved 'help' identifier")
	}
}

func TestValidateRejectsDuplicateChildNames(t *testing.T) {
	cfg := baseConfig()
	cfg.Commands = []*Node{{
		Name: "net",
		Commands: []*Node{
			{Name: "ping", Command: "echo ping"},
			{Name: "ping", Command: "echo ping again"},
		},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for duplicate child command names")
	}
}

func TestValidateRejectsMaxContentBytesBelowUTF8Floor(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxContentBytes = 3
	if err := Validate(cfg); err == nil {
		t.Fatal("expected an error for max_content_bytes below the 4-byte UTF-8 floor")
	}
}

func TestValidateAcceptsMaxContentBytesAtUTF8Floor(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxContentBytes = 4
	cfg.MaxTextBytes = 16
	cfg.MaxOutputBytes = 4 // keeps worstN at 1 so no footer-reserve headroom is needed
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateFooterReserveInvariant(t *testing.T) {
	// max_output_bytes / max_content_bytes = 65536/190 -> 345 frames ->
	// 3-digit footer " [345/345]" needs 2*3+4 = 10 bytes of headroom.
	cfg := baseConfig()
	cfg.MaxContentBytes = 190
	cfg.MaxTextBytes = 195 // only 5 bytes of headroom, not enough for a 10-byte footer
	if err := Validate(cfg); err == nil {
		t.Fatal("expected the footer-reserve invariant to reject insufficient headroom")
	}
}

func TestValidateFooterReserveSatisfiedWithHeadroom(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxContentBytes = 190
	cfg.MaxTextBytes = 210
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
