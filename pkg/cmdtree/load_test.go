// SPDX-License-Identifier: MPL-2.0

package cmdtree

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const baseRootYAML = `
shell: /bin/sh
shell_args: ["-c"]
max_text_bytes: 200
max_content_bytes: 180
commands:
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadInlineCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "root.yaml", baseRootYAML+`
  - name: status
    command: "echo ok"
`)

	root, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(root.Commands) != 1 || root.Commands[0].Name != "status" {
		t.Fatalf("unexpected commands: %+v", root.Commands)
	}
	if !root.Commands[0].IsLeaf() {
		t.Fatalf("expected status to be a leaf")
	}
}

func TestLoadImportSplicesEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "network.yaml", `
- name: ping
  command: "ping -c1 $host"
  args:
    - name: host
`)
	path := writeFile(t, dir, "root.yaml", baseRootYAML+`
  - import: network.yaml
`)

	root, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(root.Commands) != 1 || root.Commands[0].Name != "ping" {
		t.Fatalf("import did not splice expected command: %+v", root.Commands)
	}
}

func TestLoadImportCycleReportsOrderedChain(t *testing.T) {
	dir := t.TempDir()
	// a.yaml imports back to root.yaml, forming a cycle: root -> a -> root.
	writeFile(t, dir, "a.yaml", `
- import: root.yaml
`)
	path := writeFile(t, dir, "root.yaml", baseRootYAML+`
  - import: a.yaml
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycleErr.Chain) != 3 {
		t.Fatalf("chain = %v, want 3 entries (root, a, root)", cycleErr.Chain)
	}
	if cycleErr.Chain[0] != cycleErr.Chain[2] {
		t.Fatalf("chain should close the cycle, got %v", cycleErr.Chain)
	}
}

func TestLoadDeterministicAcrossEquivalentTrees(t *testing.T) {
	dir := t.TempDir()
	inlinePath := writeFile(t, dir, "inline.yaml", baseRootYAML+`
  - name: status
    command: "echo ok"
`)

	dir2 := t.TempDir()
	writeFile(t, dir2, "status.yaml", `
- name: status
  command: "echo ok"
`)
	splicedPath := writeFile(t, dir2, "root.yaml", baseRootYAML+`
  - import: status.yaml
`)

	a, err := Load(inlinePath)
	if err != nil {
		t.Fatalf("Load inline: %v", err)
	}
	b, err := Load(splicedPath)
	if err != nil {
		t.Fatalf("Load spliced: %v", err)
	}

	if len(a.Commands) != len(b.Commands) {
		t.Fatalf("command count differs: %d vs %d", len(a.Commands), len(b.Commands))
	}
	if a.Commands[0].Name != b.Commands[0].Name || a.Commands[0].Command != b.Commands[0].Command {
		t.Fatalf("loaded trees differ: %+v vs %+v", a.Commands[0], b.Commands[0])
	}
}

func TestLoadRejectsEmptyCommandList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "root.yaml", baseRootYAML)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a validation error for an empty command list")
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *LoadError, got %T", err)
	}
}
