// SPDX-License-Identifier: MPL-2.0

package cmdtree

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadError is a fatal error encountered while loading or validating a
// command tree. Locator identifies the offending node in dotted/indexed
// path form, e.g. "root.commands[2].commands[0].flags[1]".
type LoadError struct {
	Locator string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Locator == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Locator, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CycleError reports an import cycle discovered while loading a command
// tree. Chain lists each file exactly once, in the order it was entered,
// with the file that closes the cycle repeated at the end.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	s := "import cycle detected: "
	for i, f := range e.Chain {
		if i > 0 {
			s += " -> "
		}
		s += f
	}
	return s
}

// rawArg, rawFlag and rawNode mirror the YAML document shape. rawNode is
// also used for the "import or inline" union: an import node has Import
// set and nothing else; an inline node has Name/Help plus either Command
// or Commands.
type rawArg struct {
	Name    string  `yaml:"name"`
	Help    string  `yaml:"help"`
	Default *string `yaml:"default"`
	Greedy  bool    `yaml:"greedy"`
}

type rawFlag struct {
	Long     string  `yaml:"long"`
	Short    *string `yaml:"short"`
	Help     string  `yaml:"help"`
	Arg      *string `yaml:"arg"`
	Required bool    `yaml:"required"`
	Default  *string `yaml:"default"`
	Greedy   bool    `yaml:"greedy"`
}

type rawNode struct {
	Import   string    `yaml:"import"`
	Name     string    `yaml:"name"`
	Help     string    `yaml:"help"`
	Command  string    `yaml:"command"`
	Args     []rawArg  `yaml:"args"`
	Flags    []rawFlag `yaml:"flags"`
	Commands []rawNode `yaml:"commands"`
}

type rawRoot struct {
	Device               string    `yaml:"device"`
	Channel              int       `yaml:"channel"`
	Baud                 int       `yaml:"baud"`
	Shell                string    `yaml:"shell"`
	ShellArgs            []string  `yaml:"shell_args"`
	MaxTextBytes         int       `yaml:"max_text_bytes"`
	ChunkDelay           int       `yaml:"chunk_delay"`
	MaxContentBytes      int       `yaml:"max_content_bytes"`
	ExecTimeoutSeconds   int       `yaml:"exec_timeout_seconds"`
	MaxOutputBytes       int       `yaml:"max_output_bytes"`
	ShutdownGraceSeconds int       `yaml:"shutdown_grace"`
	Commands             []rawNode `yaml:"commands"`
}

// importStack tracks the canonicalized absolute paths currently being
// loaded, for cycle detection, per spec.md §4.B.
type importStack struct {
	paths []string
	set   map[string]bool
}

func newImportStack() *importStack {
	return &importStack{set: make(map[string]bool)}
}

func (s *importStack) push(path string) error {
	if s.set[path] {
		chain := append(append([]string{}, s.paths...), path)
		return &CycleError{Chain: chain}
	}
	s.paths = append(s.paths, path)
	s.set[path] = true
	return nil
}

func (s *importStack) pop() {
	last := s.paths[len(s.paths)-1]
	s.paths = s.paths[:len(s.paths)-1]
	delete(s.set, last)
}

// Load reads and fully resolves a command tree rooted at path: it parses
// the root document, recursively splices in any "import:" nodes (detecting
// cycles along the way), then runs structural validation. All failures are
// returned as *LoadError or *CycleError.
func Load(path string) (*RootConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("resolve path %q: %w", path, err)}
	}

	stack := newImportStack()
	if err := stack.push(abs); err != nil {
		return nil, err
	}
	defer stack.pop()

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &LoadError{Locator: "root", Err: fmt.Errorf("read %s: %w", abs, err)}
	}

	var raw rawRoot
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Locator: "root", Err: fmt.Errorf("parse %s: %w", abs, err)}
	}

	dir := filepath.Dir(abs)
	commands, err := resolveCommands(raw.Commands, dir, "root.commands", stack)
	if err != nil {
		return nil, err
	}

	root := &RootConfig{
		Device:               raw.Device,
		Channel:              raw.Channel,
		Baud:                 raw.Baud,
		Shell:                raw.Shell,
		ShellArgs:            raw.ShellArgs,
		MaxTextBytes:         raw.MaxTextBytes,
		ChunkDelayMillis:     raw.ChunkDelay,
		MaxContentBytes:      raw.MaxContentBytes,
		ExecTimeoutSeconds:   raw.ExecTimeoutSeconds,
		MaxOutputBytes:       raw.MaxOutputBytes,
		ShutdownGraceSeconds: raw.ShutdownGraceSeconds,
		Commands:             commands,
	}

	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// resolveCommands splices import entries and builds inline nodes for a
// "commands:" list found in the file living in dir. locator is the
// path-like prefix (without index) used for error reporting of this list.
func resolveCommands(entries []rawNode, dir, locator string, stack *importStack) ([]*Node, error) {
	var out []*Node
	for i, e := range entries {
		itemLocator := fmt.Sprintf("%s[%d]", locator, i)
		if e.Import != "" {
			imported, err := loadImport(e.Import, dir, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, imported...)
			continue
		}
		node, err := buildNode(e, dir, itemLocator, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// loadImport resolves a single "import: <path>" entry relative to dir,
// pushing/popping it on the cycle-detection stack while its contents load.
func loadImport(importPath, dir string, stack *importStack) ([]*Node, error) {
	full := importPath
	if !filepath.IsAbs(full) {
		full = filepath.Join(dir, importPath)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("resolve import %q: %w", importPath, err)}
	}

	if err := stack.push(abs); err != nil {
		return nil, err
	}
	defer stack.pop()

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read import %s: %w", abs, err)}
	}

	entries, err := parseImportedEntries(data, abs)
	if err != nil {
		return nil, err
	}

	importDir := filepath.Dir(abs)
	return resolveCommands(entries, importDir, fmt.Sprintf("import(%s)", importPath), stack)
}

// parseImportedEntries accepts either a single mapping (one Command node)
// or a sequence of Command nodes, per spec.md §4.B.
func parseImportedEntries(data []byte, abs string) ([]rawNode, error) {
	var seq []rawNode
	if err := yaml.Unmarshal(data, &seq); err == nil {
		return seq, nil
	}
	var single rawNode
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse import %s: %w", abs, err)}
	}
	return []rawNode{single}, nil
}

// buildNode converts a rawNode (already known not to be an import) into a
// Node, recursing into Commands if present.
func buildNode(e rawNode, dir, locator string, stack *importStack) (*Node, error) {
	n := &Node{
		Name:    e.Name,
		Help:    e.Help,
		Command: e.Command,
	}
	for _, a := range e.Args {
		n.Args = append(n.Args, Arg{
			Name:    a.Name,
			Help:    a.Help,
			Default: a.Default,
			Greedy:  a.Greedy,
		})
	}
	for _, f := range e.Flags {
		n.Flags = append(n.Flags, Flag{
			Long:     f.Long,
			Short:    f.Short,
			Help:     f.Help,
			Arg:      f.Arg,
			Required: f.Required,
			Default:  f.Default,
			Greedy:   f.Greedy,
		})
	}
	if e.Commands != nil {
		children, err := resolveCommands(e.Commands, dir, locator+".commands", stack)
		if err != nil {
			return nil, err
		}
		n.Commands = children
	}
	return n, nil
}
