// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"fmt"
	"strings"

	shellwords "github.com/kballard/go-shellquote"

	"github.com/Dark-Alex-17/meshexec/pkg/cmdtree"
)

// Kind discriminates the three possible outcomes of a Dispatch call.
type Kind int

const (
	// Ignore means the payload wasn't a command (no leading "!"); no reply
	// should be sent.
	Ignore Kind = iota
	// Reply means text holds a user-facing string (error or help) to send
	// back as-is.
	Reply
	// Run means Invocation holds a fully bound execution plan.
	Run
)

// Invocation is a runtime-bound command ready for the executor: a resolved
// leaf, its environment bindings, and the original token sequence.
type Invocation struct {
	Leaf *cmdtree.Node
	Env  map[string]string
	Argv []string
}

// Result is the outcome of dispatching one inbound message.
type Result struct {
	Kind       Kind
	Text       string
	Invocation *Invocation
}

// dispatchError is used internally while binding to short-circuit to a
// Reply result; it is never returned from Dispatch as a Go error.
type dispatchError struct {
	msg string
}

func (e *dispatchError) Error() string { return e.msg }

// Dispatch resolves an inbound text payload against root, per spec.md §4.D.
func Dispatch(root *cmdtree.RootConfig, text string) Result {
	if len(text) == 0 || text[0] != '!' {
		return Result{Kind: Ignore}
	}

	tokens, err := shellwords.Split(text[1:])
	if err != nil {
		return Result{Kind: Reply, Text: fmt.Sprintf("bad quoting: %s", err)}
	}

	if len(tokens) == 1 && tokens[0] == "help" {
		return Result{Kind: Reply, Text: cmdtree.RootHelp(root.Commands)}
	}

	node, path, rest, result := walk(root.Commands, tokens)
	if result != nil {
		return *result
	}

	for _, tok := range rest {
		if tok == "--help" || tok == "-h" {
			return Result{Kind: Reply, Text: cmdtree.RenderHelp(node, path)}
		}
	}

	inv, derr := bind(node, rest)
	if derr != nil {
		return Result{Kind: Reply, Text: derr.msg + "\n\n" + cmdtree.RenderHelp(node, path)}
	}
	return Result{Kind: Run, Invocation: inv}
}

// walk descends from the top-level command list consuming tokens that match
// child names. It returns the Leaf node reached, the !-path of names
// leading to it, and the unconsumed tail. If a --help/-h is seen along the
// way, a Group is reached with no more tokens, or a token fails to match
// any child of the current Group, it instead returns a non-nil *Result to
// be returned directly by Dispatch.
func walk(commands []*cmdtree.Node, tokens []string) (node *cmdtree.Node, path []string, rest []string, result *Result) {
	var cur *cmdtree.Node
	siblings := commands
	i := 0

	groupHelp := func() Result {
		if cur == nil {
			return Result{Kind: Reply, Text: cmdtree.RootHelp(commands)}
		}
		return Result{Kind: Reply, Text: cmdtree.RenderHelp(cur, path)}
	}

	for {
		if cur != nil && cur.IsLeaf() {
			return cur, path, tokens[i:], nil
		}

		if i >= len(tokens) {
			r := groupHelp()
			return nil, nil, nil, &r
		}

		tok := tokens[i]
		if tok == "--help" || tok == "-h" {
			r := groupHelp()
			return nil, nil, nil, &r
		}

		child := findChild(siblings, tok)
		if child == nil {
			r := Result{Kind: Reply, Text: fmt.Sprintf("unknown command: '%s'\n\n%s", tok, groupHelp().Text)}
			return nil, nil, nil, &r
		}

		cur = child
		path = append(path, child.Name)
		siblings = child.Commands
		i++
	}
}

func findChild(siblings []*cmdtree.Node, name string) *cmdtree.Node {
	for _, s := range siblings {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// bind parses the remaining tokens against leaf's args/flags (spec.md §4.D
// step 4) and assembles the environment (step 5).
func bind(leaf *cmdtree.Node, tokens []string) (*Invocation, *dispatchError) {
	positional, flagValues, boolFlags, err := parseTokens(leaf, tokens)
	if err != nil {
		return nil, err
	}

	env := make(map[string]string)

	for long, present := range boolFlags {
		if present {
			f := findFlagByLong(leaf.Flags, long)
			env[f.BindingName()] = "true"
		}
	}
	for long, val := range flagValues {
		f := findFlagByLong(leaf.Flags, long)
		env[f.BindingName()] = val
	}
	for _, f := range leaf.Flags {
		_, boolSet := boolFlags[f.Long]
		_, valSet := flagValues[f.Long]
		if boolSet || valSet {
			continue
		}
		if f.Required && f.Default == nil {
			return nil, &dispatchError{msg: fmt.Sprintf("missing required flag: %s", f.Long)}
		}
		if f.Default != nil {
			env[f.BindingName()] = *f.Default
		}
	}

	if err := bindPositionals(leaf, positional, env); err != nil {
		return nil, err
	}

	return &Invocation{Leaf: leaf, Env: env, Argv: tokens}, nil
}

func findFlagByLong(flags []cmdtree.Flag, long string) *cmdtree.Flag {
	for i := range flags {
		if flags[i].Long == long {
			return &flags[i]
		}
	}
	return nil
}

// parseTokens splits tokens into positionals and flag bindings, per
// spec.md §4.D step 4's token-classification rules.
func parseTokens(leaf *cmdtree.Node, tokens []string) (positional []string, flagValues map[string]string, boolFlags map[string]bool, derr *dispatchError) {
	flagValues = make(map[string]string)
	boolFlags = make(map[string]bool)
	noMoreFlags := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if noMoreFlags {
			positional = append(positional, tok)
			continue
		}
		if tok == "--" {
			noMoreFlags = true
			continue
		}

		var flag *cmdtree.Flag
		switch {
		case strings.HasPrefix(tok, "--"):
			flag = findFlagByLong(leaf.Flags, tok)
		case strings.HasPrefix(tok, "-") && len(tok) == 2:
			flag = findFlagByShort(leaf.Flags, tok)
		default:
			positional = append(positional, tok)
			continue
		}

		if flag == nil {
			return nil, nil, nil, &dispatchError{msg: fmt.Sprintf("unknown flag: '%s'", tok)}
		}

		if flag.IsBoolean() {
			boolFlags[flag.Long] = true
			continue
		}

		if flag.Greedy {
			rest := tokens[i+1:]
			flagValues[flag.Long] = strings.Join(rest, " ")
			i = len(tokens)
			break
		}

		if i+1 >= len(tokens) {
			return nil, nil, nil, &dispatchError{msg: fmt.Sprintf("flag %s requires a value", flag.Long)}
		}
		i++
		flagValues[flag.Long] = tokens[i]
	}

	return positional, flagValues, boolFlags, nil
}

func findFlagByShort(flags []cmdtree.Flag, short string) *cmdtree.Flag {
	for i := range flags {
		if flags[i].Short != nil && *flags[i].Short == short {
			return &flags[i]
		}
	}
	return nil
}

// bindPositionals binds positional tokens to leaf.Args in order, handling
// the trailing greedy arg, defaults and required-argument errors.
func bindPositionals(leaf *cmdtree.Node, positional []string, env map[string]string) *dispatchError {
	for i, a := range leaf.Args {
		switch {
		case a.Greedy:
			if i < len(positional) {
				env[a.BindingName()] = strings.Join(positional[i:], " ")
			} else if a.Default != nil {
				env[a.BindingName()] = *a.Default
			} else {
				return &dispatchError{msg: fmt.Sprintf("missing required argument: %s", a.Name)}
			}
		case i < len(positional):
			env[a.BindingName()] = positional[i]
		case a.Default != nil:
			env[a.BindingName()] = *a.Default
		default:
			return &dispatchError{msg: fmt.Sprintf("missing required argument: %s", a.Name)}
		}
	}
	return nil
}
