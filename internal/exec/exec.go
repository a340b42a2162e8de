// SPDX-License-Identifier: MPL-2.0

package exec

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dark-Alex-17/meshexec/internal/dispatch"
	"github.com/Dark-Alex-17/meshexec/pkg/cmdtree"
)

// capBuffer is an io.Writer that retains only the first cap bytes written
// to it, tracking whether anything was dropped. Safe for concurrent use so
// it can be assigned to both Stdout and Stderr of an *exec.Cmd (the
// standard library serializes writes to a Writer shared between the two,
// mirroring the interleaved-capture behavior internal/runtime/native.go
// relies on in the teacher).
type capBuffer struct {
	mu      sync.Mutex
	cap     int
	buf     []byte
	dropped bool
}

func newCapBuffer(capBytes int) *capBuffer {
	return &capBuffer{cap: capBytes}
}

func (c *capBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.buf) < c.cap {
		room := c.cap - len(c.buf)
		if room > len(p) {
			room = len(p)
		}
		c.buf = append(c.buf, p[:room]...)
		if room < len(p) {
			c.dropped = true
		}
	} else if len(p) > 0 {
		c.dropped = true
	}
	return len(p), nil
}

func (c *capBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf)
}

func (c *capBuffer) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Run spawns cfg.Shell with cfg.ShellArgs followed by inv.Leaf.Command,
// with inv.Env exported as additional environment variables, and returns
// the combined-output reply string. It never returns a Go error: every
// failure mode is folded into the returned string per spec.md §4.E.
func Run(ctx context.Context, cfg *cmdtree.RootConfig, inv *dispatch.Invocation, logger *log.Logger) string {
	timeout := time.Duration(cfg.ExecTimeout()) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := osexec.CommandContext(runCtx, cfg.Shell, append(append([]string{}, cfg.ShellArgs...), inv.Leaf.Command)...)
	cmd.Env = buildEnv(inv.Env)
	// On context cancellation (invocation timeout or gateway shutdown),
	// ask the child to exit before killing it: SIGTERM now, SIGKILL if it
	// hasn't exited within the configured grace period.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = time.Duration(cfg.ShutdownGrace()) * time.Second

	out := newCapBuffer(cfg.OutputCap())
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Stdin = nil // closed immediately: no input is ever forwarded to the child

	logger.Info("executing", "leaf", inv.Leaf.Name, "timeout", timeout)
	err := cmd.Run()

	captured := out.String()
	truncated := out.Truncated()

	if runCtx.Err() == context.DeadlineExceeded {
		logger.Warn("execution timed out", "leaf", inv.Leaf.Name, "timeout", timeout)
		result := captured
		if truncated {
			result += "\n[output truncated]"
		}
		return result + fmt.Sprintf("\n[timed out after %ds]", cfg.ExecTimeout())
	}

	result := captured
	if truncated {
		result += "\n[output truncated]"
	}

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*osexec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			logger.Error("failed to execute command", "leaf", inv.Leaf.Name, "error", err)
			return fmt.Sprintf("[exit 1]\nfailed to execute command: %s", err)
		}
	}
	if exitCode != 0 {
		result = fmt.Sprintf("[exit %d]\n%s", exitCode, result)
	}
	return result
}

// buildEnv merges the inherited process environment with the bound
// values, later entries overwriting earlier ones of the same key, per
// spec.md §4.D step 5.
func buildEnv(bound map[string]string) []string {
	env := os.Environ()
	for k, v := range bound {
		env = append(env, k+"="+v)
	}
	return env
}
