// Package supervisor spawns the client role as a subprocess of the server
// and guarantees zombie-free teardown of the pair on every error path.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	ps "github.com/mitchellh/go-ps"
)

const reapBudget = 5 * time.Second

// Proc is a spawned role the current process owns and must reap.
type Proc struct {
	cmd    *exec.Cmd
	logger *slog.Logger
}

// Self resolves the running binary for role re-execution.
func Self() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

// Spawn starts name with args, console attached to the current process. The
// context kills the child if the parent is cancelled mid-run.
func Spawn(ctx context.Context, logger *slog.Logger, name string, args ...string) (*Proc, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}
	return &Proc{cmd: cmd, logger: ensureLogger(logger)}, nil
}

// Pid returns the child's process id.
func (p *Proc) Pid() int {
	return p.cmd.Process.Pid
}

// Wait blocks until the child exits on its own.
func (p *Proc) Wait() error {
	return p.cmd.Wait()
}

// WaitAndReap waits for the owned child to exit on its own. A nonzero exit
// status is normal here and only logged; a wait that fails outright falls
// back to forced termination so the child can never linger.
func (p *Proc) WaitAndReap() {
	pid := p.Pid()
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.logger.Warn("child exited with error", "pid", pid, "status", exitErr.ExitCode())
			return
		}
		p.logger.Error("wait for child failed", "pid", pid, "error", err.Error())
		if killErr := p.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			p.logger.Error("kill child failed", "pid", pid, "error", killErr.Error())
		}
		confirmGone(p.logger, pid)
	}
}

// TerminateAndReap force-kills the owned child and reaps it. Only invoked on
// already-fatal paths, so failures are logged and never escalated.
func (p *Proc) TerminateAndReap() {
	pid := p.Pid()
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error("kill child failed", "pid", pid, "error", err.Error())
	}
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.logger.Error("reap child failed", "pid", pid, "error", err.Error())
			return
		}
	}
	confirmGone(p.logger, pid)
}

// TerminateAndReap force-kills a sibling identified only by pid, used by the
// client role against the server process. The wait is best-effort: a process
// cannot reap a sibling it did not spawn, so a wait failure is reported and
// followed by a process-table check rather than escalated.
func TerminateAndReap(logger *slog.Logger, pid int) {
	logger = ensureLogger(logger)

	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		logger.Error("kill sibling failed", "pid", pid, "error", err.Error())
	}

	var status syscall.WaitStatus
	if _, err := syscall.Wait4(pid, &status, 0, nil); err != nil {
		if !errors.Is(err, syscall.ECHILD) {
			logger.Error("wait for sibling failed", "pid", pid, "error", err.Error())
		}
		confirmGone(logger, pid)
	}
}

// confirmGone polls the process table until pid disappears or the budget
// runs out. Diagnostic only.
func confirmGone(logger *slog.Logger, pid int) {
	deadline := time.Now().Add(reapBudget)
	for {
		proc, err := ps.FindProcess(pid)
		if err != nil {
			logger.Error("process table lookup failed", "pid", pid, "error", err.Error())
			return
		}
		if proc == nil {
			return
		}
		if time.Now().After(deadline) {
			logger.Error("process still present after reap", "pid", pid)
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func ensureLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
