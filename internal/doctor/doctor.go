// Package doctor runs runtime readiness diagnostics for config, the channel
// namespace, and leftover processes.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/averrett/sysq/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	dir := cfg.Config.Channel.Dir
	if dir == "" {
		dir = config.ResolveRuntimeDir()
	}
	checks = append(checks, checkRuntimeDir(dir))
	checks = append(checks, checkStaleChannel(dir, cfg.Config.Channel.CommandName))
	checks = append(checks, checkStaleChannel(dir, cfg.Config.Channel.ResponseName))
	checks = append(checks, checkNoOtherInstance())

	return Report{Checks: checks}
}

// checkRuntimeDir verifies the channel directory exists and is writable.
func checkRuntimeDir(dir string) Check {
	info, err := os.Stat(dir)
	if err != nil {
		return Check{Name: "channel.dir", Pass: false, Message: fmt.Sprintf("stat %s: %v", dir, err)}
	}
	if !info.IsDir() {
		return Check{Name: "channel.dir", Pass: false, Message: fmt.Sprintf("%s is not a directory", dir)}
	}

	probe, err := os.CreateTemp(dir, ".sysq-doctor-*")
	if err != nil {
		return Check{Name: "channel.dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	probePath := probe.Name()
	_ = probe.Close()
	_ = os.Remove(probePath)

	return Check{Name: "channel.dir", Pass: true, Message: fmt.Sprintf("%s is writable", dir)}
}

// checkStaleChannel flags a channel name left behind by a crashed run. A
// live run unlinks its names as soon as the pair connects, so any file here
// is stale and will block the next listen.
func checkStaleChannel(dir, name string) Check {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return Check{
			Name:    "channel." + name,
			Pass:    false,
			Message: fmt.Sprintf("stale channel name %s; remove it before starting", path),
		}
	}
	return Check{Name: "channel." + name, Pass: true, Message: "namespace is clear"}
}

// checkNoOtherInstance scans the process table for another running sysq.
func checkNoOtherInstance() Check {
	procs, err := ps.Processes()
	if err != nil {
		return Check{Name: "process.table", Pass: false, Message: fmt.Sprintf("process table scan failed: %v", err)}
	}

	self := os.Getpid()
	for _, proc := range procs {
		if proc.Pid() != self && proc.Executable() == "sysq" {
			return Check{
				Name:    "process.table",
				Pass:    false,
				Message: fmt.Sprintf("another sysq process is running (pid %d)", proc.Pid()),
			}
		}
	}
	return Check{Name: "process.table", Pass: true, Message: "no other sysq process"}
}
