package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/averrett/sysq/internal/channel"
	"github.com/averrett/sysq/internal/cli"
	"github.com/averrett/sysq/internal/client"
	"github.com/averrett/sysq/internal/config"
	"github.com/averrett/sysq/internal/dispatch"
	"github.com/averrett/sysq/internal/doctor"
	"github.com/averrett/sysq/internal/logging"
	"github.com/averrett/sysq/internal/supervisor"
	"github.com/averrett/sysq/internal/sysinfo"
	"github.com/averrett/sysq/internal/version"
)

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	r := Runner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("sysq"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("sysq"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded, logger)
	case cli.CommandClient:
		return r.commandClient(ctx, cfgLoaded, logger, parsed.PeerPID)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandRun is the server role. It owns the channel names: both channels
// are listening before the client role is spawned, so a setup failure never
// leaves an orphaned child.
func (r Runner) commandRun(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger) int {
	chCfg := channelConfig(cfgLoaded.Config)

	pair, err := channel.ListenPair(chCfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("channel setup failed", "error", err.Error())
		return 1
	}

	sigClose := closeOnCancel(ctx, pair)

	self, err := supervisor.Self()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		_ = pair.Close()
		return 1
	}

	clientArgs := []string{"client", "--peer-pid", strconv.Itoa(os.Getpid())}
	if cfgLoaded.Exists {
		clientArgs = append(clientArgs, "--config", cfgLoaded.Path)
	}
	proc, err := supervisor.Spawn(ctx, logger, self, clientArgs...)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("spawn client failed", "error", err.Error())
		_ = pair.Close()
		return 1
	}
	logger.Info("client spawned", "pid", proc.Pid())

	d := dispatch.New(logger, sysinfo.System{}, chCfg.MaxMsgSize)
	if err := d.Run(ctx, pair.Command, pair.Response); err != nil {
		if ctx.Err() != nil {
			logger.Info("interrupted; cleaning up")
			proc.TerminateAndReap()
			return exitFromClose(r.Stderr, <-sigClose)
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("dispatcher failed", "error", err.Error())
		_ = pair.Close()
		proc.TerminateAndReap()
		return 1
	}

	// Clean shutdown: the exit command was answered, the client stops on its
	// own. Wait failure falls back to forced termination inside the proc.
	proc.WaitAndReap()

	if err := pair.Close(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("session complete")
	return 0
}

// commandClient is the interactive role spawned by run. peerPID identifies
// the server for teardown on fatal errors.
func (r Runner) commandClient(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger, peerPID int) int {
	if peerPID == 0 {
		peerPID = os.Getppid()
	}

	chCfg := channelConfig(cfgLoaded.Config)

	pair, err := channel.DialPair(chCfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("channel dial failed", "error", err.Error())
		supervisor.TerminateAndReap(logger, peerPID)
		return 1
	}

	sigClose := closeOnCancel(ctx, pair)

	c := client.New(logger, r.Stdin, r.Stdout, chCfg.MaxMsgSize)
	if err := c.Run(ctx, pair.Command, pair.Response); err != nil {
		if ctx.Err() != nil {
			logger.Info("interrupted; cleaning up")
			return exitFromClose(r.Stderr, <-sigClose)
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("client failed", "error", err.Error())
		_ = pair.Close()
		supervisor.TerminateAndReap(logger, peerPID)
		return 1
	}

	if err := pair.Close(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// closeOnCancel tears the channel pair down when the signal context fires,
// which unblocks any in-flight send/receive. The returned channel carries
// the close result for the signal exit path.
func closeOnCancel(ctx context.Context, pair *channel.Pair) <-chan error {
	result := make(chan error, 1)
	go func() {
		<-ctx.Done()
		result <- pair.Close()
	}()
	return result
}

func exitFromClose(stderr io.Writer, closeErr error) int {
	if closeErr != nil {
		fmt.Fprintf(stderr, "error: %v\n", closeErr)
		return 1
	}
	return 0
}

// channelConfig materializes the wire-level channel settings from config.
func channelConfig(cfg config.Config) channel.Config {
	dir := cfg.Channel.Dir
	if dir == "" {
		dir = config.ResolveRuntimeDir()
	}
	return channel.Config{
		Dir:          dir,
		CommandName:  cfg.Channel.CommandName,
		ResponseName: cfg.Channel.ResponseName,
		Capacity:     cfg.Channel.Capacity,
		MaxMsgSize:   cfg.Channel.MaxMsgSize,
		Perms:        os.FileMode(cfg.Channel.Perms),
		SendTimeout:  time.Duration(cfg.Channel.SendTimeoutMS) * time.Millisecond,
		RecvTimeout:  time.Duration(cfg.Channel.RecvTimeoutMS) * time.Millisecond,
		DialBudget:   time.Duration(cfg.Channel.DialBudgetMS) * time.Millisecond,
	}
}
