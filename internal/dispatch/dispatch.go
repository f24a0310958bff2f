// Package dispatch runs the server role: pull one command, push exactly one
// response, repeat until the exit command is processed.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/averrett/sysq/internal/fsm"
	"github.com/averrett/sysq/internal/message"
	"github.com/averrett/sysq/internal/sysinfo"
)

// Receiver is the pulling end of a channel.
type Receiver interface {
	Recv() ([]byte, error)
}

// Sender is the pushing end of a channel.
type Sender interface {
	Send([]byte) error
}

// Dispatcher owns the server side of the ping-pong protocol.
type Dispatcher struct {
	logger *slog.Logger
	info   sysinfo.Provider
	maxMsg int
	state  fsm.State
}

// New builds a dispatcher bounded by the channel's max message size.
func New(logger *slog.Logger, info sysinfo.Provider, maxMsg int) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		logger: logger,
		info:   info,
		maxMsg: maxMsg,
		state:  fsm.StateAwaitingCommand,
	}
}

// State returns the current loop state.
func (d *Dispatcher) State() fsm.State {
	return d.state
}

// Run loops until the exit command or a channel failure. Each received
// payload produces exactly one response; payload buffers are fresh per
// iteration, so nothing stale bleeds into the next message. A send or
// receive error is fatal to the loop and returned for the caller to act on.
func (d *Dispatcher) Run(ctx context.Context, commands Receiver, responses Sender) error {
	for d.state == fsm.StateAwaitingCommand {
		payload, err := commands.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("command channel: %w", err)
		}

		input := string(payload)
		response, command, event := d.respond(input)
		d.logger.Info("command dispatched",
			"command", string(command),
			"response_length", len(response),
		)

		if err := responses.Send([]byte(response)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("response channel: %w", err)
		}

		next, err := fsm.Transition(d.state, event)
		if err != nil {
			return err
		}
		d.state = next
	}
	return nil
}

// respond classifies one received payload and builds its single response.
// Collaborator failures substitute their error text into the response; they
// are never a dispatcher fault.
func (d *Dispatcher) respond(input string) (string, message.Command, fsm.Event) {
	command := message.Classify(input)
	switch command {
	case message.CommandGetDomainName:
		value, err := d.info.DomainName()
		if err != nil {
			return message.Truncate(err.Error(), d.maxMsg), command, fsm.EventRespond
		}
		return message.Truncate(value, d.maxMsg), command, fsm.EventRespond
	case message.CommandGetHostName:
		value, err := d.info.HostName()
		if err != nil {
			return message.Truncate(err.Error(), d.maxMsg), command, fsm.EventRespond
		}
		return message.Truncate(value, d.maxMsg), command, fsm.EventRespond
	case message.CommandUname:
		info, err := d.info.Uname()
		if err != nil {
			return message.Truncate(err.Error(), d.maxMsg), command, fsm.EventRespond
		}
		formatted := message.FormatUname(
			info.System, info.Node, info.Release, info.Version, info.Machine, info.Domain,
		)
		return message.Truncate(formatted, d.maxMsg), command, fsm.EventRespond
	case message.CommandHelp:
		return message.Truncate(message.Help, d.maxMsg), command, fsm.EventRespond
	case message.CommandExit:
		return message.Truncate(message.Goodbye, d.maxMsg), command, fsm.EventExit
	default:
		return message.FormatUnknown(input, d.maxMsg), command, fsm.EventRespond
	}
}
