// Package client runs the interactive role: prompt for a command, send it,
// block for the single paired response, print it.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/averrett/sysq/internal/fsm"
	"github.com/averrett/sysq/internal/message"
)

// Sender is the pushing end of a channel.
type Sender interface {
	Send([]byte) error
}

// Receiver is the pulling end of a channel.
type Receiver interface {
	Recv() ([]byte, error)
}

// Client owns the interactive side of the ping-pong protocol.
type Client struct {
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	maxMsg int
	state  fsm.State
}

// New builds a client reading commands from in and printing responses to out.
func New(logger *slog.Logger, in io.Reader, out io.Writer, maxMsg int) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		logger: logger,
		in:     in,
		out:    out,
		maxMsg: maxMsg,
		state:  fsm.StatePrompting,
	}
}

// State returns the current loop state.
func (c *Client) State() fsm.State {
	return c.state
}

// Run prints the help text and the first prompt, then alternates strictly:
// one command sent, one response received. End of input without an exit
// command ends the loop silently; nothing is sent for a line never typed.
// Channel failures are returned for the caller to act on.
func (c *Client) Run(ctx context.Context, commands Sender, responses Receiver) error {
	fmt.Fprintln(c.out, message.Help)
	fmt.Fprint(c.out, message.Prompt)

	reader := bufio.NewReader(c.in)
	for c.state == fsm.StatePrompting {
		input, ok, err := c.readLine(reader)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if !ok {
			break
		}

		if err := c.transition(fsm.EventSend); err != nil {
			return err
		}
		if err := commands.Send([]byte(input)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("command channel: %w", err)
		}

		payload, err := responses.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("response channel: %w", err)
		}
		fmt.Fprintln(c.out, string(payload))

		if message.Classify(input) == message.CommandExit {
			if err := c.transition(fsm.EventExit); err != nil {
				return err
			}
			continue
		}
		if err := c.transition(fsm.EventReceive); err != nil {
			return err
		}
		fmt.Fprint(c.out, message.Prompt)
	}

	if c.state == fsm.StatePrompting {
		if err := c.transition(fsm.EventEOF); err != nil {
			return err
		}
		c.logger.Info("input stream ended without exit command")
	}
	return nil
}

// readLine reads one line of input, bounded to the message capacity. A line
// of any length is accepted: everything past the capacity is consumed and
// dropped, so an oversize line truncates instead of failing and the next
// read starts at the next line. The second return is false at end of input.
func (c *Client) readLine(r *bufio.Reader) (string, bool, error) {
	var b strings.Builder
	read := false
	for {
		chunk, err := r.ReadString('\n')
		if chunk != "" {
			read = true
		}
		terminated := strings.HasSuffix(chunk, "\n")
		chunk = strings.TrimSuffix(chunk, "\n")
		if b.Len() < c.maxMsg {
			b.WriteString(message.Truncate(chunk, c.maxMsg-b.Len()))
		}

		if errors.Is(err, io.EOF) {
			return b.String(), read, nil
		}
		if err != nil {
			return "", false, err
		}
		if terminated {
			return b.String(), true, nil
		}
	}
}

func (c *Client) transition(event fsm.Event) error {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}
