package client

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/averrett/sysq/internal/fsm"
	"github.com/averrett/sysq/internal/message"
)

type captureSender struct {
	sent []string
	err  error
}

func (s *captureSender) Send(payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, string(payload))
	return nil
}

type scriptedReceiver struct {
	responses []string
	err       error
}

func (r *scriptedReceiver) Recv() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	next := r.responses[0]
	r.responses = r.responses[1:]
	return []byte(next), nil
}

func TestRunSendsCommandsAndPrintsResponses(t *testing.T) {
	in := strings.NewReader("help\nexit\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{responses: []string{message.Help, message.Goodbye}}

	c := New(nil, in, &out, 1024)
	require.NoError(t, c.Run(context.Background(), commands, responses))

	require.Equal(t, []string{"help", "exit"}, commands.sent)
	require.Equal(t, fsm.StateStopped, c.State())

	printed := out.String()
	require.Contains(t, printed, message.Help)
	require.Contains(t, printed, message.Goodbye)
}

func TestRunStopsAfterExitWithoutFurtherPrompt(t *testing.T) {
	// Input continues past exit; none of it may be sent.
	in := strings.NewReader("exit\nhelp\nuname\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{responses: []string{message.Goodbye}}

	c := New(nil, in, &out, 1024)
	require.NoError(t, c.Run(context.Background(), commands, responses))

	require.Equal(t, []string{"exit"}, commands.sent)

	printed := out.String()
	require.Equal(t, 1, strings.Count(printed, message.Prompt), "no prompt after the exit command")
	require.True(t, strings.HasSuffix(printed, message.Goodbye+"\n"))
}

func TestRunPromptsAgainBetweenCommands(t *testing.T) {
	in := strings.NewReader("gethostname\nexit\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{responses: []string{"workstation", message.Goodbye}}

	c := New(nil, in, &out, 1024)
	require.NoError(t, c.Run(context.Background(), commands, responses))
	require.Equal(t, 2, strings.Count(out.String(), message.Prompt))
}

func TestRunEndOfInputEndsSilently(t *testing.T) {
	in := strings.NewReader("")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{}

	c := New(nil, in, &out, 1024)
	require.NoError(t, c.Run(context.Background(), commands, responses))

	require.Empty(t, commands.sent, "nothing is sent for a line never typed")
	require.Equal(t, fsm.StateStopped, c.State())
}

func TestRunTruncatesInputToMessageBound(t *testing.T) {
	long := strings.Repeat("x", 64)
	in := strings.NewReader(long + "\nexit\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{responses: []string{"resp", message.Goodbye}}

	c := New(nil, in, &out, 16)
	require.NoError(t, c.Run(context.Background(), commands, responses))
	require.Equal(t, strings.Repeat("x", 16), commands.sent[0])
}

func TestRunAcceptsInputLineBeyondReaderBuffer(t *testing.T) {
	// A line far past any internal read buffer truncates to the message
	// bound and the session continues; it must never end the loop.
	long := strings.Repeat("z", 100_000)
	in := strings.NewReader(long + "\nexit\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{responses: []string{"resp", message.Goodbye}}

	c := New(nil, in, &out, 1024)
	require.NoError(t, c.Run(context.Background(), commands, responses))

	require.Equal(t, []string{strings.Repeat("z", 1024), "exit"}, commands.sent)
	require.Equal(t, fsm.StateStopped, c.State())
}

func TestRunSendFailure(t *testing.T) {
	in := strings.NewReader("help\n")
	var out strings.Builder
	commands := &captureSender{err: errors.New("queue torn down")}

	c := New(nil, in, &out, 1024)
	err := c.Run(context.Background(), commands, &scriptedReceiver{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "command channel")
}

func TestRunReceiveFailure(t *testing.T) {
	in := strings.NewReader("help\n")
	var out strings.Builder
	commands := &captureSender{}
	responses := &scriptedReceiver{err: errors.New("queue torn down")}

	c := New(nil, in, &out, 1024)
	err := c.Run(context.Background(), commands, responses)
	require.Error(t, err)
	require.Contains(t, err.Error(), "response channel")
}
