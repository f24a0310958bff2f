package dispatch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/averrett/sysq/internal/fsm"
	"github.com/averrett/sysq/internal/sysinfo"
)

type fakeInfo struct {
	host      string
	domain    string
	uname     sysinfo.Info
	hostErr   error
	domainErr error
	unameErr  error
}

func (f fakeInfo) HostName() (string, error)   { return f.host, f.hostErr }
func (f fakeInfo) DomainName() (string, error) { return f.domain, f.domainErr }
func (f fakeInfo) Uname() (sysinfo.Info, error) {
	return f.uname, f.unameErr
}

type scriptedReceiver struct {
	payloads []string
	finalErr error
}

func (r *scriptedReceiver) Recv() ([]byte, error) {
	if len(r.payloads) == 0 {
		if r.finalErr != nil {
			return nil, r.finalErr
		}
		return nil, errors.New("receiver exhausted")
	}
	next := r.payloads[0]
	r.payloads = r.payloads[1:]
	return []byte(next), nil
}

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

func run(t *testing.T, info sysinfo.Provider, inputs ...string) (*Dispatcher, *captureSender, error) {
	t.Helper()
	d := New(nil, info, 1024)
	out := &captureSender{}
	err := d.Run(context.Background(), &scriptedReceiver{payloads: inputs}, out)
	return d, out, err
}

func TestRunStaticResponses(t *testing.T) {
	_, out, err := run(t, fakeInfo{}, "help", "exit")
	require.NoError(t, err)
	require.Len(t, out.sent, 2)
	require.Equal(t, "Available Commands:\n"+
		" > getdomainname - get the system domain name and print it to the console\n"+
		" > gethostname - get the system host name and print it to the console\n"+
		" > uname - get the system Unix name and print it to the console\n"+
		" > help - gets this help message and prints it to the console\n"+
		" > exit - exit the application", out.sent[0])
	require.Equal(t, "Goodbye!", out.sent[1])
}

func TestRunExitStopsLoop(t *testing.T) {
	d, out, err := run(t, fakeInfo{}, "exit", "help")
	require.NoError(t, err)
	require.Equal(t, fsm.StateStopped, d.State())
	// The loop must stop before consuming anything past the exit command.
	require.Len(t, out.sent, 1)
}

func TestRunSystemLookups(t *testing.T) {
	info := fakeInfo{
		host:   "workstation",
		domain: "lab.internal",
		uname: sysinfo.Info{
			System: "Linux", Node: "workstation", Release: "6.1.0",
			Version: "#1 SMP", Machine: "x86_64", Domain: "lab.internal",
		},
	}

	_, out, err := run(t, info, "gethostname", "getdomainname", "uname", "exit")
	require.NoError(t, err)
	require.Len(t, out.sent, 4)
	require.Equal(t, "workstation", out.sent[0])
	require.Equal(t, "lab.internal", out.sent[1])
	require.Equal(t,
		" System: Linux\n   Node: workstation\nRelease: 6.1.0\nVersion: #1 SMP\nMachine: x86_64\n Domain: lab.internal",
		out.sent[2])
	require.Equal(t, "Goodbye!", out.sent[3])
}

func TestRunCollaboratorFailureSubstitutesErrorText(t *testing.T) {
	info := fakeInfo{
		hostErr:  errors.New("hostname lookup: resource unavailable"),
		unameErr: errors.New("uname lookup: not permitted"),
	}

	_, out, err := run(t, info, "gethostname", "uname", "exit")
	require.NoError(t, err, "collaborator failure is content substitution, not a dispatcher fault")
	require.Equal(t, "hostname lookup: resource unavailable", out.sent[0])
	require.Equal(t, "uname lookup: not permitted", out.sent[1])
}

func TestRunUnknownCommand(t *testing.T) {
	_, out, err := run(t, fakeInfo{}, "foobar", "exit")
	require.NoError(t, err)
	require.Equal(t, `Unknown command: "foobar"`, out.sent[0])
}

func TestRunUnknownCommandRespectsMessageBound(t *testing.T) {
	d := New(nil, fakeInfo{}, 64)
	out := &captureSender{}
	long := strings.Repeat("z", 300)

	err := d.Run(context.Background(), &scriptedReceiver{payloads: []string{long, "exit"}}, out)
	require.NoError(t, err)
	require.Len(t, out.sent[0], 64)
	require.True(t, strings.HasSuffix(out.sent[0], `"`))
}

func TestRunClassificationIsCaseSensitive(t *testing.T) {
	_, out, err := run(t, fakeInfo{host: "h"}, "GetHostName", "exit")
	require.NoError(t, err)
	require.Equal(t, `Unknown command: "GetHostName"`, out.sent[0])
}

func TestRunLogsClassifiedCommand(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	d := New(logger, fakeInfo{host: "h"}, 1024)
	out := &captureSender{}
	inputs := &scriptedReceiver{payloads: []string{"gethostname", "nonsense", "exit"}}
	require.NoError(t, d.Run(context.Background(), inputs, out))

	logged := logs.String()
	require.Contains(t, logged, `"command":"gethostname"`)
	require.Contains(t, logged, `"command":"unknown"`)
	require.Contains(t, logged, `"command":"exit"`)
}

func TestRunReceiveFailureIsFatal(t *testing.T) {
	d := New(nil, fakeInfo{}, 1024)
	out := &captureSender{}

	err := d.Run(context.Background(), &scriptedReceiver{finalErr: errors.New("queue torn down")}, out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "command channel")
	require.Empty(t, out.sent, "no response may be produced without a request")
}

func TestRunSendFailureIsFatal(t *testing.T) {
	d := New(nil, fakeInfo{}, 1024)
	out := &captureSender{err: errors.New("queue torn down")}

	err := d.Run(context.Background(), &scriptedReceiver{payloads: []string{"help"}}, out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "response channel")
}

func TestRunOneResponsePerRequest(t *testing.T) {
	inputs := []string{"help", "foobar", "gethostname", "uname", "exit"}
	_, out, err := run(t, fakeInfo{host: "h"}, inputs...)
	require.NoError(t, err)
	require.Len(t, out.sent, len(inputs))
}
