// Package channel manages the two named, capacity-bounded message channels
// shared by the client and server roles. Each channel is unidirectional: a
// push end feeds a pull end over an ipc socket named on the filesystem.
// Blocking send/receive on these channels is the only synchronization
// between the two roles.
package channel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/push"
	"go.nanomsg.org/mangos/v3/transport/ipc"
)

// ErrUnavailable marks channel setup failures: the platform could not
// allocate or connect the named channel.
var ErrUnavailable = errors.New("channel unavailable")

// Config carries the full channel surface: naming, bounds, permissions, and
// the optional deadlines that keep blocking calls cancellable under test.
type Config struct {
	Dir          string
	CommandName  string
	ResponseName string

	Capacity   int
	MaxMsgSize int
	Perms      os.FileMode

	// Zero deadlines block forever.
	SendTimeout time.Duration
	RecvTimeout time.Duration

	// DialBudget bounds how long a dialing role retries connecting to a
	// channel that is still being set up by its peer.
	DialBudget time.Duration
}

// Endpoint is one process's handle on one directional channel.
type Endpoint struct {
	name     string
	path     string
	sock     mangos.Socket
	maxSize  int
	owner    bool
	unlinkMu sync.Mutex
	unlinked bool
}

// Path returns the channel's name in the filesystem namespace.
func (e *Endpoint) Path() string {
	return e.path
}

// Send blocks until queue space is available, then enqueues the payload.
// Payloads larger than the channel's max message size are rejected rather
// than silently truncated.
func (e *Endpoint) Send(payload []byte) error {
	if len(payload) > e.maxSize {
		return fmt.Errorf("send on %s: payload %d bytes exceeds max message size %d", e.name, len(payload), e.maxSize)
	}
	if err := e.sock.Send(payload); err != nil {
		return fmt.Errorf("send on %s: %w", e.name, err)
	}
	return nil
}

// Recv blocks until a message is available and returns its payload.
func (e *Endpoint) Recv() ([]byte, error) {
	payload, err := e.sock.Recv()
	if err != nil {
		return nil, fmt.Errorf("receive on %s: %w", e.name, err)
	}
	return payload, nil
}

// Close releases the handle. Safe to call more than once; the owning end
// also removes the channel name so nothing stale survives a crash path.
func (e *Endpoint) Close() error {
	if e == nil || e.sock == nil {
		return nil
	}
	err := e.sock.Close()
	if err != nil && !errors.Is(err, mangos.ErrClosed) {
		return fmt.Errorf("close %s: %w", e.name, err)
	}
	if e.owner {
		return e.Unlink()
	}
	return nil
}

// Unlink removes the channel's name from the filesystem namespace. Open
// handles keep working; a later listen with the same name creates a fresh
// channel. Idempotent.
func (e *Endpoint) Unlink() error {
	e.unlinkMu.Lock()
	defer e.unlinkMu.Unlock()
	if e.unlinked {
		return nil
	}
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unlink %s: %w", e.name, err)
	}
	e.unlinked = true
	return nil
}

// IsTimeout reports whether err is a send/receive deadline expiry.
func IsTimeout(err error) bool {
	return errors.Is(err, mangos.ErrSendTimeout) || errors.Is(err, mangos.ErrRecvTimeout)
}

// IsClosed reports whether err means the channel handle is already gone.
func IsClosed(err error) bool {
	return errors.Is(err, mangos.ErrClosed)
}

// listen opens the owning end of one channel. onAttach fires once, when the
// peer connects.
func listen(name string, cfg Config, recv bool, onAttach func(*Endpoint)) (*Endpoint, error) {
	sock, err := newSocket(recv)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, name, err)
	}

	ep := &Endpoint{
		name:    name,
		path:    filepath.Join(cfg.Dir, name),
		sock:    sock,
		maxSize: cfg.MaxMsgSize,
		owner:   true,
	}

	if err := configure(sock, cfg, recv); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%w: configure %s: %v", ErrUnavailable, name, err)
	}

	if onAttach != nil {
		var once sync.Once
		sock.SetPipeEventHook(func(ev mangos.PipeEvent, _ mangos.Pipe) {
			if ev == mangos.PipeEventAttached {
				once.Do(func() { onAttach(ep) })
			}
		})
	}

	opts := map[string]interface{}{
		ipc.OptionIpcSocketPermissions: cfg.Perms,
	}
	if err := sock.ListenOptions("ipc://"+ep.path, opts); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%w: listen %s: %v", ErrUnavailable, name, err)
	}
	return ep, nil
}

// dial opens the non-owning end of one channel, retrying with exponential
// backoff while the peer finishes setup.
func dial(name string, cfg Config, recv bool) (*Endpoint, error) {
	sock, err := newSocket(recv)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrUnavailable, name, err)
	}

	ep := &Endpoint{
		name:    name,
		path:    filepath.Join(cfg.Dir, name),
		sock:    sock,
		maxSize: cfg.MaxMsgSize,
	}

	if err := configure(sock, cfg, recv); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%w: configure %s: %v", ErrUnavailable, name, err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxElapsedTime = cfg.DialBudget
	if err := backoff.Retry(func() error {
		return sock.Dial("ipc://" + ep.path)
	}, bo); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, name, err)
	}
	return ep, nil
}

func newSocket(recv bool) (mangos.Socket, error) {
	if recv {
		return pull.NewSocket()
	}
	return push.NewSocket()
}

// configure applies the direction-appropriate bounds and deadlines. Queue
// length options are per-protocol: a push socket only queues writes, a pull
// socket only queues reads.
func configure(sock mangos.Socket, cfg Config, recv bool) error {
	if recv {
		if err := sock.SetOption(mangos.OptionReadQLen, cfg.Capacity); err != nil {
			return err
		}
		if err := sock.SetOption(mangos.OptionMaxRecvSize, cfg.MaxMsgSize); err != nil {
			return err
		}
		if cfg.RecvTimeout > 0 {
			if err := sock.SetOption(mangos.OptionRecvDeadline, cfg.RecvTimeout); err != nil {
				return err
			}
		}
		return nil
	}

	if err := sock.SetOption(mangos.OptionWriteQLen, cfg.Capacity); err != nil {
		return err
	}
	if cfg.SendTimeout > 0 {
		if err := sock.SetOption(mangos.OptionSendDeadline, cfg.SendTimeout); err != nil {
			return err
		}
	}
	return nil
}
