// Package transport realizes the client-visible namespace of spec.md §6
// as literal Unix domain sockets: one per live tag at
// <SocketRoot>/<tag_name>, plus a sibling administrative socket. This is
// the "dispatch glue" component of spec.md §2's budget — it has no
// synchronization logic of its own, only framing and dispatch onto
// internal/tagcore.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hsnyder/tagfd/internal/config"
	"github.com/hsnyder/tagfd/internal/logger"
	"github.com/hsnyder/tagfd/internal/tagcore"
	"github.com/hsnyder/tagfd/internal/wire"
)

// Opcodes framing one request on a per-tag connection. opRead and
// opPoll are each followed by one flag byte (0/1) selecting blocking
// vs. nonblocking behavior.
const (
	opRead  = 'R'
	opWrite = 'W'
	opPoll  = 'P'
)

// Server binds the Core's tags and admin endpoint to the filesystem
// namespace of spec.md §6.
type Server struct {
	core *tagcore.Core
	cfg  *config.Config

	mu        sync.Mutex
	listeners map[string]net.Listener
	admin     net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer constructs a Server for core using cfg's socket paths and
// permissions. It does not bind any sockets yet; call Start.
func NewServer(core *tagcore.Core, cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		core:      core,
		cfg:       cfg,
		listeners: make(map[string]net.Listener),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start creates the socket root directory, binds a listener for every
// tag already live in the registry, and binds the administrative
// socket. Tags created later (via the admin socket) get their listener
// bound as a side effect of a successful creation.
func (s *Server) Start() error {
	if err := os.MkdirAll(s.cfg.SocketRoot, 0755); err != nil {
		return fmt.Errorf("transport: creating socket root: %w", err)
	}

	for _, t := range s.core.Registry.List() {
		if err := s.bindTagListener(t.Name); err != nil {
			return err
		}
	}

	adminPath := s.cfg.AdminSocketPath
	if err := removeStaleSocket(adminPath); err != nil {
		return err
	}
	l, err := net.Listen("unix", adminPath)
	if err != nil {
		return fmt.Errorf("transport: binding admin socket: %w", err)
	}
	if err := os.Chmod(adminPath, s.cfg.AdminSocketMode); err != nil {
		return fmt.Errorf("transport: setting admin socket permissions: %w", err)
	}
	s.admin = l

	s.wg.Add(1)
	go s.acceptAdmin()

	logger.Info("transport: listening (socket root %s, admin %s)", s.cfg.SocketRoot, adminPath)
	return nil
}

// Shutdown cancels every in-flight blocking read (spec.md §5
// cancellation) and closes all listeners. It does not wait for the
// registry or its tags to be destroyed — those outlive any one
// transport instance, per spec.md §3 Lifecycle.
func (s *Server) Shutdown() {
	s.cancel()

	s.mu.Lock()
	if s.admin != nil {
		s.admin.Close()
	}
	for _, l := range s.listeners {
		l.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	logger.Info("transport: shut down")
}

func removeStaleSocket(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("transport: removing stale socket %s: %w", path, err)
	}
	return nil
}

func (s *Server) tagSocketPath(name string) string {
	return filepath.Join(s.cfg.SocketRoot, name)
}

// bindTagListener binds the per-tag socket for an already-created tag
// and starts accepting connections on it. Called both at startup (for
// pre-existing tags, were there a persistence layer — there is none,
// spec.md §1 Non-goals) and synchronously after a successful admin
// creation.
func (s *Server) bindTagListener(name string) error {
	path := s.tagSocketPath(name)
	if err := removeStaleSocket(path); err != nil {
		return err
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("transport: binding tag socket %s: %w", name, err)
	}
	if err := os.Chmod(path, s.cfg.TagSocketMode); err != nil {
		return fmt.Errorf("transport: setting tag socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listeners[name] = l
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptTag(name, l)
	return nil
}

func (s *Server) acceptTag(name string, l net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Warn("transport: accept on %s: %v", name, err)
			return
		}
		s.wg.Add(1)
		go s.serveTagConn(name, conn)
	}
}

// serveTagConn dispatches framed requests from one accepted tag
// connection onto ep. Every blocking core call (a blocking read, a
// blocking poll) is given connCtx, a context scoped to this one
// connection rather than the whole server, so that a client hanging up
// mid-wait is itself the thing that ends the wait — not only a full
// server shutdown (spec.md §5 cancellation; SPEC_FULL.md's Transport
// section).
func (s *Server) serveTagConn(name string, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	ep := s.core.Open(name)
	if ep == nil {
		// The tag was live when the listener was bound but is gone by
		// the time a client connects — impossible under spec.md's
		// append-only registry (§1 Non-goals: no deletion), but guard
		// against it rather than panic on a nil endpoint.
		logger.Error("transport: tag %q vanished before connection could attach", name)
		return
	}
	defer ep.Close()

	connCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stopCloser := closeConnOnDone(connCtx, conn)
	defer stopCloser()

	r := bufio.NewReader(conn)
	for {
		op, err := r.ReadByte()
		if err != nil {
			return
		}

		switch op {
		case opRead:
			nb, err := r.ReadByte()
			if err != nil {
				return
			}
			blocking := nb == 0
			var stopWatch func()
			if blocking {
				stopWatch = watchDisconnect(conn, cancel)
			}
			v, rerr := ep.Read(connCtx, !blocking)
			if stopWatch != nil {
				stopWatch()
			}
			if rerr != nil {
				writeStatus(conn, tagcore.EncodeError(rerr))
				if rerr == tagcore.ErrInterrupted && connCtx.Err() != nil {
					return
				}
				continue
			}
			writeStatus(conn, tagcore.CodeOK)
			conn.Write(wire.Marshal(v))

		case opWrite:
			buf := make([]byte, wire.RecordSize)
			if _, err := readFull(r, buf); err != nil {
				writeStatus(conn, tagcore.CodeTransferFault)
				return
			}
			v, err := wire.Unmarshal(buf)
			if err != nil {
				writeStatus(conn, tagcore.EncodeError(err))
				continue
			}
			werr := ep.Write(v)
			writeStatus(conn, tagcore.EncodeError(werr))

		case opPoll:
			block, err := r.ReadByte()
			if err != nil {
				return
			}
			var stopWatch func()
			if block != 0 {
				stopWatch = watchDisconnect(conn, cancel)
			}
			mask, perr := ep.Poll(connCtx, block != 0)
			if stopWatch != nil {
				stopWatch()
			}
			if perr != nil {
				writeStatus(conn, tagcore.EncodeError(perr))
				if perr == tagcore.ErrInterrupted && connCtx.Err() != nil {
					return
				}
				continue
			}
			writeStatus(conn, tagcore.CodeOK)
			conn.Write([]byte{byte(mask)})

		default:
			logger.Warn("transport: unknown opcode %q on %s", op, name)
			return
		}
	}
}

// watchDisconnect spawns a goroutine that blocks on a raw read of conn
// — a genuine OS-level wait, not a poll loop — purely to detect the
// peer hanging up while the caller is blocked inside a core operation
// that doesn't itself touch the socket (ep.Read/ep.Poll wait on the
// Cell's condition variable, not on conn). It is only ever active
// during such a blocking window, so it never contends with the main
// loop's own protocol reads, which only happen once unblocked. The
// returned stop func forces the watch to end (via an already-expired
// read deadline, cleared again afterwards) once the blocking core call returns on its own, and
// distinguishes that deliberate interruption from a genuine peer
// disconnect before deciding whether to cancel.
func watchDisconnect(conn net.Conn, cancel context.CancelFunc) (stop func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var one [1]byte
		_, err := conn.Read(one[:])
		if err == nil {
			return
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return
		}
		cancel()
	}()
	return func() {
		conn.SetReadDeadline(time.Now())
		<-done
		conn.SetReadDeadline(time.Time{})
	}
}

// closeConnOnDone force-closes conn when ctx is cancelled, unblocking
// any OS-level read or write still in flight on it. This covers full
// server shutdown (s.ctx cancelled) reaching a connection that is
// otherwise idle, and is a harmless no-op once the connection's own
// cleanup has already closed conn.
func closeConnOnDone(ctx context.Context, conn net.Conn) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func writeStatus(conn net.Conn, code tagcore.ErrCode) {
	conn.Write([]byte{byte(code)})
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := r.Read(buf[n:])
		n += k
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
