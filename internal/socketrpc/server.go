package socketrpc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tinytelemetry/starboard/internal/counter"
)

// Requests and replies are one short JSON object per line.
const (
	scannerInitBufSize  = 512
	scannerMaxTokenSize = 4 * 1024
)

// StateReader is the read side of counter.Store.
type StateReader interface {
	Snapshot() counter.State
}

// Server exposes a StateReader over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	store      StateReader
	listener   net.Listener

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	closing  bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer creates a new socket RPC server.
func NewServer(socketPath string, store StateReader) *Server {
	return &Server{
		socketPath: socketPath,
		store:      store,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start binds the socket and begins serving. A leftover socket file with no
// listener behind it is replaced; a live one is an error.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}
	if err := s.clearStaleSocket(); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.serve()

	log.Printf("socketrpc: listening on %s", s.socketPath)
	return nil
}

func (s *Server) clearStaleSocket() error {
	if _, err := os.Stat(s.socketPath); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", s.socketPath, 500*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socketrpc: another server is already listening on %s", s.socketPath)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("socketrpc: remove stale socket: %w", err)
	}
	return nil
}

// Stop closes the listener and every open connection, waits for handlers to
// return, and removes the socket file. Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.closing = true
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.socketPath)
	})
}

// track registers conn, or reports false once Stop has begun.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
	s.wg.Done()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if errors.Is(err, net.ErrClosed) {
			return
		}
		if err != nil {
			log.Printf("socketrpc: accept: %v", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		go s.handleConn(conn)
	}
}

// handleConn answers one request per line until the peer hangs up or sends
// a line longer than scannerMaxTokenSize.
func (s *Server) handleConn(conn net.Conn) {
	defer s.untrack(conn)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, scannerInitBufSize), scannerMaxTokenSize)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		if err := enc.Encode(s.handleLine(scanner.Bytes())); err != nil {
			return
		}
	}
	if err := scanner.Err(); errors.Is(err, bufio.ErrTooLong) {
		log.Printf("socketrpc: dropping client: request line too long")
	}
}

func (s *Server) handleLine(line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{JSONRPC: "2.0", Error: &RPCError{Code: -32700, Message: "parse error"}}
	}
	return s.dispatch(req)
}

func (s *Server) dispatch(req Request) Response {
	var result interface{}
	switch req.Method {
	case "StarCount":
		result = s.store.Snapshot().Current
	case "Snapshot":
		result = s.store.Snapshot()
	default:
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{
			Code:    -32601,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}}
	}

	data, err := json.Marshal(result)
	if err != nil {
		return Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: -32603, Message: err.Error()}}
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: data}
}
