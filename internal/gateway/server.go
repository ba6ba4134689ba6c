// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package gateway accepts operator TCP connections and shuttles text
// between operators and the dispatcher.
package gateway

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/kestrelsat/groundlink/internal/ground"
	"github.com/kestrelsat/groundlink/internal/observability"
)

// MaxMessageSize bounds a single operator read chunk.
const MaxMessageSize = 8192

// MessageHandler receives each operator message verbatim.
type MessageHandler func(op ground.OperatorHandle, message string)

// Server is the operator gateway: a blocking TCP acceptor with one
// reader goroutine per session. It owns the sessions; everything else
// refers to them only by handle.
type Server struct {
	port       int
	maxClients int
	handler    MessageHandler
	metrics    *observability.Collector
	log        *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	sessions map[ground.OperatorHandle]*session
	nextID   uint64
	running  bool
}

// session is one connected operator.
type session struct {
	id     ground.OperatorHandle
	conn   net.Conn
	remote string

	writeMu sync.Mutex
}

// NewServer creates a gateway bound to port with a cap on simultaneous
// sessions; metrics may be nil.
func NewServer(port, maxClients int, handler MessageHandler, metrics *observability.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		port:       port,
		maxClients: maxClients,
		handler:    handler,
		metrics:    metrics,
		log:        logger,
		sessions:   make(map[ground.OperatorHandle]*session),
		nextID:     1,
	}
}

// Start binds the listener and launches the accept loop.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("gateway already running")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("gateway listen failed: %w", err)
	}

	s.listener = ln
	s.running = true
	go s.acceptLoop()

	s.log.Info("gateway started", "port", s.port, "max_clients", s.maxClients)
	return nil
}

// Stop closes the listener and every active session.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	ln := s.listener
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.sessions = make(map[ground.OperatorHandle]*session)
	s.mu.Unlock()

	ln.Close()
	for _, sess := range sessions {
		sess.conn.Close()
	}
	s.metrics.SetOperatorSessions(0)

	s.log.Info("gateway stopped")
}

// Addr returns the bound listener address, for tests using port 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ClientCount returns the number of active sessions.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Send delivers text to the session behind op. A gone session is a
// silent drop: false return, no error.
func (s *Server) Send(op ground.OperatorHandle, text string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[op]
	s.mu.Unlock()
	if !ok {
		return false
	}

	sess.writeMu.Lock()
	_, err := sess.conn.Write([]byte(text))
	sess.writeMu.Unlock()

	if err != nil {
		s.log.Warn("operator write failed", "operator", uint64(op), "error", err)
		s.dropSession(sess)
		return false
	}
	return true
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}

		s.mu.Lock()
		if len(s.sessions) >= s.maxClients {
			s.mu.Unlock()
			s.log.Warn("connection rejected: maximum connections reached", "remote", conn.RemoteAddr())
			conn.Close()
			continue
		}

		sess := &session{
			id:     ground.OperatorHandle(s.nextID),
			conn:   conn,
			remote: conn.RemoteAddr().String(),
		}
		s.nextID++
		s.sessions[sess.id] = sess
		count := len(s.sessions)
		s.mu.Unlock()

		s.metrics.SetOperatorSessions(count)
		s.log.Info("operator connected", "operator", uint64(sess.id), "remote", sess.remote)

		go s.readLoop(sess)
	}
}

// readLoop forwards raw chunks to the dispatcher until the session
// dies. A session error is fatal only to that session.
func (s *Server) readLoop(sess *session) {
	defer s.dropSession(sess)

	buf := make([]byte, MaxMessageSize)
	for {
		n, err := sess.conn.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		s.handler(sess.id, string(buf[:n]))
	}
}

func (s *Server) dropSession(sess *session) {
	s.mu.Lock()
	_, present := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	count := len(s.sessions)
	s.mu.Unlock()

	sess.conn.Close()

	if present {
		s.metrics.SetOperatorSessions(count)
		s.log.Info("operator disconnected", "operator", uint64(sess.id), "remote", sess.remote)
	}
}
