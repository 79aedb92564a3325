// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"pollStore/pkg/log"
	"pollStore/pkg/metrics"
	"pollStore/pkg/reliability"
	"pollStore/pkg/syncmap"
)

// DefaultMaxMessageSize bounds a single request and a single response.
const DefaultMaxMessageSize = 1024

// Server accepts client connections and runs one worker per connection
type Server struct {
	handler  *Handler
	listener net.Listener
	metrics  *metrics.Metrics

	// Configuration
	address        string
	maxMessageSize int
	rateLimit      rate.Limit
	rateBurst      int

	// Connection management
	connections *syncmap.Map[uint64, net.Conn]
	connCounter atomic.Uint64

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

// ServerConfig text protocol server configuration
type ServerConfig struct {
	Handler        *Handler         // Request handler (required)
	Address        string           // Listen address (e.g. ":9000")
	MaxMessageSize int              // Read buffer and response limit (default 1024)
	RateLimitQPS   float64          // Per-connection request rate, 0 disables
	RateLimitBurst int              // Per-connection burst (default 1)
	Metrics        *metrics.Metrics // Optional
}

// NewServer creates a new text protocol server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if cfg.Address == "" {
		cfg.Address = ":9000"
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		handler:        cfg.Handler,
		metrics:        cfg.Metrics,
		address:        cfg.Address,
		maxMessageSize: cfg.MaxMessageSize,
		rateBurst:      cfg.RateLimitBurst,
		connections:    syncmap.NewMap[uint64, net.Conn](),
		ctx:            ctx,
		cancel:         cancel,
	}
	if cfg.RateLimitQPS > 0 {
		s.rateLimit = rate.Limit(cfg.RateLimitQPS)
	}

	log.Info("Text server initialized",
		log.String("address", cfg.Address),
		log.Int("max_message_size", cfg.MaxMessageSize),
		log.Component("text"))

	return s, nil
}

// Start binds the listener and starts accepting connections in the background
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = listener

	log.Info("Text server listening",
		log.String("address", listener.Addr().String()),
		log.Component("text"))

	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

// Addr returns the bound address, or nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the number of live client connections
func (s *Server) ActiveConnections() int {
	return s.connections.Len()
}

// StopAccepting closes the listener. Live connections keep being served.
func (s *Server) StopAccepting() error {
	if s.listener == nil {
		return nil
	}
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and every live connection, then waits for all
// workers. A request already being handled finishes its store operation.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	log.Info("Text server stopping", log.Component("text"))

	s.cancel()
	err := s.StopAccepting()

	s.connections.Range(func(id uint64, _ net.Conn) bool {
		if conn, ok := s.connections.LoadAndDelete(id); ok {
			conn.Close()
		}
		return true
	})

	s.wg.Wait()

	log.Info("Text server stopped", log.Component("text"))
	return err
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()
	defer reliability.RecoverPanicWith("text-accept", func() { s.metrics.RecordPanicRecovered("text-accept") })

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Error("Failed to accept connection",
				log.Err(err),
				log.Component("text"))
			continue
		}

		connID := s.connCounter.Add(1)
		s.connections.Store(connID, conn)
		// Stop cancels before it walks the registry, so a connection stored
		// after that walk is seen here.
		select {
		case <-s.ctx.Done():
			if c, ok := s.connections.LoadAndDelete(connID); ok {
				c.Close()
			}
			return
		default:
		}
		s.metrics.ConnectionOpened()

		s.wg.Add(1)
		go s.handleConnection(conn, connID)
	}
}

// handleConnection serves one client until it disconnects
func (s *Server) handleConnection(conn net.Conn, connID uint64) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.connections.Delete(connID)
		s.metrics.ConnectionClosed()
	}()
	defer reliability.RecoverPanicWith("text-conn", func() { s.metrics.RecordPanicRecovered("text-conn") })

	remote := conn.RemoteAddr().String()
	log.Debug("New connection",
		log.ConnID(connID),
		log.RemoteAddr(remote),
		log.Component("text"))

	var limiter *rate.Limiter
	if s.rateLimit > 0 {
		limiter = rate.NewLimiter(s.rateLimit, s.rateBurst)
	}

	buf := make([]byte, s.maxMessageSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			if !s.serve(conn, connID, limiter, buf[:n]) {
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Info("Connection read error",
					log.ConnID(connID),
					log.RemoteAddr(remote),
					log.Err(err),
					log.Component("text"))
			}
			break
		}
	}

	log.Debug("Connection closed",
		log.ConnID(connID),
		log.RemoteAddr(remote),
		log.Component("text"))
}

// serve handles one request and writes its response. It returns false when
// the connection should be released.
func (s *Server) serve(conn net.Conn, connID uint64, limiter *rate.Limiter, msg []byte) bool {
	if limiter != nil {
		if limiter.Tokens() < 1 {
			s.metrics.RecordRateLimitWait()
		}
		if err := limiter.Wait(s.ctx); err != nil {
			return false
		}
	}

	resp := truncate(s.handler.Handle(string(msg)), s.maxMessageSize)
	if _, err := conn.Write([]byte(resp)); err != nil {
		log.Info("Connection write error",
			log.ConnID(connID),
			log.RemoteAddr(conn.RemoteAddr().String()),
			log.Err(err),
			log.Component("text"))
		return false
	}
	return true
}
